package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/klinkhq/keyled/internal/logging"
	"github.com/klinkhq/keyled/internal/updater"
	"github.com/klinkhq/keyled/internal/version"
)

const updateRepository = "klinkhq/keyled"

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool
	var rollback bool
	var prerelease bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update keyled to the latest release",
		Long: `Checks GitHub releases for a newer keyled build and replaces the running ` +
			`binary in place. The previous binary is kept as a .bak file for rollback.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})

			svc, err := updater.NewService(&updater.Options{
				Repository: updateRepository,
				Prerelease: prerelease,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Updater unavailable: %v\n", err)
				os.Exit(1)
			}

			if rollback {
				if err := svc.Rollback(); err != nil {
					fmt.Fprintf(os.Stderr, "Rollback failed: %v\n", err)
					os.Exit(1)
				}
				fmt.Println("Rolled back to previous binary")
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			info, err := svc.CheckForUpdate(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Update check failed: %v\n", err)
				os.Exit(1)
			}

			if !info.UpdateAvailable {
				fmt.Printf("Already up to date (%s)\n", version.String())
				return
			}

			fmt.Printf("Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if checkOnly {
				return
			}

			if err := svc.ApplyUpdate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Updated to %s, restart the service to pick it up\n", info.LatestVersion)
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for an update, do not apply it")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the .bak binary left by the last update")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prerelease versions")

	return cmd
}
