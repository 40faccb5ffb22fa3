// Package updater checks GitHub releases for new keyled builds and replaces
// the running binary in place.
package updater

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/klinkhq/keyled/internal/logging"
	"github.com/klinkhq/keyled/internal/version"
)

// Options configures the updater service.
type Options struct {
	Repository string // GitHub repo slug, e.g. "klinkhq/keyled"
	Prerelease bool
}

// UpdateInfo describes the latest release relative to the running build.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes"`
	ReleaseURL      string    `json:"release_url"`
	PublishedAt     time.Time `json:"published_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// Service checks for and applies binary updates.
type Service struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	logger     *slog.Logger
}

// NewService creates an updater. Fails when the binary's directory is not
// writable, since an update could never be applied.
func NewService(opts *Options) (*Service, error) {
	logger := logging.GetLogger("updater")

	if err := checkWritePermission(); err != nil {
		return nil, err
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}

	u, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Service{
		repository: selfupdate.ParseSlug(opts.Repository),
		updater:    u,
		logger:     logger,
	}, nil
}

func checkWritePermission() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	dir := filepath.Dir(exe)
	tmp := filepath.Join(dir, ".keyled.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("no write permission to %s: %w", dir, err)
	}
	f.Close()
	os.Remove(tmp)
	return nil
}

// CheckForUpdate queries GitHub for the latest release and compares it
// against the running version without downloading anything.
func (s *Service) CheckForUpdate(ctx context.Context) (*UpdateInfo, error) {
	current := version.Version

	release, found, err := s.updater.DetectLatest(ctx, s.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("repository has no releases")
	}

	// Dev builds are always considered outdated
	newer := current == "dev" || release.GreaterThan(current)

	info := &UpdateInfo{
		CurrentVersion:  current,
		LatestVersion:   release.Version(),
		UpdateAvailable: newer,
	}
	if newer {
		info.ReleaseNotes = release.ReleaseNotes
		info.ReleaseURL = release.URL
		info.PublishedAt = release.PublishedAt
	}
	return info, nil
}

// ApplyUpdate downloads the latest release and replaces the running binary.
// The previous binary is kept next to it as a .bak file.
func (s *Service) ApplyUpdate(ctx context.Context) error {
	release, found, err := s.updater.DetectLatest(ctx, s.repository)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("repository has no releases")
	}
	if version.Version != "dev" && !release.GreaterThan(version.Version) {
		return fmt.Errorf("already up to date at %s", version.Version)
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	if err := s.backup(exe); err != nil {
		s.logger.Warn("Failed to back up current binary", "error", err)
	}

	s.logger.Info("Applying update",
		"from", version.Version, "to", release.Version())
	if err := s.updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}

	s.logger.Info("Update applied", "version", release.Version())
	return nil
}

// Rollback restores the .bak binary left by a previous update.
func (s *Service) Rollback() error {
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	backup := exe + ".bak"
	if _, err := os.Stat(backup); err != nil {
		return fmt.Errorf("no backup available: %w", err)
	}

	if err := os.Rename(backup, exe); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	if err := os.Chmod(exe, 0o755); err != nil {
		return fmt.Errorf("failed to restore permissions: %w", err)
	}

	s.logger.Info("Rolled back to previous binary")
	return nil
}

func (s *Service) backup(exe string) error {
	src, err := os.Open(exe)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(exe+".bak", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
