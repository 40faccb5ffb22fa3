package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klinkhq/keyled/internal/led"
	"github.com/klinkhq/keyled/internal/logging"
)

// CreateLEDsCmd creates the leds command for direct LED control without the
// daemon running.
func CreateLEDsCmd() *cobra.Command {
	var redLED, greenLED, blueLED string

	cmd := &cobra.Command{
		Use:   "leds [channel] [on|off]",
		Short: "List or switch the indicator LEDs",
		Long: `With no arguments, lists the LED devices backing the red, green and blue ` +
			`indicator channels. With a channel and a state, switches that LED directly.`,
		Args: cobra.RangeArgs(0, 2),
		Run: func(_ *cobra.Command, args []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})
			logger := logging.GetLogger("led")

			controller := led.New([led.NumChannels]string{redLED, greenLED, blueLED}, logger)

			if len(args) == 0 {
				devices := controller.Available()
				if len(devices) == 0 {
					fmt.Println("No indicator LEDs found")
					return
				}
				for channel, name := range []string{"red", "green", "blue"} {
					device := ""
					if channel < len(devices) {
						device = devices[channel]
					}
					fmt.Printf("%-6s %s\n", name, device)
				}
				return
			}

			if len(args) != 2 {
				fmt.Fprintln(os.Stderr, "Usage: keyled leds <red|green|blue> <on|off>")
				os.Exit(1)
			}

			channel, ok := map[string]int{
				"red":   led.ChannelRed,
				"green": led.ChannelGreen,
				"blue":  led.ChannelBlue,
			}[args[0]]
			if !ok {
				fmt.Fprintf(os.Stderr, "Unknown channel %q\n", args[0])
				os.Exit(1)
			}

			var on bool
			switch args[1] {
			case "on":
				on = true
			case "off":
				on = false
			default:
				fmt.Fprintf(os.Stderr, "Unknown state %q, want on or off\n", args[1])
				os.Exit(1)
			}

			if err := controller.Set(channel, on); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to switch LED: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&redLED, "red-led", "", "sysfs LED name for the red channel (auto-discovered when empty)")
	cmd.Flags().StringVar(&greenLED, "green-led", "", "sysfs LED name for the green channel")
	cmd.Flags().StringVar(&blueLED, "blue-led", "", "sysfs LED name for the blue channel")

	return cmd
}
