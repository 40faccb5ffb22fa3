package led

import (
	"log/slog"
	"os"
	"strings"
)

// channelColors maps channel indices to the color token used in sysfs LED
// names of the form "devicename:color:function".
var channelColors = [NumChannels]string{"red", "green", "blue"}

// New creates an LED controller for the configured red/green/blue LED names.
// Empty names are filled in by scanning /sys/class/leds for indicator LEDs.
// Falls back to a no-op controller when the LEDs are not present.
func New(names [NumChannels]string, logger *slog.Logger) Controller {
	for channel, name := range names {
		if name == "" {
			names[channel] = discover(channelColors[channel])
		}
	}

	for channel, name := range names {
		if name == "" {
			logger.Info("No LED found for channel, using no-op controller",
				"channel", channel, "color", channelColors[channel])
			return newNoop(logger)
		}
	}

	ctrl, err := newSysfs(names)
	if err != nil {
		logger.Warn("Failed to initialize sysfs LED controller, using no-op",
			"error", err)
		return newNoop(logger)
	}

	logger.Info("Using sysfs LED controller",
		"red", names[ChannelRed],
		"green", names[ChannelGreen],
		"blue", names[ChannelBlue])
	return ctrl
}

// discover scans /sys/class/leds for an indicator LED of the given color.
// Multicolor indicators are named "devicename:color:indicator" per the
// kernel LED naming convention.
func discover(color string) string {
	entries, err := os.ReadDir(sysfsLEDPath)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ":"+color+":indicator") {
			return name
		}
	}
	return ""
}
