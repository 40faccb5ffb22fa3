package led

import (
	"fmt"
	"os"
	"path/filepath"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using the Linux sysfs LED interface
type sysfs struct {
	names [NumChannels]string // channel -> sysfs LED name
}

// newSysfs creates a sysfs LED controller for the given red/green/blue LED
// names. Each LED's trigger is released to manual control so brightness
// writes take effect.
func newSysfs(names [NumChannels]string) (*sysfs, error) {
	s := &sysfs{names: names}

	for channel, name := range names {
		ledPath := filepath.Join(sysfsLEDPath, name)
		if _, err := os.Stat(ledPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("LED for channel %d not found at %s", channel, ledPath)
		}

		triggerPath := filepath.Join(ledPath, "trigger")
		if err := os.WriteFile(triggerPath, []byte("none"), 0644); err != nil {
			return nil, fmt.Errorf("failed to release LED trigger for %s: %w", name, err)
		}
	}

	return s, nil
}

// Set switches a single LED channel on or off.
func (s *sysfs) Set(channel int, on bool) error {
	if channel < 0 || channel >= NumChannels {
		return fmt.Errorf("LED channel %d out of range", channel)
	}

	brightnessPath := filepath.Join(sysfsLEDPath, s.names[channel], "brightness")
	value := "0"
	if on {
		value = "1"
	}

	if err := os.WriteFile(brightnessPath, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}

	return nil
}

// Available returns the backing sysfs LED names, indexed by channel.
func (s *sysfs) Available() []string {
	return s.names[:]
}
