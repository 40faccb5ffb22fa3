package led

import (
	"errors"
	"log/slog"
	"sync"
)

// Driver applies 3-bit color masks to a Controller. Writes are debounced:
// a channel is only touched when its bit differs from the last applied
// mask, so repeated SetColor calls with the same mask are free.
type Driver struct {
	controller Controller
	logger     *slog.Logger

	mu      sync.Mutex
	last    uint8
	applied bool
}

// NewDriver creates a color driver on top of the given controller.
func NewDriver(controller Controller, logger *slog.Logger) *Driver {
	return &Driver{
		controller: controller,
		logger:     logger,
	}
}

// SetColor applies a 3-bit color mask (bit 0 red, bit 1 green, bit 2 blue),
// writing only the channels whose bit changed. The first call writes all
// channels to bring the hardware to a known state.
func (d *Driver) SetColor(bits uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.applied && bits == d.last {
		return nil
	}

	var errs []error
	for channel := 0; channel < NumChannels; channel++ {
		bit := uint8(1) << channel
		if d.applied && (bits&bit) == (d.last&bit) {
			continue
		}
		if err := d.controller.Set(channel, bits&bit != 0); err != nil {
			d.logger.Warn("Failed to switch LED channel",
				"channel", channel, "error", err)
			errs = append(errs, err)
		}
	}

	d.last = bits
	d.applied = true
	return errors.Join(errs...)
}

// Last returns the last applied color mask.
func (d *Driver) Last() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
