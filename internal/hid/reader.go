// Package hid reads the keyboard's vendor HID interface and turns its
// status reports into events: lock indicator changes, battery level and
// keycodes the firmware forwards for host-side handling.
package hid

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sstallion/go-hid"

	"github.com/klinkhq/keyled/internal/events"
)

// reconnectDelay is the wait between probe attempts while the keyboard is
// away (unplugged, asleep, or switched to another host).
const reconnectDelay = 3 * time.Second

// Options configures the vendor HID reader.
type Options struct {
	VendorID  uint16
	ProductID uint16
	UsagePage uint16

	EventBus *events.Bus
	Logger   *slog.Logger
}

// Reader opens the keyboard's vendor interface and publishes decoded
// reports on the event bus. It reconnects with a fixed delay whenever the
// device disappears.
type Reader struct {
	opts *Options

	// last published values, for change-only event semantics
	lastIndicators uint8
	lastBattery    uint8
	haveStatus     bool

	running  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewReader creates a reader for the configured device.
func NewReader(opts *Options) *Reader {
	return &Reader{
		opts: opts,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start initializes hidapi and launches the read loop.
func (r *Reader) Start() error {
	if err := hid.Init(); err != nil {
		return err
	}
	r.running.Store(true)
	go r.run()
	return nil
}

// Stop ends the read loop and tears down hidapi. Safe to call when Start
// failed or was never called.
func (r *Reader) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	if !r.running.Load() {
		return
	}
	<-r.done
	hid.Exit()
}

func (r *Reader) run() {
	defer close(r.done)

	for {
		dev, err := r.open()
		if err != nil {
			r.opts.Logger.Debug("Keyboard vendor interface not available",
				"error", err)
			select {
			case <-r.stop:
				return
			case <-time.After(reconnectDelay):
				continue
			}
		}

		r.opts.Logger.Info("Keyboard vendor interface opened")
		r.readLoop(dev)
		dev.Close()

		select {
		case <-r.stop:
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// open enumerates HID devices and opens the vendor usage-page interface of
// the configured keyboard.
func (r *Reader) open() (*hid.Device, error) {
	var path string
	_ = hid.Enumerate(r.opts.VendorID, r.opts.ProductID, func(info *hid.DeviceInfo) error {
		if info.UsagePage == r.opts.UsagePage {
			path = info.Path
		}
		return nil
	})
	if path == "" {
		return nil, errors.New("vendor interface not found")
	}
	return hid.OpenPath(path)
}

// readLoop reads reports until the device errors out or Stop is called.
func (r *Reader) readLoop(dev *hid.Device) {
	buf := make([]byte, 65)
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		n, err := dev.ReadWithTimeout(buf, 500*time.Millisecond)
		if err != nil {
			r.opts.Logger.Warn("Keyboard read failed, reconnecting", "error", err)
			return
		}
		if n == 0 {
			continue
		}

		r.handleReport(buf[:n])
	}
}

// handleReport decodes one report and publishes the resulting events.
// Short or unknown reports are dropped.
func (r *Reader) handleReport(data []byte) {
	now := time.Now().UTC().Format(time.RFC3339)

	if status, ok := parseStatus(data); ok {
		if !r.haveStatus || status.Indicators != r.lastIndicators {
			r.opts.EventBus.Publish(events.IndicatorsChangedEvent{
				Indicators: status.Indicators,
				Timestamp:  now,
			})
		}
		if !r.haveStatus || status.Battery != r.lastBattery {
			r.opts.EventBus.Publish(events.BatteryStateChangedEvent{
				StateOfCharge: status.Battery,
				Charging:      status.Charging,
				Timestamp:     now,
			})
		}
		r.lastIndicators = status.Indicators
		r.lastBattery = status.Battery
		r.haveStatus = true
		return
	}

	if keycode, pressed, ok := parseKeycode(data); ok {
		r.opts.EventBus.Publish(events.KeycodeStateChangedEvent{
			Keycode:   keycode,
			Pressed:   pressed,
			Timestamp: now,
		})
	}
}
