package indicator

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// TickInterval is the scheduler period. All pattern timing is expressed in
// ticks of this length.
const TickInterval = 20 * time.Millisecond

// DefaultLowBatteryPercent is the battery level below which the warning
// pattern kicks in.
const DefaultLowBatteryPercent uint8 = 10

// ColorSink receives the computed color mask whenever the pattern engine
// renders. led.Driver satisfies this.
type ColorSink interface {
	SetColor(bits uint8) error
}

// ProfileSource exposes the Bluetooth profile accessors the scheduler needs
// when rendering the pairing pattern.
type ProfileSource interface {
	// ActiveIndex returns the active profile slot (0-3).
	ActiveIndex() uint8
	// Connected reports whether the active slot's device is connected.
	Connected() bool
	// Address returns the stored address of the active slot, empty when
	// the slot holds no pairing.
	Address() string
}

// Scheduler is the periodic pattern engine. Every tick it reads the shared
// state and a free-running step counter and pushes the resulting color mask
// to the sink. Pattern priority: connection flashes, queued blink requests,
// low-battery warning, caps lock.
type Scheduler struct {
	state    *State
	sink     ColorSink
	profiles ProfileSource
	queue    *Queue
	logger   *slog.Logger

	interval   time.Duration
	lowBattery atomic.Uint32

	step uint16
	play *playback

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a pattern scheduler. profiles may be nil, in which
// case the pairing pattern treats the active slot as unpaired.
func NewScheduler(state *State, sink ColorSink, profiles ProfileSource, queue *Queue, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		state:    state,
		sink:     sink,
		profiles: profiles,
		queue:    queue,
		logger:   logger,
		interval: TickInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.lowBattery.Store(uint32(DefaultLowBatteryPercent))
	return s
}

// SetLowBatteryThreshold changes the low-battery warning level at runtime.
func (s *Scheduler) SetLowBatteryThreshold(percent uint8) {
	s.lowBattery.Store(uint32(percent))
}

// Run drives the tick loop until Stop is called or the scheduler halts
// itself. Meant to be called on its own goroutine.
func (s *Scheduler) Run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.Tick() {
				return
			}
		}
	}
}

// Stop terminates the tick loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Done is closed when the tick loop has exited, whether stopped or halted.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Tick advances the pattern engine by one step. It returns false when the
// scheduler must halt permanently: a pending or connected state on slot 3,
// which has no entry in the color table.
func (s *Scheduler) Tick() bool {
	s.step++

	s.state.mu.Lock()
	conn := s.state.connection
	active := s.state.activeDevice
	battery := s.state.battery
	keylock := s.state.keylock

	if conn > ConnIdle {
		if active >= uint8(len(profileColors)) {
			s.state.mu.Unlock()
			s.logger.Warn("Active slot has no pattern color, halting scheduler",
				"slot", active)
			return false
		}

		if s.step&0xf != 0xf {
			s.state.mu.Unlock()
			return true
		}

		// flashTimes wraps on decrement from 0; a profile change that
		// never armed it still flashes a full uint8 worth of cycles.
		s.state.flashTimes--
		if s.state.flashTimes == 0 {
			s.state.connection = ConnIdle
		}
		s.state.mu.Unlock()

		switch (s.step >> 4) & 0x3 {
		case 0:
			s.apply(colorOff)
		case 1:
			s.apply(profileColors[active])
		case 2:
			if conn != ConnConnected {
				s.apply(colorOff)
			}
		case 3:
			if conn != ConnConnected {
				if s.profiles == nil || s.profiles.Address() == "" {
					s.apply(colorRed)
				} else {
					s.apply(colorBlue)
				}
			}
		}
		return true
	}
	s.state.mu.Unlock()

	if s.tickQueued() {
		return true
	}

	if battery < uint8(s.lowBattery.Load()) {
		switch s.step & 0x1f {
		case 0xf:
			s.apply(colorRed)
		case 0x1f:
			s.apply(colorOff)
		}
		return true
	}

	if keylock&CapsLockBit != 0 {
		s.apply(colorCaps)
	} else {
		s.apply(colorOff)
	}
	return true
}

// apply pushes a color mask to the sink. Sink errors are logged, never
// fatal: a failed LED write must not stop the pattern engine.
func (s *Scheduler) apply(bits uint8) {
	if err := s.sink.SetColor(bits); err != nil {
		s.logger.Warn("Failed to apply indicator color", "bits", bits, "error", err)
	}
}

// playback tracks progress through one dequeued BlinkItem.
type playback struct {
	onTicks  uint16
	offTicks uint16

	remaining uint8
	on        bool
	left      uint16
}

func newPlayback(item BlinkItem, interval time.Duration) *playback {
	on := uint16(item.Duration / interval)
	if on == 0 {
		on = 1
	}
	off := uint16(item.Sleep / interval)
	if off == 0 {
		off = 1
	}
	return &playback{
		onTicks:   on,
		offTicks:  off,
		remaining: item.Count,
		on:        true,
		left:      on,
	}
}

// tickQueued renders queued blink requests. It reports whether it consumed
// the tick; false lets the idle patterns render instead.
func (s *Scheduler) tickQueued() bool {
	if s.play == nil {
		if s.queue == nil {
			return false
		}
		item, ok := s.queue.tryDequeue()
		if !ok || item.Count == 0 {
			return false
		}
		s.play = newPlayback(item, s.interval)
	}

	if s.play.on {
		s.apply(colorWhite)
	} else {
		s.apply(colorOff)
	}

	s.play.left--
	if s.play.left > 0 {
		return true
	}

	if s.play.on {
		s.play.on = false
		s.play.left = s.play.offTicks
		return true
	}

	s.play.remaining--
	if s.play.remaining == 0 {
		s.play = nil
		s.apply(colorOff)
		return true
	}

	s.play.on = true
	s.play.left = s.play.onTicks
	return true
}
