package indicator

import (
	"log/slog"

	"github.com/klinkhq/keyled/internal/events"
)

// Options configures the indicator manager.
type Options struct {
	Sink     ColorSink
	Profiles ProfileSource
	EventBus *events.Bus
	Logger   *slog.Logger

	// BatteryAlerts gates the battery listener, mirroring the keyboard
	// firmware's battery-reporting build option.
	BatteryAlerts       bool
	LowBatteryThreshold uint8
}

// Manager owns the indicator state and ties the event handlers to the
// pattern scheduler. Handlers are pure state updates; the scheduler does
// all rendering.
type Manager struct {
	state     *State
	queue     *Queue
	scheduler *Scheduler
	eventBus  *events.Bus
	profiles  ProfileSource
	logger    *slog.Logger

	batteryAlerts bool
	unsubscribes  []func()
}

// NewManager creates an indicator manager. The state starts zeroed; Start
// seeds the boot pattern.
func NewManager(opts *Options) *Manager {
	state := NewState()
	queue := NewQueue()

	scheduler := NewScheduler(state, opts.Sink, opts.Profiles, queue, opts.Logger)
	if opts.LowBatteryThreshold > 0 {
		scheduler.SetLowBatteryThreshold(opts.LowBatteryThreshold)
	}

	return &Manager{
		state:         state,
		queue:         queue,
		scheduler:     scheduler,
		eventBus:      opts.EventBus,
		profiles:      opts.Profiles,
		logger:        opts.Logger,
		batteryAlerts: opts.BatteryAlerts,
	}
}

// Start subscribes the event handlers, seeds the boot pattern and launches
// the scheduler goroutine.
func (m *Manager) Start() {
	m.unsubscribes = append(m.unsubscribes,
		m.eventBus.Subscribe(func(e events.IndicatorsChangedEvent) {
			m.handleIndicators(e)
		}),
		m.eventBus.Subscribe(func(e events.ProfileChangedEvent) {
			m.handleProfile(e)
		}),
		m.eventBus.Subscribe(func(e events.KeycodeStateChangedEvent) {
			m.handleKeycode(e)
		}),
	)

	if m.batteryAlerts {
		m.unsubscribes = append(m.unsubscribes,
			m.eventBus.Subscribe(func(e events.BatteryStateChangedEvent) {
				m.handleBattery(e)
			}),
		)
	}

	m.state.seedBoot()
	go m.scheduler.Run()
	m.logger.Info("Indicator manager started")
}

// Stop unsubscribes the handlers and terminates the scheduler.
func (m *Manager) Stop() {
	for _, unsub := range m.unsubscribes {
		unsub()
	}
	m.unsubscribes = nil
	m.scheduler.Stop()
	m.logger.Info("Indicator manager stopped")
}

// State returns a snapshot of the indicator state.
func (m *Manager) State() Snapshot {
	return m.state.Get()
}

// Identify enqueues a blink request for the scheduler to play.
func (m *Manager) Identify(item BlinkItem) error {
	return m.queue.Enqueue(item)
}

// QueueLen returns the number of pending blink requests.
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

// SetLowBatteryThreshold forwards a config change to the scheduler.
func (m *Manager) SetLowBatteryThreshold(percent uint8) {
	m.scheduler.SetLowBatteryThreshold(percent)
}

// SchedulerDone is closed when the scheduler loop has exited.
func (m *Manager) SchedulerDone() <-chan struct{} {
	return m.scheduler.Done()
}

func (m *Manager) handleIndicators(e events.IndicatorsChangedEvent) {
	m.logger.Debug("Lock indicators changed", "indicators", e.Indicators)
	m.state.SetKeylock(e.Indicators)
}

func (m *Manager) handleProfile(e events.ProfileChangedEvent) {
	m.logger.Debug("Active profile changed",
		"slot", e.Index, "connected", e.Connected)
	m.state.SetProfile(e.Index, e.Connected)
}

// handleKeycode re-runs the profile update from the live accessors when the
// pairing trigger key is pressed; other keycodes are no-ops.
func (m *Manager) handleKeycode(e events.KeycodeStateChangedEvent) {
	if e.Keycode != PairTriggerKeycode || !e.Pressed {
		return
	}
	m.logger.Debug("Pairing trigger key pressed")
	if m.profiles == nil {
		return
	}
	m.state.SetProfile(m.profiles.ActiveIndex(), m.profiles.Connected())
}

func (m *Manager) handleBattery(e events.BatteryStateChangedEvent) {
	m.state.SetBattery(e.StateOfCharge)
}
