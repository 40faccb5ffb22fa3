package indicator

import (
	"testing"
	"time"

	"github.com/klinkhq/keyled/internal/events"
)

func newTestManager(profiles ProfileSource, batteryAlerts bool) (*Manager, *events.Bus) {
	bus := events.New()
	mgr := NewManager(&Options{
		Sink:          &fakeSink{},
		Profiles:      profiles,
		EventBus:      bus,
		Logger:        testLogger(),
		BatteryAlerts: batteryAlerts,
	})
	return mgr, bus
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestManager_BootSeed(t *testing.T) {
	mgr, _ := newTestManager(&fakeProfiles{}, true)
	mgr.Start()
	defer mgr.Stop()

	snap := mgr.State()
	if snap.Connection != ConnPending {
		t.Errorf("Connection = %d at boot, want ConnPending", snap.Connection)
	}
	if snap.Battery != bootBattery {
		t.Errorf("Battery = %d at boot, want %d", snap.Battery, bootBattery)
	}
}

func TestManager_IndicatorsEvent(t *testing.T) {
	mgr, bus := newTestManager(&fakeProfiles{}, true)
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(events.IndicatorsChangedEvent{Indicators: CapsLockBit | NumLockBit})

	waitFor(t, func() bool {
		return mgr.State().Keylock == CapsLockBit|NumLockBit
	}, "keylock bits not applied from indicators event")
}

func TestManager_ProfileEvent(t *testing.T) {
	mgr, bus := newTestManager(&fakeProfiles{}, true)
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(events.ProfileChangedEvent{Index: 2, Connected: true})

	waitFor(t, func() bool {
		snap := mgr.State()
		return snap.ActiveDevice == 2 && snap.Connection == ConnConnected
	}, "profile event not applied")
}

func TestManager_ProfileEventOutOfRange(t *testing.T) {
	mgr, bus := newTestManager(&fakeProfiles{}, true)
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(events.ProfileChangedEvent{Index: 1, Connected: true})
	waitFor(t, func() bool {
		return mgr.State().ActiveDevice == 1
	}, "valid profile event not applied")

	// Out-of-range slot must be a no-op
	bus.Publish(events.ProfileChangedEvent{Index: 7, Connected: false})
	time.Sleep(100 * time.Millisecond)

	if got := mgr.State().ActiveDevice; got != 1 {
		t.Errorf("ActiveDevice = %d after out-of-range event, want 1", got)
	}
}

func TestManager_PairTriggerKeycode(t *testing.T) {
	profiles := &fakeProfiles{index: 1, connected: false, address: "AA:BB:CC:DD:EE:FF"}
	mgr, bus := newTestManager(profiles, true)
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(events.KeycodeStateChangedEvent{Keycode: PairTriggerKeycode, Pressed: true})

	waitFor(t, func() bool {
		snap := mgr.State()
		return snap.ActiveDevice == 1 && snap.Connection == ConnPending
	}, "pairing trigger did not re-run the profile update")
}

func TestManager_OtherKeycodesIgnored(t *testing.T) {
	mgr, bus := newTestManager(&fakeProfiles{index: 2, connected: true}, true)
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(events.KeycodeStateChangedEvent{Keycode: 0x04, Pressed: true})
	bus.Publish(events.KeycodeStateChangedEvent{Keycode: PairTriggerKeycode, Pressed: false})
	time.Sleep(100 * time.Millisecond)

	if got := mgr.State().ActiveDevice; got != 0 {
		t.Errorf("ActiveDevice = %d, want 0 (no trigger should have fired)", got)
	}
}

func TestManager_BatteryEvent(t *testing.T) {
	mgr, bus := newTestManager(&fakeProfiles{}, true)
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(events.BatteryStateChangedEvent{StateOfCharge: 42})

	waitFor(t, func() bool {
		return mgr.State().Battery == 42
	}, "battery event not applied")
}

func TestManager_BatteryEventsGated(t *testing.T) {
	mgr, bus := newTestManager(&fakeProfiles{}, false)
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(events.BatteryStateChangedEvent{StateOfCharge: 42})
	time.Sleep(100 * time.Millisecond)

	if got := mgr.State().Battery; got != bootBattery {
		t.Errorf("Battery = %d with alerts disabled, want boot seed %d", got, bootBattery)
	}
}

func TestManager_Identify(t *testing.T) {
	mgr, _ := newTestManager(&fakeProfiles{}, true)

	if err := mgr.Identify(BlinkItem{Duration: 100 * time.Millisecond, Sleep: 100 * time.Millisecond, Count: 2}); err != nil {
		t.Errorf("Identify() returned error: %v", err)
	}
	if mgr.queue.Len() != 1 {
		t.Errorf("Queue length = %d, want 1", mgr.queue.Len())
	}
}
