// Package profiles tracks the keyboard's Bluetooth pairing slots through
// BlueZ. A slot maps to a stored device address; the tracker watches
// Connected property changes on the system bus and publishes profile
// events for the indicator.
package profiles

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/klinkhq/keyled/internal/events"
)

// MaxSlots is the number of pairing slots the keyboard stores.
const MaxSlots = 4

// Tracker mirrors the keyboard's profile slot table on the host side and
// answers the accessor queries the scheduler makes. It implements
// indicator.ProfileSource.
type Tracker struct {
	eventBus *events.Bus
	logger   *slog.Logger

	mu        sync.RWMutex
	slots     [MaxSlots]string // stored MAC per slot, "" = open
	active    uint8
	connected bool

	conn    *dbus.Conn
	signals chan *dbus.Signal

	watching atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a tracker over the configured slot addresses. Start must be
// called to connect to the system bus.
func New(slots [MaxSlots]string, active uint8, eventBus *events.Bus, logger *slog.Logger) *Tracker {
	if active >= MaxSlots {
		active = 0
	}
	return &Tracker{
		eventBus: eventBus,
		logger:   logger,
		slots:    slots,
		active:   active,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start connects to the system bus, checks that BlueZ is present and
// begins watching Connected property changes under /org/bluez.
func (t *Tracker) Start() error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}

	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return fmt.Errorf("list bus names: %w", err)
	}
	found := false
	for _, n := range names {
		if n == busName {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("org.bluez not found on system bus, is bluetooth.service running?")
	}

	if err := conn.BusObject().Call(
		"org.freedesktop.DBus.AddMatch", 0,
		"type='signal',interface='"+propsIface+"',member='PropertiesChanged',path_namespace='/org/bluez'",
	).Err; err != nil {
		return fmt.Errorf("add signal match: %w", err)
	}

	t.conn = conn
	t.signals = make(chan *dbus.Signal, 16)
	conn.Signal(t.signals)

	t.seedActiveState()

	t.watching.Store(true)
	go t.watch()
	t.logger.Info("Profile tracker started", "active_slot", t.ActiveIndex())
	return nil
}

// Stop ends signal watching and closes the bus connection. Safe to call
// when Start failed or was never called.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	if !t.watching.Load() {
		return
	}
	<-t.done
	if t.conn != nil {
		t.conn.RemoveSignal(t.signals)
		t.conn.Close()
	}
}

// ActiveIndex returns the active profile slot.
func (t *Tracker) ActiveIndex() uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// Connected reports whether the active slot's device is connected.
func (t *Tracker) Connected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// Address returns the stored address of the active slot, empty for an
// open slot.
func (t *Tracker) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.slots[t.active]
}

// UpdateSlots replaces the slot table on a config reload. The connection
// flag is kept only if the active slot still stores the same address.
func (t *Tracker) UpdateSlots(slots [MaxSlots]string) {
	t.mu.Lock()
	if slots[t.active] != t.slots[t.active] {
		t.connected = false
	}
	t.slots = slots
	t.mu.Unlock()
	t.logger.Info("Profile slots updated")
}

// seedActiveState queries the current Connected property of the active
// slot's device so the first published event reflects reality.
func (t *Tracker) seedActiveState() {
	addr := t.Address()
	if addr == "" {
		return
	}

	obj := t.conn.Object(busName, deviceObjectPath(addr))
	var v dbus.Variant
	if err := obj.Call(propsIface+".Get", 0, deviceIface, "Connected").Store(&v); err != nil {
		t.logger.Debug("Active slot device not known to BlueZ yet",
			"address", addr, "error", err)
		return
	}
	connected, ok := v.Value().(bool)
	if !ok {
		return
	}

	t.mu.Lock()
	t.connected = connected
	t.mu.Unlock()
	t.publishActive()
}

// watch consumes BlueZ property change signals until stopped.
func (t *Tracker) watch() {
	defer close(t.done)

	for {
		select {
		case <-t.stop:
			return
		case sig, ok := <-t.signals:
			if !ok {
				return
			}
			connected, ok := connectedFromSignal(sig)
			if !ok {
				continue
			}
			mac := macFromPath(sig.Path)
			if mac == "" {
				continue
			}
			t.handleConnectedChange(mac, connected)
		}
	}
}

// handleConnectedChange applies one observed Connected flip. A tracked
// device connecting becomes the active slot; the active device dropping
// puts the slot back into pending. Untracked devices are ignored.
func (t *Tracker) handleConnectedChange(mac string, connected bool) {
	slot, ok := t.slotForAddress(mac)
	if !ok {
		return
	}

	t.mu.Lock()
	if connected {
		t.active = slot
		t.connected = true
	} else {
		if slot != t.active {
			t.mu.Unlock()
			return
		}
		t.connected = false
	}
	t.mu.Unlock()

	t.logger.Debug("Profile connection changed",
		"slot", slot, "address", mac, "connected", connected)
	t.publishActive()
}

// slotForAddress finds the slot storing the given address.
func (t *Tracker) slotForAddress(mac string) (uint8, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, addr := range t.slots {
		if addr != "" && addr == mac {
			return uint8(i), true
		}
	}
	return 0, false
}

// publishActive emits the current active slot state on the event bus.
func (t *Tracker) publishActive() {
	t.mu.RLock()
	ev := events.ProfileChangedEvent{
		Index:     t.active,
		Connected: t.connected,
		Address:   t.slots[t.active],
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	t.mu.RUnlock()
	t.eventBus.Publish(ev)
}
