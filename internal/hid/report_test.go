package hid

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/klinkhq/keyled/internal/events"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		want   statusReport
		wantOK bool
	}{
		{
			name:   "caps lock with battery",
			data:   []byte{0x05, 0b010, 87, 0x00},
			want:   statusReport{Indicators: 0b010, Battery: 87},
			wantOK: true,
		},
		{
			name:   "charging flag",
			data:   []byte{0x05, 0x00, 50, 0x01},
			want:   statusReport{Battery: 50, Charging: true},
			wantOK: true,
		},
		{
			name:   "battery clamped to 100",
			data:   []byte{0x05, 0x00, 130, 0x00},
			want:   statusReport{Battery: 100},
			wantOK: true,
		},
		{
			name:   "wrong report id",
			data:   []byte{0x06, 0x00, 50, 0x00},
			wantOK: false,
		},
		{
			name:   "short report",
			data:   []byte{0x05, 0x01},
			wantOK: false,
		},
		{
			name:   "empty",
			data:   nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseStatus(tt.data)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseStatus() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseKeycode(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantKeycode uint16
		wantPressed bool
		wantOK      bool
	}{
		{
			name:        "pair trigger pressed",
			data:        []byte{0x06, 0xAB, 0x00, 0x01},
			wantKeycode: 0xAB,
			wantPressed: true,
			wantOK:      true,
		},
		{
			name:        "release",
			data:        []byte{0x06, 0xAB, 0x00, 0x00},
			wantKeycode: 0xAB,
			wantPressed: false,
			wantOK:      true,
		},
		{
			name:        "sixteen bit keycode",
			data:        []byte{0x06, 0x34, 0x12, 0x01},
			wantKeycode: 0x1234,
			wantPressed: true,
			wantOK:      true,
		},
		{
			name:   "wrong report id",
			data:   []byte{0x05, 0xAB, 0x00, 0x01},
			wantOK: false,
		},
		{
			name:   "short report",
			data:   []byte{0x06, 0xAB},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keycode, pressed, ok := parseKeycode(tt.data)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if keycode != tt.wantKeycode {
				t.Errorf("keycode = %#x, want %#x", keycode, tt.wantKeycode)
			}
			if pressed != tt.wantPressed {
				t.Errorf("pressed = %v, want %v", pressed, tt.wantPressed)
			}
		})
	}
}

func newTestReader(bus *events.Bus) *Reader {
	return NewReader(&Options{
		EventBus: bus,
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
}

func TestHandleReport_PublishesOnChange(t *testing.T) {
	bus := events.New()
	indicators := make(chan events.IndicatorsChangedEvent, 4)
	battery := make(chan events.BatteryStateChangedEvent, 4)
	unsub1 := bus.Subscribe(func(e events.IndicatorsChangedEvent) { indicators <- e })
	defer unsub1()
	unsub2 := bus.Subscribe(func(e events.BatteryStateChangedEvent) { battery <- e })
	defer unsub2()

	r := newTestReader(bus)

	// First status report publishes both events
	r.handleReport([]byte{0x05, 0b010, 90, 0x00})
	select {
	case e := <-indicators:
		if e.Indicators != 0b010 {
			t.Errorf("Indicators = %#b", e.Indicators)
		}
	case <-time.After(time.Second):
		t.Fatal("No indicators event for first report")
	}
	select {
	case e := <-battery:
		if e.StateOfCharge != 90 {
			t.Errorf("StateOfCharge = %d", e.StateOfCharge)
		}
	case <-time.After(time.Second):
		t.Fatal("No battery event for first report")
	}

	// Identical report publishes nothing
	r.handleReport([]byte{0x05, 0b010, 90, 0x00})
	select {
	case e := <-indicators:
		t.Fatalf("Unexpected indicators event for unchanged report: %+v", e)
	case e := <-battery:
		t.Fatalf("Unexpected battery event for unchanged report: %+v", e)
	case <-time.After(50 * time.Millisecond):
		// Expected
	}

	// Battery drop publishes only a battery event
	r.handleReport([]byte{0x05, 0b010, 89, 0x00})
	select {
	case e := <-battery:
		if e.StateOfCharge != 89 {
			t.Errorf("StateOfCharge = %d", e.StateOfCharge)
		}
	case <-time.After(time.Second):
		t.Fatal("No battery event for changed level")
	}
	select {
	case e := <-indicators:
		t.Fatalf("Unexpected indicators event: %+v", e)
	case <-time.After(50 * time.Millisecond):
		// Expected
	}
}

func TestHandleReport_Keycode(t *testing.T) {
	bus := events.New()
	keycodes := make(chan events.KeycodeStateChangedEvent, 1)
	unsub := bus.Subscribe(func(e events.KeycodeStateChangedEvent) { keycodes <- e })
	defer unsub()

	r := newTestReader(bus)
	r.handleReport([]byte{0x06, 0xAB, 0x00, 0x01})

	select {
	case e := <-keycodes:
		if e.Keycode != 0xAB || !e.Pressed {
			t.Errorf("Event = %+v, want keycode 0xAB pressed", e)
		}
	case <-time.After(time.Second):
		t.Fatal("No keycode event published")
	}
}

func TestHandleReport_DropsUnknown(t *testing.T) {
	bus := events.New()
	keycodes := make(chan events.KeycodeStateChangedEvent, 1)
	unsub := bus.Subscribe(func(e events.KeycodeStateChangedEvent) { keycodes <- e })
	defer unsub()

	r := newTestReader(bus)
	r.handleReport([]byte{0x07, 0x01, 0x02, 0x03})
	r.handleReport([]byte{0x06})
	r.handleReport(nil)

	select {
	case e := <-keycodes:
		t.Fatalf("Unexpected event for malformed report: %+v", e)
	case <-time.After(50 * time.Millisecond):
		// Expected
	}
}
