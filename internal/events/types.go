package events

// Event type constants for kelindar/event.
const (
	TypeProfileChanged uint32 = iota + 1
	TypeIndicatorsChanged
	TypeBatteryStateChanged
	TypeKeycodeStateChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProfileChangedEvent is published when the active Bluetooth profile slot
// changes or its connection state flips.
type ProfileChangedEvent struct {
	Index     uint8  `json:"index" example:"0" doc:"Active profile slot (0-3)"`
	Connected bool   `json:"connected" example:"true" doc:"Whether the slot's device is connected"`
	Address   string `json:"address,omitempty" example:"AA:BB:CC:DD:EE:FF" doc:"Stored device address, empty for an open slot"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProfileChangedEvent.
func (e ProfileChangedEvent) Type() uint32 { return TypeProfileChanged }

// IndicatorsChangedEvent carries the HID lock-key indicator bitmask
// (num lock, caps lock, scroll lock) reported by the keyboard.
type IndicatorsChangedEvent struct {
	Indicators uint8  `json:"indicators" example:"2" doc:"Lock indicator bitmask: bit0 num, bit1 caps, bit2 scroll"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for IndicatorsChangedEvent.
func (e IndicatorsChangedEvent) Type() uint32 { return TypeIndicatorsChanged }

// BatteryStateChangedEvent is published when the keyboard reports a new
// battery state of charge.
type BatteryStateChangedEvent struct {
	StateOfCharge uint8  `json:"state_of_charge" example:"87" doc:"Battery percentage"`
	Charging      bool   `json:"charging" example:"false" doc:"Whether the battery is charging"`
	Timestamp     string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BatteryStateChangedEvent.
func (e BatteryStateChangedEvent) Type() uint32 { return TypeBatteryStateChanged }

// KeycodeStateChangedEvent is published for keycodes the keyboard reports
// on its vendor interface.
type KeycodeStateChangedEvent struct {
	Keycode   uint16 `json:"keycode" example:"171" doc:"HID keycode"`
	Pressed   bool   `json:"pressed" example:"true" doc:"True on press, false on release"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for KeycodeStateChangedEvent.
func (e KeycodeStateChangedEvent) Type() uint32 { return TypeKeycodeStateChanged }
