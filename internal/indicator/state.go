package indicator

import "sync"

// Lock indicator bits reported over HID.
const (
	NumLockBit    uint8 = 1 << 0
	CapsLockBit   uint8 = 1 << 1
	ScrollLockBit uint8 = 1 << 2
)

// Connection states of the active profile slot.
const (
	ConnIdle uint8 = iota
	ConnPending
	ConnConnected
)

// Color bitmasks (bit 0 red, bit 1 green, bit 2 blue).
const (
	colorOff   uint8 = 0b000
	colorRed   uint8 = 0b001
	colorBlue  uint8 = 0b100
	colorCaps  uint8 = 0b101
	colorWhite uint8 = 0b111
)

// profileColors is the per-slot blink color table. Three entries for a
// four-slot design: a scheduler that sees slot 3 while a connection pattern
// is pending halts instead of indexing past the table.
var profileColors = [3]uint8{0b011, 0b110, 0b101}

// Flash repetition counts seeded on a profile change. Four flash ticks per
// full pattern cycle, so these are 3 and 15 cycles respectively.
const (
	connectedFlashes uint8 = 3 * 4
	pendingFlashes   uint8 = 15 * 4
)

// maxProfileIndex is the highest valid profile slot.
const maxProfileIndex uint8 = 3

// PairTriggerKeycode re-runs the profile update when pressed.
const PairTriggerKeycode uint16 = 0xAB

// bootBattery is the battery seed applied before the first real report so
// the low-battery pattern stays off until the keyboard reports a level.
const bootBattery uint8 = 111

// State is the shared indicator record. A single instance is owned by the
// Manager; event handlers and the scheduler go through the mutex. Writers
// per field: keylock - HID handler, battery - battery handler, connection
// and flashTimes - profile handler and scheduler, activeDevice - profile
// handler only.
type State struct {
	mu           sync.Mutex
	keylock      uint8
	connection   uint8
	activeDevice uint8
	battery      uint8
	flashTimes   uint8
}

// Snapshot is a point-in-time copy of the indicator state.
type Snapshot struct {
	Keylock      uint8 `json:"keylock" doc:"Lock indicator bitmask"`
	Connection   uint8 `json:"connection" doc:"0 idle, 1 pending, 2 connected"`
	ActiveDevice uint8 `json:"active_device" doc:"Active profile slot (0-3)"`
	Battery      uint8 `json:"battery" doc:"Battery percentage"`
	FlashTimes   uint8 `json:"flash_times" doc:"Blink repetitions remaining"`
}

// NewState creates an indicator state record.
func NewState() *State {
	return &State{}
}

// SetKeylock stores the HID lock indicator bitmask.
func (s *State) SetKeylock(bits uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keylock = bits
}

// SetBattery stores the reported battery percentage.
func (s *State) SetBattery(percent uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery = percent
}

// SetProfile records an active profile change and arms the blink pattern.
// Slot indexes above 3 are ignored, keeping activeDevice in [0,3].
func (s *State) SetProfile(index uint8, connected bool) {
	if index > maxProfileIndex {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeDevice = index
	if connected {
		s.connection = ConnConnected
		s.flashTimes = connectedFlashes
	} else {
		s.connection = ConnPending
		s.flashTimes = pendingFlashes
	}
}

// Get returns a snapshot of the current state.
func (s *State) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Keylock:      s.keylock,
		Connection:   s.connection,
		ActiveDevice: s.activeDevice,
		Battery:      s.battery,
		FlashTimes:   s.flashTimes,
	}
}

// seedBoot arms the boot pattern the way the keyboard firmware does:
// pending connection with the battery held above any alert threshold.
func (s *State) seedBoot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connection = ConnPending
	s.battery = bootBattery
}
