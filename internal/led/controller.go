package led

// Channel indices of the discrete LEDs that make up the status indicator.
// Color bitmasks use the same ordering: bit 0 red, bit 1 green, bit 2 blue.
const (
	ChannelRed = iota
	ChannelGreen
	ChannelBlue

	NumChannels
)

// Controller abstracts the three discrete LED outputs behind the status
// indicator. Implementations handle the actual hardware interface.
type Controller interface {
	// Set switches a single LED channel on or off.
	Set(channel int, on bool) error

	// Available returns the backing LED names, indexed by channel.
	// An empty slice means no LED hardware is present.
	Available() []string
}
