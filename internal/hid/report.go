package hid

import "encoding/binary"

// Vendor report IDs.
const (
	reportIDStatus  byte = 0x05
	reportIDKeycode byte = 0x06
)

// chargingFlag marks the battery as charging in a status report.
const chargingFlag byte = 0x01

// statusReport is a decoded 0x05 report: indicator bitmask, battery
// percentage and a flags byte.
type statusReport struct {
	Indicators uint8
	Battery    uint8
	Charging   bool
}

// parseStatus decodes a status report. Layout: [id, indicators, battery,
// flags]. Battery values above 100 are clamped.
func parseStatus(data []byte) (statusReport, bool) {
	if len(data) < 4 || data[0] != reportIDStatus {
		return statusReport{}, false
	}

	battery := data[2]
	if battery > 100 {
		battery = 100
	}

	return statusReport{
		Indicators: data[1],
		Battery:    battery,
		Charging:   data[3]&chargingFlag != 0,
	}, true
}

// parseKeycode decodes a keycode report. Layout: [id, keycode_lo,
// keycode_hi, pressed].
func parseKeycode(data []byte) (uint16, bool, bool) {
	if len(data) < 4 || data[0] != reportIDKeycode {
		return 0, false, false
	}
	return binary.LittleEndian.Uint16(data[1:3]), data[3] != 0, true
}
