package profiles

import (
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	busName     = "org.bluez"
	adapterPath = "/org/bluez/hci0"
	deviceIface = "org.bluez.Device1"
	propsIface  = "org.freedesktop.DBus.Properties"
	propsSignal = "org.freedesktop.DBus.Properties.PropertiesChanged"
)

// deviceObjectPath converts a MAC address like "AA:BB:CC:DD:EE:FF" to
// "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF".
func deviceObjectPath(addr string) dbus.ObjectPath {
	escaped := strings.ReplaceAll(addr, ":", "_")
	return dbus.ObjectPath(adapterPath + "/dev_" + escaped)
}

// macFromPath extracts a MAC address from a BlueZ device object path.
func macFromPath(path dbus.ObjectPath) string {
	s := string(path)
	prefix := adapterPath + "/dev_"
	if !strings.HasPrefix(s, prefix) {
		return ""
	}
	return strings.ReplaceAll(s[len(prefix):], "_", ":")
}

// connectedFromSignal extracts the new Connected value from a BlueZ
// PropertiesChanged signal. The second return is false when the signal is
// not a Device1 Connected change.
func connectedFromSignal(sig *dbus.Signal) (bool, bool) {
	if sig.Name != propsSignal || len(sig.Body) < 2 {
		return false, false
	}
	iface, ok := sig.Body[0].(string)
	if !ok || iface != deviceIface {
		return false, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return false, false
	}
	connVar, ok := changed["Connected"]
	if !ok {
		return false, false
	}
	connected, ok := connVar.Value().(bool)
	if !ok {
		return false, false
	}
	return connected, true
}
