package led

import (
	"testing"
)

func TestNoopController(t *testing.T) {
	ctrl := newNoop(testLogger())

	// Should return no errors
	if err := ctrl.Set(ChannelRed, true); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}

	// Should return an empty list
	if names := ctrl.Available(); len(names) != 0 {
		t.Errorf("Available() = %v, want empty slice", names)
	}
}

func TestFactory_MissingLEDsFallBackToNoop(t *testing.T) {
	ctrl := New([NumChannels]string{
		"keyled-test-nonexistent:red:indicator",
		"keyled-test-nonexistent:green:indicator",
		"keyled-test-nonexistent:blue:indicator",
	}, testLogger())

	if _, ok := ctrl.(*noop); !ok {
		t.Errorf("Expected noop controller for missing LEDs, got %T", ctrl)
	}
}

func TestSysfs_ChannelRange(t *testing.T) {
	s := &sysfs{names: [NumChannels]string{"r", "g", "b"}}

	if err := s.Set(-1, true); err == nil {
		t.Error("Set(-1) should fail")
	}
	if err := s.Set(NumChannels, true); err == nil {
		t.Errorf("Set(%d) should fail", NumChannels)
	}
}

func TestSysfs_Available(t *testing.T) {
	s := &sysfs{names: [NumChannels]string{
		"klink:red:indicator",
		"klink:green:indicator",
		"klink:blue:indicator",
	}}

	names := s.Available()
	if len(names) != NumChannels {
		t.Fatalf("Available() returned %d names, want %d", len(names), NumChannels)
	}
	if names[ChannelGreen] != "klink:green:indicator" {
		t.Errorf("Available()[green] = %q", names[ChannelGreen])
	}
}
