package led

import (
	"errors"
	"log/slog"
	"os"
	"testing"
)

// recordController records every Set call for write-count assertions
type recordController struct {
	calls []setCall
	fail  bool
}

type setCall struct {
	channel int
	on      bool
}

func (r *recordController) Set(channel int, on bool) error {
	if r.fail {
		return errors.New("hardware write failed")
	}
	r.calls = append(r.calls, setCall{channel, on})
	return nil
}

func (r *recordController) Available() []string {
	return []string{"red", "green", "blue"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestDriver_FirstWriteAppliesAllChannels(t *testing.T) {
	ctrl := &recordController{}
	driver := NewDriver(ctrl, testLogger())

	if err := driver.SetColor(0b101); err != nil {
		t.Fatalf("SetColor() returned error: %v", err)
	}

	if len(ctrl.calls) != NumChannels {
		t.Fatalf("Expected %d writes on first apply, got %d", NumChannels, len(ctrl.calls))
	}

	want := map[int]bool{ChannelRed: true, ChannelGreen: false, ChannelBlue: true}
	for _, call := range ctrl.calls {
		if call.on != want[call.channel] {
			t.Errorf("Channel %d written as %v, want %v", call.channel, call.on, want[call.channel])
		}
	}
}

func TestDriver_WritesOnlyChangedBits(t *testing.T) {
	tests := []struct {
		name       string
		first      uint8
		second     uint8
		wantWrites int
	}{
		{"same mask is free", 0b101, 0b101, 0},
		{"single bit flip", 0b101, 0b100, 1},
		{"two bits flip", 0b101, 0b011, 2},
		{"all bits flip", 0b101, 0b010, 3},
		{"off to color", 0b000, 0b110, 2},
		{"color to off", 0b110, 0b000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &recordController{}
			driver := NewDriver(ctrl, testLogger())

			if err := driver.SetColor(tt.first); err != nil {
				t.Fatalf("first SetColor() returned error: %v", err)
			}
			ctrl.calls = nil

			if err := driver.SetColor(tt.second); err != nil {
				t.Fatalf("second SetColor() returned error: %v", err)
			}

			if len(ctrl.calls) != tt.wantWrites {
				t.Errorf("Got %d writes, want %d (calls: %v)", len(ctrl.calls), tt.wantWrites, ctrl.calls)
			}

			// Every write must correspond to a bit that actually changed
			for _, call := range ctrl.calls {
				bit := uint8(1) << call.channel
				if tt.first&bit == tt.second&bit {
					t.Errorf("Channel %d written but bit did not change", call.channel)
				}
			}
		})
	}
}

func TestDriver_Last(t *testing.T) {
	ctrl := &recordController{}
	driver := NewDriver(ctrl, testLogger())

	if got := driver.Last(); got != 0 {
		t.Errorf("Last() before any write = %#b, want 0", got)
	}

	_ = driver.SetColor(0b011)
	if got := driver.Last(); got != 0b011 {
		t.Errorf("Last() = %#b, want 0b011", got)
	}
}

func TestDriver_ControllerError(t *testing.T) {
	ctrl := &recordController{fail: true}
	driver := NewDriver(ctrl, testLogger())

	if err := driver.SetColor(0b001); err == nil {
		t.Error("SetColor() should propagate controller errors")
	}
}
