package hid

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/klinkhq/keyled/internal/events"
)

func TestReader_StopWithoutStart(t *testing.T) {
	// Start fails when hidapi cannot initialize; Stop must still return so
	// the daemon can shut down.
	reader := NewReader(&Options{
		UsagePage: 0xFF60,
		EventBus:  events.New(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	done := make(chan struct{})
	go func() {
		reader.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked when Start never succeeded")
	}
}
