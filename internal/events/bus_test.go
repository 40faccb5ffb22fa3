package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan ProfileChangedEvent, 1)

	unsub := bus.Subscribe(func(e ProfileChangedEvent) {
		received <- e
	})
	defer unsub()

	event := ProfileChangedEvent{
		Index:     1,
		Connected: true,
		Address:   "AA:BB:CC:DD:EE:FF",
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.Index != event.Index {
		t.Errorf("Expected index %d, got %d", event.Index, got.Index)
	}
	if got.Address != event.Address {
		t.Errorf("Expected address %s, got %s", event.Address, got.Address)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan BatteryStateChangedEvent, 1)
	received2 := make(chan BatteryStateChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e BatteryStateChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e BatteryStateChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(BatteryStateChangedEvent{StateOfCharge: 42})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan IndicatorsChangedEvent, 1)

	unsub := bus.Subscribe(func(e IndicatorsChangedEvent) {
		received <- e
	})

	bus.Publish(IndicatorsChangedEvent{Indicators: 0b010})
	<-received

	unsub()

	bus.Publish(IndicatorsChangedEvent{Indicators: 0b001})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	profileReceived := make(chan bool, 1)
	keycodeReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ ProfileChangedEvent) {
		profileReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ KeycodeStateChangedEvent) {
		keycodeReceived <- true
	})
	defer unsub2()

	// Publish ProfileChangedEvent
	bus.Publish(ProfileChangedEvent{Index: 0})
	<-profileReceived

	select {
	case <-keycodeReceived:
		t.Fatal("Keycode subscriber should NOT have received ProfileChangedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}

	// Publish KeycodeStateChangedEvent
	bus.Publish(KeycodeStateChangedEvent{Keycode: 0xAB, Pressed: true})
	<-keycodeReceived

	select {
	case <-profileReceived:
		t.Fatal("Profile subscriber should NOT have received KeycodeStateChangedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}

func TestBus_UnknownHandlerType(t *testing.T) {
	bus := New()

	// Subscribing with an unsupported handler type returns a no-op unsubscribe
	unsub := bus.Subscribe(func(s string) {})
	if unsub == nil {
		t.Fatal("Subscribe returned nil unsubscribe function")
	}
	unsub()
}
