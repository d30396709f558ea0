package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan LightChangedEvent, 1)

	unsub := bus.Subscribe(func(e LightChangedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(LightChangedEvent{Kind: "color", R: 200, G: 100, B: 50, W: 255, Level: 255})

	select {
	case got := <-received:
		if got.R != 200 || got.Kind != "color" {
			t.Errorf("unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan PersistFailedEvent, 1)

	unsub := bus.Subscribe(func(e PersistFailedEvent) {
		received <- e
	})

	bus.Publish(PersistFailedEvent{Error: "first"})
	<-received

	unsub()

	bus.Publish(PersistFailedEvent{Error: "second"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	persisted := make(chan bool, 1)
	failed := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ PersistedEvent) { persisted <- true })
	defer unsub1()
	unsub2 := bus.Subscribe(func(_ PersistFailedEvent) { failed <- true })
	defer unsub2()

	bus.Publish(PersistedEvent{Level: 10})
	<-persisted

	select {
	case <-failed:
		t.Fatal("PersistFailedEvent subscriber received a PersistedEvent")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	if unsub == nil {
		t.Fatal("Subscribe returned nil unsubscribe for unknown handler")
	}
	unsub()
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 8
	eventsPerGoroutine := 50
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)
	unsub := bus.Subscribe(func(_ LightChangedEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(LightChangedEvent{Kind: "level"})
			}
		}()
	}

	wg.Wait()
	for range expected {
		<-receivedCh
	}
}

func TestSubscribeToChannel_DropsWhenFull(t *testing.T) {
	bus := New()
	ch := make(chan any, 1)
	unsub := SubscribeToChannel[LightChangedEvent](bus, ch)
	defer unsub()

	bus.Publish(LightChangedEvent{Level: 1})
	bus.Publish(LightChangedEvent{Level: 2})

	select {
	case ev := <-ch:
		if _, ok := ev.(LightChangedEvent); !ok {
			t.Fatalf("unexpected type %T", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered to channel")
	}
}
