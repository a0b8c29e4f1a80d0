package agentloop

import "testing"

func TestEventEmitterDelivers(t *testing.T) {
	e := NewEventEmitter("s1", 4)
	e.Emit(EventUserInput, map[string]interface{}{"content": "hi"})
	e.Close()

	event, ok := <-e.Events()
	if !ok {
		t.Fatal("channel closed before delivery")
	}
	if event.Kind != EventUserInput || event.SessionID != "s1" {
		t.Errorf("event = %+v", event)
	}
	if _, ok := <-e.Events(); ok {
		t.Error("channel should be closed")
	}
}

func TestEventEmitterDropsWhenFull(t *testing.T) {
	e := NewEventEmitter("s1", 2)
	for i := 0; i < 5; i++ {
		e.Emit(EventNotice, nil)
	}
	e.Close()

	count := 0
	for range e.Events() {
		count++
	}
	if count != 2 {
		t.Errorf("delivered = %d, want 2 (overflow dropped)", count)
	}
}

func TestEventEmitterCloseIdempotent(t *testing.T) {
	e := NewEventEmitter("s1", 1)
	e.Close()
	e.Close()
	e.Emit(EventNotice, nil) // dropped, no panic
}
