package assistant

import "testing"

func TestHubDeliversToAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(Event{Step: StepKeywords, Progress: 75})

	for _, ch := range []chan Event{a, b} {
		select {
		case ev := <-ch:
			if ev.Step != StepKeywords || ev.Progress != 75 {
				t.Fatalf("unexpected event %+v", ev)
			}
		default:
			t.Fatalf("subscriber missed the event")
		}
	}
}

func TestHubUnsubscribeClosesOnce(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)
	h.Unsubscribe(ch) // second call must be a no-op, not a double close

	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after unsubscribe")
	}

	h.Publish(Event{Step: StepReview}) // must not panic on a removed channel
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < 40; i++ {
		h.Publish(Event{Progress: i})
	}

	// Buffer holds the first events; the rest were dropped and Publish
	// returned without blocking.
	if len(ch) != cap(ch) {
		t.Fatalf("expected full buffer, got %d/%d", len(ch), cap(ch))
	}
	if ev := <-ch; ev.Progress != 0 {
		t.Fatalf("oldest event should survive, got %+v", ev)
	}
}
