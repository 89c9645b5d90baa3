package assistant

import "sync"

// Event is one completed conversational turn, broadcast to watchers.
type Event struct {
	Step     string `json:"step"`
	Progress int    `json:"progress"`
	Reply    string `json:"reply"`
	Complete bool   `json:"complete"`
	RecordID string `json:"record_id,omitempty"`
}

// Hub fans conversation events out to subscribed watchers. Slow
// subscribers drop events rather than blocking the turn.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}
