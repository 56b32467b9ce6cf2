package coordination

import "sync"

// observerQueueSize bounds each observer's outbound buffer. A slow observer
// that fills this buffer is disconnected rather than allowed to back-pressure
// producers, matching the websocket-hub's per-client Send channel.
const observerQueueSize = 64

// defaultRingSize is the replay history capacity used when NewEventHub is
// constructed without an explicit size.
const defaultRingSize = 1000

// observer is a single subscriber's id and outbound queue.
type observer struct {
	id string
	ch chan Event
}

// EventHub is the broadcast bus: every mutating Registry/Coordinator event
// passes through Emit, is appended to a bounded ring for replay, and is
// fanned out to every live observer without blocking the caller.
type EventHub struct {
	mu        sync.Mutex
	ring      []Event
	ringCap   int
	observers map[string]*observer
	nextID    uint64
}

// NewEventHub constructs an empty hub whose replay ring holds at most
// ringSize events (defaultRingSize if ringSize <= 0).
func NewEventHub(ringSize int) *EventHub {
	if ringSize <= 0 {
		ringSize = defaultRingSize
	}
	return &EventHub{
		ring:      make([]Event, 0, ringSize),
		ringCap:   ringSize,
		observers: make(map[string]*observer),
	}
}

// Emit appends evt to the ring (evicting the oldest entry once full) and
// fans it out to every registered observer. A full observer queue is
// dropped and unregistered rather than blocked on.
func (h *EventHub) Emit(evt Event) {
	h.mu.Lock()
	if len(h.ring) >= h.ringCap {
		h.ring = h.ring[1:]
	}
	h.ring = append(h.ring, evt)

	var stale []string
	for id, obs := range h.observers {
		select {
		case obs.ch <- evt:
		default:
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		close(h.observers[id].ch)
		delete(h.observers, id)
	}
	h.mu.Unlock()
}

// Subscribe registers a new observer and returns its id (for Unsubscribe)
// and the channel it should range over. The channel is closed when the
// observer is dropped for overflowing, or when Unsubscribe is called.
func (h *EventHub) Subscribe() (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := idFromSeq(h.nextID)
	ch := make(chan Event, observerQueueSize)
	h.observers[id] = &observer{id: id, ch: ch}
	return id, ch
}

// Unsubscribe removes an observer and closes its channel. Safe to call more
// than once or after the observer was already dropped for overflow.
func (h *EventHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	obs, ok := h.observers[id]
	if !ok {
		return
	}
	close(obs.ch)
	delete(h.observers, id)
}

// Recent returns the last n events in insertion order (fewer if the ring
// holds less than n).
func (h *EventHub) Recent(n int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > len(h.ring) {
		n = len(h.ring)
	}
	out := make([]Event, n)
	copy(out, h.ring[len(h.ring)-n:])
	return out
}

// ByType returns the last n events (insertion order) whose Type matches
// eventType.
func (h *EventHub) ByType(eventType string, n int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var matched []Event
	for _, evt := range h.ring {
		if evt.Type == eventType {
			matched = append(matched, evt)
		}
	}
	if n <= 0 || n > len(matched) {
		n = len(matched)
	}
	return matched[len(matched)-n:]
}

func idFromSeq(seq uint64) string {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if seq == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for seq > 0 {
		i--
		buf[i] = digits[seq%uint64(len(digits))]
		seq /= uint64(len(digits))
	}
	return "obs-" + string(buf[i:])
}
