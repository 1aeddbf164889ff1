package server

import (
	"net/http"
	"sync"
	"time"
)

const reloadPollTimeout = 25 * time.Second

// ReloadHub broadcasts rebuild completions to long-polling clients.
type ReloadHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// NewReloadHub constructs an empty hub.
func NewReloadHub() *ReloadHub {
	return &ReloadHub{subs: make(map[chan struct{}]struct{})}
}

// Notify unblocks every waiting client.
func (h *ReloadHub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

func (h *ReloadHub) subscribe() chan struct{} {
	ch := make(chan struct{})
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *ReloadHub) unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// ServeHTTP implements the long-poll endpoint: 200 when a rebuild happened,
// 204 on timeout so clients re-poll.
func (h *ReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	select {
	case <-ch:
		w.WriteHeader(http.StatusOK)
	case <-time.After(reloadPollTimeout):
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
	}
}
