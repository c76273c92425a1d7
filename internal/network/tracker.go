package network

import "sync"

// RequestTracker remembers which users the current session has sent a
// connection request to, so the Connect action can be disabled without
// waiting for the server to reclassify the suggestion list.
//
// The set is deliberately ephemeral: it lives in process memory, is
// never persisted, and has no removal operation. Across reloads the
// server's own pending/suggested classification is the source of
// truth, so a stale local marker can never outlive the session.
type RequestTracker struct {
	mu        sync.Mutex
	requested map[string]struct{}
}

// NewRequestTracker creates an empty tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{
		requested: make(map[string]struct{}),
	}
}

// MarkRequested records that a request was sent to userID. Call it only
// after RequestConnection succeeds, never before, so a server-rejected
// request is not shown as sent.
func (t *RequestTracker) MarkRequested(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requested[userID] = struct{}{}
}

// IsRequested reports whether this session already sent a request to
// userID. A true result takes precedence over a stale suggestion list
// entry for the same user.
func (t *RequestTracker) IsRequested(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.requested[userID]
	return ok
}
