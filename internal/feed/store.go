// Package feed holds the in-memory notification feed state: the list
// of entries and the unread counter. The store is the single writer of
// both for the lifetime of the session; other components mutate the
// feed only through the methods here.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/careernet/internal/model"
)

// Fetcher is the slice of the notifications resource client the store
// needs: a full authoritative feed fetch.
type Fetcher interface {
	ListNotifications(ctx context.Context) (*model.FeedPage, error)
}

// Store owns the notification list and unread counter.
//
// Load is the only operation that adds entries; optimistic local
// operations only remove or mark. Because a load is a full replace
// rather than a merge, the list can never contain duplicate ids and
// the counter is always re-seeded from the server's authoritative
// unread count.
type Store struct {
	fetcher Fetcher

	mu            sync.Mutex
	notifications []model.Notification
	unread        int
	loaded        bool
}

// NewStore creates a feed store backed by the given fetcher.
func NewStore(f Fetcher) *Store {
	return &Store{fetcher: f}
}

// Load fetches the feed and replaces the entire list and counter with
// the server's truth.
func (s *Store) Load(ctx context.Context) error {
	page, err := s.fetcher.ListNotifications(ctx)
	if err != nil {
		return fmt.Errorf("loading feed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = make([]model.Notification, len(page.Notifications))
	copy(s.notifications, page.Notifications)
	s.unread = page.UnreadCount
	if s.unread < 0 {
		s.unread = 0
	}
	s.loaded = true
	return nil
}

// Rollback resynchronizes with the server after a failed optimistic
// mutation. It is exactly a Load: a full replace against current truth.
func (s *Store) Rollback(ctx context.Context) error {
	return s.Load(ctx)
}

// OptimisticRemove removes the entry with the given id from the
// in-memory list immediately, ahead of any network confirmation, and
// decrements the unread counter by one if the removed entry was
// unread. The counter is floored at zero. Returns false when no entry
// with that id is present; removal is keyed by id, so concurrent
// removals of different entries are independent.
func (s *Store) OptimisticRemove(notificationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID != notificationID {
			continue
		}
		s.notifications = append(
			s.notifications[:i], s.notifications[i+1:]...,
		)
		if !n.Read && s.unread > 0 {
			s.unread--
		}
		return true
	}
	return false
}

// Notifications returns a copy of the current feed list in server
// order (newest first; the client does not re-sort).
func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Unread returns the current unread counter.
func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Loaded reports whether at least one Load has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Get returns the entry with the given id, if present.
func (s *Store) Get(notificationID string) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.ID == notificationID {
			return n, true
		}
	}
	return model.Notification{}, false
}
