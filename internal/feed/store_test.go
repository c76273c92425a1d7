package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/careernet/internal/model"
)

// fakeFetcher returns a programmable feed page.
type fakeFetcher struct {
	page  *model.FeedPage
	err   error
	calls int
}

func (f *fakeFetcher) ListNotifications(
	ctx context.Context,
) (*model.FeedPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func testPage() *model.FeedPage {
	return &model.FeedPage{
		Notifications: []model.Notification{
			{
				ID:           "n1",
				Type:         model.NotificationConnectionRequest,
				ConnectionID: "c1",
				Read:         false,
			},
			{ID: "n2", Type: model.NotificationGeneric, Read: true},
			{ID: "n3", Type: model.NotificationNewUser, Read: false},
		},
		UnreadCount: 2,
	}
}

func TestLoadReplacesListAndCounter(t *testing.T) {
	fetcher := &fakeFetcher{page: testPage()}
	s := NewStore(fetcher)

	require.False(t, s.Loaded())
	require.NoError(t, s.Load(context.Background()))

	assert.True(t, s.Loaded())
	assert.Len(t, s.Notifications(), 3)
	assert.Equal(t, 2, s.Unread())
}

func TestLoadError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	s := NewStore(fetcher)

	assert.Error(t, s.Load(context.Background()))
	assert.False(t, s.Loaded())
}

func TestLoadNeverProducesDuplicateIDs(t *testing.T) {
	fetcher := &fakeFetcher{page: testPage()}
	s := NewStore(fetcher)

	// Loading repeatedly must replace, not merge.
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Load(context.Background()))

	seen := map[string]bool{}
	for _, n := range s.Notifications() {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
	assert.Equal(t, 2, s.Unread())
}

func TestLoadClampsNegativeCounter(t *testing.T) {
	fetcher := &fakeFetcher{
		page: &model.FeedPage{UnreadCount: -5},
	}
	s := NewStore(fetcher)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, s.Unread())
}

func TestOptimisticRemoveUnreadEntry(t *testing.T) {
	fetcher := &fakeFetcher{page: testPage()}
	s := NewStore(fetcher)
	require.NoError(t, s.Load(context.Background()))

	assert.True(t, s.OptimisticRemove("n1"))
	assert.Len(t, s.Notifications(), 2)
	assert.Equal(t, 1, s.Unread())

	_, ok := s.Get("n1")
	assert.False(t, ok)
}

func TestOptimisticRemoveReadEntryKeepsCounter(t *testing.T) {
	fetcher := &fakeFetcher{page: testPage()}
	s := NewStore(fetcher)
	require.NoError(t, s.Load(context.Background()))

	assert.True(t, s.OptimisticRemove("n2"))
	assert.Equal(t, 2, s.Unread())
}

func TestOptimisticRemoveAbsentIDIsNoOp(t *testing.T) {
	fetcher := &fakeFetcher{page: testPage()}
	s := NewStore(fetcher)
	require.NoError(t, s.Load(context.Background()))

	assert.False(t, s.OptimisticRemove("nope"))
	assert.Len(t, s.Notifications(), 3)
	assert.Equal(t, 2, s.Unread())

	// Removing the same entry twice only decrements once.
	assert.True(t, s.OptimisticRemove("n1"))
	assert.False(t, s.OptimisticRemove("n1"))
	assert.Equal(t, 1, s.Unread())
}

func TestCounterNeverGoesNegative(t *testing.T) {
	fetcher := &fakeFetcher{
		page: &model.FeedPage{
			Notifications: []model.Notification{
				{ID: "n1", Read: false},
				{ID: "n2", Read: false},
			},
			// Server undercounts relative to the list.
			UnreadCount: 1,
		},
	}
	s := NewStore(fetcher)
	require.NoError(t, s.Load(context.Background()))

	s.OptimisticRemove("n1")
	s.OptimisticRemove("n2")
	assert.Equal(t, 0, s.Unread())
}

func TestRollbackRestoresRemovedEntry(t *testing.T) {
	fetcher := &fakeFetcher{page: testPage()}
	s := NewStore(fetcher)
	require.NoError(t, s.Load(context.Background()))

	require.True(t, s.OptimisticRemove("n1"))
	require.NoError(t, s.Rollback(context.Background()))

	restored, ok := s.Get("n1")
	require.True(t, ok)
	assert.True(t, restored.IsConnectionRequest())
	assert.Equal(t, 2, s.Unread())
}

func TestNotificationsReturnsCopy(t *testing.T) {
	fetcher := &fakeFetcher{page: testPage()}
	s := NewStore(fetcher)
	require.NoError(t, s.Load(context.Background()))

	snapshot := s.Notifications()
	snapshot[0].ID = "mutated"

	fresh := s.Notifications()
	assert.Equal(t, "n1", fresh[0].ID)
}
