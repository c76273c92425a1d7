package network

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/careernet/internal/api"
	"github.com/nhle/careernet/internal/feed"
	"github.com/nhle/careernet/internal/model"
)

type fakeMutator struct {
	acceptErr  error
	rejectErr  error
	accepted   []string
	rejected   []string
	connection *model.Connection
}

func (f *fakeMutator) AcceptConnection(
	ctx context.Context, connectionID string,
) (*model.Connection, error) {
	f.accepted = append(f.accepted, connectionID)
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return f.connection, nil
}

func (f *fakeMutator) RejectConnection(
	ctx context.Context, connectionID string,
) (*model.Connection, error) {
	f.rejected = append(f.rejected, connectionID)
	if f.rejectErr != nil {
		return nil, f.rejectErr
	}
	return f.connection, nil
}

type fakeReadMarker struct {
	err    error
	marked []string
}

func (f *fakeReadMarker) MarkRead(
	ctx context.Context, notificationID string,
) error {
	f.marked = append(f.marked, notificationID)
	return f.err
}

type fakeFetcher struct {
	page *model.FeedPage
}

func (f *fakeFetcher) ListNotifications(
	ctx context.Context,
) (*model.FeedPage, error) {
	return f.page, nil
}

func loadedFeed(t *testing.T) *feed.Store {
	t.Helper()
	s := feed.NewStore(&fakeFetcher{page: &model.FeedPage{
		Notifications: []model.Notification{
			{
				ID:           "n1",
				Type:         model.NotificationConnectionRequest,
				ConnectionID: "c1",
			},
			{ID: "n2", Type: model.NotificationGeneric},
		},
		UnreadCount: 2,
	}})
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestAcceptHappyPath(t *testing.T) {
	mutator := &fakeMutator{
		connection: &model.Connection{
			ID: "c1", Status: model.ConnectionAccepted,
		},
	}
	marker := &fakeReadMarker{}
	feedStore := loadedFeed(t)
	c := NewCoordinator(mutator, marker, feedStore)

	res := c.Accept(context.Background(), "c1", "n1")

	require.NoError(t, res.Err)
	assert.Equal(t, DecisionAccept, res.Decision)
	require.NotNil(t, res.Connection)
	assert.Equal(t, model.ConnectionAccepted, res.Connection.Status)

	// The entry is gone and the counter dropped.
	_, ok := feedStore.Get("n1")
	assert.False(t, ok)
	assert.Equal(t, 1, feedStore.Unread())

	// The follow-up mark-read was issued for the notification.
	assert.Equal(t, []string{"c1"}, mutator.accepted)
	assert.Equal(t, []string{"n1"}, marker.marked)
}

func TestRejectHappyPath(t *testing.T) {
	mutator := &fakeMutator{
		connection: &model.Connection{
			ID: "c1", Status: model.ConnectionRejected,
		},
	}
	marker := &fakeReadMarker{}
	feedStore := loadedFeed(t)
	c := NewCoordinator(mutator, marker, feedStore)

	res := c.Reject(context.Background(), "c1", "n1")

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"c1"}, mutator.rejected)
	assert.Empty(t, mutator.accepted)
	_, ok := feedStore.Get("n1")
	assert.False(t, ok)
}

func TestAcceptFailureRollsBack(t *testing.T) {
	mutator := &fakeMutator{
		acceptErr: &api.NotFoundError{Resource: "connection", ID: "c1"},
	}
	marker := &fakeReadMarker{}
	feedStore := loadedFeed(t)
	c := NewCoordinator(mutator, marker, feedStore)

	res := c.Accept(context.Background(), "c1", "n1")

	require.Error(t, res.Err)
	assert.True(t, api.IsNotFound(res.Err))
	assert.True(t, res.RolledBack)

	// The entry and its counter contribution came back.
	_, ok := feedStore.Get("n1")
	assert.True(t, ok)
	assert.Equal(t, 2, feedStore.Unread())

	// No mark-read after a failed mutation.
	assert.Empty(t, marker.marked)
}

func TestRollbackAdoptsChangedServerTruth(t *testing.T) {
	// The other party withdrew the request while we were accepting: the
	// mutation 404s and the refetch no longer contains the entry. The
	// rollback must land on that newer truth, not resurrect the old one.
	fetcher := &fakeFetcher{page: &model.FeedPage{
		Notifications: []model.Notification{
			{
				ID:           "n1",
				Type:         model.NotificationConnectionRequest,
				ConnectionID: "c1",
			},
		},
		UnreadCount: 1,
	}}
	feedStore := feed.NewStore(fetcher)
	require.NoError(t, feedStore.Load(context.Background()))

	mutator := &fakeMutator{
		acceptErr: &api.NotFoundError{Resource: "connection", ID: "c1"},
	}
	c := NewCoordinator(mutator, &fakeReadMarker{}, feedStore)

	fetcher.page = &model.FeedPage{UnreadCount: 0}

	res := c.Accept(context.Background(), "c1", "n1")

	require.Error(t, res.Err)
	assert.True(t, res.RolledBack)
	assert.Empty(t, feedStore.Notifications())
	assert.Equal(t, 0, feedStore.Unread())
}

func TestMarkReadFailureIsSwallowed(t *testing.T) {
	mutator := &fakeMutator{
		connection: &model.Connection{ID: "c1"},
	}
	marker := &fakeReadMarker{err: errors.New("read marker down")}
	feedStore := loadedFeed(t)
	c := NewCoordinator(mutator, marker, feedStore)

	res := c.Accept(context.Background(), "c1", "n1")

	// The decision still succeeds; read-state is best-effort.
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"n1"}, marker.marked)
	_, ok := feedStore.Get("n1")
	assert.False(t, ok)
}

func TestEmptyConnectionIDFailsFast(t *testing.T) {
	mutator := &fakeMutator{}
	marker := &fakeReadMarker{}
	feedStore := loadedFeed(t)
	c := NewCoordinator(mutator, marker, feedStore)

	res := c.Accept(context.Background(), "", "n1")

	require.Error(t, res.Err)
	assert.Empty(t, mutator.accepted)
	assert.Empty(t, marker.marked)

	// The feed is untouched on a fail-fast.
	_, ok := feedStore.Get("n1")
	assert.True(t, ok)
	assert.Equal(t, 2, feedStore.Unread())
}

func TestStageThenResolveDecrementsOnce(t *testing.T) {
	mutator := &fakeMutator{
		connection: &model.Connection{ID: "c1"},
	}
	marker := &fakeReadMarker{}
	feedStore := loadedFeed(t)
	c := NewCoordinator(mutator, marker, feedStore)

	// Stage removes the entry on the UI thread; resolve re-applies the
	// removal, which must be a no-op on the counter.
	c.Stage("n1")
	assert.Equal(t, 1, feedStore.Unread())

	res := c.Accept(context.Background(), "c1", "n1")
	require.NoError(t, res.Err)
	assert.Equal(t, 1, feedStore.Unread())
}
