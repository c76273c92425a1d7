// Package sync drives freshness of the remote-backed lists. The feed
// and people lists are refetched on demand (on mount, on manual
// refresh, after a rollback); only the supplemental mail-alert source
// polls on an interval.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careernet/internal/api"
	"github.com/nhle/careernet/internal/feed"
	"github.com/nhle/careernet/internal/model"
)

// AlertIngestor pulls new job-alert leads from the mailbox. Implemented
// by mailalert.Ingestor.
type AlertIngestor interface {
	Ingest(ctx context.Context) (int, error)
}

// fetchTimeout is the maximum time allowed for a single refresh.
const fetchTimeout = 30 * time.Second

// FeedRefreshedMsg is sent when a feed refetch completes.
type FeedRefreshedMsg struct {
	Unread int
	Err    error
}

// PeopleRefreshedMsg is sent when the connections and suggestions
// lists have been refetched.
type PeopleRefreshedMsg struct {
	Friends     []model.Friend
	Suggestions []model.UserProfile
	Err         error
}

// AlertsIngestedMsg is sent when a mail-alert ingestion run completes.
type AlertsIngestedMsg struct {
	NewLeads int
	Err      error
}

// AuthExpiredMsg is sent when a refresh fails with an AuthError; the
// UI switches to the setup view instead of retrying.
type AuthExpiredMsg struct {
	Message string
}

// Refresher issues refresh operations and delivers their results as
// Bubble Tea messages.
type Refresher struct {
	feed        *feed.Store
	connections *api.ConnectionsClient
	ingestor    AlertIngestor

	mu       gosync.Mutex
	resultCh chan tea.Msg
	stopCh   chan struct{}
	polling  bool
}

// NewRefresher creates a refresher over the feed store and the
// connections client. ingestor may be nil when mail alerts are not
// configured.
func NewRefresher(
	f *feed.Store,
	connections *api.ConnectionsClient,
	ingestor AlertIngestor,
) *Refresher {
	return &Refresher{
		feed:        f,
		connections: connections,
		ingestor:    ingestor,
		resultCh:    make(chan tea.Msg, 16),
	}
}

// RefreshFeed returns a command that refetches the notification feed
// into the store and reports the authoritative unread count.
func (r *Refresher) RefreshFeed() tea.Cmd {
	f := r.feed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(
			context.Background(), fetchTimeout,
		)
		defer cancel()

		if err := f.Load(ctx); err != nil {
			if api.IsAuthError(err) {
				return AuthExpiredMsg{Message: err.Error()}
			}
			return FeedRefreshedMsg{Err: err}
		}
		return FeedRefreshedMsg{Unread: f.Unread()}
	}
}

// RefreshPeople returns a command that refetches connections and
// suggestions in one pass.
func (r *Refresher) RefreshPeople() tea.Cmd {
	c := r.connections
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(
			context.Background(), fetchTimeout,
		)
		defer cancel()

		friends, err := c.ListMyConnections(ctx)
		if err != nil {
			if api.IsAuthError(err) {
				return AuthExpiredMsg{Message: err.Error()}
			}
			return PeopleRefreshedMsg{Err: err}
		}

		suggestions, err := c.ListSuggestions(ctx)
		if err != nil {
			return PeopleRefreshedMsg{Friends: friends, Err: err}
		}

		return PeopleRefreshedMsg{
			Friends:     friends,
			Suggestions: suggestions,
		}
	}
}

// IngestAlerts returns a command that runs one mail-alert ingestion
// pass. Returns nil when no ingestor is configured.
func (r *Refresher) IngestAlerts() tea.Cmd {
	if r.ingestor == nil {
		return nil
	}
	ing := r.ingestor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(
			context.Background(), fetchTimeout,
		)
		defer cancel()

		n, err := ing.Ingest(ctx)
		return AlertsIngestedMsg{NewLeads: n, Err: err}
	}
}

// StartMailPoll launches the periodic mailbox poll and returns a
// subscription command for its results. Interval zero (or a missing
// ingestor) disables polling entirely; the feed itself is never
// re-polled here.
func (r *Refresher) StartMailPoll(interval time.Duration) tea.Cmd {
	if r.ingestor == nil || interval <= 0 {
		return nil
	}

	r.mu.Lock()
	if r.polling {
		r.mu.Unlock()
		return r.waitForResult()
	}
	// A fresh channel per poll run, so the poller can be restarted
	// after Stop.
	stopCh := make(chan struct{})
	r.stopCh = stopCh
	r.polling = true
	r.mu.Unlock()

	go r.pollMail(interval, stopCh)

	return r.waitForResult()
}

// Stop halts the mail polling goroutine. StartMailPoll may be called
// again afterwards.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.polling {
		return
	}
	close(r.stopCh)
	r.polling = false
}

// pollMail runs the mailbox ingestion loop.
func (r *Refresher) pollMail(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.ingestOnce()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.ingestOnce()
		}
	}
}

// ingestOnce performs a single ingestion pass and reports the result
// without blocking the poll loop.
func (r *Refresher) ingestOnce() {
	ctx, cancel := context.WithTimeout(
		context.Background(), fetchTimeout,
	)
	defer cancel()

	n, err := r.ingestor.Ingest(ctx)

	select {
	case r.resultCh <- AlertsIngestedMsg{NewLeads: n, Err: err}:
	default:
		// Drop if the channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a command that waits for the next poll result.
// The app re-subscribes after each delivered message.
func (r *Refresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextResult re-subscribes to poll results after a message has
// been processed.
func (r *Refresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}
