package notiflist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careernet/internal/feed"
	"github.com/nhle/careernet/internal/keys"
	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/network"
	"github.com/nhle/careernet/internal/theme"
)

// DecisionMsg carries the outcome of an accept/reject flow for toast
// presentation and a follow-up item resync.
type DecisionMsg struct {
	Result network.Result
}

// MarkReadDoneMsg is sent when a mark-read or mark-all-read finished;
// the app answers with a full feed refetch rather than local inference.
type MarkReadDoneMsg struct {
	Err error
}

// ReadMarker is the notification client slice this view needs.
type ReadMarker interface {
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context) error
}

// Model is the notification feed view.
type Model struct {
	list        list.Model
	feed        *feed.Store
	coordinator *network.Coordinator
	notifs      ReadMarker
	keys        *keys.KeyMap
	width       int
	height      int
}

// New creates the feed view.
func New(
	f *feed.Store,
	coordinator *network.Coordinator,
	notifs ReadMarker,
	k *keys.KeyMap,
	width, height int,
) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:        l,
		feed:        f,
		coordinator: coordinator,
		notifs:      notifs,
		keys:        k,
		width:       width,
		height:      height,
	}
}

// SyncFromStore replaces the visible items with the feed store's
// current snapshot. Called after every load, rollback, or optimistic
// mutation so the view never drifts from the store.
func (m *Model) SyncFromStore() tea.Cmd {
	notifications := m.feed.Notifications()
	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		items[i] = Item{Notification: n}
	}
	return m.list.SetItems(items)
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DecisionMsg:
		// The store already reflects the outcome (optimistic removal
		// or rollback); re-render from it either way.
		return m, m.SyncFromStore()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes feed-specific key input.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		return m.decide(network.DecisionAccept)

	case key.Matches(msg, m.keys.Reject):
		return m.decide(network.DecisionReject)

	case key.Matches(msg, m.keys.Select):
		return m.markSelectedRead()

	case key.Matches(msg, m.keys.MarkAllRead):
		notifs := m.notifs
		return m, func() tea.Msg {
			err := notifs.MarkAllRead(context.Background())
			return MarkReadDoneMsg{Err: err}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// decide runs the accept/reject protocol on the selected entry. The
// optimistic removal inside the coordinator makes the entry disappear
// before the network resolves, so the same request cannot be
// double-submitted.
func (m Model) decide(decision network.Decision) (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok || !item.Notification.IsConnectionRequest() {
		return m, nil
	}

	coordinator := m.coordinator
	n := item.Notification

	// Remove the entry on the UI thread before the network command is
	// dispatched: the decision is visible instantly and the controls
	// are gone, so it cannot be double-submitted.
	coordinator.Stage(n.ID)

	cmd := func() tea.Msg {
		var result network.Result
		if decision == network.DecisionAccept {
			result = coordinator.Accept(
				context.Background(), n.ConnectionID, n.ID,
			)
		} else {
			result = coordinator.Reject(
				context.Background(), n.ConnectionID, n.ID,
			)
		}
		return DecisionMsg{Result: result}
	}

	return m, tea.Batch(m.SyncFromStore(), cmd)
}

// markSelectedRead marks the selected entry read server-side. The
// local flag flips via the refetch the app issues on MarkReadDoneMsg;
// an already-read entry is a no-op.
func (m Model) markSelectedRead() (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok || item.Notification.Read {
		return m, nil
	}

	notifs := m.notifs
	id := item.Notification.ID
	return m, func() tea.Msg {
		return MarkReadDoneMsg{Err: notifs.MarkRead(context.Background(), id)}
	}
}

// View renders the feed view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when the feed is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if !m.feed.Loaded() {
		return style.Render("Loading notifications…")
	}
	return style.Render("No notifications.\nYou're all caught up.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// Selected returns the currently focused notification, if any.
func (m Model) Selected() (model.Notification, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return item.Notification, true
}
