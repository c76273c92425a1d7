package peoplelist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careernet/internal/api"
	"github.com/nhle/careernet/internal/keys"
	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/network"
	"github.com/nhle/careernet/internal/theme"
)

// Mode selects which half of the people view is shown.
type Mode int

const (
	ModeConnections Mode = iota
	ModeSuggestions
)

// ConnectSentMsg carries the outcome of a connection request.
type ConnectSentMsg struct {
	UserID string
	Err    error
}

// RemovedMsg carries the outcome of a connection removal; the app
// answers with a people refetch.
type RemovedMsg struct {
	ConnectionID string
	Err          error
}

// Model is the connections/suggestions view.
type Model struct {
	list        list.Model
	connections *api.ConnectionsClient
	tracker     *network.RequestTracker
	keys        *keys.KeyMap
	mode        Mode
	friends     []model.Friend
	suggestions []model.UserProfile
	loaded      bool
	width       int
	height      int
}

// New creates the people view in connections mode.
func New(
	connections *api.ConnectionsClient,
	tracker *network.RequestTracker,
	k *keys.KeyMap,
	width, height int,
) Model {
	l := list.New([]list.Item{}, Delegate{tracker: tracker}, width, height-2)
	l.Title = "My Connections"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:        l,
		connections: connections,
		tracker:     tracker,
		keys:        k,
		mode:        ModeConnections,
		width:       width,
		height:      height,
	}
}

// SetPeople replaces both lists with freshly fetched data.
func (m *Model) SetPeople(
	friends []model.Friend,
	suggestions []model.UserProfile,
) tea.Cmd {
	m.friends = friends
	m.suggestions = suggestions
	m.loaded = true
	return m.rebuildItems()
}

// rebuildItems repopulates the visible list for the current mode.
func (m *Model) rebuildItems() tea.Cmd {
	var items []list.Item
	if m.mode == ModeConnections {
		m.list.Title = "My Connections"
		for _, f := range m.friends {
			items = append(items, FriendItem{Friend: f})
		}
	} else {
		m.list.Title = "Suggestions"
		for _, s := range m.suggestions {
			items = append(items, SuggestionItem{Profile: s})
		}
	}
	return m.list.SetItems(items)
}

// Update handles messages for the people view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ConnectSentMsg:
		// A successful request flips the local pending flag; the
		// suggestion entry stays listed until the server reclassifies
		// it, but its action renders as sent.
		return m, m.rebuildItems()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes people-specific key input.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleMode):
		if m.mode == ModeConnections {
			m.mode = ModeSuggestions
		} else {
			m.mode = ModeConnections
		}
		return m, m.rebuildItems()

	case key.Matches(msg, m.keys.Connect):
		if m.mode != ModeSuggestions {
			return m, nil
		}
		return m.sendRequest()

	case key.Matches(msg, m.keys.Remove):
		if m.mode != ModeConnections {
			return m, nil
		}
		return m.removeSelected()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// sendRequest sends a connection request to the selected suggestion.
// The pending flag is set only after the server accepted the request,
// so a rejected one is never shown as sent.
func (m Model) sendRequest() (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(SuggestionItem)
	if !ok {
		return m, nil
	}
	if m.tracker.IsRequested(item.Profile.ID) {
		return m, nil
	}

	connections := m.connections
	tracker := m.tracker
	userID := item.Profile.ID
	return m, func() tea.Msg {
		_, err := connections.RequestConnection(
			context.Background(), userID,
		)
		if err == nil {
			tracker.MarkRequested(userID)
		}
		return ConnectSentMsg{UserID: userID, Err: err}
	}
}

// removeSelected deletes the selected accepted connection. Removal is
// idempotent at the client layer, so a repeat on a stale list entry
// still reads as success.
func (m Model) removeSelected() (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(FriendItem)
	if !ok {
		return m, nil
	}

	connections := m.connections
	id := item.Friend.Connection.ID
	return m, func() tea.Msg {
		err := connections.RemoveConnection(context.Background(), id)
		return RemovedMsg{ConnectionID: id, Err: err}
	}
}

// View renders the people view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when the active list is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if !m.loaded {
		return style.Render("Loading people…")
	}
	if m.mode == ModeConnections {
		return style.Render(
			"No connections yet.\n\nPress tab to browse suggestions.",
		)
	}
	return style.Render("No suggestions right now.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
