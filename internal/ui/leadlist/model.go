package leadlist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careernet/internal/keys"
	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/store"
	"github.com/nhle/careernet/internal/theme"
)

// LeadsLoadedMsg is sent when leads have been loaded from the cache.
type LeadsLoadedMsg struct {
	Leads []model.Lead
}

// leadViewedMsg is sent after a lead was flagged viewed.
type leadViewedMsg struct {
	id  string
	err error
}

// Model is the job-leads view over the local cache.
type Model struct {
	list   list.Model
	store  store.Store
	keys   *keys.KeyMap
	loaded bool
	width  int
	height int
}

// New creates the leads view.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height-2)
	l.Title = "Job Leads"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		store:  s,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init loads the cached leads.
func (m Model) Init() tea.Cmd {
	return m.LoadLeads()
}

// LoadLeads returns a command that queries the cache, newest first.
func (m Model) LoadLeads() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		leads, err := s.GetLeads(context.Background(), store.LeadFilter{
			Limit: 200,
		})
		if err != nil {
			return LeadsLoadedMsg{}
		}
		return LeadsLoadedMsg{Leads: leads}
	}
}

// Update handles messages for the leads view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LeadsLoadedMsg:
		m.loaded = true
		items := make([]list.Item, len(msg.Leads))
		for i, lead := range msg.Leads {
			items[i] = Item{Lead: lead}
		}
		return m, m.list.SetItems(items)

	case leadViewedMsg:
		return m, m.LoadLeads()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Select) {
			return m.openSelected()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// openSelected flags the selected lead as viewed.
func (m Model) openSelected() (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok || item.Lead.Viewed {
		return m, nil
	}

	s := m.store
	id := item.Lead.ID
	return m, func() tea.Msg {
		err := s.MarkLeadViewed(context.Background(), id)
		return leadViewedMsg{id: id, err: err}
	}
}

// View renders the leads view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when the cache is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if !m.loaded {
		return style.Render("Loading job leads…")
	}
	return style.Render(
		"No job leads yet.\n\n" +
			"Enable mail alerts in settings (s) to ingest them.",
	)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
