package app

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careernet/internal/api"
	"github.com/nhle/careernet/internal/credential"
	"github.com/nhle/careernet/internal/feed"
	"github.com/nhle/careernet/internal/keys"
	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/network"
	"github.com/nhle/careernet/internal/store"
	appsync "github.com/nhle/careernet/internal/sync"
	"github.com/nhle/careernet/internal/ui"
	"github.com/nhle/careernet/internal/ui/helpview"
	"github.com/nhle/careernet/internal/ui/leadlist"
	"github.com/nhle/careernet/internal/ui/notiflist"
	"github.com/nhle/careernet/internal/ui/peoplelist"
	"github.com/nhle/careernet/internal/ui/setupform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewFeed ViewState = iota
	ViewPeople
	ViewLeads
	ViewHelp
	ViewSetup
)

// clearToastMsg removes a stale status toast.
type clearToastMsg struct {
	seq int
}

// Deps bundles the shared services the root model routes between views.
type Deps struct {
	Config        *model.AppConfig
	Client        *api.Client
	Connections   *api.ConnectionsClient
	Notifications *api.NotificationsClient
	Feed          *feed.Store
	Coordinator   *network.Coordinator
	Tracker       *network.RequestTracker
	Leads         store.Store
	Refresher     *appsync.Refresher
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the status toast.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	deps         Deps
	keys         *keys.KeyMap

	feedView   notiflist.Model
	peopleView peoplelist.Model
	leadView   leadlist.Model
	helpView   helpview.Model
	setupView  setupform.Model

	ready       bool
	unreadCount int
	toast       string
	toastIsErr  bool
	toastSeq    int
}

// New creates the root application model. When the configuration has no
// backend origin yet, the app starts in the setup view.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView: ViewFeed,
		deps:        deps,
		keys:        k,
		feedView: notiflist.New(
			deps.Feed, deps.Coordinator, deps.Notifications, k, 80, 24,
		),
		peopleView: peoplelist.New(
			deps.Connections, deps.Tracker, k, 80, 24,
		),
		leadView:  leadlist.New(deps.Leads, k, 80, 24),
		helpView:  helpview.New(k, 80, 24),
		setupView: setupform.New(deps.Config, 80, 24),
	}
	if !deps.Config.Configured() {
		m.currentView = ViewSetup
	}
	return m
}

// Init loads the initial data, or opens setup when unconfigured.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewSetup {
		return m.setupView.Init()
	}
	return m.startData()
}

// startData kicks off the initial fetches and the mail poll loop.
func (m Model) startData() tea.Cmd {
	cmds := []tea.Cmd{
		m.deps.Refresher.RefreshFeed(),
		m.deps.Refresher.RefreshPeople(),
		m.leadView.LoadLeads(),
	}
	if interval := m.mailPollInterval(); interval > 0 {
		cmds = append(cmds, m.deps.Refresher.StartMailPoll(interval))
	}
	return tea.Batch(cmds...)
}

func (m Model) mailPollInterval() time.Duration {
	ma := m.deps.Config.MailAlert
	if !ma.Enabled || ma.PollIntervalSec <= 0 {
		return 0
	}
	return time.Duration(ma.PollIntervalSec) * time.Second
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.feedView.SetSize(contentWidth, contentHeight)
		m.peopleView.SetSize(contentWidth, contentHeight)
		m.leadView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can size themselves.
		return m.updateActiveView(msg)

	case appsync.FeedRefreshedMsg:
		if msg.Err != nil {
			m, toastCmd := m.withToast(
				fmt.Sprintf("Feed refresh failed: %v", msg.Err), true,
			)
			return m, toastCmd
		}
		m.unreadCount = msg.Unread
		return m, m.feedView.SyncFromStore()

	case appsync.PeopleRefreshedMsg:
		if msg.Err != nil {
			m, toastCmd := m.withToast(
				fmt.Sprintf("Loading people failed: %v", msg.Err), true,
			)
			return m, toastCmd
		}
		return m, m.peopleView.SetPeople(msg.Friends, msg.Suggestions)

	case appsync.AlertsIngestedMsg:
		// Mail poll results arrive on the refresher channel; keep
		// listening for the next one either way.
		waitCmd := m.deps.Refresher.WaitForNextResult()
		if msg.Err != nil {
			log.Printf("mail alert ingestion failed: %v", msg.Err)
			return m, waitCmd
		}
		if msg.NewLeads > 0 {
			m, toastCmd := m.withToast(
				fmt.Sprintf("%d new job lead(s)", msg.NewLeads), false,
			)
			return m, tea.Batch(waitCmd, toastCmd, m.leadView.LoadLeads())
		}
		return m, waitCmd

	case appsync.AuthExpiredMsg:
		m.previousView = m.currentView
		m.currentView = ViewSetup
		m.setupView = setupform.New(
			m.deps.Config,
			m.layout.ContentWidth(),
			m.layout.ContentHeight(),
		)
		m, toastCmd := m.withToast(
			"Session expired; update your credentials", true,
		)
		return m, tea.Batch(toastCmd, m.setupView.Init())

	case notiflist.DecisionMsg:
		return m.handleDecision(msg)

	case notiflist.MarkReadDoneMsg:
		if msg.Err != nil {
			m, toastCmd := m.withToast(
				fmt.Sprintf("Marking read failed: %v", msg.Err), true,
			)
			return m, toastCmd
		}
		// The server is authoritative for the counter; refetch.
		return m, m.deps.Refresher.RefreshFeed()

	case peoplelist.ConnectSentMsg:
		var cmd tea.Cmd
		m.peopleView, cmd = m.peopleView.Update(msg)
		var toastCmd tea.Cmd
		if msg.Err != nil {
			m, toastCmd = m.withToast(
				fmt.Sprintf("Connection request failed: %v", msg.Err), true,
			)
		} else {
			m, toastCmd = m.withToast("Connection request sent", false)
		}
		return m, tea.Batch(cmd, toastCmd)

	case peoplelist.RemovedMsg:
		if msg.Err != nil {
			m, toastCmd := m.withToast(
				fmt.Sprintf("Removing connection failed: %v", msg.Err), true,
			)
			return m, toastCmd
		}
		return m, m.deps.Refresher.RefreshPeople()

	case setupform.DoneMsg:
		return m.applySetup(msg.Config)

	case setupform.CancelledMsg:
		if !m.deps.Config.Configured() {
			// Nothing to go back to without a backend.
			return m, tea.Quit
		}
		m.currentView = m.previousView
		return m, nil

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if newModel, cmd, handled := m.handleGlobalKeys(msg); handled {
			return newModel, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleDecision turns an accept/reject outcome into a toast and a
// feed resync.
func (m Model) handleDecision(msg notiflist.DecisionMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.feedView, cmd = m.feedView.Update(msg)
	m.unreadCount = m.deps.Feed.Unread()

	res := msg.Result
	var toastCmd tea.Cmd
	if res.Err != nil {
		text := fmt.Sprintf("Could not %s request: %v", res.Decision, res.Err)
		if res.RolledBack {
			text += " (restored)"
		}
		m, toastCmd = m.withToast(text, true)
	} else {
		m, toastCmd = m.withToast(
			fmt.Sprintf("Request %sed", res.Decision), false,
		)
	}
	return m, tea.Batch(cmd, toastCmd)
}

// applySetup re-points the shared API client at the saved origin and
// token, then reloads everything.
func (m Model) applySetup(cfg *model.AppConfig) (tea.Model, tea.Cmd) {
	*m.deps.Config = *cfg

	token, err := credential.Get(credential.TokenKey)
	if err != nil {
		log.Printf("reading session token from keyring: %v", err)
	}
	m.deps.Client.SetCredentials(cfg.APIBaseURL, token)

	m.currentView = ViewFeed
	return m, m.startData()
}

// handleGlobalKeys processes keys that work regardless of the active
// view. Returns handled=false to let the active view see the key.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	// The setup form owns all input while active.
	if m.currentView == ViewSetup && msg.String() != "ctrl+c" {
		return m, nil, false
	}

	switch {
	case msg.String() == "ctrl+c":
		m.deps.Refresher.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Quit):
		m.deps.Refresher.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}

	case key.Matches(msg, m.keys.ViewFeed):
		m.currentView = ViewFeed
		return m, m.feedView.SyncFromStore(), true

	case key.Matches(msg, m.keys.ViewPeople):
		m.currentView = ViewPeople
		return m, m.deps.Refresher.RefreshPeople(), true

	case key.Matches(msg, m.keys.ViewLeads):
		m.currentView = ViewLeads
		return m, m.leadView.LoadLeads(), true

	case key.Matches(msg, m.keys.Refresh):
		cmds := []tea.Cmd{
			m.deps.Refresher.RefreshFeed(),
			m.deps.Refresher.RefreshPeople(),
		}
		if m.deps.Config.MailAlert.Enabled {
			cmds = append(cmds, m.deps.Refresher.IngestAlerts())
		}
		return m, tea.Batch(cmds...), true

	case key.Matches(msg, m.keys.Settings):
		m.previousView = m.currentView
		m.currentView = ViewSetup
		m.setupView = setupform.New(
			m.deps.Config,
			m.layout.ContentWidth(),
			m.layout.ContentHeight(),
		)
		return m, m.setupView.Init(), true
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewFeed:
		m.feedView, cmd = m.feedView.Update(msg)
	case ViewPeople:
		m.peopleView, cmd = m.peopleView.Update(msg)
	case ViewLeads:
		m.leadView, cmd = m.leadView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	}

	return m, cmd
}

// withToast sets a transient status message and schedules its removal.
func (m Model) withToast(text string, isErr bool) (Model, tea.Cmd) {
	m.toast = text
	m.toastIsErr = isErr
	m.toastSeq++
	seq := m.toastSeq
	return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerRight())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusText())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) headerTitle() string {
	switch m.currentView {
	case ViewPeople:
		return "CareerNet · People"
	case ViewLeads:
		return "CareerNet · Job Leads"
	case ViewSetup:
		return "CareerNet · Settings"
	case ViewHelp:
		return "CareerNet · Help"
	default:
		return "CareerNet"
	}
}

// headerRight renders the unread badge shown in every view.
func (m Model) headerRight() string {
	if m.unreadCount <= 0 {
		return ""
	}
	return fmt.Sprintf(" %d unread ", m.unreadCount)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewFeed:
		return m.feedView.View()
	case ViewPeople:
		return m.peopleView.View()
	case ViewLeads:
		return m.leadView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewSetup:
		return m.setupView.View()
	default:
		return ""
	}
}

// statusText returns the toast when present, otherwise key hints for
// the active view.
func (m Model) statusText() string {
	if m.toast != "" {
		if m.toastIsErr {
			return "✗ " + m.toast
		}
		return "✓ " + m.toast
	}

	switch m.currentView {
	case ViewFeed:
		return "a accept | x reject | enter read | A all read | r refresh | 2 people | 3 leads | ? help"
	case ViewPeople:
		return "tab connections/suggestions | c connect | d remove | r refresh | 1 feed | ? help"
	case ViewLeads:
		return "enter open | r refresh | 1 feed | 2 people | ? help"
	case ViewSetup:
		return "enter next field | esc cancel"
	case ViewHelp:
		return "? close help | esc back"
	default:
		return "q quit | ? help"
	}
}
