package setupform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careernet/internal/api"
	"github.com/nhle/careernet/internal/credential"
	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/theme"
)

// Mode represents the current state of the setup view.
type Mode int

const (
	ModeForm       Mode = iota // Editing account settings
	ModeValidating             // Testing the connection
	ModeResult                 // Showing the validation result
)

// DoneMsg signals that setup finished and the app should rebuild its
// clients from the saved configuration.
type DoneMsg struct {
	Config *model.AppConfig
}

// CancelledMsg signals the user backed out without saving.
type CancelledMsg struct{}

// validatedMsg carries the result of the connection check.
type validatedMsg struct {
	err error
}

// Form field keys. Values are read back from the form by key: the form
// is shared by pointer across model copies, while fields bound by
// pointer would land in whichever copy existed at construction.
const (
	keyBaseURL      = "base_url"
	keyToken        = "token"
	keyMailEnabled  = "mail_enabled"
	keyIMAPHost     = "imap_host"
	keyIMAPPort     = "imap_port"
	keyMailUser     = "mail_user"
	keyMailPassword = "mail_password"
	keySender       = "sender"
)

// Model is the Bubble Tea model for the first-run/settings form.
type Model struct {
	mode Mode
	cfg  *model.AppConfig
	form *huh.Form

	// Form field values, synced from the form when it completes.
	formBaseURL      string
	formToken        string
	formMailEnabled  bool
	formIMAPHost     string
	formIMAPPort     string
	formMailUser     string
	formMailPassword string
	formSender       string

	spinner    spinner.Model
	validError error
	statusMsg  string

	width, height int
}

// New creates the setup view pre-filled from the current configuration.
func New(cfg *model.AppConfig, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:            ModeForm,
		cfg:             cfg,
		formBaseURL:     cfg.APIBaseURL,
		formMailEnabled: cfg.MailAlert.Enabled,
		formIMAPHost:    cfg.MailAlert.IMAPHost,
		formIMAPPort:    cfg.MailAlert.IMAPPort,
		formMailUser:    cfg.MailAlert.Username,
		formSender:      cfg.MailAlert.SenderFilter,
		spinner:         sp,
		width:           width,
		height:          height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the embedded form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	baseURL := m.formBaseURL
	mailEnabled := m.formMailEnabled
	imapHost := m.formIMAPHost
	imapPort := m.formIMAPPort
	mailUser := m.formMailUser
	sender := m.formSender
	token := m.formToken

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(keyBaseURL).
				Title("API Origin").
				Description("Base URL of the careernet backend").
				Placeholder("https://api.careernet.app").
				Value(&baseURL).
				Validate(validateURL),
			huh.NewInput().
				Key(keyToken).
				Title("Session Token").
				Description("Bearer credential for your account").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(validateRequired("Token")),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key(keyMailEnabled).
				Title("Ingest job-alert emails?").
				Value(&mailEnabled),
			huh.NewInput().
				Key(keyIMAPHost).
				Title("IMAP Host").
				Placeholder("imap.example.com").
				Value(&imapHost),
			huh.NewInput().
				Key(keyIMAPPort).
				Title("IMAP Port").
				Placeholder("993").
				Value(&imapPort),
			huh.NewInput().
				Key(keyMailUser).
				Title("Mailbox User").
				Value(&mailUser),
			huh.NewInput().
				Key(keyMailPassword).
				Title("Mailbox Password").
				EchoMode(huh.EchoModePassword),
			huh.NewInput().
				Key(keySender).
				Title("Alert Sender").
				Description("Only mail from this address is ingested").
				Value(&sender),
		),
	).WithWidth(m.formWidth())
}

// syncFromForm copies the form's current values into the model. Called
// once the form completes, so validate/save/rebuild read what the user
// actually typed rather than the prefill.
func (m *Model) syncFromForm() {
	m.formBaseURL = m.form.GetString(keyBaseURL)
	m.formToken = m.form.GetString(keyToken)
	m.formMailEnabled = m.form.GetBool(keyMailEnabled)
	m.formIMAPHost = m.form.GetString(keyIMAPHost)
	m.formIMAPPort = m.form.GetString(keyIMAPPort)
	m.formMailUser = m.form.GetString(keyMailUser)
	m.formMailPassword = m.form.GetString(keyMailPassword)
	m.formSender = m.form.GetString(keySender)
}

// Update handles messages for the setup view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case validatedMsg:
		m.validError = msg.err
		m.mode = ModeResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeResult {
			return m.handleResultKeys(msg)
		}
		if m.mode == ModeValidating {
			return m, nil
		}
	}

	return m.updateForm(msg)
}

// updateForm forwards messages to the huh form and reacts to its
// terminal states.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.syncFromForm()
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.validate())
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	return m, cmd
}

// validate checks the entered origin and token with a live feed fetch
// before anything is persisted.
func (m Model) validate() tea.Cmd {
	baseURL := strings.TrimSpace(m.formBaseURL)
	token := m.formToken
	return func() tea.Msg {
		client := api.NewClient(baseURL, token)
		notifs := api.NewNotificationsClient(client)
		_, err := notifs.ListNotifications(context.Background())
		return validatedMsg{err: err}
	}
}

// handleResultKeys processes key events on the validation result screen.
func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.validError != nil {
			// Re-open the form for corrections.
			m.mode = ModeForm
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m.save()
	case "esc":
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

// save persists the configuration and credentials, then signals done.
func (m Model) save() (Model, tea.Cmd) {
	cfg := *m.cfg
	cfg.APIBaseURL = strings.TrimSpace(m.formBaseURL)
	cfg.MailAlert.Enabled = m.formMailEnabled
	cfg.MailAlert.IMAPHost = strings.TrimSpace(m.formIMAPHost)
	if p := strings.TrimSpace(m.formIMAPPort); p != "" {
		cfg.MailAlert.IMAPPort = p
	}
	cfg.MailAlert.Username = strings.TrimSpace(m.formMailUser)
	if s := strings.TrimSpace(m.formSender); s != "" {
		cfg.MailAlert.SenderFilter = s
	}

	if err := credential.Set(credential.TokenKey, m.formToken); err != nil {
		m.statusMsg = fmt.Sprintf("Error saving credential: %v", err)
		m.mode = ModeForm
		return m, nil
	}
	if m.formMailPassword != "" {
		if err := credential.Set(
			credential.MailPasswordKey, m.formMailPassword,
		); err != nil {
			m.statusMsg = fmt.Sprintf("Error saving mail credential: %v", err)
			m.mode = ModeForm
			return m, nil
		}
	}

	if err := model.SaveConfig(model.DefaultConfigPath(), &cfg); err != nil {
		m.statusMsg = fmt.Sprintf("Error saving config: %v", err)
		m.mode = ModeForm
		return m, nil
	}

	saved := cfg
	return m, func() tea.Msg { return DoneMsg{Config: &saved} }
}

// View renders the setup view for the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeValidating:
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(m.spinner.View() + " Checking connection…")

	case ModeResult:
		var body string
		if m.validError != nil {
			body = theme.ErrorStyle.Render(
				fmt.Sprintf("Connection failed:\n%v", m.validError),
			) + "\n\n" + theme.HelpStyle.Render(
				"enter: edit settings · esc: cancel",
			)
		} else {
			body = theme.SuccessStyle.Render("Connection OK.") +
				"\n\n" + theme.HelpStyle.Render(
				"enter: save · esc: cancel",
			)
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(body)
	}

	form := m.form.View()
	if m.statusMsg != "" {
		form += "\n" + theme.ErrorStyle.Render(m.statusMsg)
	}
	return form
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

// validateRequired rejects empty input for the named field.
func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// validateURL rejects input that does not parse as an absolute http(s) URL.
func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter a full URL including scheme")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	return nil
}
