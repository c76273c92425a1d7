package setupform

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/careernet/internal/model"
)

// press feeds a key to the model and then drains the resulting command
// tree, so field progression messages make it back into the form.
func press(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	return drain(next, cmd)
}

func drain(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 256; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case cursor.BlinkMsg:
			// Blink messages regenerate themselves forever.
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m
}

func typeRunes(m Model, s string) Model {
	return press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func enter(m Model) Model {
	return press(m, tea.KeyMsg{Type: tea.KeyEnter})
}

// Typed values must survive the trip through the form: the validation
// request has to carry the entered origin and token, not the zero
// values of whatever model copy built the form.
func TestTypedCredentialsReachValidation(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"notifications":[],"unreadCount":0}`))
		}))
	defer srv.Close()

	m := New(&model.AppConfig{}, 80, 40)
	_ = m.Init()

	m = typeRunes(m, srv.URL)
	m = enter(m)
	m = typeRunes(m, "sekrit-token")
	m = enter(m)

	// Second group: accept the defaults for every mail field.
	for i := 0; i < 6; i++ {
		m = enter(m)
	}

	require.Equal(t, ModeResult, m.mode, "form should have completed and validated")
	require.NoError(t, m.validError)

	assert.Equal(t, srv.URL, m.formBaseURL)
	assert.Equal(t, "sekrit-token", m.formToken)
	assert.Equal(t, "/notifications", gotPath)
	assert.Equal(t, "Bearer sekrit-token", gotAuth)
}

// A failed validation reopens the form with the typed values intact.
func TestRejectedValidationKeepsTypedValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
	defer srv.Close()

	m := New(&model.AppConfig{}, 80, 40)
	_ = m.Init()

	m = typeRunes(m, srv.URL)
	m = enter(m)
	m = typeRunes(m, "expired-token")
	m = enter(m)
	for i := 0; i < 6; i++ {
		m = enter(m)
	}

	require.Equal(t, ModeResult, m.mode)
	require.Error(t, m.validError)

	// Enter on the error screen rebuilds the form for corrections,
	// prefilled with what the user already typed.
	m = enter(m)
	assert.Equal(t, ModeForm, m.mode)
	assert.Equal(t, srv.URL, m.formBaseURL)
}
