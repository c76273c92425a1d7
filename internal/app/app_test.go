package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/careernet/internal/feed"
	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/network"
	appsync "github.com/nhle/careernet/internal/sync"
)

func testDeps() Deps {
	feedStore := feed.NewStore(nil)
	return Deps{
		Config:      &model.AppConfig{APIBaseURL: "http://localhost:1"},
		Feed:        feedStore,
		Coordinator: network.NewCoordinator(nil, nil, feedStore),
		Tracker:     network.NewRequestTracker(),
		Refresher:   appsync.NewRefresher(feedStore, nil, nil),
	}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got, cmd
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// The global keymap drives view routing: the bindings declared in the
// keys package must be the ones the root model answers to.
func TestGlobalKeysRouteViews(t *testing.T) {
	m := New(testDeps())
	require.Equal(t, ViewFeed, m.currentView)

	m, _ = press(t, m, runeKey("2"))
	assert.Equal(t, ViewPeople, m.currentView)

	m, _ = press(t, m, runeKey("3"))
	assert.Equal(t, ViewLeads, m.currentView)

	m, _ = press(t, m, runeKey("1"))
	assert.Equal(t, ViewFeed, m.currentView)
}

func TestHelpToggleRestoresPreviousView(t *testing.T) {
	m := New(testDeps())

	m, _ = press(t, m, runeKey("2"))
	require.Equal(t, ViewPeople, m.currentView)

	m, _ = press(t, m, runeKey("?"))
	assert.Equal(t, ViewHelp, m.currentView)

	m, _ = press(t, m, runeKey("?"))
	assert.Equal(t, ViewPeople, m.currentView)

	m, _ = press(t, m, runeKey("?"))
	require.Equal(t, ViewHelp, m.currentView)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewPeople, m.currentView)
}

func TestQuitKeyStopsAndQuits(t *testing.T) {
	m := New(testDeps())

	_, cmd := press(t, m, runeKey("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestSettingsKeyOpensSetup(t *testing.T) {
	m := New(testDeps())

	m, cmd := press(t, m, runeKey("s"))
	assert.Equal(t, ViewSetup, m.currentView)
	assert.NotNil(t, cmd)
}
