package peoplelist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/network"
	"github.com/nhle/careernet/internal/theme"
)

// FriendItem wraps an accepted connection for the bubbles/list.
type FriendItem struct {
	Friend model.Friend
}

// FilterValue returns the string used for fuzzy filtering.
func (i FriendItem) FilterValue() string {
	return i.Friend.Profile.DisplayName()
}

// Title returns the counterpart's display name.
func (i FriendItem) Title() string {
	return i.Friend.Profile.DisplayName()
}

// Description returns the counterpart's headline.
func (i FriendItem) Description() string {
	return i.Friend.Profile.Headline
}

// SuggestionItem wraps a suggested user for the bubbles/list.
type SuggestionItem struct {
	Profile model.UserProfile
}

// FilterValue returns the string used for fuzzy filtering.
func (i SuggestionItem) FilterValue() string {
	return i.Profile.DisplayName()
}

// Title returns the suggested user's display name.
func (i SuggestionItem) Title() string {
	return i.Profile.DisplayName()
}

// Description returns the suggested user's headline.
func (i SuggestionItem) Description() string {
	return i.Profile.Headline
}

// Delegate renders both item kinds. It holds the session's request
// tracker so a suggestion the user already messaged renders as sent
// even while the server still lists it.
type Delegate struct {
	tracker *network.RequestTracker
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single people line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	isSelected := index == m.Index()

	var line string
	switch it := item.(type) {
	case FriendItem:
		status := theme.ConnectionStatusStyle("accepted").Render("✓")
		name := it.Friend.Profile.DisplayName()
		headline := theme.DimmedStyle.Render(it.Friend.Profile.Headline)
		line = fmt.Sprintf("%s %s  %s", status, name, headline)

	case SuggestionItem:
		name := it.Profile.DisplayName()
		headline := theme.DimmedStyle.Render(it.Profile.Headline)
		action := theme.HelpStyle.Render("[c]onnect")
		if d.tracker != nil && d.tracker.IsRequested(it.Profile.ID) {
			action = theme.ConnectionStatusStyle("pending").
				Render("request sent")
		}
		line = fmt.Sprintf("+ %s  %s  %s", name, headline, action)

	default:
		return
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
