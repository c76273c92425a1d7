package notiflist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Message }

// Title returns the notification message for the list.
func (i Item) Title() string { return i.Notification.Message }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	return string(i.Notification.Type)
}

// Delegate implements list.ItemDelegate for rendering feed entries.
type Delegate struct{}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single feed entry line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	n := it.Notification
	isSelected := index == m.Index()

	var marker string
	if n.Read {
		marker = " "
	} else {
		marker = "●"
	}

	typeBadge := theme.NotificationStyle(string(n.Type)).
		Render(typeLabel(n.Type))

	message := n.Message
	if !n.Read {
		message = theme.UnreadStyle.Render(message)
	}

	actions := ""
	if n.IsConnectionRequest() {
		actions = theme.HelpStyle.Render("  [a]ccept [x]reject")
	}

	timeStr := theme.DimmedStyle.Render(relativeTime(n.CreatedAt))

	line := fmt.Sprintf(
		"%s %s %s%s  %s", marker, typeBadge, message, actions, timeStr,
	)

	if n.Read {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// typeLabel returns a short badge text for the given entry type.
func typeLabel(t model.NotificationType) string {
	switch t {
	case model.NotificationConnectionRequest:
		return "REQ"
	case model.NotificationConnectionAccepted:
		return "ACC"
	case model.NotificationConnectionRejected:
		return "REJ"
	case model.NotificationNewUser:
		return "NEW"
	default:
		return "INF"
	}
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
