package leadlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/theme"
)

// Item wraps a model.Lead for the bubbles/list.
type Item struct {
	Lead model.Lead
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string {
	return i.Lead.Title + " " + i.Lead.Company
}

// Title returns the lead headline.
func (i Item) Title() string { return i.Lead.Title }

// Description returns company and location.
func (i Item) Description() string {
	return i.Lead.Company + " " + i.Lead.Location
}

// Delegate renders lead lines.
type Delegate struct{}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single lead line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	lead := it.Lead
	isSelected := index == m.Index()

	marker := "●"
	if lead.Viewed {
		marker = " "
	}

	company := theme.ConnectionStatusStyle("accepted").Render(lead.Company)
	location := ""
	if lead.Location != "" {
		location = theme.DimmedStyle.Render(" · " + lead.Location)
	}

	line := fmt.Sprintf("%s %s — %s%s", marker, lead.Title, company, location)
	if lead.Viewed {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
