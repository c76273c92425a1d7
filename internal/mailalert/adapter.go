package mailalert

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/store"
)

// Alert subjects follow "New opening: <title> at <company> (<location>)".
// Older alerts omitted the location suffix.
var subjectPattern = regexp.MustCompile(
	`^(?:New opening|Job alert):\s*(.+?)\s+at\s+(.+?)(?:\s+\((.+)\))?$`,
)

var urlPattern = regexp.MustCompile(`https?://[^\s>]+`)

// Ingestor fetches alert mail and writes the extracted leads into the
// local cache.
type Ingestor struct {
	client *IMAPClient
	store  store.Store
	sender string
	days   int
	limit  int
}

// NewIngestor creates an ingestor for the configured mailbox. sender
// filters to the platform's alert address; days and limit bound the
// fetch window.
func NewIngestor(
	client *IMAPClient,
	s store.Store,
	sender string,
) *Ingestor {
	return &Ingestor{
		client: client,
		store:  s,
		sender: sender,
		days:   14,
		limit:  100,
	}
}

// Ingest fetches recent alert messages and upserts them as leads.
// Returns the number of leads that were new to the cache; messages
// already ingested are skipped by message id.
func (i *Ingestor) Ingest(ctx context.Context) (int, error) {
	alerts, err := i.client.FetchAlerts(ctx, i.sender, i.days, i.limit)
	if err != nil {
		return 0, fmt.Errorf("fetching job alerts: %w", err)
	}

	var leads []model.Lead
	for _, alert := range alerts {
		lead, ok := leadFromAlert(alert)
		if !ok {
			continue
		}
		leads = append(leads, lead)
	}

	inserted, err := i.store.UpsertLeads(ctx, leads)
	if err != nil {
		return 0, fmt.Errorf("caching job alerts: %w", err)
	}
	return inserted, nil
}

// leadFromAlert converts one alert email into a Lead. Messages whose
// subject does not match the alert format are skipped rather than
// ingested as noise.
func leadFromAlert(alert AlertMessage) (model.Lead, bool) {
	if alert.MessageID == "" {
		return model.Lead{}, false
	}

	m := subjectPattern.FindStringSubmatch(strings.TrimSpace(alert.Subject))
	if m == nil {
		return model.Lead{}, false
	}

	lead := model.Lead{
		MessageID:  alert.MessageID,
		Title:      m[1],
		Company:    m[2],
		Location:   m[3],
		Summary:    summarize(alert.TextBody),
		ReceivedAt: alert.Date,
	}

	if url := urlPattern.FindString(alert.TextBody); url != "" {
		lead.URL = url
	}

	return lead, true
}

// summarize trims the body to the first non-empty lines, capped so the
// list view stays readable.
func summarize(body string) string {
	const maxLen = 280

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) >= 3 {
			break
		}
	}

	summary := strings.Join(lines, " ")
	if len(summary) > maxLen {
		cut := maxLen - len("…")
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut] + "…"
	}
	return summary
}
