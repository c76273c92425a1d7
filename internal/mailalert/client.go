// Package mailalert ingests the platform's job-alert emails from the
// user's mailbox into the local lead cache. The backend mails one
// alert per matching opening; the client folds recent alerts into a
// browsable list without any extra server API.
package mailalert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/careernet/internal/api"
)

// AlertMessage is a fetched job-alert email: envelope data plus the
// extracted plain-text body.
type AlertMessage struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	TextBody  string
}

// IMAPClient wraps go-imap v2 for fetching alert mail from an INBOX.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(
	host, port, username, password string, tls bool,
) *IMAPClient {
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// connect establishes a connection to the IMAP server and
// authenticates. The caller must Logout the returned client.
func (c *IMAPClient) connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &api.AuthError{
			Message: fmt.Sprintf(
				"mailbox authentication failed for %s: %v",
				c.username, err,
			),
		}
	}

	return client, nil
}

// FetchAlerts selects INBOX, searches for messages from the alert
// sender over the last days, and returns them with parsed bodies,
// most recent last. limit caps the number of messages fetched.
func (c *IMAPClient) FetchAlerts(
	ctx context.Context,
	sender string,
	days int,
	limit int,
) ([]AlertMessage, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	if days <= 0 {
		days = 7
	}
	criteria := &imap.SearchCriteria{
		Since: time.Now().AddDate(0, 0, -days),
	}
	if sender != "" {
		criteria.Header = []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: sender},
		}
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching alert messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var alerts []AlertMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		alert := AlertMessage{}
		if buf.Envelope != nil {
			alert.MessageID = buf.Envelope.MessageID
			alert.Subject = buf.Envelope.Subject
			alert.Date = buf.Envelope.Date
			if len(buf.Envelope.From) > 0 {
				alert.From = buf.Envelope.From[0].Addr()
			}
		}

		if raw := buf.FindBodySection(bodySection); raw != nil {
			alert.TextBody = extractTextBody(raw)
		}

		alerts = append(alerts, alert)
	}

	if err := fetchCmd.Close(); err != nil {
		return alerts, fmt.Errorf("fetching alert messages: %w", err)
	}

	return alerts, nil
}

// extractTextBody parses a raw RFC 2822 message with go-message and
// returns its text/plain part, falling back to the raw bytes when the
// MIME structure cannot be parsed.
func extractTextBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") {
			continue
		}

		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		return string(body)
	}

	return ""
}
