package api

import (
	"context"
	"fmt"

	"github.com/nhle/careernet/internal/model"
)

// NotificationsClient issues notification feed operations against the
// backend. Stateless, like ConnectionsClient.
type NotificationsClient struct {
	client *Client
}

// NewNotificationsClient creates a notifications resource client on top
// of the shared HTTP client.
func NewNotificationsClient(c *Client) *NotificationsClient {
	return &NotificationsClient{client: c}
}

// ListNotifications fetches the full feed. The returned UnreadCount is
// authoritative and replaces any locally computed value.
func (c *NotificationsClient) ListNotifications(
	ctx context.Context,
) (*model.FeedPage, error) {
	var page model.FeedPage
	if err := c.client.Get(ctx, "/notifications", &page); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return &page, nil
}

// MarkRead marks a single notification as read. Marking an
// already-read notification is not an error the caller needs to act on.
func (c *NotificationsClient) MarkRead(
	ctx context.Context,
	notificationID string,
) error {
	path := fmt.Sprintf("/notifications/%s/read", notificationID)

	if err := c.client.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf(
			"marking notification %s read: %w", notificationID, err,
		)
	}
	return nil
}

// MarkAllRead marks every currently-unread notification read
// server-side. Callers must refetch afterwards rather than infer the
// result, since other notifications may have arrived concurrently.
func (c *NotificationsClient) MarkAllRead(ctx context.Context) error {
	if err := c.client.Put(ctx, "/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}
