package model

import "time"

// NotificationType tags the event a feed entry describes.
type NotificationType string

const (
	NotificationNewUser            NotificationType = "new_user"
	NotificationConnectionRequest  NotificationType = "connection_request"
	NotificationConnectionAccepted NotificationType = "connection_accepted"
	NotificationConnectionRejected NotificationType = "connection_rejected"
	NotificationGeneric            NotificationType = "generic"
)

// Notification is a single feed entry. Notifications are created and
// deleted server-side only; the client mutates them exclusively through
// the mark-read operations, and Read never reverts to false.
type Notification struct {
	// ID is the server-assigned identifier.
	ID string `json:"_id"`

	// Type tags the triggering event.
	Type NotificationType `json:"type"`

	// Message is the display text.
	Message string `json:"message"`

	// Read reports whether the user has seen this entry.
	Read bool `json:"read"`

	// ConnectionID back-references the related connection for
	// connection-typed entries. Empty otherwise.
	ConnectionID ConnectionID `json:"connectionId,omitempty"`

	// RelatedUser is the denormalized profile of the user the event
	// concerns, when the server populates it.
	RelatedUser *UserProfile `json:"relatedUser,omitempty"`

	// CreatedAt orders the feed. The server returns entries newest
	// first and the client trusts that order.
	CreatedAt time.Time `json:"createdAt"`
}

// IsConnectionRequest reports whether this entry carries pending
// accept/reject actions.
func (n Notification) IsConnectionRequest() bool {
	return n.Type == NotificationConnectionRequest && n.ConnectionID != ""
}

// FeedPage is the full feed snapshot returned by the notifications
// endpoint. UnreadCount is authoritative and overwrites any locally
// derived value.
type FeedPage struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}
