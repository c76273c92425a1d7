package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ConnectionStatus is the lifecycle state of a connection record.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is a relationship record between two users. It starts as a
// directed request (requester -> receiver) in status pending and becomes
// mutual on acceptance. Accepted and rejected are terminal: a new request
// between the same pair after rejection gets a fresh server-assigned id.
type Connection struct {
	// ID is the server-assigned identifier, immutable once created.
	ID string `json:"_id"`

	// Requester is the id of the user who sent the request.
	Requester string `json:"requester"`

	// Receiver is the id of the user the request was sent to.
	Receiver string `json:"receiver"`

	// Status is the current lifecycle state.
	Status ConnectionStatus `json:"status"`

	// ConnectedAt is set only on transition to accepted.
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Friend pairs an accepted connection with the denormalized profile of
// the counterpart user, as returned by the my-connections endpoint.
type Friend struct {
	Connection Connection  `json:"connection"`
	Profile    UserProfile `json:"friend"`
}

// ConnectionID is a connection reference as it appears on the wire.
// The server has been observed to emit two shapes for the same field:
// a bare id string ("abc123") and an embedded object ({"_id":"abc123"}).
// Decoding normalizes both into the scalar id, so nothing above the
// JSON boundary ever sees the object form.
type ConnectionID string

// String returns the normalized scalar id.
func (c ConnectionID) String() string { return string(c) }

// UnmarshalJSON accepts either a bare string id or an embedded object
// carrying the id under "_id" (or "id").
func (c *ConnectionID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ConnectionID(s)
		return nil
	}

	var obj struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding connection reference: %w", err)
	}

	if obj.MongoID != "" {
		*c = ConnectionID(obj.MongoID)
	} else {
		*c = ConnectionID(obj.ID)
	}
	return nil
}

// MarshalJSON always emits the scalar form.
func (c ConnectionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}
