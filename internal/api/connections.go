package api

import (
	"context"
	"fmt"

	"github.com/nhle/careernet/internal/model"
)

// ConnectionsClient issues connection operations against the backend.
// It owns no state: every method is a pure request/response mapping.
type ConnectionsClient struct {
	client *Client
}

// NewConnectionsClient creates a connections resource client on top of
// the shared HTTP client.
func NewConnectionsClient(c *Client) *ConnectionsClient {
	return &ConnectionsClient{client: c}
}

// RequestConnection sends a connection request to receiverID. The
// server rejects self-requests and duplicates with a ValidationError.
func (c *ConnectionsClient) RequestConnection(
	ctx context.Context,
	receiverID string,
) (*model.Connection, error) {
	body := map[string]string{"receiverId": receiverID}

	var conn model.Connection
	err := c.client.Post(ctx, "/connections/request", body, &conn)
	if err != nil {
		return nil, fmt.Errorf(
			"requesting connection to %s: %w", receiverID, err,
		)
	}
	return &conn, nil
}

// AcceptConnection transitions a pending connection to accepted. A
// NotFoundError means the request was already actioned or removed by
// the other party.
func (c *ConnectionsClient) AcceptConnection(
	ctx context.Context,
	connectionID string,
) (*model.Connection, error) {
	path := fmt.Sprintf("/connections/%s/accept", connectionID)

	var conn model.Connection
	if err := c.client.Put(ctx, path, nil, &conn); err != nil {
		return nil, fmt.Errorf(
			"accepting connection %s: %w", connectionID, err,
		)
	}
	return &conn, nil
}

// RejectConnection transitions a pending connection to rejected.
func (c *ConnectionsClient) RejectConnection(
	ctx context.Context,
	connectionID string,
) (*model.Connection, error) {
	path := fmt.Sprintf("/connections/%s/reject", connectionID)

	var conn model.Connection
	if err := c.client.Put(ctx, path, nil, &conn); err != nil {
		return nil, fmt.Errorf(
			"rejecting connection %s: %w", connectionID, err,
		)
	}
	return &conn, nil
}

// ListMyConnections returns the user's accepted connections, each
// paired with the counterpart profile.
func (c *ConnectionsClient) ListMyConnections(
	ctx context.Context,
) ([]model.Friend, error) {
	var friends []model.Friend
	err := c.client.Get(ctx, "/connections/my-connections", &friends)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	return friends, nil
}

// ListSuggestions returns users with no connection record in either
// direction.
func (c *ConnectionsClient) ListSuggestions(
	ctx context.Context,
) ([]model.UserProfile, error) {
	var suggestions []model.UserProfile
	err := c.client.Get(ctx, "/connections/suggestions", &suggestions)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}
	return suggestions, nil
}

// RemoveConnection deletes an accepted connection. Removal is
// idempotent from the caller's perspective: a NotFoundError on a
// repeated call means the connection is already gone and is absorbed
// as success.
func (c *ConnectionsClient) RemoveConnection(
	ctx context.Context,
	connectionID string,
) error {
	path := fmt.Sprintf("/connections/%s", connectionID)

	err := c.client.Delete(ctx, path, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf(
			"removing connection %s: %w", connectionID, err,
		)
	}
	return nil
}
