// Package network orchestrates user-initiated connection decisions and
// tracks session-local request state. The coordinator here is the only
// layer allowed to swallow an error, and only for the best-effort
// mark-read follow-up after a successful accept or reject.
package network

import (
	"context"
	"fmt"
	"log"

	"github.com/nhle/careernet/internal/feed"
	"github.com/nhle/careernet/internal/model"
)

// ConnectionMutator is the slice of the connections resource client the
// coordinator needs.
type ConnectionMutator interface {
	AcceptConnection(ctx context.Context, connectionID string) (*model.Connection, error)
	RejectConnection(ctx context.Context, connectionID string) (*model.Connection, error)
}

// ReadMarker is the slice of the notifications resource client the
// coordinator needs for the follow-up mark-read.
type ReadMarker interface {
	MarkRead(ctx context.Context, notificationID string) error
}

// Decision is the user's verdict on a pending connection request.
type Decision int

const (
	DecisionAccept Decision = iota
	DecisionReject
)

func (d Decision) String() string {
	if d == DecisionAccept {
		return "accept"
	}
	return "reject"
}

// Result is the outcome signal emitted to the caller for toast/log
// presentation.
type Result struct {
	Decision   Decision
	Connection *model.Connection

	// Err is non-nil when the mutation failed and the feed was rolled
	// back. The caller must surface it; a failed decision never
	// disappears silently.
	Err error

	// RolledBack reports whether the optimistic removal was reverted
	// via an authoritative refetch.
	RolledBack bool
}

// Coordinator runs the accept/reject protocol for pending connection
// requests: optimistic feed removal, remote mutation, best-effort
// mark-read on success, rollback on failure.
type Coordinator struct {
	connections ConnectionMutator
	readMarker  ReadMarker
	feed        *feed.Store
}

// NewCoordinator wires the coordinator to the two resource clients and
// the feed store. The coordinator borrows the store's mutation methods;
// it never touches the underlying list directly.
func NewCoordinator(
	connections ConnectionMutator,
	readMarker ReadMarker,
	feedStore *feed.Store,
) *Coordinator {
	return &Coordinator{
		connections: connections,
		readMarker:  readMarker,
		feed:        feedStore,
	}
}

// Stage applies the optimistic feed removal ahead of Accept or Reject.
// Callers that schedule the remote mutation on another goroutine (the
// Bubble Tea command model) use it so the entry disappears before the
// network call is even dispatched. Accept and Reject re-apply the
// removal themselves; removing an absent id is a no-op, so staging
// first is always safe and never double-decrements the counter.
func (c *Coordinator) Stage(notificationID string) {
	c.feed.OptimisticRemove(notificationID)
}

// Accept accepts the pending connection behind a connection_request
// notification. See resolve for the protocol.
func (c *Coordinator) Accept(
	ctx context.Context,
	connectionID model.ConnectionID,
	notificationID string,
) Result {
	return c.resolve(ctx, DecisionAccept, connectionID, notificationID)
}

// Reject rejects the pending connection behind a connection_request
// notification. Identical shape to Accept, opposite server call.
func (c *Coordinator) Reject(
	ctx context.Context,
	connectionID model.ConnectionID,
	notificationID string,
) Result {
	return c.resolve(ctx, DecisionReject, connectionID, notificationID)
}

// resolve runs the shared protocol:
//
//  1. The connection id arrives pre-normalized (model.ConnectionID
//     decodes both wire shapes the server emits).
//  2. Remove the notification from the feed before the network call,
//     so the decision is visible instantly and the accept/reject
//     controls cannot be double-submitted.
//  3. Issue the connection mutation.
//  4. On success, mark the notification read as a best-effort hygiene
//     step; its failure is logged and swallowed.
//  5. On mutation failure, roll the feed back to server truth so the
//     entry and its controls reappear, and return the error for
//     user-visible surfacing.
func (c *Coordinator) resolve(
	ctx context.Context,
	decision Decision,
	connectionID model.ConnectionID,
	notificationID string,
) Result {
	id := connectionID.String()
	if id == "" {
		return Result{
			Decision: decision,
			Err: fmt.Errorf(
				"notification %s has no connection reference",
				notificationID,
			),
		}
	}

	c.feed.OptimisticRemove(notificationID)

	var conn *model.Connection
	var err error
	if decision == DecisionAccept {
		conn, err = c.connections.AcceptConnection(ctx, id)
	} else {
		conn, err = c.connections.RejectConnection(ctx, id)
	}

	if err != nil {
		rollbackErr := c.feed.Rollback(ctx)
		if rollbackErr != nil {
			log.Printf(
				"rollback after failed %s of connection %s: %v",
				decision, id, rollbackErr,
			)
		}
		return Result{
			Decision:   decision,
			Err:        fmt.Errorf("%s connection: %w", decision, err),
			RolledBack: rollbackErr == nil,
		}
	}

	if markErr := c.readMarker.MarkRead(ctx, notificationID); markErr != nil {
		// The entry is already out of view; read-state is hygiene,
		// not correctness.
		log.Printf(
			"mark-read for notification %s after %s: %v",
			notificationID, decision, markErr,
		)
	}

	return Result{Decision: decision, Connection: conn}
}
