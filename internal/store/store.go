package store

import (
	"context"

	"github.com/nhle/careernet/internal/model"
)

// LeadFilter controls filtering, sorting, and pagination for lead queries.
type LeadFilter struct {
	Viewed  *bool   // filter by viewed state, nil for all
	Company *string // exact company match
	Query   *string // search title + company + summary
	Limit   int
	Offset  int
}

// Store defines the persistence interface for locally cached job leads.
// The connection/notification feed is deliberately not persisted here:
// the server owns that state and the client refetches it.
type Store interface {
	UpsertLeads(ctx context.Context, leads []model.Lead) (int, error)
	GetLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	GetLeadByID(ctx context.Context, id string) (*model.Lead, error)
	MarkLeadViewed(ctx context.Context, id string) error
	CountUnviewedLeads(ctx context.Context) (int, error)
	DeleteLead(ctx context.Context, id string) error
}
