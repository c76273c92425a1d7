package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/careernet/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertLeads inserts new leads, skipping any whose message id is
// already cached. Returns the number of leads actually inserted, so
// callers can report how many alerts were new.
func (s *SQLiteStore) UpsertLeads(
	ctx context.Context,
	leads []model.Lead,
) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO leads (
			id, message_id, title, company, location,
			url, summary, viewed, received_at, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO NOTHING`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, l := range leads {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		if l.IngestedAt.IsZero() {
			l.IngestedAt = time.Now()
		}

		res, err := stmt.ExecContext(ctx,
			l.ID, l.MessageID, l.Title, l.Company, l.Location,
			l.URL, l.Summary, boolToInt(l.Viewed),
			l.ReceivedAt.UTC(), l.IngestedAt.UTC(),
		)
		if err != nil {
			return 0, fmt.Errorf("upserting lead %s: %w", l.MessageID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetLeads retrieves leads matching the provided filter, newest first.
func (s *SQLiteStore) GetLeads(
	ctx context.Context,
	filter LeadFilter,
) ([]model.Lead, error) {
	var conditions []string
	var args []interface{}

	if filter.Viewed != nil {
		conditions = append(conditions, "viewed = ?")
		args = append(args, boolToInt(*filter.Viewed))
	}
	if filter.Company != nil {
		conditions = append(conditions, "company = ?")
		args = append(args, *filter.Company)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions,
			"(title LIKE ? OR company LIKE ? OR summary LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM leads"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY received_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var leads []model.Lead
	if err := s.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	return leads, nil
}

// GetLeadByID retrieves a single lead by its ID.
func (s *SQLiteStore) GetLeadByID(
	ctx context.Context,
	id string,
) (*model.Lead, error) {
	var lead model.Lead
	err := s.db.GetContext(
		ctx, &lead, "SELECT * FROM leads WHERE id = ?", id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lead %s not found", id)
		}
		return nil, fmt.Errorf("getting lead %s: %w", id, err)
	}
	return &lead, nil
}

// MarkLeadViewed flags a lead as viewed.
func (s *SQLiteStore) MarkLeadViewed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(
		ctx, "UPDATE leads SET viewed = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking lead %s viewed: %w", id, err)
	}
	return nil
}

// CountUnviewedLeads returns the number of leads not yet opened.
func (s *SQLiteStore) CountUnviewedLeads(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(
		ctx, &count, "SELECT COUNT(*) FROM leads WHERE viewed = 0",
	)
	if err != nil {
		return 0, fmt.Errorf("counting unviewed leads: %w", err)
	}
	return count, nil
}

// DeleteLead removes a lead by ID.
func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting lead %s: %w", id, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
