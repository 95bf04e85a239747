// Package store implements the event store write path and segment reads.
//
// Writes are transactional at the request boundary: the user upsert, external
// action upsert, tag attach, and event append for one ingestion request either
// all commit or none do. Readers therefore never observe a half-written
// event. Idempotency under concurrent requests for the same action rides on
// the schema's unique indexes and ON CONFLICT clauses.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/groundswell/listcutter/internal/core/db"
	"github.com/groundswell/listcutter/internal/listcutter"
	"github.com/groundswell/listcutter/internal/types"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store owns all database access for ingestion and segment evaluation.
type Store struct {
	db  *sqlx.DB
	q   *db.Queries
	log *zap.Logger
}

// New creates a store over an open connection and loaded named queries.
func New(conn *sqlx.DB, queries *db.Queries, log *zap.Logger) *Store {
	return &Store{db: conn, q: queries, log: log}
}

// UserParams carries supporter identity fields for the upsert.
// Email is the upsert key within a movement; the rest is optional profile.
type UserParams struct {
	Email         string
	FirstName     string
	LastName      string
	Postcode      string
	MobileNumber  string
	HomeNumber    string
	StreetAddress string
	Suburb        string
	State         string
	CountryISO    string
	IsMember      bool
}

// Ingestion is one validated external activity to record.
type Ingestion struct {
	Movement    types.MovementID
	Source      string
	ActionSlug  string
	Partner     string
	LanguageISO string
	Tags        []string
	Role        string
	Activity    types.Activity
	User        UserParams
}

// IngestResult reports what one committed ingestion produced.
type IngestResult struct {
	EventID  types.EventID
	UserID   types.UserID
	ActionID types.ActionID
}

// ActivityEvent is one immutable row of the event log.
type ActivityEvent struct {
	ID               types.EventID    `db:"id"`
	MovementID       types.MovementID `db:"movement_id"`
	UserID           types.UserID     `db:"user_id"`
	ExternalActionID types.ActionID   `db:"external_action_id"`
	ActionSlug       string           `db:"action_slug"`
	Activity         types.Activity   `db:"activity"`
	Role             string           `db:"role"`
	Source           string           `db:"source"`
	LanguageISO      string           `db:"language_iso"`
	CreatedAt        string           `db:"created_at"`
}

// Ingest records one external activity inside a single transaction:
// upsert user by (movement, email), upsert action by (movement, source,
// slug), find-or-create and attach tags, append exactly one event.
func (s *Store) Ingest(ctx context.Context, in Ingestion) (IngestResult, error) {
	var res IngestResult

	if !in.Activity.Valid() {
		return res, types.ErrUnknownActivity
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin ingest transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	var userID int64
	err = s.q.GetTx(ctx, tx, "upsert-user", &userID,
		int64(in.Movement), in.User.Email, in.User.FirstName, in.User.LastName,
		in.User.Postcode, in.User.MobileNumber, in.User.HomeNumber,
		in.User.StreetAddress, in.User.Suburb, in.User.State,
		in.User.CountryISO, in.User.IsMember, in.Source, in.LanguageISO,
		now, now)
	if err != nil {
		return res, fmt.Errorf("upsert user: %w", err)
	}

	var actionID int64
	err = s.q.GetTx(ctx, tx, "upsert-external-action", &actionID,
		int64(in.Movement), in.Source, in.ActionSlug, in.Partner,
		in.LanguageISO, now)
	if err != nil {
		return res, fmt.Errorf("upsert external action: %w", err)
	}

	for _, tag := range in.Tags {
		var tagID int64
		err = s.q.GetTx(ctx, tx, "upsert-external-tag", &tagID, int64(in.Movement), tag, now)
		if err != nil {
			return res, fmt.Errorf("upsert tag %q: %w", tag, err)
		}
		if _, err = s.q.ExecTx(ctx, tx, "attach-external-tag", actionID, tagID); err != nil {
			return res, fmt.Errorf("attach tag %q: %w", tag, err)
		}
	}

	eventID := types.NewEventID()
	_, err = s.q.ExecTx(ctx, tx, "insert-activity-event",
		string(eventID), int64(in.Movement), userID, actionID,
		in.ActionSlug, string(in.Activity), in.Role, in.Source,
		in.LanguageISO, now)
	if err != nil {
		return res, fmt.Errorf("insert activity event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit ingest transaction: %w", err)
	}

	s.log.Debug("ingested external activity event",
		zap.String("event_id", string(eventID)),
		zap.Int64("movement_id", int64(in.Movement)),
		zap.String("action_slug", in.ActionSlug),
		zap.String("activity", string(in.Activity)))

	res = IngestResult{
		EventID:  eventID,
		UserID:   types.UserID(userID),
		ActionID: types.ActionID(actionID),
	}
	return res, nil
}

// GetEvent fetches one event row by ID.
func (s *Store) GetEvent(ctx context.Context, id types.EventID) (*ActivityEvent, error) {
	var ev ActivityEvent
	err := s.q.Get(ctx, "get-activity-event", &ev, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// SelectSegment executes a composed segment fragment and returns the matching
// user IDs in ascending order. The rule engine never executes fragments
// itself; this is the store-side boundary where callers impose timeouts via
// ctx.
func (s *Store) SelectSegment(ctx context.Context, frag *listcutter.Fragment) ([]types.UserID, error) {
	var ids []types.UserID
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(frag.SQL), frag.Args...)
	if err != nil {
		return nil, fmt.Errorf("select segment: %w", err)
	}
	return ids, nil
}
