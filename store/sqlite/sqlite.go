/*
Package sqlite provides the SQLite-backed claim-history store.

PURPOSE:
  Persists submitted track responses (the event payloads built by the
  engines). In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The history is append-only:
  - No UPDATE statements on the responses table
  - No DELETE statements on the responses table
  - A correction is a new response on the same claim, never an edit

KEY TABLE:
  responses: one row per submitted response, with the full event payload
  as JSON plus the outcome columns the list views filter on.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/claims.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

SEE ALSO:
  - api/handlers.go: The only writer (submission endpoint)
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/claims-engine/claim"
)

// Response is one persisted track response. Payload holds the full event
// payload the engine built; the remaining columns exist for filtering.
type Response struct {
	ID                 string
	ClaimID            string
	Track              claim.Track
	PrincipalOutcome   claim.Outcome
	ConditionalOutcome claim.Outcome
	Payload            json.RawMessage
	CreatedAt          time.Time
}

// Store implements the claim-history persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Responses (append-only claim history)
	CREATE TABLE IF NOT EXISTS responses (
		id TEXT PRIMARY KEY,
		claim_id TEXT NOT NULL,
		track TEXT NOT NULL,
		principal_outcome TEXT NOT NULL,
		conditional_outcome TEXT,
		payload_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_claim
		ON responses(claim_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_responses_track
		ON responses(track);
	CREATE INDEX IF NOT EXISTS idx_responses_outcome
		ON responses(principal_outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RESPONSES
// =============================================================================

// SaveResponse appends a response to the history. A missing ID is filled
// with a fresh uuid; CreatedAt is set when zero. Returns the stored row.
func (s *Store) SaveResponse(ctx context.Context, r Response) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (id, claim_id, track, principal_outcome, conditional_outcome, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ClaimID, string(r.Track),
		string(r.PrincipalOutcome), string(r.ConditionalOutcome),
		string(r.Payload), r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Response{}, fmt.Errorf("failed to save response: %w", err)
	}
	return r, nil
}

// GetResponse loads one response by ID.
func (s *Store) GetResponse(ctx context.Context, id string) (*Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, claim_id, track, principal_outcome, conditional_outcome, payload_json, created_at
		FROM responses WHERE id = ?`, id)

	r, err := scanResponse(row)
	if err == sql.ErrNoRows {
		return nil, claim.ErrResponseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return r, nil
}

// ListResponsesByClaim returns the full history of a claim, newest first.
func (s *Store) ListResponsesByClaim(ctx context.Context, claimID string) ([]Response, error) {
	return s.list(ctx, `claim_id = ?`, claimID)
}

// ListResponsesByTrack returns all responses of one track, newest first.
func (s *Store) ListResponsesByTrack(ctx context.Context, track claim.Track) ([]Response, error) {
	return s.list(ctx, `track = ?`, string(track))
}

func (s *Store) list(ctx context.Context, where string, arg any) ([]Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, claim_id, track, principal_outcome, conditional_outcome, payload_json, created_at
		FROM responses WHERE `+where+`
		ORDER BY created_at DESC, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var result []Response
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(row rowScanner) (*Response, error) {
	var r Response
	var track, principal, conditional, payload, createdAt string
	if err := row.Scan(&r.ID, &r.ClaimID, &track, &principal, &conditional, &payload, &createdAt); err != nil {
		return nil, err
	}
	r.Track = claim.Track(track)
	r.PrincipalOutcome = claim.Outcome(principal)
	r.ConditionalOutcome = claim.Outcome(conditional)
	r.Payload = json.RawMessage(payload)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = t
	return &r, nil
}
