// Package history persists analysed frames in SQLite so a player can review
// their recent sessions.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/crease/internal/domain/scoring"
	_ "modernc.org/sqlite"
)

const defaultListLimit = 10

var (
	// ErrNotFound is returned when a requested entry does not exist.
	ErrNotFound = errors.New("history entry not found")
	// ErrInvalidLimit is returned for a negative list limit.
	ErrInvalidLimit = errors.New("invalid history limit")
)

// Entry is one stored analysis.
type Entry struct {
	ID        string            `json:"id"`
	PlayerID  string            `json:"player_id"`
	SessionID string            `json:"session_id,omitempty"`
	FrameID   string            `json:"frame_id,omitempty"`
	Mode      scoring.Mode      `json:"mode"`
	Headline  float64           `json:"headline"`
	Card      scoring.Scorecard `json:"scorecard"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store is a SQLite-backed analysis history.
type Store struct {
	db        *sql.DB
	path      string
	retention int
	now       func() time.Time
}

// Open opens or creates the database at path and runs migrations.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps concurrent workers from tripping SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a scorecard under a fresh id.
func (s *Store) Record(ctx context.Context, card scoring.Scorecard) error {
	_, err := s.Save(ctx, Entry{
		PlayerID:  card.PlayerID,
		SessionID: card.SessionID,
		FrameID:   card.FrameID,
		Mode:      card.Mode,
		Headline:  card.Headline,
		Card:      card,
	})
	return err
}

// Save inserts e, filling in ID and CreatedAt when empty, and trims the
// player's history for that mode to the retention limit.
func (s *Store) Save(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	card, err := json.Marshal(e.Card)
	if err != nil {
		return Entry{}, fmt.Errorf("encode scorecard: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analyses (id, player_id, session_id, frame_id, mode, headline, scorecard, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PlayerID, e.SessionID, e.FrameID, string(e.Mode), e.Headline, string(card), e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert analysis: %w", err)
	}

	if s.retention > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM analyses WHERE id IN (
				SELECT id FROM analyses WHERE player_id = ? AND mode = ?
				ORDER BY created_at DESC, seq DESC LIMIT -1 OFFSET ?
			)`,
			e.PlayerID, string(e.Mode), s.retention,
		)
		if err != nil {
			return Entry{}, fmt.Errorf("trim history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns a player's analyses newest first. An empty mode matches every
// mode and a zero limit means the default of 10.
func (s *Store) List(ctx context.Context, playerID string, mode scoring.Mode, limit int) ([]Entry, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_id, session_id, frame_id, mode, headline, scorecard, created_at
		 FROM analyses
		 WHERE player_id = ? AND (? = '' OR mode = ?)
		 ORDER BY created_at DESC, seq DESC
		 LIMIT ?`,
		playerID, string(mode), string(mode), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Get retrieves one entry by id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, player_id, session_id, frame_id, mode, headline, scorecard, created_at
		 FROM analyses WHERE id = ?`,
		id,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// Delete removes an entry by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		mode    string
		card    string
		created int64
	)
	if err := sc.Scan(&e.ID, &e.PlayerID, &e.SessionID, &e.FrameID, &mode, &e.Headline, &card, &created); err != nil {
		return Entry{}, err
	}
	e.Mode = scoring.Mode(mode)
	e.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(card), &e.Card); err != nil {
		return Entry{}, fmt.Errorf("decode scorecard %s: %w", e.ID, err)
	}
	return e, nil
}
