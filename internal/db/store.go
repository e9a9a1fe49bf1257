package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mesdx/classlens/internal/lens"
)

// Entry is one recorded "Show Testable Methods" run.
type Entry struct {
	UID       string    `json:"uid"`
	Document  string    `json:"document"`
	Class     string    `json:"class"`
	Line      int       `json:"line"` // 0-based
	Column    int       `json:"column"`
	BodyStart int       `json:"bodyStart"`
	BodyEnd   int       `json:"bodyEnd"`
	Methods   []string  `json:"methods"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store records activations in the history database.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an open, migrated database.
func NewStore(d *sql.DB) *Store {
	return &Store{DB: d}
}

// Record implements lens.Recorder.
func (s *Store) Record(ctx context.Context, a lens.Activation) error {
	_, err := s.Insert(ctx, Entry{
		Document:  a.Path,
		Class:     a.Class,
		Line:      a.Range.Start.Line,
		Column:    a.Range.Start.Character,
		BodyStart: a.Offset,
		BodyEnd:   a.BodyEnd,
		Methods:   a.Methods,
		CreatedAt: a.CreatedAt,
	})
	return err
}

// Insert stores e and returns its UID.
func (s *Store) Insert(ctx context.Context, e Entry) (string, error) {
	if e.UID == "" {
		e.UID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		INSERT INTO activations (uid, document_path, class_name, start_line, start_col, body_start, body_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UID, e.Document, e.Class, e.Line, e.Column, e.BodyStart, e.BodyEnd,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert activation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("activation id: %w", err)
	}

	for i, name := range e.Methods {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activation_methods (activation_id, position, name) VALUES (?, ?, ?)`,
			id, i, name,
		); err != nil {
			return "", fmt.Errorf("insert method: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return e.UID, nil
}

// Recent returns the latest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.query(ctx, `
		SELECT id, uid, document_path, class_name, start_line, start_col, body_start, body_end, created_at
		FROM activations ORDER BY id DESC LIMIT ?`, limit)
}

// ForDocument returns all entries for a document path, newest first.
func (s *Store) ForDocument(ctx context.Context, path string) ([]Entry, error) {
	return s.query(ctx, `
		SELECT id, uid, document_path, class_name, start_line, start_col, body_start, body_end, created_at
		FROM activations WHERE document_path = ? ORDER BY id DESC`, path)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query activations: %w", err)
	}

	var ids []int64
	var entries []Entry
	for rows.Next() {
		var (
			id      int64
			e       Entry
			created string
		)
		if err := rows.Scan(&id, &e.UID, &e.Document, &e.Class, &e.Line, &e.Column, &e.BodyStart, &e.BodyEnd, &created); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan activation: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		ids = append(ids, id)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i, id := range ids {
		methods, err := s.methods(ctx, id)
		if err != nil {
			return nil, err
		}
		entries[i].Methods = methods
	}
	return entries, nil
}

func (s *Store) methods(ctx context.Context, activationID int64) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT name FROM activation_methods WHERE activation_id = ? ORDER BY position`, activationID)
	if err != nil {
		return nil, fmt.Errorf("query methods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan method: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
