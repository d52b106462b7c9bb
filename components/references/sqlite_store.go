package references

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const referencesSchema = `
CREATE TABLE IF NOT EXISTS reference_entries (
	id         TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	name       TEXT NOT NULL,
	parent_id  TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_reference_entries_name
	ON reference_entries(model, parent_id, name COLLATE NOCASE);
`

// SQLStore persists references in a SQLite database.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("references: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	store, err := NewSQLStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore applies the schema to db and wraps it.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("references: nil database")
	}
	if _, err := db.ExecContext(ctx, referencesSchema); err != nil {
		return nil, fmt.Errorf("references: apply schema: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Create(ctx context.Context, in CreateInput) (Reference, error) {
	ref := Reference{
		ID:        uuid.NewString(),
		Model:     in.Model,
		Name:      in.Name,
		ParentID:  in.ParentID,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_entries (id, model, name, parent_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		ref.ID, ref.Model, ref.Name, ref.ParentID, ref.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return Reference{}, ErrDuplicate
		}
		return Reference{}, fmt.Errorf("references: insert: %w", err)
	}
	return ref, nil
}

func (s *SQLStore) Get(ctx context.Context, model, id string) (Reference, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, model, name, parent_id, created_at FROM reference_entries WHERE model = ? AND id = ?`,
		model, id,
	)
	ref, err := scanReference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Reference{}, ErrNotFound
	}
	return ref, err
}

func (s *SQLStore) List(ctx context.Context, model, parentID string) ([]Reference, error) {
	query := `SELECT id, model, name, parent_id, created_at FROM reference_entries WHERE model = ?`
	args := []any{model}
	if parentID != "" {
		query += ` AND parent_id = ?`
		args = append(args, parentID)
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("references: list: %w", err)
	}
	defer rows.Close()

	out := make([]Reference, 0)
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReference(row scanner) (Reference, error) {
	var (
		ref     Reference
		created string
	)
	if err := row.Scan(&ref.ID, &ref.Model, &ref.Name, &ref.ParentID, &created); err != nil {
		return Reference{}, err
	}
	parsed, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return Reference{}, fmt.Errorf("references: parse created_at %q: %w", created, err)
	}
	ref.CreatedAt = parsed
	return ref, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
