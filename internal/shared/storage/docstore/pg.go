package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGStore keeps documents as JSONB rows in the documents table.
type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Create(ctx context.Context, p Path, data map[string]any) (Document, error) {
	if p.IsZero() {
		return Document{}, ErrInvalidPath
	}
	clean, raw, err := toJSONMap(data)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}
	const query = `
INSERT INTO documents (path, collection, data, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, now(), now())
RETURNING created_at, updated_at`
	doc := Document{Path: p, Data: clean}
	err = s.DB.QueryRowContext(ctx, query, p.String(), p.Collection(), string(raw)).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Document{}, ErrAlreadyExists
		}
		return Document{}, fmt.Errorf("insert document %s: %w", p, err)
	}
	return doc, nil
}

func (s *PGStore) Get(ctx context.Context, p Path) (Document, error) {
	const query = `
SELECT data, created_at, updated_at
FROM documents
WHERE path = $1`
	var raw []byte
	doc := Document{Path: p}
	err := s.DB.QueryRowContext(ctx, query, p.String()).Scan(&raw, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("select document %s: %w", p, err)
	}
	if doc.Data, err = decodeData(raw); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", p, err)
	}
	return doc, nil
}

// Update relies on jsonb || which replaces only the top-level keys present
// on the right-hand side.
func (s *PGStore) Update(ctx context.Context, p Path, fields map[string]any) error {
	_, raw, err := toJSONMap(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	const query = `
UPDATE documents
SET data = data || $2::jsonb, updated_at = now()
WHERE path = $1`
	res, err := s.DB.ExecContext(ctx, query, p.String(), string(raw))
	if err != nil {
		return fmt.Errorf("update document %s: %w", p, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document %s: %w", p, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, collection, field, value string) ([]Document, error) {
	const query = `
SELECT path, data, created_at, updated_at
FROM documents
WHERE collection = $1 AND data ->> $2 = $3
ORDER BY updated_at DESC, path ASC`
	rows, err := s.DB.QueryContext(ctx, query, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var (
			rawPath   string
			raw       []byte
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&rawPath, &raw, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p, err := ParsePath(rawPath)
		if err != nil {
			return nil, fmt.Errorf("stored path %q: %w", rawPath, err)
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, fmt.Errorf("decode document %s: %w", rawPath, err)
		}
		out = append(out, Document{Path: p, Data: data, CreatedAt: createdAt, UpdatedAt: updatedAt})
	}
	return out, rows.Err()
}

func decodeData(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

var _ Store = (*PGStore)(nil)
