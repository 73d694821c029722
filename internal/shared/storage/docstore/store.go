package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Document is one stored JSON object plus server-assigned timestamps.
type Document struct {
	Path      Path
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a minimal document database: whole-document create and read,
// top-level-key partial update, and equality listing within a collection.
type Store interface {
	Create(ctx context.Context, p Path, data map[string]any) (Document, error)
	Get(ctx context.Context, p Path) (Document, error)
	// Update merges fields into the document's top-level keys in one atomic
	// write. Keys not present in fields are left untouched.
	Update(ctx context.Context, p Path, fields map[string]any) error
	// List returns the documents of collection whose top-level string field
	// equals value, most recently updated first.
	List(ctx context.Context, collection, field, value string) ([]Document, error)
}

// toJSONMap round-trips v through encoding/json so stored data only holds
// JSON-shaped values (map[string]any, []any, string, float64, bool, nil).
func toJSONMap(v map[string]any) (map[string]any, []byte, error) {
	if v == nil {
		v = map[string]any{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, err
	}
	return out, raw, nil
}
