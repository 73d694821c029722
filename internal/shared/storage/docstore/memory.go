package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryDoc struct {
	path      Path
	raw       []byte
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore keeps documents in process; used for dev and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryDoc
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc), now: func() time.Time { return time.Now().UTC() }}
}

func (s *MemoryStore) Create(ctx context.Context, p Path, data map[string]any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if p.IsZero() {
		return Document{}, ErrInvalidPath
	}
	clean, raw, err := toJSONMap(data)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := p.String()
	if _, ok := s.docs[key]; ok {
		return Document{}, ErrAlreadyExists
	}
	now := s.now()
	s.docs[key] = memoryDoc{path: p, raw: raw, createdAt: now, updatedAt: now}
	return Document{Path: p, Data: clean, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *MemoryStore) Get(ctx context.Context, p Path) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	doc, ok := s.docs[p.String()]
	s.mu.RUnlock()
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc.decode()
}

func (s *MemoryStore) Update(ctx context.Context, p Path, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, _, err := toJSONMap(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := p.String()
	doc, ok := s.docs[key]
	if !ok {
		return ErrNotFound
	}
	current, err := doc.decode()
	if err != nil {
		return err
	}
	for k, v := range patch {
		current.Data[k] = v
	}
	_, raw, err := toJSONMap(current.Data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	doc.raw = raw
	doc.updatedAt = s.now()
	s.docs[key] = doc
	return nil
}

func (s *MemoryStore) List(ctx context.Context, collection, field, value string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Document{}
	for _, doc := range s.docs {
		if doc.path.Collection() != collection {
			continue
		}
		decoded, err := doc.decode()
		if err != nil {
			return nil, err
		}
		if v, ok := decoded.Data[field].(string); !ok || v != value {
			continue
		}
		out = append(out, decoded)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Path.String() < out[j].Path.String()
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (d memoryDoc) decode() (Document, error) {
	data := map[string]any{}
	if err := json.Unmarshal(d.raw, &data); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", d.path, err)
	}
	return Document{Path: d.path, Data: data, CreatedAt: d.createdAt, UpdatedAt: d.updatedAt}, nil
}

var _ Store = (*MemoryStore)(nil)
