package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestMemoryUpdateTouchesOnlyGivenKeys(t *testing.T) {
	store := NewMemoryStore()
	store.now = fixedClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	p, _ := FlatResumePath("r1")

	created, err := store.Create(ctx, p, map[string]any{
		"summary":    "old",
		"skills":     []string{"Go"},
		"experience": []any{},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Update(ctx, p, map[string]any{"summary": "new"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.Get(ctx, p)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := map[string]any{
		"summary":    "new",
		"skills":     []any{"Go"},
		"experience": []any{},
	}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance")
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt changed")
	}
}

func TestMemoryMissingAndDuplicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	p, _ := FlatResumePath("r1")

	if _, err := store.Get(ctx, p); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Update(ctx, p, map[string]any{"summary": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if _, err := store.Create(ctx, p, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, p, nil); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	p, _ := FlatResumePath("r1")
	input := map[string]any{"personalDetail": map[string]any{"name": "Ada"}}
	if _, err := store.Create(ctx, p, input); err != nil {
		t.Fatalf("Create: %v", err)
	}
	input["personalDetail"].(map[string]any)["name"] = "mutated"

	doc, _ := store.Get(ctx, p)
	doc.Data["personalDetail"].(map[string]any)["name"] = "mutated again"

	again, _ := store.Get(ctx, p)
	if name := again.Data["personalDetail"].(map[string]any)["name"]; name != "Ada" {
		t.Fatalf("stored document was aliased: %v", name)
	}
}

func TestMemoryListFiltersAndOrders(t *testing.T) {
	store := NewMemoryStore()
	store.now = fixedClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		p, _ := FlatResumePath(id)
		owner := "user-1"
		if id == "b" {
			owner = "user-2"
		}
		if _, err := store.Create(ctx, p, map[string]any{"userId": owner}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	legacy, _ := LegacyResumePath("classic", "ada@example.com")
	if _, err := store.Create(ctx, legacy, map[string]any{"userId": "user-1"}); err != nil {
		t.Fatalf("Create legacy: %v", err)
	}
	pa, _ := FlatResumePath("a")
	if err := store.Update(ctx, pa, map[string]any{"summary": "touched"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	docs, err := store.List(ctx, ResumesCollection, "userId", "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.Path.ID())
	}
	if diff := cmp.Diff([]string{"a", "c"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}
