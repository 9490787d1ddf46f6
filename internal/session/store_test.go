package session

import (
	"context"
	"path/filepath"
	"testing"

	"kharcha/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "kharcha.db"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndCurrent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok := store.Current(ctx); ok {
		t.Fatal("Current() on empty store = true, want false")
	}

	sess := core.Session{UserID: 42, Username: "asha"}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	got, ok := store.Current(ctx)
	if !ok {
		t.Fatal("Current() = false after Save")
	}
	if got != sess {
		t.Errorf("Current() = %+v, want %+v", got, sess)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, core.Session{UserID: 1, Username: "first"}); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if err := store.Save(ctx, core.Session{UserID: 2, Username: "second"}); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	got, ok := store.Current(ctx)
	if !ok || got.UserID != 2 || got.Username != "second" {
		t.Errorf("Current() = %+v, %v, want second session", got, ok)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, core.Session{UserID: 7, Username: "x"}); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if err := store.AddDraftCategory(ctx, 7, "Pets"); err != nil {
		t.Fatalf("AddDraftCategory() = %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() = %v", err)
	}

	if _, ok := store.Current(ctx); ok {
		t.Error("Current() = true after Clear")
	}
	if got := store.DraftCategories(ctx, 7); len(got) != 0 {
		t.Errorf("DraftCategories() = %v after Clear, want empty", got)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kharcha.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	sess := core.Session{UserID: 9, Username: "ravi"}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen = %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Current(ctx)
	if !ok || got != sess {
		t.Errorf("Current() after reopen = %+v, %v, want %+v", got, ok, sess)
	}
}

func TestDraftCategories(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AddDraftCategory(ctx, 1, "Pets"); err != nil {
		t.Fatalf("AddDraftCategory() = %v", err)
	}
	if err := store.AddDraftCategory(ctx, 1, "Pets"); err != nil {
		t.Fatalf("duplicate AddDraftCategory() = %v", err)
	}
	if err := store.AddDraftCategory(ctx, 1, "Gifts"); err != nil {
		t.Fatalf("AddDraftCategory() = %v", err)
	}
	// Shared categories never become drafts.
	if err := store.AddDraftCategory(ctx, 1, "Food"); err != nil {
		t.Fatalf("AddDraftCategory(Food) = %v", err)
	}

	got := store.DraftCategories(ctx, 1)
	want := []string{"Pets", "Gifts"}
	if len(got) != len(want) {
		t.Fatalf("DraftCategories() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DraftCategories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if other := store.DraftCategories(ctx, 2); len(other) != 0 {
		t.Errorf("DraftCategories(2) = %v, want empty", other)
	}
}
