package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tatianab/llmserver/internal/models"
)

func newContext(name string) *models.Context {
	c := models.NewContext(name, "groq", "llama3-8b-8192", "You are terse.", models.DefaultSettings("groq"))
	c.AddMessage(models.RoleUser, "hi")
	c.AddMessage(models.RoleAssistant, "hello")
	return c
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func TestStoreSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c := newContext("c1")
			if err := store.Save(ctx, c); err != nil {
				t.Fatalf("Save: %v", err)
			}

			loaded, err := store.Load(ctx, "c1")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(loaded.History, c.History) {
				t.Errorf("history mismatch: %v vs %v", loaded.History, c.History)
			}
			resolved := models.ResolveSettings(loaded.Service, loaded.Settings)
			if !reflect.DeepEqual(resolved, c.Settings) {
				t.Errorf("settings mismatch: %v vs %v", resolved, c.Settings)
			}

			if err := store.Delete(ctx, "c1"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Load(ctx, "c1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Load after delete = %v, want ErrNotFound", err)
			}
			if err := store.Delete(ctx, "c1"); err != nil {
				t.Fatalf("Delete of missing record must be tolerated: %v", err)
			}
		})
	}
}

func TestStoreLoadAllSorted(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"b", "a", "c"} {
				if err := store.Save(ctx, newContext(n)); err != nil {
					t.Fatalf("Save(%s): %v", n, err)
				}
			}
			all, err := store.LoadAll(ctx)
			if err != nil {
				t.Fatalf("LoadAll: %v", err)
			}
			var names []string
			for _, c := range all {
				names = append(names, c.Name)
			}
			if !reflect.DeepEqual(names, []string{"a", "b", "c"}) {
				t.Errorf("LoadAll names = %v", names)
			}
		})
	}
}

func TestFileStoreKeepsDistinctNamesApart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	names := []string{"a/b", "a_b", "a%2Fb", "a b", "a+b", ".", "..", "a:b"}
	for _, n := range names {
		if err := store.Save(ctx, newContext(n)); err != nil {
			t.Fatalf("Save(%q): %v", n, err)
		}
	}
	if err := store.Delete(ctx, "a_b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	all, err := reopened.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	got := make(map[string]bool)
	for _, c := range all {
		got[c.Name] = true
	}
	for _, n := range names {
		if want := n != "a_b"; got[n] != want {
			t.Errorf("%q present = %v, want %v", n, got[n], want)
		}
	}
	if len(all) != len(names)-1 {
		t.Errorf("LoadAll returned %d records, want %d", len(all), len(names)-1)
	}

	loaded, err := reopened.Load(ctx, "a/b")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "a/b" {
		t.Errorf("stored name must be kept verbatim, got %q", loaded.Name)
	}
}

func TestRecordKey(t *testing.T) {
	seen := make(map[string]string)
	for _, n := range []string{"a/b", "a_b", "a%2Fb", "a%252Fb", "a b", "a+b", ".", "..", "a.b", "a%2Eb"} {
		key := recordKey(n)
		if strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
			t.Errorf("recordKey(%q) = %q is not a safe file name", n, key)
		}
		if prev, ok := seen[key]; ok {
			t.Errorf("recordKey(%q) = recordKey(%q) = %q", n, prev, key)
		}
		seen[key] = n
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	all, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no contexts, got %d", len(all))
	}
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Save(ctx, newContext("c1")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save with canceled ctx = %v", err)
	}
}
