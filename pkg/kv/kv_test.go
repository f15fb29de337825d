package kv_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/haivivi/tio/pkg/kv"
)

func newBadgerStore(t *testing.T, namespace string) kv.Store {
	t.Helper()
	s, err := kv.NewBadger(kv.BadgerOptions{InMemory: true, Namespace: namespace})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// stores returns every Store implementation under test.
func stores(t *testing.T) map[string]kv.Store {
	return map[string]kv.Store{
		"memory": kv.NewMemory(),
		"badger": newBadgerStore(t, "tio/"),
	}
}

func TestLoadSaveRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Load(ctx, "rec"); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("Load missing = %v, want ErrNotFound", err)
			}
			if err := s.Save(ctx, "rec", []byte("42 ok")); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load(ctx, "rec")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if string(got) != "42 ok" {
				t.Fatalf("Load = %q", got)
			}
			if err := s.Remove(ctx, "rec"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if err := s.Remove(ctx, "rec"); err != nil {
				t.Fatalf("Remove again: %v", err)
			}
			if _, err := s.Load(ctx, "rec"); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("Load removed = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestNames(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"log/b", "log/a", "other"} {
				if err := s.Save(ctx, n, []byte(n)); err != nil {
					t.Fatalf("Save(%s): %v", n, err)
				}
			}
			var got []string
			for n, err := range s.Names(ctx, "log/") {
				if err != nil {
					t.Fatalf("Names: %v", err)
				}
				got = append(got, n)
			}
			if want := []string{"log/a", "log/b"}; !slices.Equal(got, want) {
				t.Fatalf("Names = %v, want %v", got, want)
			}
		})
	}
}

func TestValueIsolation(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemory()
	data := []byte("original")
	s.Save(ctx, "k", data)
	data[0] = 'X'
	got, _ := s.Load(ctx, "k")
	if got[0] != 'o' {
		t.Fatal("stored record was mutated through the caller's slice")
	}
}

func TestBadgerDirRequired(t *testing.T) {
	if _, err := kv.NewBadger(kv.BadgerOptions{}); err == nil {
		t.Fatal("expected error without Dir")
	}
}
