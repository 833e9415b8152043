package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStores(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{
			name: "memory",
			open: func(t *testing.T) Store { return NewMemory() },
		},
		{
			name: "file",
			open: func(t *testing.T) Store {
				return NewFile(filepath.Join(t.TempDir(), "profile.json"))
			},
		},
		{
			name: "badger",
			open: func(t *testing.T) Store {
				b, err := OpenBadgerInMemory()
				if err != nil {
					t.Fatalf("OpenBadgerInMemory() error = %v", err)
				}
				t.Cleanup(func() { _ = b.Close() })
				return b
			},
		},
		{
			name: "prefixed",
			open: func(t *testing.T) Store { return NewPrefixed(NewMemory(), "profile-1") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := tt.open(t)

			if _, ok, err := s.Get(ctx, MoodKey); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
			}

			if err := s.Set(ctx, MoodKey, "calm"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, UserKey, `{"email":"a@b.c"}`); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, ok, err := s.Get(ctx, MoodKey)
			if err != nil || !ok || got != "calm" {
				t.Fatalf("Get() = %q, %v, %v; want calm", got, ok, err)
			}

			if err := s.Set(ctx, MoodKey, "party"); err != nil {
				t.Fatalf("Set() overwrite error = %v", err)
			}
			if got, _, _ := s.Get(ctx, MoodKey); got != "party" {
				t.Errorf("Get() after overwrite = %q, want party", got)
			}

			if err := s.Delete(ctx, MoodKey); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, ok, _ := s.Get(ctx, MoodKey); ok {
				t.Error("Get() after Delete found the key")
			}
			if got, ok, _ := s.Get(ctx, UserKey); !ok || got != `{"email":"a@b.c"}` {
				t.Errorf("unrelated key = %q, %v; want it untouched", got, ok)
			}

			if err := s.Delete(ctx, "never-set"); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}
		})
	}
}

func TestPrefixedIsolation(t *testing.T) {
	ctx := context.Background()
	shared := NewMemory()
	a := NewPrefixed(shared, "a")
	b := NewPrefixed(shared, "b")

	if err := a.Set(ctx, MoodKey, "sad"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := b.Get(ctx, MoodKey); ok {
		t.Error("profile b sees profile a's mood")
	}
	if v, ok, _ := shared.Get(ctx, "a:"+MoodKey); !ok || v != "sad" {
		t.Errorf("shared key = %q, %v; want sad under a:%s", v, ok, MoodKey)
	}
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "deeply", "profile.json")

	if err := NewFile(path).Set(ctx, MoodKey, "focused"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("store file not created: %v", err)
	}

	got, ok, err := NewFile(path).Get(ctx, MoodKey)
	if err != nil || !ok || got != "focused" {
		t.Errorf("Get() from new instance = %q, %v, %v; want focused", got, ok, err)
	}
}

func TestFileCorrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, _, err := NewFile(path).Get(ctx, MoodKey)

	var storeErr *Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("Get() error = %v, want *Error", err)
	}
	if storeErr.Backend != "file" || storeErr.Op != "get" {
		t.Errorf("Error = %+v, want file/get", storeErr)
	}
}

func TestErrorMessage(t *testing.T) {
	inner := errors.New("disk full")
	err := &Error{Backend: "badger", Op: "set", Key: MoodKey, Err: inner}

	msg := err.Error()
	for _, want := range []string{"store error", "badger", "set", MoodKey, "disk full"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is(err, inner) = false")
	}
}
