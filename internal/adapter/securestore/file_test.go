package securestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wallet", "session.enc")

	s, err := OpenFile(path, "correct horse")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := s.Set(ctx, "access_token", "tok-123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "user_id", "42"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(ctx, "user_id"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(raw), "tok-123") {
		t.Fatal("token stored in clear text")
	}

	reopened, err := OpenFile(path, "correct horse")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, _ := reopened.Get(ctx, "access_token"); got != "tok-123" {
		t.Errorf("access_token = %q, want tok-123", got)
	}
	if got, _ := reopened.Get(ctx, "user_id"); got != "" {
		t.Errorf("user_id should be deleted, got %q", got)
	}
}

func TestFileStoreWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.enc")

	s, err := OpenFile(path, "first")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := OpenFile(path, "second"); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
}

func TestFileStoreRequiresPassphrase(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "x"), ""); err == nil {
		t.Fatal("expected an error for an empty passphrase")
	}
}
