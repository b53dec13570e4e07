package tokens

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	store := FileTokenStore{Path: filepath.Join(t.TempDir(), "nested", "token.json")}
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := store.SaveChatToken(Token{Nick: "mybot", Access: "abc", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveChatToken returned error: %v", err)
	}

	info, err := os.Stat(store.Path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected permissions %v", info.Mode().Perm())
	}

	token, err := store.LoadChatToken()
	if err != nil {
		t.Fatalf("LoadChatToken returned error: %v", err)
	}
	if token.Nick != "mybot" || token.Access != "abc" || !token.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected token: %+v", token)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := FileTokenStore{Path: filepath.Join(t.TempDir(), "missing.json")}

	if _, err := Load(store, time.Now()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadRejectsExpiringToken(t *testing.T) {
	store := FileTokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	now := time.Now()

	if err := store.SaveChatToken(Token{Nick: "mybot", Access: "abc", ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("SaveChatToken returned error: %v", err)
	}
	if _, err := Load(store, now); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if err := store.SaveChatToken(Token{Nick: "mybot", Access: "abc"}); err != nil {
		t.Fatalf("SaveChatToken returned error: %v", err)
	}
	token, err := Load(store, now)
	if err != nil {
		t.Fatalf("expected token without expiry to load, got %v", err)
	}
	if token.Password() != "oauth:abc" {
		t.Fatalf("unexpected password %q", token.Password())
	}
}

func TestPasswordKeepsPrefix(t *testing.T) {
	if got := (Token{Access: "oauth:xyz"}).Password(); got != "oauth:xyz" {
		t.Fatalf("unexpected password %q", got)
	}
}
