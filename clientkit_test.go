package clientkit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbayram/clientkit/config"
	"github.com/kbayram/clientkit/entity"
	"github.com/kbayram/clientkit/logger"
	"github.com/kbayram/clientkit/session"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/token/":
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "acc1", "refresh": "ref1"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/me/":
			if r.Header.Get("Authorization") != "Bearer acc1" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid token"})
				return
			}
			_ = json.NewEncoder(w).Encode(session.User{ID: 1, Username: "alice"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/budgets/":
			_ = json.NewEncoder(w).Encode([]entity.Budget{{ID: 1, Title: "Groceries"}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/users/logout/":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNew_AssemblesWorkingClient(t *testing.T) {
	srv := newBackend(t)
	defer srv.Close()

	tokenFile := filepath.Join(t.TempDir(), "tokens.json")
	cfg := &config.Config{
		Name:        "budget-client",
		Environment: "development",
		TokenFile:   tokenFile,
	}
	cfg.API.BaseURL = srv.URL

	kit, err := New(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := kit.Session.Login(ctx, "alice", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user, err := kit.Session.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want alice", user.Username)
	}

	budgets, err := kit.Budgets.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(budgets) != 1 || budgets[0].Title != "Groceries" {
		t.Errorf("List() = %+v", budgets)
	}

	// Tokens persist to the configured file.
	if _, err := os.Stat(tokenFile); err != nil {
		t.Errorf("token file not written: %v", err)
	}

	kit.Session.Logout(ctx)
	if kit.Session.IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
	if _, err := os.Stat(tokenFile); !os.IsNotExist(err) {
		t.Error("token file should be removed after logout")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := &config.Config{Name: "x", Environment: "development"}
	if _, err := New(cfg); err == nil {
		t.Fatal("New() expected error for missing base URL")
	}
}

func TestNew_CustomTokenStore(t *testing.T) {
	cfg := &config.Config{Environment: "development"}
	cfg.API.BaseURL = "https://api.example.com"

	kit, err := New(cfg, WithLogger(logger.Nop()), WithTokenStore(session.NewMemoryStore()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := kit.Tokens.(*session.MemoryStore); !ok {
		t.Errorf("Tokens = %T, want *session.MemoryStore", kit.Tokens)
	}
}
