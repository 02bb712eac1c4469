package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/storage/memory"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
)

func TestStaticHandler(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("index"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("app"), 0o644); err != nil {
		t.Fatal(err)
	}
	handler := staticHandler(dir)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/", http.StatusOK, "index"},
		{"/app.js", http.StatusOK, "app"},
		{"/session/abc", http.StatusOK, "index"},
		{"/billsplit.v1.SessionService/Nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("Expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/billsplit.v1.SessionService/GetSession", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if called {
		t.Error("Preflight should not reach the next handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("Authorization header not allowed: %q", got)
	}
}

func TestOpenStore(t *testing.T) {
	store, err := openStore(context.Background(), &config.Config{DBDriver: config.DriverMemory})
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Errorf("Expected *memory.Store, got %T", store)
	}

	dbPath := filepath.Join(t.TempDir(), "data", "test.db")
	store, err = openStore(context.Background(), &config.Config{DBDriver: config.DriverSQLite, DBPath: dbPath})
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*sqlite.SQLiteStore); !ok {
		t.Errorf("Expected *sqlite.SQLiteStore, got %T", store)
	}
}
