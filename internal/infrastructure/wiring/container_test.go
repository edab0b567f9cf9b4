package wiring_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sophialabs/stubwire/internal/infrastructure/wiring"
	"github.com/sophialabs/stubwire/internal/testutil"
)

func TestContainer_NoSeeds(t *testing.T) {
	c, err := wiring.New(wiring.Params{
		TraceSize:      10,
		RateLimiterTTL: time.Minute,
		Logger:         &testutil.NoopLogger{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if c.Server() == nil || c.Registry() == nil || c.TraceBuf() == nil {
		t.Fatal("expected all components to be constructed")
	}
	if c.LoadEndpointsUseCase() != nil {
		t.Error("expected no load use case without a seed directory")
	}
}

func TestContainer_MissingSeedDirFails(t *testing.T) {
	_, err := wiring.New(wiring.Params{
		SeedDir:        filepath.Join(t.TempDir(), "does-not-exist"),
		RateLimiterTTL: time.Minute,
		Logger:         &testutil.NoopLogger{},
	})
	if err == nil {
		t.Fatal("expected an error for a missing seed directory")
	}
}

func TestContainer_SeededEndToEnd(t *testing.T) {
	dir := t.TempDir()
	seed := `
endpointId: /users/:id
method: GET
statusCode: 200
responseTemplate: '{"id":"{{path.id}}"}'
`
	if err := os.WriteFile(filepath.Join(dir, "users.yaml"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	c, err := wiring.New(wiring.Params{
		SeedDir:        dir,
		PathPrefix:     "/api",
		TraceSize:      10,
		RateLimiterTTL: time.Minute,
		Logger:         &testutil.NoopLogger{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	loadUC := c.LoadEndpointsUseCase()
	if loadUC == nil {
		t.Fatal("expected a load use case")
	}
	if err := loadUC.Execute(context.Background()); err != nil {
		t.Fatalf("load seeds: %v", err)
	}
	if c.Registry().Len() != 1 {
		t.Fatalf("expected 1 seeded endpoint, got %d", c.Registry().Len())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/42", nil)
	rec := httptest.NewRecorder()
	c.Server().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"42"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestContainer_CloseIsIdempotent(t *testing.T) {
	c, err := wiring.New(wiring.Params{
		RateLimiterTTL: time.Minute,
		Logger:         &testutil.NoopLogger{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Close()
	c.Close()
}
