package services_test

import (
	"testing"

	"github.com/sophialabs/stubwire/internal/domain/match"
	"github.com/sophialabs/stubwire/internal/infrastructure/services"
)

func compiled(identity string) *match.CompiledEndpoint {
	return &match.CompiledEndpoint{Identity: identity}
}

func TestRegistry_UpsertIsIdempotent(t *testing.T) {
	reg := services.NewEndpointRegistry()

	reg.Upsert(compiled("GET:/a"))
	reg.Upsert(compiled("GET:/a"))

	if reg.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", reg.Len())
	}
}

func TestRegistry_UpsertKeepsSlot(t *testing.T) {
	reg := services.NewEndpointRegistry()

	reg.Upsert(compiled("GET:/a"))
	reg.Upsert(compiled("GET:/b"))
	reg.Upsert(compiled("GET:/c"))

	replacement := compiled("GET:/b")
	replacement.PathPattern = "/b"
	reg.Upsert(replacement)

	ids := reg.Identities()
	want := []string{"GET:/a", "GET:/b", "GET:/c"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("expected order %v, got %v", want, ids)
		}
	}

	got, ok := reg.Get("GET:/b")
	if !ok || got.PathPattern != "/b" {
		t.Error("expected the replacement entry to be stored")
	}
}

func TestRegistry_Delete(t *testing.T) {
	reg := services.NewEndpointRegistry()
	reg.Upsert(compiled("GET:/a"))
	reg.Upsert(compiled("GET:/b"))

	if !reg.Delete("GET:/a") {
		t.Fatal("expected delete to report true for an existing entry")
	}
	if reg.Delete("GET:/a") {
		t.Error("expected delete to report false for a missing entry")
	}

	ids := reg.Identities()
	if len(ids) != 1 || ids[0] != "GET:/b" {
		t.Errorf("unexpected identities after delete: %v", ids)
	}
}

func TestRegistry_Replace(t *testing.T) {
	reg := services.NewEndpointRegistry()
	reg.Upsert(compiled("GET:/old"))

	reg.Replace([]*match.CompiledEndpoint{
		compiled("GET:/x"),
		compiled("GET:/y"),
	})

	ids := reg.Identities()
	if len(ids) != 2 || ids[0] != "GET:/x" || ids[1] != "GET:/y" {
		t.Errorf("unexpected identities after replace: %v", ids)
	}
	if _, ok := reg.Get("GET:/old"); ok {
		t.Error("expected the old entry to be gone")
	}
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	reg := services.NewEndpointRegistry()
	reg.Upsert(compiled("GET:/a"))

	snap := reg.Snapshot()
	reg.Upsert(compiled("GET:/b"))
	reg.Delete("GET:/a")

	if len(snap) != 1 || snap[0].Identity != "GET:/a" {
		t.Error("expected the snapshot to be unaffected by later mutations")
	}
}

func TestRegistry_SnapshotInsertionOrder(t *testing.T) {
	reg := services.NewEndpointRegistry()
	for _, id := range []string{"GET:/c", "GET:/a", "GET:/b"} {
		reg.Upsert(compiled(id))
	}

	snap := reg.Snapshot()
	want := []string{"GET:/c", "GET:/a", "GET:/b"}
	for i, id := range want {
		if snap[i].Identity != id {
			t.Fatalf("expected insertion order %v, got entry %d = %s", want, i, snap[i].Identity)
		}
	}
}
