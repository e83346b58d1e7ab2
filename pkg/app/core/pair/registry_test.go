package pair

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

func kind(code string, issuer byte) asset.Kind {
	return asset.Kind{
		Symbol: asset.Symbol{Code: code, Precision: 4},
		Issuer: common.BytesToAddress([]byte{issuer}),
	}
}

func TestResolveOrCreate(t *testing.T) {
	r := NewRegistry()
	x := kind("XTK", 1)
	y := kind("YTK", 2)

	p1, created := r.ResolveOrCreate(x, y)
	if !created {
		t.Fatal("first resolve should create")
	}
	if p1.ID != 1 {
		t.Errorf("first pair id = %d, want 1", p1.ID)
	}

	// same orientation resolves, reversed orientation resolves too
	if p, created := r.ResolveOrCreate(x, y); created || p.ID != p1.ID {
		t.Error("same orientation should resolve to the existing pair")
	}
	if p, created := r.ResolveOrCreate(y, x); created || p.ID != p1.ID {
		t.Error("reversed orientation should resolve to the existing pair")
	}

	z := kind("ZTK", 3)
	p2, created := r.ResolveOrCreate(x, z)
	if !created || p2.ID != 2 {
		t.Errorf("distinct pair: created=%v id=%d, want created id 2", created, p2.ID)
	}
	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2", r.Count())
	}
}

func TestResolveNeverCreates(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Resolve(kind("XTK", 1), kind("YTK", 2)); ok {
		t.Fatal("Resolve on empty registry should fail")
	}
	if r.Count() != 0 {
		t.Error("Resolve must not register anything")
	}
}

func TestSameCodeDifferentIssuerIsDifferentPair(t *testing.T) {
	r := NewRegistry()
	x1 := kind("XTK", 1)
	x2 := kind("XTK", 9) // same code, other issuer
	y := kind("YTK", 2)

	r.ResolveOrCreate(x1, y)
	if _, ok := r.Resolve(x2, y); ok {
		t.Error("kind identity must include the issuer")
	}
}

func TestRestoreKeepsSequenceAhead(t *testing.T) {
	r := NewRegistry()
	r.Restore(Pair{ID: 7, Base: kind("XTK", 1), Quote: kind("YTK", 2)})

	p, created := r.ResolveOrCreate(kind("ATK", 3), kind("BTK", 4))
	if !created || p.ID != 8 {
		t.Errorf("id after restore = %d, want 8", p.ID)
	}
	if got, ok := r.Get(7); !ok || got.ID != 7 {
		t.Error("restored pair not retrievable")
	}
}
