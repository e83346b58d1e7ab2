package orderbook

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

var (
	tokenX = common.HexToAddress("0x2000000000000000000000000000000000000001")
	tokenY = common.HexToAddress("0x2000000000000000000000000000000000000002")
	alice  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func qx(amount int64) asset.Quantity { return asset.New(amount, "XTK", 4, tokenX) }
func qy(amount int64) asset.Quantity { return asset.New(amount, "YTK", 4, tokenY) }

func TestInsertAndTraversalOrder(t *testing.T) {
	b := NewBook(1)
	// prices: 100/40 = 5/2, 30/15 = 2, 4/2 = 2 (tie with previous, later id)
	b.Insert(NewOrder(1, bob, qx(100), qy(40)))
	b.Insert(NewOrder(2, alice, qx(30), qy(15)))
	b.Insert(NewOrder(3, bob, qx(4), qy(2)))

	var ids []uint64
	b.Ascend(func(o *Order) bool {
		ids = append(ids, o.ID)
		return true
	})

	want := []uint64{2, 3, 1} // price 2 before 5/2, tie broken by id
	if len(ids) != len(want) {
		t.Fatalf("visited %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("visited %v, want %v", ids, want)
		}
	}
}

func TestFindMerge(t *testing.T) {
	b := NewBook(1)
	b.Insert(NewOrder(1, alice, qx(100), qy(50)))

	if _, ok := b.FindMerge(alice, qx(0).Kind(), NewPrice(2, 1)); !ok {
		t.Error("expected merge candidate at reduced price 2/1")
	}
	if _, ok := b.FindMerge(alice, qx(0).Kind(), NewPrice(3, 1)); ok {
		t.Error("no merge candidate at a different price")
	}
	if _, ok := b.FindMerge(bob, qx(0).Kind(), NewPrice(2, 1)); ok {
		t.Error("no merge candidate for a different manager")
	}
	if _, ok := b.FindMerge(alice, qy(0).Kind(), NewPrice(2, 1)); ok {
		t.Error("no merge candidate for the opposite orientation")
	}
}

func TestOppositeOrientationSamePriceRestsSeparately(t *testing.T) {
	b := NewBook(1)
	b.Insert(NewOrder(1, alice, qx(2), qy(1)))
	b.Insert(NewOrder(2, alice, qy(2), qx(1)))

	if b.Len() != 2 {
		t.Fatalf("Len = %d, want both orientations resting", b.Len())
	}
}

func TestRemove(t *testing.T) {
	b := NewBook(1)
	b.Insert(NewOrder(1, alice, qx(30), qy(15)))
	b.Insert(NewOrder(2, bob, qx(100), qy(40)))

	o, ok := b.Remove(1)
	if !ok || o.ID != 1 {
		t.Fatal("Remove(1) failed")
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
	if _, ok := b.Get(1); ok {
		t.Error("removed order still reachable by id")
	}
	if _, ok := b.FindMerge(alice, qx(0).Kind(), NewPrice(2, 1)); ok {
		t.Error("removed order still reachable by merge key")
	}
	if _, ok := b.Remove(1); ok {
		t.Error("double remove should fail")
	}
}

func TestRemoveDuringAscend(t *testing.T) {
	b := NewBook(1)
	b.Insert(NewOrder(1, alice, qx(30), qy(15)))
	b.Insert(NewOrder(2, bob, qx(100), qy(40)))

	var visited []uint64
	b.Ascend(func(o *Order) bool {
		visited = append(visited, o.ID)
		b.Remove(o.ID)
		return true
	})

	if len(visited) != 2 {
		t.Errorf("visited %v, want both orders despite removal mid-walk", visited)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestConversionExactAtBoundary(t *testing.T) {
	o := NewOrder(1, alice, qx(100), qy(40))

	if got := o.QuoteFor(100); got != 40 {
		t.Errorf("full base converts to %d, want exactly 40", got)
	}
	if got := o.QuoteFor(50); got != 20 {
		t.Errorf("QuoteFor(50) = %d, want 20", got)
	}
	if got := o.BaseFor(40); got != 100 {
		t.Errorf("full quote converts to %d, want exactly 100", got)
	}
	// partial conversions round down
	o2 := NewOrder(2, alice, qx(3), qy(2))
	if got := o2.QuoteFor(2); got != 1 {
		t.Errorf("QuoteFor(2) on 3/2 = %d, want floor 1", got)
	}
}

func TestInsertDuplicateMergeKeyPanics(t *testing.T) {
	b := NewBook(1)
	b.Insert(NewOrder(1, alice, qx(100), qy(50)))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate (manager, price)")
		}
	}()
	b.Insert(NewOrder(2, alice, qx(2), qy(1)))
}
