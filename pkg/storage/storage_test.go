package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/core/pair"
	"github.com/escrowdex/escrowdex/pkg/app/exchange"
)

var (
	issuer = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	alice  = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func eos(amount int64) asset.Quantity { return asset.New(amount, "EOS", 4, issuer) }
func sys(amount int64) asset.Quantity { return asset.New(amount, "SYS", 4, issuer) }

func eachStore(t *testing.T, fn func(t *testing.T, open func() exchange.Store)) {
	t.Helper()
	t.Run("pebble", func(t *testing.T) {
		dir := t.TempDir()
		fn(t, func() exchange.Store {
			s, err := NewPebbleStore(dir)
			if err != nil {
				t.Fatalf("open pebble: %v", err)
			}
			return s
		})
	})
	t.Run("mem", func(t *testing.T) {
		s := NewMemStore()
		fn(t, func() exchange.Store { return s })
	})
}

func TestStoreRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, open func() exchange.Store) {
		s := open()

		p := pair.Pair{ID: 1, Base: eos(0).Kind(), Quote: sys(0).Kind()}
		o1 := orderbook.NewOrder(1, alice, eos(1000), sys(500))
		o2 := orderbook.NewOrder(2, bob, eos(3000), sys(2000))

		b := s.NewBatch()
		b.PutPair(p)
		b.PutOrder(p.ID, o1)
		b.PutOrder(p.ID, o2)
		b.PutWhitelist(alice)
		b.PutSequence(3)
		if err := b.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}

		// Delete one order and revoke the whitelist entry in a second call.
		b = s.NewBatch()
		b.DeleteOrder(p.ID, o2.ID)
		b.DeleteWhitelist(alice)
		b.PutWhitelist(bob)
		if err := b.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}

		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		s = open()
		defer s.Close()

		snap, err := s.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(snap.Pairs) != 1 || snap.Pairs[0].ID != p.ID {
			t.Fatalf("pairs = %+v, want one pair with id %d", snap.Pairs, p.ID)
		}
		orders := snap.Orders[p.ID]
		if len(orders) != 1 {
			t.Fatalf("orders = %d, want 1", len(orders))
		}
		got := orders[0]
		if got.ID != o1.ID || got.Manager != alice || !got.Base.Equal(o1.Base) || !got.Quote.Equal(o1.Quote) || !got.Price.Equal(o1.Price) {
			t.Errorf("order round trip = %+v, want %+v", got, o1)
		}
		if len(snap.Whitelist) != 1 || snap.Whitelist[0] != bob {
			t.Errorf("whitelist = %v, want [%s]", snap.Whitelist, bob.Hex())
		}
		if snap.NextOrderID != 3 {
			t.Errorf("next order id = %d, want 3", snap.NextOrderID)
		}
	})
}

func TestStoreEmptyLoad(t *testing.T) {
	eachStore(t, func(t *testing.T, open func() exchange.Store) {
		s := open()
		defer s.Close()

		snap, err := s.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(snap.Pairs) != 0 || len(snap.Orders) != 0 || len(snap.Whitelist) != 0 {
			t.Errorf("fresh store not empty: %+v", snap)
		}
		if snap.NextOrderID != 1 {
			t.Errorf("next order id = %d, want 1", snap.NextOrderID)
		}
	})
}

func TestStoreUncommittedBatchInvisible(t *testing.T) {
	eachStore(t, func(t *testing.T, open func() exchange.Store) {
		s := open()
		defer s.Close()

		b := s.NewBatch()
		b.PutPair(pair.Pair{ID: 7, Base: eos(0).Kind(), Quote: sys(0).Kind()})
		b.PutSequence(99)
		// Batch is dropped, never committed.

		snap, err := s.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(snap.Pairs) != 0 {
			t.Errorf("uncommitted pair leaked into storage: %+v", snap.Pairs)
		}
		if snap.NextOrderID != 1 {
			t.Errorf("uncommitted sequence leaked: %d", snap.NextOrderID)
		}
	})
}
