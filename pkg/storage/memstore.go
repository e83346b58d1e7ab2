package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/core/pair"
	"github.com/escrowdex/escrowdex/pkg/app/exchange"
)

// MemStore is an in-memory Store for tests and ephemeral devnets. It keeps
// the same batch-then-commit discipline as the Pebble store, and deep-copies
// orders through JSON so the stored state never aliases live book pointers.
type MemStore struct {
	mu          sync.Mutex
	pairs       map[uint64]pair.Pair
	orders      map[uint64]map[uint64][]byte // pair id -> order id -> encoded order
	whitelist   map[common.Address]struct{}
	nextOrderID uint64
}

func NewMemStore() *MemStore {
	return &MemStore{
		pairs:       make(map[uint64]pair.Pair),
		orders:      make(map[uint64]map[uint64][]byte),
		whitelist:   make(map[common.Address]struct{}),
		nextOrderID: 1,
	}
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) Load() (*exchange.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &exchange.Snapshot{
		Orders:      make(map[uint64][]*orderbook.Order),
		NextOrderID: s.nextOrderID,
	}
	for _, p := range s.pairs {
		snap.Pairs = append(snap.Pairs, p)
	}
	for pairID, byID := range s.orders {
		for _, data := range byID {
			var o orderbook.Order
			if err := json.Unmarshal(data, &o); err != nil {
				return nil, fmt.Errorf("decode stored order: %w", err)
			}
			snap.Orders[pairID] = append(snap.Orders[pairID], &o)
		}
	}
	for account := range s.whitelist {
		snap.Whitelist = append(snap.Whitelist, account)
	}
	return snap, nil
}

func (s *MemStore) NewBatch() exchange.Batch {
	return &memBatch{store: s}
}

type memBatch struct {
	store *MemStore
	ops   []func(*MemStore)
	err   error
}

func (mb *memBatch) PutPair(p pair.Pair) {
	mb.ops = append(mb.ops, func(s *MemStore) { s.pairs[p.ID] = p })
}

func (mb *memBatch) PutOrder(pairID uint64, o *orderbook.Order) {
	data, err := json.Marshal(o)
	if err != nil {
		mb.err = fmt.Errorf("encode order %d: %w", o.ID, err)
		return
	}
	orderID := o.ID
	mb.ops = append(mb.ops, func(s *MemStore) {
		byID, ok := s.orders[pairID]
		if !ok {
			byID = make(map[uint64][]byte)
			s.orders[pairID] = byID
		}
		byID[orderID] = data
	})
}

func (mb *memBatch) DeleteOrder(pairID, orderID uint64) {
	mb.ops = append(mb.ops, func(s *MemStore) { delete(s.orders[pairID], orderID) })
}

func (mb *memBatch) PutWhitelist(account common.Address) {
	mb.ops = append(mb.ops, func(s *MemStore) { s.whitelist[account] = struct{}{} })
}

func (mb *memBatch) DeleteWhitelist(account common.Address) {
	mb.ops = append(mb.ops, func(s *MemStore) { delete(s.whitelist, account) })
}

func (mb *memBatch) PutSequence(nextOrderID uint64) {
	mb.ops = append(mb.ops, func(s *MemStore) { s.nextOrderID = nextOrderID })
}

func (mb *memBatch) Commit() error {
	if mb.err != nil {
		return mb.err
	}
	mb.store.mu.Lock()
	defer mb.store.mu.Unlock()
	for _, op := range mb.ops {
		op(mb.store)
	}
	return nil
}

var _ exchange.Store = (*MemStore)(nil)
