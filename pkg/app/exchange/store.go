package exchange

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/core/pair"
)

// Snapshot is the full persisted state loaded at startup.
type Snapshot struct {
	Pairs       []pair.Pair
	Orders      map[uint64][]*orderbook.Order // pair id -> orders
	Whitelist   []common.Address
	NextOrderID uint64
}

// Batch stages the storage mutations of one call. Commit applies them
// atomically; an uncommitted batch leaves storage untouched.
type Batch interface {
	PutPair(p pair.Pair)
	PutOrder(pairID uint64, o *orderbook.Order)
	DeleteOrder(pairID, orderID uint64)
	PutWhitelist(account common.Address)
	DeleteWhitelist(account common.Address)
	PutSequence(nextOrderID uint64)
	Commit() error
}

// Store is the persisted order-book storage behind the engine. It is never
// exposed to callers; every mutation goes through the engine's call
// boundary. pkg/storage provides the pebble implementation and an
// in-memory fake for tests.
type Store interface {
	Load() (*Snapshot, error)
	NewBatch() Batch
	Close() error
}
