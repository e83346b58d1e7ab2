package exchange

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/core/pair"
	"github.com/escrowdex/escrowdex/pkg/app/core/settle"
	"github.com/escrowdex/escrowdex/pkg/app/core/whitelist"
)

// App is the exchange state machine: pair registry, per-pair order books,
// the whitelist gate, and the settlement bridge to the token ledger.
//
// Every caller-facing operation is one indivisible call: it validates,
// plans, hands the queued settlement intents to the ledger, and only then
// mutates the book and commits one storage batch. A failure anywhere before
// the mutation point leaves every component untouched. Calls are strictly
// serialized; there is no concurrency within or across calls.
type App struct {
	mu  sync.Mutex
	log *zap.SugaredLogger

	owner    common.Address
	store    Store
	ledger   settle.Ledger
	registry *pair.Registry
	books    map[uint64]*orderbook.Book
	white    *whitelist.Set

	nextOrderID uint64

	// OnBookUpdate, if set, receives a copy of a book's contents after each
	// committed mutation. Invoked under the call lock; it must not call
	// back into the App.
	OnBookUpdate func(pairID uint64, orders []orderbook.Order)
}

// Options wires the App's collaborators. Store and Ledger are required;
// a nil Logger silences the engine.
type Options struct {
	Owner  common.Address
	Store  Store
	Ledger settle.Ledger
	Logger *zap.SugaredLogger
}

// New loads persisted state and rebuilds the in-memory indexes.
func New(opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("exchange: nil store")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("exchange: nil ledger")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	a := &App{
		log:         log,
		owner:       opts.Owner,
		store:       opts.Store,
		ledger:      opts.Ledger,
		registry:    pair.NewRegistry(),
		books:       make(map[uint64]*orderbook.Book),
		white:       whitelist.New(),
		nextOrderID: 1,
	}

	snap, err := opts.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("exchange: load state: %w", err)
	}
	for _, p := range snap.Pairs {
		a.registry.Restore(p)
		a.books[p.ID] = orderbook.NewBook(p.ID)
	}
	for pairID, orders := range snap.Orders {
		bk := a.book(pairID)
		for _, o := range orders {
			bk.Insert(o)
		}
	}
	for _, account := range snap.Whitelist {
		if err := a.white.Insert(account); err != nil {
			return nil, fmt.Errorf("exchange: load whitelist: %w", err)
		}
	}
	if snap.NextOrderID > a.nextOrderID {
		a.nextOrderID = snap.NextOrderID
	}

	log.Infow("exchange_loaded",
		"pairs", a.registry.Count(),
		"whitelist", a.white.Len(),
		"next_order_id", a.nextOrderID)
	return a, nil
}

// book returns the order book of a pair, creating an empty one on demand.
func (a *App) book(pairID uint64) *orderbook.Book {
	bk, ok := a.books[pairID]
	if !ok {
		bk = orderbook.NewBook(pairID)
		a.books[pairID] = bk
	}
	return bk
}

// requireAuth enforces require_caller_is: the authenticated caller must be
// the named account.
func (a *App) requireAuth(caller, account common.Address) error {
	if caller != account {
		return fmt.Errorf("%w: caller %s is not %s", ErrNotAuthorized, caller.Hex(), account.Hex())
	}
	return nil
}

// requireWhitelisted gates placements and trades.
func (a *App) requireWhitelisted(account common.Address) error {
	if !a.white.Contains(account) {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, account.Hex())
	}
	return nil
}

// validDeposit checks one side of an order or trade: representable,
// well-formed currency, strictly positive.
func validDeposit(q asset.Quantity, side string) error {
	if !q.Valid() {
		return fmt.Errorf("%w: invalid %s", ErrInvalidQuantity, side)
	}
	if !q.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidQuantity, side)
	}
	return nil
}

// commit finalizes a call: flushes the storage batch and publishes the new
// book state. A storage failure after settlement has executed would leave
// the book and ledger out of step, which is exactly the inconsistency the
// host transaction exists to prevent, so it is fatal.
func (a *App) commit(batch Batch, pairID uint64) {
	if err := batch.Commit(); err != nil {
		panic(fmt.Errorf("storage commit failed: %w", err))
	}
	if a.OnBookUpdate != nil && pairID != 0 {
		bk := a.book(pairID)
		orders := make([]orderbook.Order, 0, bk.Len())
		for _, o := range bk.Orders() {
			orders = append(orders, *o)
		}
		a.OnBookUpdate(pairID, orders)
	}
}

// Owner returns the contract authority allowed to mutate the whitelist.
func (a *App) Owner() common.Address { return a.owner }

// Pairs lists registered trading pairs.
func (a *App) Pairs() []pair.Pair {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.List()
}

// BookOrders returns a copy of a pair's book in traversal order.
func (a *App) BookOrders(pairID uint64) ([]orderbook.Order, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.registry.Get(pairID); !ok {
		return nil, fmt.Errorf("%w: pair %d", ErrPairNotFound, pairID)
	}
	bk := a.book(pairID)
	out := make([]orderbook.Order, 0, bk.Len())
	for _, o := range bk.Orders() {
		out = append(out, *o)
	}
	return out, nil
}

// IsWhitelisted reports gate membership.
func (a *App) IsWhitelisted(account common.Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.white.Contains(account)
}
