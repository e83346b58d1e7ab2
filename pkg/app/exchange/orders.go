package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/action"
	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/core/settle"
)

// CreateOrder places a resting order offering baseDeposit in exchange for
// quoteDeposit. The base side is escrowed immediately via an allow-claim on
// the creator's balance; the quote side never moves until a fill. A second
// order from the same manager at the same derived price is folded into the
// first instead of resting separately.
func (a *App) CreateOrder(caller, creator common.Address, baseDeposit, quoteDeposit asset.Quantity) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAuth(caller, creator); err != nil {
		return err
	}
	if err := a.requireWhitelisted(creator); err != nil {
		return err
	}
	if err := validDeposit(baseDeposit, "base deposit"); err != nil {
		return err
	}
	if err := validDeposit(quoteDeposit, "quote deposit"); err != nil {
		return err
	}
	if baseDeposit.Kind() == quoteDeposit.Kind() {
		return ErrSameCurrency
	}

	price := orderbook.NewPrice(baseDeposit.Amount, quoteDeposit.Amount)

	// A fold into an existing order must keep both sides representable.
	// Checked before the escrow so a rejected placement leaves the ledger
	// untouched.
	if p, ok := a.registry.Resolve(baseDeposit.Kind(), quoteDeposit.Kind()); ok {
		if existing, ok := a.book(p.ID).FindMerge(creator, baseDeposit.Kind(), price); ok {
			if !existing.Base.Add(baseDeposit).Valid() || !existing.Quote.Add(quoteDeposit).Valid() {
				return fmt.Errorf("%w: merged order for %s at %s exceeds the maximum amount",
					ErrInvalidQuantity, creator.Hex(), price)
			}
		}
	}

	// Escrow the base deposit before any state changes.
	var queue settle.Queue
	queue.AllowClaim(creator, a.owner, baseDeposit)
	if err := a.ledger.Execute(queue.Intents()); err != nil {
		return fmt.Errorf("settlement: %w", err)
	}

	p, createdPair := a.registry.ResolveOrCreate(baseDeposit.Kind(), quoteDeposit.Kind())
	bk := a.book(p.ID)

	batch := a.store.NewBatch()
	if createdPair {
		batch.PutPair(p)
	}

	if existing, ok := bk.FindMerge(creator, baseDeposit.Kind(), price); ok {
		existing.Base = existing.Base.Add(baseDeposit)
		existing.Quote = existing.Quote.Add(quoteDeposit)
		batch.PutOrder(p.ID, existing)
		a.log.Infow("order_merged",
			"pair", p.ID, "order", existing.ID, "manager", creator.Hex(),
			"price", price, "base", existing.Base.Amount, "quote", existing.Quote.Amount)
	} else {
		o := orderbook.NewOrder(a.nextOrderID, creator, baseDeposit, quoteDeposit)
		a.nextOrderID++
		bk.Insert(o)
		batch.PutOrder(p.ID, o)
		a.log.Infow("order_created",
			"pair", p.ID, "order", o.ID, "manager", creator.Hex(),
			"price", price, "base", o.Base.Amount, "quote", o.Quote.Amount)
	}

	batch.PutSequence(a.nextOrderID)
	a.commit(batch, p.ID)
	return nil
}

// CancelOrder removes a resting order. Only the order's manager may cancel;
// the remaining base escrow is released back to them without moving funds.
func (a *App) CancelOrder(caller common.Address, ref action.OrderRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	pairID, o, err := a.findOrder(ref)
	if err != nil {
		return err
	}
	if err := a.requireAuth(caller, o.Manager); err != nil {
		return err
	}

	var queue settle.Queue
	queue.Release(o.Manager, o.Base)
	if err := a.ledger.Execute(queue.Intents()); err != nil {
		return fmt.Errorf("settlement: %w", err)
	}

	a.book(pairID).Remove(o.ID)
	batch := a.store.NewBatch()
	batch.DeleteOrder(pairID, o.ID)
	a.commit(batch, pairID)

	a.log.Infow("order_cancelled", "pair", pairID, "order", o.ID, "manager", o.Manager.Hex())
	return nil
}

// findOrder resolves an order reference. With a pair id the lookup is
// direct; without one, registered pairs are scanned. Order ids come from
// one global sequence, so at most one book can hold the id.
func (a *App) findOrder(ref action.OrderRef) (uint64, *orderbook.Order, error) {
	if ref.PairID != 0 {
		p, ok := a.registry.Get(ref.PairID)
		if !ok {
			return 0, nil, fmt.Errorf("%w: pair %d", ErrPairNotFound, ref.PairID)
		}
		o, ok := a.book(p.ID).Get(ref.OrderID)
		if !ok {
			return 0, nil, fmt.Errorf("%w: order %d in pair %d", ErrOrderNotFound, ref.OrderID, ref.PairID)
		}
		return p.ID, o, nil
	}
	for pairID, bk := range a.books {
		if o, ok := bk.Get(ref.OrderID); ok {
			return pairID, o, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, ref.OrderID)
}
