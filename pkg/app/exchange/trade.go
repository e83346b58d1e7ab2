package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/action"
	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/core/settle"
)

// fillStep is one planned consumption of a resting order: base and quote
// are the amounts removed from the order's two sides, already converted at
// the order's ratio. Steps are computed against an unmutated book and
// applied only once the whole sweep is known to succeed.
type fillStep struct {
	order   *orderbook.Order
	base    asset.Quantity
	quote   asset.Quantity
	removes bool
}

// TradeMarket sweeps the pair's book until the requested receive amount has
// been bought, paying whatever the visited orders charge in the sell
// currency. If the book cannot supply the full amount the call fails and
// nothing changes: not the book, not the ledger, not storage.
func (a *App) TradeMarket(caller, seller common.Address, sellKind asset.Kind, receive asset.Quantity) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.tradePreflight(caller, seller, sellKind, receive, "receive amount"); err != nil {
		return err
	}

	p, ok := a.registry.Resolve(receive.Kind(), sellKind)
	if !ok {
		return fmt.Errorf("%w: %s / %s", ErrPairNotFound, receive.Kind(), sellKind)
	}
	bk := a.book(p.ID)

	received := receive.WithAmount(0)
	var steps []fillStep
	bk.Ascend(func(o *orderbook.Order) bool {
		if o.Manager == seller || o.Quote.Kind() != sellKind || o.Base.Kind() != receive.Kind() {
			return true
		}
		step := asset.Min(o.Base, receive.Sub(received))
		steps = append(steps, fillStep{
			order:   o,
			base:    step,
			quote:   o.Quote.WithAmount(o.QuoteFor(step.Amount)),
			removes: step.Amount == o.Base.Amount,
		})
		received = received.Add(step)
		return received.Amount < receive.Amount
	})
	if !received.Equal(receive) {
		return fmt.Errorf("%w: %s of %s available", ErrUnableToFill, received, receive)
	}

	var queue settle.Queue
	sold := int64(0)
	for _, s := range steps {
		queue.AllowClaim(seller, a.owner, s.quote)
		queue.Claim(s.order.Manager, seller, s.base)
		queue.Claim(seller, s.order.Manager, s.quote)
		sold += s.quote.Amount
	}
	if err := a.ledger.Execute(queue.Intents()); err != nil {
		return fmt.Errorf("settlement: %w", err)
	}

	a.applyFills(p.ID, bk, steps)
	a.log.Infow("trade_market",
		"pair", p.ID, "seller", seller.Hex(),
		"received", receive.Amount, "sold", sold, "orders_touched", len(steps))
	return nil
}

// TradeLimit sweeps the pair's book until the full sell amount has been
// spent, receiving whatever it buys in the receive currency. Like the
// market variant it is all-or-nothing at the call boundary.
func (a *App) TradeLimit(caller, seller common.Address, sell asset.Quantity, receiveKind asset.Kind) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.tradePreflight(caller, seller, receiveKind, sell, "sell amount"); err != nil {
		return err
	}

	p, ok := a.registry.Resolve(receiveKind, sell.Kind())
	if !ok {
		return fmt.Errorf("%w: %s / %s", ErrPairNotFound, receiveKind, sell.Kind())
	}
	bk := a.book(p.ID)

	sold := sell.WithAmount(0)
	var steps []fillStep
	bk.Ascend(func(o *orderbook.Order) bool {
		if o.Manager == seller || o.Quote.Kind() != sell.Kind() || o.Base.Kind() != receiveKind {
			return true
		}
		step := asset.Min(o.Quote, sell.Sub(sold))
		steps = append(steps, fillStep{
			order:   o,
			base:    o.Base.WithAmount(o.BaseFor(step.Amount)),
			quote:   step,
			removes: step.Amount == o.Quote.Amount,
		})
		sold = sold.Add(step)
		return sold.Amount < sell.Amount
	})
	if !sold.Equal(sell) {
		return fmt.Errorf("%w: %s of %s sellable", ErrUnableToFill, sold, sell)
	}

	var queue settle.Queue
	bought := int64(0)
	for _, s := range steps {
		queue.AllowClaim(seller, a.owner, s.quote)
		queue.Claim(seller, s.order.Manager, s.quote)
		queue.Claim(s.order.Manager, seller, s.base)
		bought += s.base.Amount
	}
	if err := a.ledger.Execute(queue.Intents()); err != nil {
		return fmt.Errorf("settlement: %w", err)
	}

	a.applyFills(p.ID, bk, steps)
	a.log.Infow("trade_limit",
		"pair", p.ID, "seller", seller.Hex(),
		"sold", sell.Amount, "received", bought, "orders_touched", len(steps))
	return nil
}

// TradeTargeted consumes exactly one named order. The caller states the
// amounts it expects to give and receive; any deviation from the order's
// remaining sides rejects the trade. No partial fill, no sweep.
func (a *App) TradeTargeted(caller, seller common.Address, ref action.OrderRef, sell, receive asset.Quantity) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.tradePreflight(caller, seller, receive.Kind(), sell, "sell amount"); err != nil {
		return err
	}
	if err := validDeposit(receive, "receive amount"); err != nil {
		return err
	}

	var (
		pairID uint64
		o      *orderbook.Order
	)
	if ref.PairID != 0 {
		var err error
		pairID, o, err = a.findOrder(ref)
		if err != nil {
			return err
		}
	} else {
		p, ok := a.registry.Resolve(receive.Kind(), sell.Kind())
		if !ok {
			return fmt.Errorf("%w: %s / %s", ErrPairNotFound, receive.Kind(), sell.Kind())
		}
		pairID = p.ID
		o, ok = a.book(pairID).Get(ref.OrderID)
		if !ok {
			return fmt.Errorf("%w: order %d", ErrOrderNotFound, ref.OrderID)
		}
	}

	if o.Manager == seller {
		return ErrSelfTrade
	}
	if !o.Base.Equal(receive) || !o.Quote.Equal(sell) {
		return fmt.Errorf("%w: order %d holds %s for %s", ErrAmountMismatch, o.ID, o.Base, o.Quote)
	}

	var queue settle.Queue
	queue.AllowClaim(seller, a.owner, sell)
	queue.Claim(seller, o.Manager, sell)
	queue.Claim(o.Manager, seller, receive)
	if err := a.ledger.Execute(queue.Intents()); err != nil {
		return fmt.Errorf("settlement: %w", err)
	}

	a.applyFills(pairID, a.book(pairID), []fillStep{{order: o, base: receive, quote: sell, removes: true}})
	a.log.Infow("trade_targeted",
		"pair", pairID, "order", o.ID, "seller", seller.Hex(),
		"sold", sell.Amount, "received", receive.Amount)
	return nil
}

// tradePreflight runs the checks shared by all trade variants:
// authentication, the whitelist gate, a valid positive quantity, and
// distinct currencies on the two legs.
func (a *App) tradePreflight(caller, seller common.Address, counter asset.Kind, amount asset.Quantity, side string) error {
	if err := a.requireAuth(caller, seller); err != nil {
		return err
	}
	if err := a.requireWhitelisted(seller); err != nil {
		return err
	}
	if !counter.Valid() {
		return fmt.Errorf("%w: malformed currency %s", ErrInvalidQuantity, counter)
	}
	if err := validDeposit(amount, side); err != nil {
		return err
	}
	if amount.Kind() == counter {
		return ErrSameCurrency
	}
	return nil
}

// applyFills mutates the book per the planned steps and commits one storage
// batch. A step that would consume more than an order holds can only come
// from a planning bug; that is the "incorrect state" fatal, not an error.
func (a *App) applyFills(pairID uint64, bk *orderbook.Book, steps []fillStep) {
	batch := a.store.NewBatch()
	for _, s := range steps {
		o, ok := bk.Get(s.order.ID)
		if !ok || s.base.Amount > o.Base.Amount || s.quote.Amount > o.Quote.Amount {
			panic(fmt.Sprintf("incorrect state: step %s/%s against order %d", s.base, s.quote, s.order.ID))
		}
		if s.removes {
			bk.Remove(o.ID)
			batch.DeleteOrder(pairID, o.ID)
		} else {
			o.Base = o.Base.Sub(s.base)
			o.Quote = o.Quote.Sub(s.quote)
			batch.PutOrder(pairID, o)
		}
	}
	a.commit(batch, pairID)
}
