package orderbook

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

// Order is a resting offer: it gives up Base in exchange for Quote.
// "Base" and "quote" are the order's own orientation, not the pair's.
// Both sides shrink proportionally on partial fills; Price stays fixed at
// the ratio of the original deposits and is the merge/sort key.
type Order struct {
	ID      uint64         `json:"id"`
	Manager common.Address `json:"manager"`
	Base    asset.Quantity `json:"base"`
	Quote   asset.Quantity `json:"quote"`
	Price   Price          `json:"price"`
}

// NewOrder derives the price from the two deposits. Amount validation
// happens in the engine before an order is built.
func NewOrder(id uint64, manager common.Address, base, quote asset.Quantity) *Order {
	return &Order{
		ID:      id,
		Manager: manager,
		Base:    base,
		Quote:   quote,
		Price:   NewPrice(base.Amount, quote.Amount),
	}
}

// QuoteFor converts a base amount into the quote amount the order charges
// for it, at the ratio of the order's current remaining sides. Consuming the
// full remaining base yields exactly the full remaining quote, so no value
// is ever stranded; partial conversions round down.
func (o *Order) QuoteFor(base int64) int64 {
	return convert(base, o.Quote.Amount, o.Base.Amount)
}

// BaseFor converts a quote amount into the base amount it buys, with the
// same exact-at-the-boundary, floor-otherwise rule as QuoteFor.
func (o *Order) BaseFor(quote int64) int64 {
	return convert(quote, o.Base.Amount, o.Quote.Amount)
}

// convert computes floor(amount * num / den) without intermediate overflow.
func convert(amount, num, den int64) int64 {
	out := new(big.Int).Mul(big.NewInt(amount), big.NewInt(num))
	out.Quo(out, big.NewInt(den))
	return out.Int64()
}
