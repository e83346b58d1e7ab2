package orderbook

import (
	"fmt"
	"math/big"
)

// Price is the exact ratio base/quote of an order's two deposits, kept as a
// reduced fraction. Using a rational instead of a float makes "same price"
// an exact, platform-independent equality, which the merge rule depends on.
type Price struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// NewPrice reduces base/quote. Both operands must be positive; orders are
// validated before a price is ever derived.
func NewPrice(base, quote int64) Price {
	if base <= 0 || quote <= 0 {
		panic(fmt.Sprintf("price from non-positive amounts: %d/%d", base, quote))
	}
	g := gcd(base, quote)
	return Price{Num: base / g, Den: quote / g}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Cmp compares two prices by cross multiplication. The products can exceed
// int64, so they go through big.Int.
func (p Price) Cmp(o Price) int {
	l := new(big.Int).Mul(big.NewInt(p.Num), big.NewInt(o.Den))
	r := new(big.Int).Mul(big.NewInt(o.Num), big.NewInt(p.Den))
	return l.Cmp(r)
}

func (p Price) Equal(o Price) bool {
	return p.Num == o.Num && p.Den == o.Den
}

func (p Price) String() string {
	return fmt.Sprintf("%d/%d", p.Num, p.Den)
}
