package asset

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MaxAmount bounds the magnitude of any quantity so that sums of two valid
// amounts never overflow int64.
const MaxAmount = int64(1)<<62 - 1

// MaxPrecision is the largest number of decimal places a symbol may declare.
const MaxPrecision = 18

const maxSymbolLen = 7

// Symbol identifies a currency: a short uppercase code plus its decimal
// precision, "4,EOS" style. Two symbols with the same code but different
// precision are different currencies.
type Symbol struct {
	Code      string `json:"code"`
	Precision uint8  `json:"precision"`
}

// Valid reports whether the code is 1-7 uppercase ASCII letters and the
// precision is within bounds.
func (s Symbol) Valid() bool {
	if len(s.Code) == 0 || len(s.Code) > maxSymbolLen {
		return false
	}
	for _, c := range s.Code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return s.Precision <= MaxPrecision
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// Kind is the identity of an asset: its symbol plus the issuing token
// contract. Quantities are only comparable and combinable within one Kind.
type Kind struct {
	Symbol Symbol         `json:"symbol"`
	Issuer common.Address `json:"issuer"`
}

func (k Kind) Valid() bool {
	return k.Symbol.Valid()
}

func (k Kind) String() string {
	return fmt.Sprintf("%s@%s", k.Symbol, k.Issuer.Hex())
}

// Quantity is a signed fixed-point amount of one asset kind.
type Quantity struct {
	Amount int64          `json:"amount"`
	Symbol Symbol         `json:"symbol"`
	Issuer common.Address `json:"issuer"`
}

// New builds a quantity of the given kind.
func New(amount int64, code string, precision uint8, issuer common.Address) Quantity {
	return Quantity{
		Amount: amount,
		Symbol: Symbol{Code: code, Precision: precision},
		Issuer: issuer,
	}
}

// Kind returns the identity of the quantity's asset.
func (q Quantity) Kind() Kind {
	return Kind{Symbol: q.Symbol, Issuer: q.Issuer}
}

// Valid reports whether the amount is representable and the symbol is
// well-formed.
func (q Quantity) Valid() bool {
	if q.Amount > MaxAmount || q.Amount < -MaxAmount {
		return false
	}
	return q.Kind().Valid()
}

func (q Quantity) IsPositive() bool { return q.Amount > 0 }
func (q Quantity) IsZero() bool     { return q.Amount == 0 }

// SameKind reports whether two quantities share symbol and issuer.
func (q Quantity) SameKind(o Quantity) bool {
	return q.Symbol == o.Symbol && q.Issuer == o.Issuer
}

// WithAmount returns a copy of q holding a different amount of the same kind.
func (q Quantity) WithAmount(amount int64) Quantity {
	q.Amount = amount
	return q
}

// Add sums two quantities of the same kind. Mixing kinds is an upstream bug,
// not a caller error, so it panics.
func (q Quantity) Add(o Quantity) Quantity {
	mustSameKind(q, o)
	q.Amount += o.Amount
	return q
}

// Sub subtracts a quantity of the same kind.
func (q Quantity) Sub(o Quantity) Quantity {
	mustSameKind(q, o)
	q.Amount -= o.Amount
	return q
}

func mustSameKind(a, b Quantity) {
	if !a.SameKind(b) {
		panic(fmt.Sprintf("asset kind mismatch: %s vs %s", a.Kind(), b.Kind()))
	}
}

// Cmp defines a total structural order over quantities. For quantities of the
// same kind it is the numeric amount order; across kinds it falls back to
// symbol/issuer order. The cross-kind order carries no economic meaning and
// exists only as a deterministic tie-break.
func (q Quantity) Cmp(o Quantity) int {
	if q.SameKind(o) {
		switch {
		case q.Amount < o.Amount:
			return -1
		case q.Amount > o.Amount:
			return 1
		default:
			return 0
		}
	}
	if c := strings.Compare(q.Symbol.Code, o.Symbol.Code); c != 0 {
		return c
	}
	if q.Symbol.Precision != o.Symbol.Precision {
		if q.Symbol.Precision < o.Symbol.Precision {
			return -1
		}
		return 1
	}
	return q.Issuer.Cmp(o.Issuer)
}

// Equal reports structural equality: same kind and same amount.
func (q Quantity) Equal(o Quantity) bool {
	return q.SameKind(o) && q.Amount == o.Amount
}

// Min returns the structurally smaller of two quantities.
func Min(a, b Quantity) Quantity {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// String renders the amount with the symbol's declared precision,
// e.g. "1.5000 4,EOS@0x...".
func (q Quantity) String() string {
	if q.Symbol.Precision == 0 {
		return fmt.Sprintf("%d %s", q.Amount, q.Kind())
	}
	amt := q.Amount
	sign := ""
	if amt < 0 {
		sign = "-"
		amt = -amt
	}
	div := int64(1)
	for i := uint8(0); i < q.Symbol.Precision; i++ {
		div *= 10
	}
	return fmt.Sprintf("%s%d.%0*d %s", sign, amt/div, q.Symbol.Precision, amt%div, q.Kind())
}
