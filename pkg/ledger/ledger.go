package ledger

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/app/core/settle"
)

// InMemory is an in-process token ledger implementing the settlement
// primitives the exchange drives: allow_claim authorizes a pull against a
// balance, claim executes it, release gives an unused authorization back.
// Balances are tracked per (account, asset kind); the allowance is a single
// running total per (account, kind), matching how the exchange escrows one
// deposit per order side. No balance ever exceeds asset.MaxAmount, and an
// allowance never exceeds its balance, so int64 sums of one balance and one
// settlement amount cannot wrap.
type InMemory struct {
	mu        sync.Mutex
	balances  map[common.Address]map[asset.Kind]int64
	allowance map[common.Address]map[asset.Kind]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		balances:  make(map[common.Address]map[asset.Kind]int64),
		allowance: make(map[common.Address]map[asset.Kind]int64),
	}
}

// Mint credits a balance out of thin air. Devnet and test funding only;
// funding an account past asset.MaxAmount is a configuration bug.
func (l *InMemory) Mint(to common.Address, quantity asset.Quantity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if quantity.Amount <= 0 || quantity.Amount > asset.MaxAmount {
		panic(fmt.Sprintf("ledger: mint of invalid quantity %s", quantity))
	}
	if l.balances[to][quantity.Kind()] > asset.MaxAmount-quantity.Amount {
		panic(fmt.Sprintf("ledger: mint overflows balance of %s for %s", to.Hex(), quantity.Kind()))
	}
	l.credit(l.balances, to, quantity.Kind(), quantity.Amount)
}

// BalanceOf returns the balance of one asset kind.
func (l *InMemory) BalanceOf(account common.Address, kind asset.Kind) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account][kind]
}

// AllowanceOf returns the outstanding claim authorization on an account's
// balance of one asset kind.
func (l *InMemory) AllowanceOf(account common.Address, kind asset.Kind) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowance[account][kind]
}

// Execute applies a settlement intent list atomically: if any intent fails,
// every earlier one in the list is rolled back and the ledger is unchanged.
func (l *InMemory) Execute(intents []settle.Intent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var undo []func()
	fail := func(err error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		return err
	}

	for _, in := range intents {
		kind := in.Quantity.Kind()
		amount := in.Quantity.Amount
		if amount <= 0 || amount > asset.MaxAmount {
			return fail(fmt.Errorf("ledger: settlement amount out of range: %s", in))
		}

		switch in.Op {
		case settle.OpAllowClaim:
			if l.balances[in.Owner][kind] < l.allowance[in.Owner][kind]+amount {
				return fail(fmt.Errorf("ledger: allow_claim exceeds balance of %s for %s", in.Owner.Hex(), kind))
			}
			l.credit(l.allowance, in.Owner, kind, amount)
			undo = append(undo, func() { l.credit(l.allowance, in.Owner, kind, -amount) })

		case settle.OpClaim:
			if l.allowance[in.Owner][kind] < amount {
				return fail(fmt.Errorf("ledger: claim exceeds allowance of %s for %s", in.Owner.Hex(), kind))
			}
			if l.balances[in.Owner][kind] < amount {
				return fail(fmt.Errorf("ledger: claim exceeds balance of %s for %s", in.Owner.Hex(), kind))
			}
			if l.balances[in.Beneficiary][kind] > asset.MaxAmount-amount {
				return fail(fmt.Errorf("ledger: claim overflows balance of %s for %s", in.Beneficiary.Hex(), kind))
			}
			l.credit(l.allowance, in.Owner, kind, -amount)
			l.credit(l.balances, in.Owner, kind, -amount)
			l.credit(l.balances, in.Beneficiary, kind, amount)
			undo = append(undo, func() {
				l.credit(l.balances, in.Beneficiary, kind, -amount)
				l.credit(l.balances, in.Owner, kind, amount)
				l.credit(l.allowance, in.Owner, kind, amount)
			})

		case settle.OpRelease:
			if l.allowance[in.Owner][kind] < amount {
				return fail(fmt.Errorf("ledger: release exceeds allowance of %s for %s", in.Owner.Hex(), kind))
			}
			l.credit(l.allowance, in.Owner, kind, -amount)
			undo = append(undo, func() { l.credit(l.allowance, in.Owner, kind, amount) })

		default:
			return fail(fmt.Errorf("ledger: unknown settlement op %q", in.Op))
		}
	}

	return nil
}

func (l *InMemory) credit(table map[common.Address]map[asset.Kind]int64, account common.Address, kind asset.Kind, delta int64) {
	row, ok := table[account]
	if !ok {
		row = make(map[asset.Kind]int64)
		table[account] = row
	}
	row[kind] += delta
}

var _ settle.Ledger = (*InMemory)(nil)
