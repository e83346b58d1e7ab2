package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/whitelist"
)

// WhitelistAdd admits accounts to the trading gate. Owner-only. The batch
// is atomic: if any account is already admitted (or listed twice in the
// request) the whole call fails and nothing changes.
func (a *App) WhitelistAdd(caller common.Address, accounts []common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAuth(caller, a.owner); err != nil {
		return err
	}
	if len(accounts) == 0 {
		return ErrEmptyAccountList
	}

	seen := make(map[common.Address]struct{}, len(accounts))
	for _, acct := range accounts {
		if _, dup := seen[acct]; dup {
			return fmt.Errorf("%w: %s listed twice", whitelist.ErrAlreadyWhitelisted, acct.Hex())
		}
		if a.white.Contains(acct) {
			return fmt.Errorf("%w: %s", whitelist.ErrAlreadyWhitelisted, acct.Hex())
		}
		seen[acct] = struct{}{}
	}

	batch := a.store.NewBatch()
	for _, acct := range accounts {
		if err := a.white.Insert(acct); err != nil {
			panic(fmt.Sprintf("incorrect state: %v", err))
		}
		batch.PutWhitelist(acct)
	}
	a.commit(batch, 0)

	a.log.Infow("whitelist_added", "accounts", len(accounts), "total", a.white.Len())
	return nil
}

// WhitelistRemove revokes accounts from the gate, with the same owner-only
// and all-or-nothing rules as WhitelistAdd. Resting orders of a removed
// account stay on the book; the gate only blocks new placements and trades.
func (a *App) WhitelistRemove(caller common.Address, accounts []common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAuth(caller, a.owner); err != nil {
		return err
	}
	if len(accounts) == 0 {
		return ErrEmptyAccountList
	}

	seen := make(map[common.Address]struct{}, len(accounts))
	for _, acct := range accounts {
		if _, dup := seen[acct]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrNotWhitelisted, acct.Hex())
		}
		if !a.white.Contains(acct) {
			return fmt.Errorf("%w: %s", ErrNotWhitelisted, acct.Hex())
		}
		seen[acct] = struct{}{}
	}

	batch := a.store.NewBatch()
	for _, acct := range accounts {
		if err := a.white.Erase(acct); err != nil {
			panic(fmt.Sprintf("incorrect state: %v", err))
		}
		batch.DeleteWhitelist(acct)
	}
	a.commit(batch, 0)

	a.log.Infow("whitelist_removed", "accounts", len(accounts), "total", a.white.Len())
	return nil
}
