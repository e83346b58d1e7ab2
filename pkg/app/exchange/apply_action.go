package exchange

import (
	"errors"
	"fmt"

	"github.com/escrowdex/escrowdex/pkg/app/core/action"
	"github.com/escrowdex/escrowdex/pkg/crypto"
)

// ErrBadSignature covers a missing, malformed, or unverifiable envelope
// signature. Recovery of a wrong-but-valid key is not this error; it shows
// up downstream as ErrNotAuthorized.
var ErrBadSignature = errors.New("invalid action signature")

// ApplyAction verifies and executes a signed action envelope. The caller
// identity is whatever address the signature recovers to; each operation
// then checks that identity against the account the payload names.
func (a *App) ApplyAction(act *action.Action) error {
	if err := act.Validate(); err != nil {
		return fmt.Errorf("invalid action: %w", err)
	}
	digest, err := act.Digest()
	if err != nil {
		return fmt.Errorf("invalid action: %w", err)
	}
	sig, err := crypto.ParseSignature(act.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	caller, err := crypto.RecoverAddress(digest, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	switch act.Kind {
	case action.KindCreateOrder:
		p := act.CreateOrder
		return a.CreateOrder(caller, p.Creator, p.BaseDeposit, p.QuoteDeposit)
	case action.KindCancelOrder:
		return a.CancelOrder(caller, act.CancelOrder.Ref)
	case action.KindTradeTargeted:
		p := act.TradeTargeted
		return a.TradeTargeted(caller, p.Seller, p.Ref, p.Sell, p.Receive)
	case action.KindTradeMarket:
		p := act.TradeMarket
		return a.TradeMarket(caller, p.Seller, p.Sell, p.Receive)
	case action.KindTradeLimit:
		p := act.TradeLimit
		return a.TradeLimit(caller, p.Seller, p.Sell, p.Receive)
	case action.KindWhitelistAdd:
		return a.WhitelistAdd(caller, act.Whitelist.Accounts)
	case action.KindWhitelistRemove:
		return a.WhitelistRemove(caller, act.Whitelist.Accounts)
	default:
		return fmt.Errorf("unknown action kind: %q", act.Kind)
	}
}
