package action

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

// Kind enumerates every caller-facing operation. The set is closed: the
// dispatcher matches it exhaustively and rejects anything else.
type Kind string

const (
	KindCreateOrder     Kind = "create_order"
	KindCancelOrder     Kind = "cancel_order"
	KindTradeTargeted   Kind = "trade_targeted"
	KindTradeMarket     Kind = "trade_market"
	KindTradeLimit      Kind = "trade_limit"
	KindWhitelistAdd    Kind = "whitelist_add"
	KindWhitelistRemove Kind = "whitelist_remove"
)

// Action is a signed request envelope. Exactly one payload field matching
// Kind must be set; Signature is a 65-byte secp256k1 signature (hex, 0x
// prefix optional) over Digest().
type Action struct {
	Kind          Kind           `json:"kind"`
	CreateOrder   *CreateOrder   `json:"create_order,omitempty"`
	CancelOrder   *CancelOrder   `json:"cancel_order,omitempty"`
	TradeTargeted *TradeTargeted `json:"trade_targeted,omitempty"`
	TradeMarket   *TradeMarket   `json:"trade_market,omitempty"`
	TradeLimit    *TradeLimit    `json:"trade_limit,omitempty"`
	Whitelist     *Whitelist     `json:"whitelist,omitempty"`
	Signature     string         `json:"signature"`
}

// CreateOrder places (or merges) a resting order offering BaseDeposit in
// exchange for QuoteDeposit.
type CreateOrder struct {
	Creator      common.Address `json:"creator"`
	BaseDeposit  asset.Quantity `json:"base_deposit"`
	QuoteDeposit asset.Quantity `json:"quote_deposit"`
}

// OrderRef names a resting order. PairID 0 means "search all pairs"; order
// ids are allocated from one global sequence, so the id alone is unambiguous.
type OrderRef struct {
	PairID  uint64 `json:"pair_id,omitempty"`
	OrderID uint64 `json:"order_id"`
}

type CancelOrder struct {
	Ref OrderRef `json:"ref"`
}

// TradeTargeted is the exact-match primitive: it names one order and the
// precise amounts it expects, and either consumes it whole or fails.
type TradeTargeted struct {
	Seller  common.Address `json:"seller"`
	Ref     OrderRef       `json:"ref"`
	Sell    asset.Quantity `json:"sell"`
	Receive asset.Quantity `json:"receive"`
}

// TradeMarket sweeps the book until the requested receive amount is met,
// selling whatever it costs in the sell currency.
type TradeMarket struct {
	Seller  common.Address `json:"seller"`
	Sell    asset.Kind     `json:"sell"`
	Receive asset.Quantity `json:"receive"`
}

// TradeLimit sweeps the book until the full sell amount is spent, receiving
// whatever it buys in the receive currency.
type TradeLimit struct {
	Seller  common.Address `json:"seller"`
	Sell    asset.Quantity `json:"sell"`
	Receive asset.Kind     `json:"receive"`
}

// Whitelist carries one or more accounts for an add/remove. The batch is
// atomic: every account is applied or none is.
type Whitelist struct {
	Accounts []common.Address `json:"accounts"`
}

// Validate checks the envelope shape: kind known, the matching payload
// present, and payload fields structurally sound. Economic validation
// (positivity, currency identity, whitelist) belongs to the engine.
func (a *Action) Validate() error {
	p, err := a.payload()
	if err != nil {
		return err
	}
	switch v := p.(type) {
	case *CreateOrder:
		if !v.BaseDeposit.Valid() || !v.QuoteDeposit.Valid() {
			return fmt.Errorf("create_order: malformed deposit quantity")
		}
	case *CancelOrder:
		if v.Ref.OrderID == 0 {
			return fmt.Errorf("cancel_order: missing order id")
		}
	case *TradeTargeted:
		if v.Ref.OrderID == 0 {
			return fmt.Errorf("trade_targeted: missing order id")
		}
		if !v.Sell.Valid() || !v.Receive.Valid() {
			return fmt.Errorf("trade_targeted: malformed quantity")
		}
	case *TradeMarket:
		if !v.Sell.Valid() || !v.Receive.Valid() {
			return fmt.Errorf("trade_market: malformed quantity")
		}
	case *TradeLimit:
		if !v.Sell.Valid() || !v.Receive.Valid() {
			return fmt.Errorf("trade_limit: malformed quantity")
		}
	case *Whitelist:
		if len(v.Accounts) == 0 {
			return fmt.Errorf("%s: empty account list", a.Kind)
		}
	}
	return nil
}

// payload returns the single payload struct matching Kind.
func (a *Action) payload() (interface{}, error) {
	switch a.Kind {
	case KindCreateOrder:
		if a.CreateOrder == nil {
			return nil, fmt.Errorf("%s: missing payload", a.Kind)
		}
		return a.CreateOrder, nil
	case KindCancelOrder:
		if a.CancelOrder == nil {
			return nil, fmt.Errorf("%s: missing payload", a.Kind)
		}
		return a.CancelOrder, nil
	case KindTradeTargeted:
		if a.TradeTargeted == nil {
			return nil, fmt.Errorf("%s: missing payload", a.Kind)
		}
		return a.TradeTargeted, nil
	case KindTradeMarket:
		if a.TradeMarket == nil {
			return nil, fmt.Errorf("%s: missing payload", a.Kind)
		}
		return a.TradeMarket, nil
	case KindTradeLimit:
		if a.TradeLimit == nil {
			return nil, fmt.Errorf("%s: missing payload", a.Kind)
		}
		return a.TradeLimit, nil
	case KindWhitelistAdd, KindWhitelistRemove:
		if a.Whitelist == nil {
			return nil, fmt.Errorf("%s: missing payload", a.Kind)
		}
		return a.Whitelist, nil
	default:
		return nil, fmt.Errorf("unknown action kind: %q", a.Kind)
	}
}

// Digest is the 32-byte message an action signer commits to: keccak256 over
// the kind tag and the canonical JSON encoding of the payload. Payloads are
// fixed-field structs, so encoding/json is deterministic here.
func (a *Action) Digest() ([]byte, error) {
	p, err := a.payload()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", a.Kind, err)
	}
	msg := append([]byte(string(a.Kind)+":"), body...)
	return gethcrypto.Keccak256(msg), nil
}

// Serialize renders the action as JSON for transport.
func (a *Action) Serialize() ([]byte, error) {
	return json.Marshal(a)
}

// Parse decodes and shape-checks an action envelope.
func Parse(data []byte) (*Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
