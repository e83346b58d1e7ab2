package exchange

import "errors"

// Every failure aborts the whole call; nothing partial survives. These
// sentinels classify the abort for callers and for the API layer.
var (
	// ErrNotAuthorized: the authenticated caller does not control the
	// account an action names, or lacks the owner authority.
	ErrNotAuthorized = errors.New("missing required authority")

	// ErrNotWhitelisted: placement/trade from an account outside the gate.
	ErrNotWhitelisted = errors.New("account is not whitelisted")

	// ErrInvalidQuantity: malformed or non-positive amount or currency.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrSameCurrency: both sides of an order or trade name one currency.
	ErrSameCurrency = errors.New("must exchange between two different currencies")

	ErrPairNotFound  = errors.New("trading pair doesn't exist")
	ErrOrderNotFound = errors.New("order doesn't exist")

	// ErrUnableToFill: the sweep exhausted the book before the requested
	// amount was met. The book is untouched; retry with a smaller size.
	ErrUnableToFill = errors.New("unable to fill")

	// ErrAmountMismatch: a targeted trade named amounts that differ from
	// the referenced order.
	ErrAmountMismatch = errors.New("trade amounts don't match the order")

	// ErrSelfTrade: the requester is the manager of the targeted order.
	ErrSelfTrade = errors.New("cannot trade against own order")

	// ErrEmptyAccountList: a whitelist mutation named no accounts.
	ErrEmptyAccountList = errors.New("empty account list")
)
