package settle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

// Op is one of the three settlement primitives against the token ledger.
type Op string

const (
	// OpAllowClaim grants Beneficiary the right to pull Quantity from Owner.
	// It authorizes; it moves nothing.
	OpAllowClaim Op = "allow_claim"
	// OpClaim transfers Quantity from Owner to Beneficiary, consuming a
	// prior allowance.
	OpClaim Op = "claim"
	// OpRelease gives up an unused allowance on Owner's balance. No funds
	// move; used when an order is cancelled.
	OpRelease Op = "release"
)

// Intent is one queued settlement instruction.
type Intent struct {
	Op          Op             `json:"op"`
	Owner       common.Address `json:"owner"`
	Beneficiary common.Address `json:"beneficiary,omitempty"`
	Quantity    asset.Quantity `json:"quantity"`
}

func (i Intent) String() string {
	return fmt.Sprintf("%s owner=%s beneficiary=%s %s", i.Op, i.Owner.Hex(), i.Beneficiary.Hex(), i.Quantity)
}

// Ledger is the external token ledger the exchange settles against. Execute
// applies the whole intent list or none of it; an allow intent must precede
// any claim that depends on it within the same list or an earlier call.
type Ledger interface {
	Execute(intents []Intent) error
}

// Queue accumulates intents during a fill loop. Nothing reaches the ledger
// until the whole call has succeeded, which is what keeps a failed sweep
// free of side effects.
type Queue struct {
	intents []Intent
}

func (q *Queue) AllowClaim(owner, beneficiary common.Address, quantity asset.Quantity) {
	q.intents = append(q.intents, Intent{Op: OpAllowClaim, Owner: owner, Beneficiary: beneficiary, Quantity: quantity})
}

func (q *Queue) Claim(from, to common.Address, quantity asset.Quantity) {
	q.intents = append(q.intents, Intent{Op: OpClaim, Owner: from, Beneficiary: to, Quantity: quantity})
}

func (q *Queue) Release(owner common.Address, quantity asset.Quantity) {
	q.intents = append(q.intents, Intent{Op: OpRelease, Owner: owner, Quantity: quantity})
}

func (q *Queue) Len() int          { return len(q.intents) }
func (q *Queue) Intents() []Intent { return q.intents }
