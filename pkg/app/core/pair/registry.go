package pair

import (
	"fmt"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

// Pair names the two currencies of one order-book namespace. The orientation
// stored here is whichever side was called base by the first order; it
// carries no economic meaning.
type Pair struct {
	ID    uint64     `json:"id"`
	Base  asset.Kind `json:"base"`
	Quote asset.Kind `json:"quote"`
}

// Matches reports a structural match against an unordered currency pair.
func (p Pair) Matches(a, b asset.Kind) bool {
	return (p.Base == a && p.Quote == b) || (p.Base == b && p.Quote == a)
}

func (p Pair) String() string {
	return fmt.Sprintf("pair %d (%s / %s)", p.ID, p.Base, p.Quote)
}

// Registry maps currency pairs to book namespaces. Pairs are created lazily
// on first placement and never deleted. Lookup is a linear scan: the pair
// count is bounded by economic diversity, not trade volume. The registry is
// not locked internally; the engine serializes every call.
type Registry struct {
	pairs  []Pair
	nextID uint64
}

func NewRegistry() *Registry {
	return &Registry{nextID: 1}
}

// Restore re-registers a pair loaded from storage and keeps the id sequence
// ahead of it.
func (r *Registry) Restore(p Pair) {
	r.pairs = append(r.pairs, p)
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
}

// Resolve finds the registered pair matching the two kinds in either
// orientation. It never creates one: trade and cancel paths must not
// conjure a book.
func (r *Registry) Resolve(a, b asset.Kind) (Pair, bool) {
	for _, p := range r.pairs {
		if p.Matches(a, b) {
			return p, true
		}
	}
	return Pair{}, false
}

// ResolveOrCreate finds the matching pair or registers a new one in the
// given orientation. Reports whether a pair was created.
func (r *Registry) ResolveOrCreate(base, quote asset.Kind) (Pair, bool) {
	if p, ok := r.Resolve(base, quote); ok {
		return p, false
	}
	p := Pair{ID: r.nextID, Base: base, Quote: quote}
	r.nextID++
	r.pairs = append(r.pairs, p)
	return p, true
}

// Get returns the pair with the given id.
func (r *Registry) Get(id uint64) (Pair, bool) {
	for _, p := range r.pairs {
		if p.ID == id {
			return p, true
		}
	}
	return Pair{}, false
}

// List returns all registered pairs in registration order.
func (r *Registry) List() []Pair {
	out := make([]Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

func (r *Registry) Count() int { return len(r.pairs) }
