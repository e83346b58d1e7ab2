package orderbook

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

// Book holds the resting orders of one trading pair: a primary index by
// order id, a traversal index sorted by (price ascending, id ascending), and
// a merge index by (manager, base kind, price). The book is not locked
// internally; the engine serializes every call against it.
type Book struct {
	pairID uint64
	orders map[uint64]*Order
	index  []uint64          // order ids in traversal order
	merge  map[string]uint64 // manager@base-kind@price -> order id
}

func NewBook(pairID uint64) *Book {
	return &Book{
		pairID: pairID,
		orders: make(map[uint64]*Order),
		merge:  make(map[string]uint64),
	}
}

func (b *Book) PairID() uint64 { return b.pairID }
func (b *Book) Len() int       { return len(b.orders) }

func (b *Book) Get(id uint64) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// FindMerge returns the resting order of the same manager, orientation and
// price, if one exists. Placement folds new deposits into it instead of
// creating a second order. The base kind is part of the identity: orders of
// the two orientations can share a reduced price without being mergeable.
func (b *Book) FindMerge(manager common.Address, base asset.Kind, price Price) (*Order, bool) {
	id, ok := b.merge[mergeKey(manager, base, price)]
	if !ok {
		return nil, false
	}
	return b.orders[id], true
}

// Insert adds a new order to all three indexes. The caller is responsible
// for the merge lookup first; inserting a duplicate (manager, base kind,
// price) entry is a bug.
func (b *Book) Insert(o *Order) {
	key := mergeKey(o.Manager, o.Base.Kind(), o.Price)
	if _, dup := b.merge[key]; dup {
		panic(fmt.Sprintf("duplicate order for %s at %s", o.Manager.Hex(), o.Price))
	}
	b.orders[o.ID] = o
	b.merge[key] = o.ID

	pos := sort.Search(len(b.index), func(i int) bool {
		return b.less(o, b.orders[b.index[i]])
	})
	b.index = append(b.index, 0)
	copy(b.index[pos+1:], b.index[pos:])
	b.index[pos] = o.ID
}

// Remove erases an order from every index and returns it.
func (b *Book) Remove(id uint64) (*Order, bool) {
	o, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	delete(b.orders, id)
	delete(b.merge, mergeKey(o.Manager, o.Base.Kind(), o.Price))
	for i, oid := range b.index {
		if oid == id {
			b.index = append(b.index[:i], b.index[i+1:]...)
			break
		}
	}
	return o, true
}

// Ascend visits orders in price order (lowest base/quote first, ties by id)
// until fn returns false. It walks a snapshot of the traversal index, so
// removing the current order mid-walk is safe.
func (b *Book) Ascend(fn func(o *Order) bool) {
	snapshot := make([]uint64, len(b.index))
	copy(snapshot, b.index)
	for _, id := range snapshot {
		o, ok := b.orders[id]
		if !ok {
			continue
		}
		if !fn(o) {
			return
		}
	}
}

// Orders returns the book contents in traversal order.
func (b *Book) Orders() []*Order {
	out := make([]*Order, 0, len(b.index))
	for _, id := range b.index {
		out = append(out, b.orders[id])
	}
	return out
}

// less orders by price ascending, then by id so that equal-priced orders are
// visited in placement order.
func (b *Book) less(x, y *Order) bool {
	if c := x.Price.Cmp(y.Price); c != 0 {
		return c < 0
	}
	return x.ID < y.ID
}

func mergeKey(manager common.Address, base asset.Kind, price Price) string {
	return manager.Hex() + "@" + base.String() + "@" + price.String()
}
