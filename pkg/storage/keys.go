package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Key schema for Pebble storage:
//
//   pair:<pairID>           → Pair
//   ord:<pairID>:<orderID>  → Order
//   wl:<address>            → whitelist membership (empty value)
//   seq:order               → next order id (8-byte big-endian)
//
// Numeric ids are zero-padded hex so lexicographic iteration matches
// numeric order.

const (
	prefixPair      = "pair:"
	prefixOrder     = "ord:"
	prefixWhitelist = "wl:"
	keySequence     = "seq:order"
)

func pairKey(pairID uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x", prefixPair, pairID))
}

func orderKey(pairID, orderID uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x:%016x", prefixOrder, pairID, orderID))
}

func whitelistKey(addr common.Address) []byte {
	return []byte(fmt.Sprintf("%s%s", prefixWhitelist, addr.Hex()))
}

func sequenceKey() []byte {
	return []byte(keySequence)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
