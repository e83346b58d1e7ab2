package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/core/pair"
	"github.com/escrowdex/escrowdex/pkg/app/exchange"
)

// PebbleStore persists exchange state in a Pebble database. Each engine
// call stages its writes in one pebble.Batch and commits synced, so a crash
// either keeps the whole call or none of it.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// Load reads the full persisted state back into a snapshot.
func (s *PebbleStore) Load() (*exchange.Snapshot, error) {
	snap := &exchange.Snapshot{
		Orders:      make(map[uint64][]*orderbook.Order),
		NextOrderID: 1,
	}

	if err := s.scan([]byte(prefixPair), func(key, val []byte) error {
		var p pair.Pair
		if err := json.Unmarshal(val, &p); err != nil {
			return fmt.Errorf("decode pair %q: %w", key, err)
		}
		snap.Pairs = append(snap.Pairs, p)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.scan([]byte(prefixOrder), func(key, val []byte) error {
		pairID, err := orderKeyPair(key)
		if err != nil {
			return err
		}
		var o orderbook.Order
		if err := json.Unmarshal(val, &o); err != nil {
			return fmt.Errorf("decode order %q: %w", key, err)
		}
		snap.Orders[pairID] = append(snap.Orders[pairID], &o)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.scan([]byte(prefixWhitelist), func(key, _ []byte) error {
		hexAddr := strings.TrimPrefix(string(key), prefixWhitelist)
		if !common.IsHexAddress(hexAddr) {
			return fmt.Errorf("malformed whitelist key %q", key)
		}
		snap.Whitelist = append(snap.Whitelist, common.HexToAddress(hexAddr))
		return nil
	}); err != nil {
		return nil, err
	}

	val, closer, err := s.db.Get(sequenceKey())
	if err == nil {
		if len(val) == 8 {
			snap.NextOrderID = binary.BigEndian.Uint64(val)
		}
		closer.Close()
	} else if err != pebble.ErrNotFound {
		return nil, fmt.Errorf("read order sequence: %w", err)
	}

	return snap, nil
}

func (s *PebbleStore) scan(prefix []byte, fn func(key, val []byte) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// orderKeyPair extracts the pair id from "ord:<pairID>:<orderID>".
func orderKeyPair(key []byte) (uint64, error) {
	rest := strings.TrimPrefix(string(key), prefixOrder)
	sep := strings.IndexByte(rest, ':')
	if sep < 0 {
		return 0, fmt.Errorf("malformed order key %q", key)
	}
	pairID, err := strconv.ParseUint(rest[:sep], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed order key %q: %w", key, err)
	}
	return pairID, nil
}

// NewBatch stages one engine call's writes.
func (s *PebbleStore) NewBatch() exchange.Batch {
	return &pebbleBatch{b: s.db.NewBatch()}
}

type pebbleBatch struct {
	b   *pebble.Batch
	err error
}

func (pb *pebbleBatch) set(key []byte, v any) {
	if pb.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		pb.err = fmt.Errorf("encode %q: %w", key, err)
		return
	}
	pb.err = pb.b.Set(key, data, nil)
}

func (pb *pebbleBatch) PutPair(p pair.Pair) {
	pb.set(pairKey(p.ID), p)
}

func (pb *pebbleBatch) PutOrder(pairID uint64, o *orderbook.Order) {
	pb.set(orderKey(pairID, o.ID), o)
}

func (pb *pebbleBatch) DeleteOrder(pairID, orderID uint64) {
	if pb.err != nil {
		return
	}
	pb.err = pb.b.Delete(orderKey(pairID, orderID), nil)
}

func (pb *pebbleBatch) PutWhitelist(account common.Address) {
	if pb.err != nil {
		return
	}
	pb.err = pb.b.Set(whitelistKey(account), nil, nil)
}

func (pb *pebbleBatch) DeleteWhitelist(account common.Address) {
	if pb.err != nil {
		return
	}
	pb.err = pb.b.Delete(whitelistKey(account), nil)
}

func (pb *pebbleBatch) PutSequence(nextOrderID uint64) {
	if pb.err != nil {
		return
	}
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], nextOrderID)
	pb.err = pb.b.Set(sequenceKey(), val[:], nil)
}

func (pb *pebbleBatch) Commit() error {
	if pb.err != nil {
		pb.b.Close()
		return pb.err
	}
	return pb.b.Commit(pebble.Sync)
}

var _ exchange.Store = (*PebbleStore)(nil)
