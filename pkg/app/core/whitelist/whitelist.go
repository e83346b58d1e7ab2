package whitelist

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrAlreadyWhitelisted = errors.New("account already whitelisted")
	ErrNotWhitelisted     = errors.New("account not whitelisted")
)

// Set is the in-memory view of the persisted whitelist. Mutation authority
// is enforced by the engine, not here.
type Set struct {
	members map[common.Address]struct{}
}

func New() *Set {
	return &Set{members: make(map[common.Address]struct{})}
}

func (s *Set) Contains(account common.Address) bool {
	_, ok := s.members[account]
	return ok
}

// Insert adds an account, failing if it is already present.
func (s *Set) Insert(account common.Address) error {
	if s.Contains(account) {
		return ErrAlreadyWhitelisted
	}
	s.members[account] = struct{}{}
	return nil
}

// Erase removes an account, failing if it is absent.
func (s *Set) Erase(account common.Address) error {
	if !s.Contains(account) {
		return ErrNotWhitelisted
	}
	delete(s.members, account)
	return nil
}

func (s *Set) Len() int { return len(s.members) }

func (s *Set) Members() []common.Address {
	out := make([]common.Address, 0, len(s.members))
	for a := range s.members {
		out = append(out, a)
	}
	return out
}
