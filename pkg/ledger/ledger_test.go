package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/app/core/settle"
)

var (
	token = common.HexToAddress("0x4000000000000000000000000000000000000001")
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func q(amount int64) asset.Quantity { return asset.New(amount, "XTK", 4, token) }

func TestAllowThenClaim(t *testing.T) {
	l := NewInMemory()
	l.Mint(alice, q(100))

	var queue settle.Queue
	queue.AllowClaim(alice, bob, q(60))
	queue.Claim(alice, bob, q(60))

	if err := l.Execute(queue.Intents()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := l.BalanceOf(alice, q(0).Kind()); got != 40 {
		t.Errorf("alice balance = %d, want 40", got)
	}
	if got := l.BalanceOf(bob, q(0).Kind()); got != 60 {
		t.Errorf("bob balance = %d, want 60", got)
	}
	if got := l.AllowanceOf(alice, q(0).Kind()); got != 0 {
		t.Errorf("allowance after claim = %d, want 0", got)
	}
}

func TestClaimWithoutAllowanceFails(t *testing.T) {
	l := NewInMemory()
	l.Mint(alice, q(100))

	var queue settle.Queue
	queue.Claim(alice, bob, q(10))
	if err := l.Execute(queue.Intents()); err == nil {
		t.Fatal("claim without allowance should fail")
	}
	if got := l.BalanceOf(alice, q(0).Kind()); got != 100 {
		t.Errorf("failed execute mutated balance: %d", got)
	}
}

func TestAllowExceedingBalanceFails(t *testing.T) {
	l := NewInMemory()
	l.Mint(alice, q(50))

	var q1 settle.Queue
	q1.AllowClaim(alice, bob, q(40))
	if err := l.Execute(q1.Intents()); err != nil {
		t.Fatalf("first allow: %v", err)
	}

	// cumulative allowance may not exceed the balance
	var q2 settle.Queue
	q2.AllowClaim(alice, bob, q(20))
	if err := l.Execute(q2.Intents()); err == nil {
		t.Fatal("allow beyond balance should fail")
	}
	if got := l.AllowanceOf(alice, q(0).Kind()); got != 40 {
		t.Errorf("allowance = %d, want unchanged 40", got)
	}
}

func TestRelease(t *testing.T) {
	l := NewInMemory()
	l.Mint(alice, q(100))

	var q1 settle.Queue
	q1.AllowClaim(alice, bob, q(70))
	if err := l.Execute(q1.Intents()); err != nil {
		t.Fatalf("allow: %v", err)
	}

	var q2 settle.Queue
	q2.Release(alice, q(70))
	if err := l.Execute(q2.Intents()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := l.AllowanceOf(alice, q(0).Kind()); got != 0 {
		t.Errorf("allowance = %d, want 0", got)
	}
	if got := l.BalanceOf(alice, q(0).Kind()); got != 100 {
		t.Errorf("release moved funds: balance %d", got)
	}

	var q3 settle.Queue
	q3.Release(alice, q(1))
	if err := l.Execute(q3.Intents()); err == nil {
		t.Error("release beyond allowance should fail")
	}
}

func TestClaimOverflowingBeneficiaryFails(t *testing.T) {
	l := NewInMemory()
	l.Mint(alice, q(100))
	l.Mint(bob, q(asset.MaxAmount))

	var queue settle.Queue
	queue.AllowClaim(alice, bob, q(60))
	queue.Claim(alice, bob, q(60))
	if err := l.Execute(queue.Intents()); err == nil {
		t.Fatal("claim pushing a balance past MaxAmount should fail")
	}
	if got := l.BalanceOf(alice, q(0).Kind()); got != 100 {
		t.Errorf("alice balance = %d, want rolled back 100", got)
	}
	if got := l.AllowanceOf(alice, q(0).Kind()); got != 0 {
		t.Errorf("allowance = %d, want rolled back 0", got)
	}
	if got := l.BalanceOf(bob, q(0).Kind()); got != asset.MaxAmount {
		t.Errorf("bob balance = %d, want unchanged MaxAmount", got)
	}
}

func TestMintPastMaxAmountPanics(t *testing.T) {
	l := NewInMemory()
	l.Mint(alice, q(asset.MaxAmount))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mint past MaxAmount")
		}
	}()
	l.Mint(alice, q(1))
}

func TestFailedBatchRollsBackEverything(t *testing.T) {
	l := NewInMemory()
	l.Mint(alice, q(100))

	var queue settle.Queue
	queue.AllowClaim(alice, bob, q(30))
	queue.Claim(alice, bob, q(30))
	queue.Claim(alice, bob, q(1)) // allowance exhausted, must fail

	if err := l.Execute(queue.Intents()); err == nil {
		t.Fatal("expected batch failure")
	}
	if got := l.BalanceOf(alice, q(0).Kind()); got != 100 {
		t.Errorf("alice balance = %d, want rolled back 100", got)
	}
	if got := l.BalanceOf(bob, q(0).Kind()); got != 0 {
		t.Errorf("bob balance = %d, want rolled back 0", got)
	}
	if got := l.AllowanceOf(alice, q(0).Kind()); got != 0 {
		t.Errorf("allowance = %d, want rolled back 0", got)
	}
}
