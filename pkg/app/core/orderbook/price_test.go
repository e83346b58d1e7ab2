package orderbook

import (
	"math"
	"testing"
)

func TestNewPriceReduces(t *testing.T) {
	tests := []struct {
		base, quote int64
		num, den    int64
	}{
		{100, 50, 2, 1},
		{30, 15, 2, 1},
		{100, 40, 5, 2},
		{7, 3, 7, 3},
		{1, 1, 1, 1},
	}
	for _, tt := range tests {
		got := NewPrice(tt.base, tt.quote)
		if got.Num != tt.num || got.Den != tt.den {
			t.Errorf("NewPrice(%d, %d) = %s, want %d/%d", tt.base, tt.quote, got, tt.num, tt.den)
		}
	}
}

func TestPriceEqualityAfterReduction(t *testing.T) {
	// Different deposits at the same ratio must compare exactly equal;
	// this is what makes the merge rule deterministic.
	if !NewPrice(100, 50).Equal(NewPrice(2, 1)) {
		t.Error("100/50 should equal 2/1")
	}
	if NewPrice(100, 50).Equal(NewPrice(100, 51)) {
		t.Error("100/50 should not equal 100/51")
	}
}

func TestPriceCmp(t *testing.T) {
	a := NewPrice(30, 15)  // 2
	b := NewPrice(100, 40) // 5/2
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Errorf("Cmp(2, 5/2): got %d/%d/%d", a.Cmp(b), b.Cmp(a), a.Cmp(a))
	}
}

func TestPriceCmpNoOverflow(t *testing.T) {
	// Cross products far beyond int64 must still compare correctly.
	big1 := Price{Num: math.MaxInt64 / 2, Den: 3}
	big2 := Price{Num: math.MaxInt64/2 - 1, Den: 3}
	if big1.Cmp(big2) != 1 {
		t.Error("large numerator comparison overflowed")
	}
}

func TestNewPricePanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero quote")
		}
	}()
	NewPrice(10, 0)
}
