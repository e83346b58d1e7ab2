package action

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
)

var (
	issuer = common.HexToAddress("0x3000000000000000000000000000000000000001")
	alice  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
)

func validCreate() *Action {
	return &Action{
		Kind: KindCreateOrder,
		CreateOrder: &CreateOrder{
			Creator:      alice,
			BaseDeposit:  asset.New(100, "XTK", 4, issuer),
			QuoteDeposit: asset.New(50, "YTK", 4, issuer),
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		act     *Action
		wantErr bool
	}{
		{"valid create", validCreate(), false},
		{"unknown kind", &Action{Kind: "transmogrify"}, true},
		{"kind without payload", &Action{Kind: KindCreateOrder}, true},
		{"cancel missing order id", &Action{Kind: KindCancelOrder, CancelOrder: &CancelOrder{}}, true},
		{
			"whitelist empty accounts",
			&Action{Kind: KindWhitelistAdd, Whitelist: &Whitelist{}},
			true,
		},
		{
			"whitelist ok",
			&Action{Kind: KindWhitelistRemove, Whitelist: &Whitelist{Accounts: []common.Address{alice}}},
			false,
		},
		{
			"malformed quantity",
			&Action{Kind: KindTradeMarket, TradeMarket: &TradeMarket{
				Seller:  alice,
				Sell:    asset.Kind{Symbol: asset.Symbol{Code: "YTK", Precision: 4}, Issuer: issuer},
				Receive: asset.New(10, "bad", 4, issuer),
			}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.act.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDigestStable(t *testing.T) {
	a := validCreate()
	d1, err := a.Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	d2, _ := a.Digest()
	if !bytes.Equal(d1, d2) {
		t.Error("digest not deterministic")
	}
	if len(d1) != 32 {
		t.Errorf("digest length = %d, want 32", len(d1))
	}

	// signature field must not influence the digest
	a.Signature = "0xdeadbeef"
	d3, _ := a.Digest()
	if !bytes.Equal(d1, d3) {
		t.Error("signature leaked into digest")
	}

	// a different payload must produce a different digest
	b := validCreate()
	b.CreateOrder.BaseDeposit.Amount = 101
	d4, _ := b.Digest()
	if bytes.Equal(d1, d4) {
		t.Error("distinct payloads share a digest")
	}
}

func TestParseRoundTrip(t *testing.T) {
	data, err := validCreate().Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Kind != KindCreateOrder || got.CreateOrder == nil {
		t.Fatal("round trip lost payload")
	}
	if got.CreateOrder.BaseDeposit.Amount != 100 {
		t.Errorf("base amount = %d, want 100", got.CreateOrder.BaseDeposit.Amount)
	}

	if _, err := Parse([]byte(`{"kind":"create_order"}`)); err == nil {
		t.Error("Parse should reject a kind without its payload")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("Parse should reject malformed JSON")
	}
}
