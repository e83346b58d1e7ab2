package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/pkg/app/core/action"
	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/crypto"
)

// sign-action builds and signs a sample create_order action. Pass -key to
// sign with an existing account, otherwise a fresh keypair is generated.
func main() {
	keyHex := flag.String("key", "", "private key hex (generates a new key if empty)")
	issuerHex := flag.String("issuer", "", "token issuer address (defaults to signer)")
	flag.Parse()

	var (
		signer *crypto.Signer
		err    error
	)
	if *keyHex != "" {
		signer, err = crypto.FromPrivateKeyHex(*keyHex)
	} else {
		fmt.Println("Generating new keypair...")
		signer, err = crypto.GenerateKey()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Address: %s\n", signer.Address().Hex())
	fmt.Printf("Private Key: %s (KEEP SECRET!)\n\n", signer.PrivateKeyHex())

	issuer := signer.Address()
	if *issuerHex != "" {
		if !common.IsHexAddress(*issuerHex) {
			fmt.Printf("Error: invalid issuer address %q\n", *issuerHex)
			os.Exit(1)
		}
		issuer = common.HexToAddress(*issuerHex)
	}

	act := &action.Action{
		Kind: action.KindCreateOrder,
		CreateOrder: &action.CreateOrder{
			Creator:      signer.Address(),
			BaseDeposit:  asset.New(1000, "EOS", 4, issuer),
			QuoteDeposit: asset.New(500, "SYS", 4, issuer),
		},
	}

	fmt.Println("Action Details:")
	fmt.Printf("  Kind: %s\n", act.Kind)
	fmt.Printf("  Creator: %s\n", act.CreateOrder.Creator.Hex())
	fmt.Printf("  Offering: %s\n", act.CreateOrder.BaseDeposit)
	fmt.Printf("  Asking: %s\n\n", act.CreateOrder.QuoteDeposit)

	digest, err := act.Digest()
	if err != nil {
		fmt.Printf("Error computing digest: %v\n", err)
		os.Exit(1)
	}
	act.Signature, err = signer.SignHex(digest)
	if err != nil {
		fmt.Printf("Error signing: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Signature: %s\n\n", act.Signature)

	raw, err := json.MarshalIndent(act, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Signed Action (JSON):")
	fmt.Println(string(raw))
	fmt.Println()

	fmt.Println("Verifying signature...")
	sig, err := crypto.ParseSignature(act.Signature)
	if err != nil {
		fmt.Printf("Error parsing signature: %v\n", err)
		os.Exit(1)
	}
	recovered, err := crypto.RecoverAddress(digest, sig)
	if err != nil {
		fmt.Printf("Error recovering signer: %v\n", err)
		os.Exit(1)
	}
	if recovered != signer.Address() {
		fmt.Println("✗ Signature INVALID")
		os.Exit(1)
	}
	fmt.Println("✓ Signature VALID")
	fmt.Printf("  Signer: %s\n\n", recovered.Hex())

	fmt.Println("To submit this action:")
	fmt.Println("  POST http://localhost:8080/api/v1/actions")
	fmt.Println("  Content-Type: application/json")
	fmt.Println("  Body:")
	fmt.Println(string(raw))
}
