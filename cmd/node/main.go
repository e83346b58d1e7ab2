package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/escrowdex/escrowdex/params"
	"github.com/escrowdex/escrowdex/pkg/api"
	"github.com/escrowdex/escrowdex/pkg/app/core/asset"
	"github.com/escrowdex/escrowdex/pkg/app/exchange"
	"github.com/escrowdex/escrowdex/pkg/crypto"
	"github.com/escrowdex/escrowdex/pkg/ledger"
	"github.com/escrowdex/escrowdex/pkg/storage"
	"github.com/escrowdex/escrowdex/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("") // "" means load from .env in current directory
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Setup logging (write to both console and file)
	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile)

	// ---- Owner authority ----
	// The owner signs whitelist actions. Without EXCHANGE_OWNER a throwaway
	// devnet key is generated and printed so the node stays usable.
	var owner common.Address
	if cfg.Exchange.Owner != "" {
		if !common.IsHexAddress(cfg.Exchange.Owner) {
			sugar.Fatalw("invalid_owner_address", "owner", cfg.Exchange.Owner)
		}
		owner = common.HexToAddress(cfg.Exchange.Owner)
	} else {
		ownerKey, err := crypto.GenerateKey()
		if err != nil {
			sugar.Fatalw("owner_keygen_failed", "err", err)
		}
		owner = ownerKey.Address()
		sugar.Infow("devnet_owner_generated",
			"address", owner.Hex(),
			"private_key", ownerKey.PrivateKeyHex())
	}

	// ---- Storage ----
	var store exchange.Store
	if cfg.Node.DataDir != "" {
		ps, err := storage.NewPebbleStore(cfg.Node.DataDir)
		if err != nil {
			sugar.Fatalw("pebble_open_failed", "dir", cfg.Node.DataDir, "err", err)
		}
		store = ps
		sugar.Infow("storage_opened", "backend", "pebble", "dir", cfg.Node.DataDir)
	} else {
		store = storage.NewMemStore()
		sugar.Infow("storage_opened", "backend", "memory")
	}
	defer store.Close()

	// ---- Ledger ----
	// In-process token ledger. Genesis balances are issued under the owner's
	// authority; everything else enters via trades.
	bank := ledger.NewInMemory()
	for _, f := range cfg.Genesis {
		if !common.IsHexAddress(f.Account) {
			sugar.Fatalw("invalid_genesis_account", "account", f.Account)
		}
		q := asset.New(f.Amount, f.Code, f.Precision, owner)
		if !q.Valid() || !q.IsPositive() {
			sugar.Fatalw("invalid_genesis_quantity", "account", f.Account, "quantity", q.String())
		}
		bank.Mint(common.HexToAddress(f.Account), q)
		sugar.Infow("genesis_minted", "account", f.Account, "quantity", q.String())
	}

	// ---- Exchange engine ----
	app, err := exchange.New(exchange.Options{
		Owner:  owner,
		Store:  store,
		Ledger: bank,
		Logger: sugar,
	})
	if err != nil {
		sugar.Fatalw("exchange_init_failed", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- API Server ----
	apiServer := api.NewServer(app)

	// Broadcast book snapshots to WebSocket subscribers on every commit.
	app.OnBookUpdate = apiServer.BroadcastBook

	go func() {
		sugar.Infow("api_server_starting", "addr", cfg.Node.APIAddr)
		if err := apiServer.Start(cfg.Node.APIAddr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	sugar.Infow("node_started", "owner", owner.Hex(), "pairs", len(app.Pairs()))

	<-ctx.Done()
	sugar.Info("shutting down")
}
