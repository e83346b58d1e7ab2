package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Node struct {
	// DataDir is where Pebble keeps the order-book state. Empty means run on
	// the in-memory store: nothing survives a restart.
	DataDir string
	LogFile string
	APIAddr string
}

type Exchange struct {
	// Owner is the hex address holding whitelist authority. The matching key
	// signs whitelist_add / whitelist_remove actions.
	Owner string
}

// Funding is one devnet genesis balance: account gets Amount of Code at
// Precision, issued by the exchange owner.
type Funding struct {
	Account   string
	Amount    int64
	Code      string
	Precision uint8
}

type Config struct {
	Node     Node
	Exchange Exchange
	// Genesis balances minted at startup. Devnet only; an empty list means
	// accounts start broke.
	Genesis []Funding
}

func Default() Config {
	return Config{
		Node: Node{
			DataDir: "data/exchange",
			LogFile: "data/node.log",
			APIAddr: ":8080",
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	if dir, ok := os.LookupEnv("DATA_DIR"); ok {
		cfg.Node.DataDir = dir
	}
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		cfg.Node.LogFile = logFile
	}
	if addr := os.Getenv("API_ADDR"); addr != "" {
		cfg.Node.APIAddr = addr
	}
	if owner := os.Getenv("EXCHANGE_OWNER"); owner != "" {
		cfg.Exchange.Owner = owner
	}

	if funds := os.Getenv("GENESIS_FUNDS"); funds != "" {
		genesis, err := parseGenesisFunds(funds)
		if err != nil {
			return cfg, err
		}
		cfg.Genesis = genesis
	}

	return cfg, nil
}

// parseGenesisFunds decodes "0xADDR=1000000:XTK:0;0xADDR=500:YTK:4" into
// funding entries.
func parseGenesisFunds(s string) ([]Funding, error) {
	var out []Funding
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		account, rest, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("genesis funds: missing '=' in %q", entry)
		}
		parts := strings.Split(rest, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("genesis funds: want amount:code:precision in %q", entry)
		}
		amount, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("genesis funds: bad amount in %q: %w", entry, err)
		}
		precision, err := strconv.ParseUint(parts[2], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("genesis funds: bad precision in %q: %w", entry, err)
		}
		out = append(out, Funding{
			Account:   account,
			Amount:    amount,
			Code:      parts[1],
			Precision: uint8(precision),
		})
	}
	return out, nil
}
