package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is everything read from the environment at startup. Catalog data
// (quests, stages, layer tables) lives in the TOML catalog, see catalog.go.
type Config struct {
	Port        string
	DatabaseURL string // empty → JSON file snapshot store
	DataDir     string // file store directory
	CatalogPath string // optional catalog.toml override

	AllowedOrigins string
	GatewayToken   string // empty → gateway auth disabled

	// Ledger endpoints (primary + failover) and the service wallet that pays
	// for mints.
	PrimaryRPC     string
	FallbackRPC    string
	ServiceWallet  string
	MinMintBalance int64 // lamports required before a mint is attempted
	RetryBaseDelay time.Duration

	// R2 asset storage. All four must be set for uploads to be enabled.
	CloudflareAccountID string
	R2AccessKeyID       string
	R2AccessKeySecret   string
	R2Bucket            string
	CDNBaseURL          string

	PublicBaseURL string // used to build /output URIs in metadata
}

// Load reads configuration from the environment, applying the defaults the
// service ran with historically.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getenv("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DataDir:     getenv("DATA_DIR", "."),
		CatalogPath: os.Getenv("CATALOG_PATH"),

		AllowedOrigins: getenv("ALLOWED_ORIGINS", "http://localhost:3000"),
		GatewayToken:   os.Getenv("GATEWAY_TOKEN"),

		PrimaryRPC:    getenv("PRIMARY_RPC", "https://api.devnet.solana.com"),
		FallbackRPC:   getenv("FALLBACK_RPC", "https://rpc.ankr.com/solana_devnet"),
		ServiceWallet: os.Getenv("SERVICE_WALLET"),

		CloudflareAccountID: os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret:   os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:            os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:          os.Getenv("CDN_BASE_URL"),
	}
	cfg.PublicBaseURL = getenv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%s", cfg.Port))

	var err error
	// 0.03 SOL, the historical preflight threshold for a mint.
	if cfg.MinMintBalance, err = getenvInt64("MIN_MINT_BALANCE_LAMPORTS", 30_000_000); err != nil {
		return nil, err
	}
	baseMillis, err := getenvInt64("LEDGER_RETRY_BASE_MS", 1000)
	if err != nil {
		return nil, err
	}
	cfg.RetryBaseDelay = time.Duration(baseMillis) * time.Millisecond

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
