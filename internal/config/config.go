package config

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env           string
	Port          string
	DatabaseURL   string
	RedisURL      string
	BlockInterval time.Duration // wall time per block for the ticker
	AssetPrices   map[string]decimal.Decimal
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	blockInterval := viper.GetDuration("BLOCK_INTERVAL")
	if blockInterval == 0 {
		blockInterval = 6 * time.Second
	}

	return &Config{
		Env:           env,
		Port:          port,
		DatabaseURL:   dbURL,
		RedisURL:      viper.GetString("REDIS_URL"),
		BlockInterval: blockInterval,
		AssetPrices:   assetPrices(),
	}, nil
}

// assetPrices reads the injected oracle prices, one env var per asset
// (e.g. PRICE_PLMC_USD=0.84). Missing vars fall back to defaults so a dev
// instance works out of the box.
func assetPrices() map[string]decimal.Decimal {
	defaults := map[string]string{
		"PLMC": "0.84",
		"USDT": "1.0",
		"USDC": "1.0",
		"DOT":  "6.9",
	}
	prices := make(map[string]decimal.Decimal, len(defaults))
	for asset, fallback := range defaults {
		raw := viper.GetString("PRICE_" + asset + "_USD")
		if raw == "" {
			raw = fallback
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			price, _ = decimal.NewFromString(fallback)
		}
		prices[asset] = price
	}
	return prices
}
