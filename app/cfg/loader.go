package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"codemart_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"codemart_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"codemart" description:"Database name"`
	DBSSLMode  string `long:"db-sslmode" env:"DB_SSLMODE" default:"disable" description:"Database SSL mode (disable, require, verify-full)"`

	// Application configuration
	ProfilesDir       string `long:"profiles-dir" env:"PROFILES_DIR" default:"./profiles" description:"Directory containing catalog sync profile files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	AllowedOrigin     string `long:"allowed-origin" env:"ALLOWED_ORIGIN" description:"Storefront origin allowed for cross-origin requests"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for catalog sync"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Marketplace configuration
	MarketplaceURL    string `long:"marketplace-url" env:"MARKETPLACE_URL" default:"https://api.envato.com" description:"Marketplace API base URL"`
	SecretsURL        string `long:"secrets-url" env:"SECRETS_URL" description:"Base URL of the secret-function endpoint"`
	SecretsToken      string `long:"secrets-token" env:"SECRETS_TOKEN" description:"Service token for the secret-function endpoint"`
	MarketplaceAPIKey string `long:"marketplace-api-key" env:"MARKETPLACE_API_KEY" description:"Static marketplace API key (overrides the secret-function lookup)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Codemart/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Tokyo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// Best effort; a missing .env file is not an error
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		DBSSLMode:         raw.DBSSLMode,
		ProfilesDir:       raw.ProfilesDir,
		Port:              raw.Port,
		AllowedOrigin:     raw.AllowedOrigin,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		MarketplaceURL:    raw.MarketplaceURL,
		SecretsURL:        raw.SecretsURL,
		SecretsToken:      raw.SecretsToken,
		MarketplaceAPIKey: raw.MarketplaceAPIKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
