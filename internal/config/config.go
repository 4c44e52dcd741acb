package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	// Loads a .env file from the working directory, if present.
	_ "github.com/joho/godotenv/autoload"
)

// Defaults used when a variable is unset, unparsable or not positive.
const (
	DefaultPort                 = "8090"
	DefaultWorkerCount          = 2
	DefaultMaxQueueSize         = 50
	DefaultMaxConcurrentExtract = 5
	DefaultMaxUploadBytes       = 20 << 20
	DefaultJobTTL               = time.Hour
	DefaultRegistryFile         = "rspo.xlsx"
	DefaultRegistryPowiat       = "raciborsk"
	DefaultRegistryGmina        = "Racibórz"
	DefaultRegistryReloadCron   = "@every 6h"
	DefaultReportYear           = "2024"
)

// Config is the service and CLI configuration, read from the environment.
type Config struct {
	Port   string
	APIKey string

	// Analysis jobs
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentExtract int
	MaxUploadBytes       int64
	JobTTL               time.Duration

	// Statement extraction
	PDFFallbackRows      bool
	PDFFallbackPdftotext bool
	CatalogFile          string // empty means the built-in line-item catalog
	ReportYear           string

	// Enrollment registry
	RegistryFile       string
	RegistryPowiat     string
	RegistryGmina      string
	RegistryReloadCron string
}

func Load() Config {
	return Config{
		Port:   envOr("PORT", DefaultPort),
		APIKey: os.Getenv("EDUFIN_API_KEY"),

		WorkerCount:          envPositive("WORKER_COUNT", DefaultWorkerCount, strconv.Atoi),
		MaxQueueSize:         envPositive("MAX_QUEUE_SIZE", DefaultMaxQueueSize, strconv.Atoi),
		MaxConcurrentExtract: envPositive("MAX_CONCURRENT_EXTRACT", DefaultMaxConcurrentExtract, strconv.Atoi),
		MaxUploadBytes:       envPositive("MAX_UPLOAD_BYTES", int64(DefaultMaxUploadBytes), parseInt64),
		JobTTL:               envPositive("JOB_TTL", DefaultJobTTL, time.ParseDuration),

		PDFFallbackRows:      envBool("PDF_FALLBACK_ROWS", true),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		CatalogFile:          os.Getenv("CATALOG_FILE"),
		ReportYear:           envOr("REPORT_YEAR", DefaultReportYear),

		RegistryFile:       envOr("REGISTRY_FILE", DefaultRegistryFile),
		RegistryPowiat:     envOr("REGISTRY_POWIAT", DefaultRegistryPowiat),
		RegistryGmina:      envOr("REGISTRY_GMINA", DefaultRegistryGmina),
		RegistryReloadCron: envOr("REGISTRY_RELOAD_CRON", DefaultRegistryReloadCron),
	}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("EDUFIN_API_KEY is required")
	}
	if c.ReloadEnabled() {
		if _, err := cron.ParseStandard(c.RegistryReloadCron); err != nil {
			return fmt.Errorf("REGISTRY_RELOAD_CRON: %w", err)
		}
	}
	return nil
}

// ReloadEnabled reports whether the registry is reloaded on a schedule.
// REGISTRY_RELOAD_CRON=off disables it.
func (c Config) ReloadEnabled() bool {
	return c.RegistryReloadCron != "" && c.RegistryReloadCron != "off"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

// envPositive parses key with parse and falls back when the variable is
// unset, malformed or not greater than zero.
func envPositive[T int | int64 | time.Duration](key string, fallback T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := parse(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
