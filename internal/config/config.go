// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/usestring/yamlcheck/pkg/jsoncompact"
)

// Report and batch defaults
const (
	DefaultMaxReportLines       = 25
	DefaultWorkers              = 1
	DefaultEngineCacheMaxItems  = 16
	DefaultMaxDocumentSizeBytes = 10 << 20
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds all configuration for yamlcheck. Command-line flags override
// the values loaded here.
type Config struct {
	SchemaPath          string // YAMLCHECK_SCHEMA, default "" (bundled schema)
	Verbose             bool   // YAMLCHECK_VERBOSE, default false
	MaxReportLines      int    // YAMLCHECK_MAX_REPORT_LINES, default 25
	Workers             int    // YAMLCHECK_WORKERS, default 1 (sequential)
	EngineCacheMaxItems int    // YAMLCHECK_ENGINE_CACHE_MAX_ITEMS, default 16
	MaxDocumentBytes    int    // YAMLCHECK_MAX_DOCUMENT_BYTES, default 10 MiB
	Format              string // YAMLCHECK_FORMAT, "text" or "json", default "text"

	// Compaction of instance values shown in diagnostics
	CompactMaxArrayItems int // COMPACT_MAX_ARRAY_ITEMS
	CompactMaxStringLen  int // COMPACT_MAX_STRING_LEN
	CompactMaxDepth      int // COMPACT_MAX_DEPTH

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "warn"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		SchemaPath:          getEnvString("YAMLCHECK_SCHEMA", ""),
		Verbose:             getEnvBool("YAMLCHECK_VERBOSE", false),
		MaxReportLines:      getEnvInt("YAMLCHECK_MAX_REPORT_LINES", DefaultMaxReportLines),
		Workers:             getEnvInt("YAMLCHECK_WORKERS", DefaultWorkers),
		EngineCacheMaxItems: getEnvInt("YAMLCHECK_ENGINE_CACHE_MAX_ITEMS", DefaultEngineCacheMaxItems),
		MaxDocumentBytes:    getEnvInt("YAMLCHECK_MAX_DOCUMENT_BYTES", DefaultMaxDocumentSizeBytes),
		Format:              getEnvString("YAMLCHECK_FORMAT", FormatText),

		// Compaction defaults (from jsoncompact package)
		CompactMaxArrayItems: getEnvInt("COMPACT_MAX_ARRAY_ITEMS", jsoncompact.DefaultMaxArrayItems),
		CompactMaxStringLen:  getEnvInt("COMPACT_MAX_STRING_LEN", jsoncompact.DefaultMaxStringLen),
		CompactMaxDepth:      getEnvInt("COMPACT_MAX_DEPTH", jsoncompact.DefaultMaxDepth),

		// Diagnostics own stderr; keep routine logs out of the way unless asked for.
		LogLevel:      getEnvString("LOG_LEVEL", "warn"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// CompactOptions returns the compaction settings for diagnostics.
func (c *Config) CompactOptions() *jsoncompact.Options {
	return &jsoncompact.Options{
		MaxArrayItems: c.CompactMaxArrayItems,
		MaxStringLen:  c.CompactMaxStringLen,
		MaxDepth:      c.CompactMaxDepth,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
