package model

import "time"

// Config holds the complete assertlens configuration
type Config struct {
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Output       OutputConfig       `yaml:"output"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	Cache        CacheConfig        `yaml:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
}

// AnalysisConfig controls how records are resolved against the filesystem
type AnalysisConfig struct {
	Root string `yaml:"root"` // Base directory for relative file paths (empty = working dir)
}

// OutputConfig controls output files and progress reporting
type OutputConfig struct {
	Path          string `yaml:"path"`           // Output CSV path
	SummaryPath   string `yaml:"summary_path"`   // Optional JSON/YAML summary path
	ProgressEvery int    `yaml:"progress_every"` // Print progress every N rows (0 = off)
	Verbose       bool   `yaml:"verbose"`
}

// ConcurrencyConfig sizes the worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// CacheConfig controls the per-file content cache
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// RateLimitingConfig throttles file reads per directory (0 = unlimited)
type RateLimitingConfig struct {
	ReadsPerSecond float64         `yaml:"reads_per_second"`
	BurstSize      int             `yaml:"burst_size"`
	Directories    []DirectoryRate `yaml:"directories,omitempty"` // Per-directory overrides
}

// DirectoryRate overrides the read rate for files directly inside Path.
// Relative paths are resolved against analysis.root.
type DirectoryRate struct {
	Path           string  `yaml:"path" mapstructure:"path"`
	ReadsPerSecond float64 `yaml:"reads_per_second" mapstructure:"reads_per_second"`
	BurstSize      int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// Throttled reports whether any read limit is configured
func (r RateLimitingConfig) Throttled() bool {
	return r.ReadsPerSecond > 0 || len(r.Directories) > 0
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Path:          "assertion_analysis_result.csv",
			ProgressEvery: 10,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		RateLimiting: RateLimitingConfig{
			ReadsPerSecond: 0,
			BurstSize:      5,
		},
	}
}
