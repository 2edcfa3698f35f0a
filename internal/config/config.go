package config

import (
	"time"

	"github.com/heartmarshall/mclang/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Paths    PathsConfig    `yaml:"paths"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Filter   FilterConfig   `yaml:"filter"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// PathsConfig holds on-disk locations.
type PathsConfig struct {
	FullDir     string `yaml:"full_dir"     env:"PATHS_FULL_DIR"     env-default:"full"`
	ValidDir    string `yaml:"valid_dir"    env:"PATHS_VALID_DIR"    env-default:"valid"`
	VersionFile string `yaml:"version_file" env:"PATHS_VERSION_FILE" env-default:"version.txt"`
	// TempDir holds the client jar while its language file is extracted.
	TempDir string `yaml:"temp_dir" env:"PATHS_TEMP_DIR"`
}

// FetchConfig holds distribution service settings.
type FetchConfig struct {
	ManifestURL  string        `yaml:"manifest_url"  env:"FETCH_MANIFEST_URL"  env-default:"https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"`
	ResourcesURL string        `yaml:"resources_url" env:"FETCH_RESOURCES_URL" env-default:"https://resources.download.minecraft.net"`
	Channel      string        `yaml:"channel"       env:"FETCH_CHANNEL"       env-default:"snapshot"`
	Timeout      time.Duration `yaml:"timeout"       env:"FETCH_TIMEOUT"       env-default:"60s"`
	MaxAttempts  int           `yaml:"max_attempts"  env:"FETCH_MAX_ATTEMPTS"  env-default:"3"`
	RetryMin     time.Duration `yaml:"retry_min"     env:"FETCH_RETRY_MIN"     env-default:"5s"`
	RetryMax     time.Duration `yaml:"retry_max"     env:"FETCH_RETRY_MAX"     env-default:"15s"`
	Workers      int           `yaml:"workers"       env:"FETCH_WORKERS"       env-default:"4"`
}

// FilterConfig holds filtering settings.
type FilterConfig struct {
	LocalesRaw      string `yaml:"locales"          env:"FILTER_LOCALES"`
	ExtendedLocales bool   `yaml:"extended_locales" env:"FILTER_EXTENDED_LOCALES" env-default:"false"`
	RuleSet         string `yaml:"ruleset"          env:"FILTER_RULESET"          env-default:"canonical"`
	Workers         int    `yaml:"workers"          env:"FILTER_WORKERS"          env-default:"4"`

	// Locales is resolved from LocalesRaw and ExtendedLocales during validation.
	Locales []domain.Locale `yaml:"-" env:"-"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN disables
// the store phase.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	BatchSize       int           `yaml:"batch_size"         env:"DATABASE_BATCH_SIZE"         env-default:"500"`
}

// MetricsConfig holds metrics output settings.
type MetricsConfig struct {
	// TextfilePath, when set, receives the run's metrics in the Prometheus
	// text format for the node exporter textfile collector.
	TextfilePath string `yaml:"textfile_path" env:"METRICS_TEXTFILE_PATH"`
}
