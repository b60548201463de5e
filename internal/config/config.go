// Package config loads server settings. Values are layered: built-in defaults,
// then an optional .env file, then MINIRENT_* environment variables, then
// command-line flags that were set explicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/erazemk/minirent/internal/auth"
	"github.com/erazemk/minirent/internal/blob"
	"github.com/erazemk/minirent/internal/stats"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MINIRENT_"

// Config holds everything the server needs to start.
type Config struct {
	Addr          string
	DBPath        string
	LogPath       string
	AdminUser     string
	TokenExpiry   time.Duration
	BlobDriver    string
	S3            blob.S3Config
	StatsSchedule string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:          ":8080",
		DBPath:        "minirent.sqlite3",
		AdminUser:     "admin",
		TokenExpiry:   auth.DefaultTokenExpiry,
		BlobDriver:    string(blob.DriverDB),
		StatsSchedule: stats.DefaultSchedule,
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path required")
	}
	if c.AdminUser == "" {
		return errors.New("admin username required")
	}
	if c.TokenExpiry <= 0 {
		return fmt.Errorf("token expiry must be positive, got %s", c.TokenExpiry)
	}
	switch blob.Driver(c.BlobDriver) {
	case blob.DriverDB:
	case blob.DriverS3:
		if c.S3.Bucket == "" {
			return errors.New("s3 blob driver requires a bucket")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	return nil
}

// Flag names shared by RegisterFlags and Load.
const (
	flagAddr          = "addr"
	flagDB            = "db"
	flagLog           = "log"
	flagUser          = "user"
	flagTokenExpiry   = "token-expiry"
	flagBlobDriver    = "blob-driver"
	flagS3Bucket      = "s3-bucket"
	flagS3Region      = "s3-region"
	flagS3Endpoint    = "s3-endpoint"
	flagS3PathStyle   = "s3-path-style"
	flagStatsSchedule = "stats-schedule"
)

// RegisterFlags declares the configuration flags. Their defaults are
// only shown in help; Load consults a flag only when it was set.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Defaults()
	flags.StringP(flagAddr, "a", d.Addr, "listen address")
	flags.StringP(flagDB, "d", d.DBPath, "SQLite database path")
	flags.StringP(flagLog, "l", d.LogPath, "log file path (default: stdout/stderr only)")
	flags.StringP(flagUser, "u", d.AdminUser, "admin username on first run")
	flags.Duration(flagTokenExpiry, d.TokenExpiry, "lifetime of issued tokens")
	flags.String(flagBlobDriver, d.BlobDriver, "photo storage driver (db or s3)")
	flags.String(flagS3Bucket, "", "S3 bucket for photos")
	flags.String(flagS3Region, "", "S3 region")
	flags.String(flagS3Endpoint, "", "S3 endpoint for S3-compatible servers")
	flags.Bool(flagS3PathStyle, false, "use path-style S3 addressing")
	flags.String(flagStatsSchedule, d.StatsSchedule, "cron schedule of the stats refresh")
}

// Load builds the configuration. envFile may be empty to skip the .env
// lookup; a missing file is not an error. flags may be nil.
func Load(envFile string, flags *pflag.FlagSet) (Config, error) {
	if envFile != "" {
		// godotenv never overrides variables already present in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Defaults()
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if flags != nil {
		if err := applyFlags(&cfg, flags); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ADDR", &cfg.Addr)
	str("DB", &cfg.DBPath)
	str("LOG", &cfg.LogPath)
	str("ADMIN_USER", &cfg.AdminUser)
	str("BLOB_DRIVER", &cfg.BlobDriver)
	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_REGION", &cfg.S3.Region)
	str("S3_ENDPOINT", &cfg.S3.Endpoint)
	str("S3_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)
	str("STATS_SCHEDULE", &cfg.StatsSchedule)

	if v, ok := lookup(EnvPrefix + "TOKEN_EXPIRY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %sTOKEN_EXPIRY: %w", EnvPrefix, err)
		}
		cfg.TokenExpiry = d
	}
	if v, ok := lookup(EnvPrefix + "S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %sS3_PATH_STYLE: %w", EnvPrefix, err)
		}
		cfg.S3.PathStyle = b
	}
	return nil
}

func applyFlags(cfg *Config, flags *pflag.FlagSet) error {
	strs := map[string]*string{
		flagAddr:          &cfg.Addr,
		flagDB:            &cfg.DBPath,
		flagLog:           &cfg.LogPath,
		flagUser:          &cfg.AdminUser,
		flagBlobDriver:    &cfg.BlobDriver,
		flagS3Bucket:      &cfg.S3.Bucket,
		flagS3Region:      &cfg.S3.Region,
		flagS3Endpoint:    &cfg.S3.Endpoint,
		flagStatsSchedule: &cfg.StatsSchedule,
	}
	for name, dst := range strs {
		if !changed(flags, name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return fmt.Errorf("reading --%s: %w", name, err)
		}
		*dst = v
	}

	if changed(flags, flagTokenExpiry) {
		d, err := flags.GetDuration(flagTokenExpiry)
		if err != nil {
			return fmt.Errorf("reading --%s: %w", flagTokenExpiry, err)
		}
		cfg.TokenExpiry = d
	}
	if changed(flags, flagS3PathStyle) {
		b, err := flags.GetBool(flagS3PathStyle)
		if err != nil {
			return fmt.Errorf("reading --%s: %w", flagS3PathStyle, err)
		}
		cfg.S3.PathStyle = b
	}
	return nil
}

// changed tolerates flag sets that never registered name.
func changed(flags *pflag.FlagSet, name string) bool {
	return flags.Lookup(name) != nil && flags.Changed(name)
}
