package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/folioapp/folio/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from the --data-dir flag, the
// FOLIO_DATA_DIR env var, or ~/.folio as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("FOLIO_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.folio"
}

// openStore opens the configured backing store. The driver comes from
// database.driver: sqlite (default) uses the data directory, postgres
// requires database.dsn.
func openStore() (*store.Store, error) {
	driver := viper.GetString("database.driver")
	if driver == "" {
		driver = store.DriverSQLite
	}

	switch driver {
	case store.DriverSQLite:
		return store.Open(store.DriverSQLite, resolveDataDir())
	case store.DriverPostgres:
		dsn := viper.GetString("database.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("database.dsn is required for the postgres driver (set FOLIO_DATABASE_DSN)")
		}
		return store.Open(store.DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// newLogger builds the process logger. Development mode lowers the level to
// debug; log.format json switches the handler.
func newLogger(dev bool) *slog.Logger {
	level := slog.LevelInfo
	if dev || viper.GetString("log.level") == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if viper.GetString("log.format") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
