package cmd

import (
	"fmt"
	"os"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/iocache"
	"github.com/annopredict/annopredict/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No run tracking for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// sqliteFile returns the SQLite database file in use: the connection string
// when set, the default path otherwise.
func sqliteFile(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// cacheCmd focused on graph cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup. This skips input table validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the network build cache (improves performance)",
	Long: `Manage the cache of built networks that speeds up repeated runs.

Annopredict caches the network built from a pair of input tables, keyed by their
paths, sizes, modification times and the column layout. Unchanged inputs skip
the table parsing and graph construction entirely.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached networks

Examples:
  # Check cache status
  annopredict cache status

  # Clear cache after replacing an input table in place
  annopredict cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached networks",
	Long: `Delete all cached networks from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  annopredict cache clear

  # Clear MySQL cache (set connection string via env variable)
  ANNOPREDICT_CACHE_BACKEND=mysql ANNOPREDICT_CACHE_DB_CONNECT="..." annopredict cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the store before dropping its file or table
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, sqliteFile(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the network build cache.

Displays:
- Backend type and connection status
- Total number of cached networks
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  # Check cache status
  annopredict cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetGraphStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("graph cache is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
