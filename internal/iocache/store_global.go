package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
)

// graphTable is the name of the table for graph caching.
const graphTable = "annopredict_graph_cache"

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the graph cache and the run store.
// An empty cacheBackend disables graph caching; an empty runsBackend disables run tracking.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		graphStore, runStore, err := newStores(cacheBackend, cacheConnStr, runsBackend, runsConnStr)
		if err != nil {
			initErr = err
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.graph = graphStore
		Manager.runs = runStore
	})

	return initErr
}

// NewStoreManager builds a standalone manager, for callers that need stores
// outside of the global lifecycle.
func NewStoreManager(cacheBackend schema.DatabaseBackend, cacheConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) (*StoreManagerImpl, error) {
	graphStore, runStore, err := newStores(cacheBackend, cacheConnStr, runsBackend, runsConnStr)
	if err != nil {
		return nil, err
	}
	return &StoreManagerImpl{graph: graphStore, runs: runStore}, nil
}

// Close closes both stores of the manager.
func (mgr *StoreManagerImpl) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.graph != nil {
		_ = mgr.graph.Close()
	}
	if mgr.runs != nil {
		_ = mgr.runs.Close()
	}
}

func newStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) (contract.CacheStore, contract.RunStore, error) {
	var graphStore contract.CacheStore
	if cacheBackend != "" {
		store, err := NewCacheStore(graphTable, cacheBackend, cacheConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize graph caching: %w", err)
		}
		graphStore = store
	}

	var runStore contract.RunStore
	if runsBackend != "" {
		store, err := NewRunStore(runsBackend, runsConnStr)
		if err != nil {
			if graphStore != nil {
				_ = graphStore.Close()
			}
			return nil, nil, fmt.Errorf("failed to initialize run store: %w", err)
		}
		runStore = store
	}
	return graphStore, runStore, nil
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(Manager.Close)
}

// ClearCache clears the graph cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearTables(backend, dbFilePath, connStr, graphTable)
}

// ClearRuns clears the run tracking data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the run tables.
// For NoneBackend, it does nothing.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	// Drop the metrics table first since it references runs
	return clearTables(backend, dbFilePath, connStr, metricsTable, runsTable)
}

func clearTables(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		db, err := openDB(backend, connStr, "")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		for _, table := range tables {
			query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
			if _, err := db.Exec(query); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}
