package core

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"time"

	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/internal/contract"
	"go.uber.org/zap"
)

// currentCacheVersion defines the version of the cached graph encoding
const currentCacheVersion = 1

// maxCacheAge is how long a cached graph stays usable
const maxCacheAge = 7 * 24 * time.Hour

// cachedBuildNetwork reads the input tables and builds the network, reusing a
// cached graph when the inputs have not changed.
func cachedBuildNetwork(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, progress contract.ProgressFunc) (*network.Graph, []string, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetGraphStore()
	}
	if store == nil {
		// Fallback to direct computation
		return buildNetwork(ctx, cfg, progress)
	}

	key, err := generateCacheKey(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Check for cache hit
	if g := checkCacheHit(store, key); g != nil {
		contract.LogDebug("graph cache hit", zap.String("key", key))
		return g, g.Proteins(), nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, store, key, progress)
}

// checkCacheHit attempts to retrieve and validate a cached graph
func checkCacheHit(store contract.CacheStore, key string) *network.Graph {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > maxCacheAge {
		return nil
	}
	g, err := network.Unmarshal(data)
	if err != nil {
		return nil
	}
	return g
}

// computeAndStore builds the graph and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, store contract.CacheStore, key string, progress contract.ProgressFunc) (*network.Graph, []string, error) {
	g, proteins, err := buildNetwork(ctx, cfg, progress)
	if err != nil {
		return nil, nil, err
	}

	if data, err := network.Marshal(g); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache graph", err)
		}
	}
	return g, proteins, nil
}

// buildNetwork reads both input tables and builds the graph.
func buildNetwork(ctx context.Context, cfg *contract.Config, progress contract.ProgressFunc) (*network.Graph, []string, error) {
	interactions, err := network.ReadInteractions(cfg.InteractomePath, cfg.InteractomeColumns, cfg.InteractomeDelimiter)
	if err != nil {
		return nil, nil, err
	}
	annotations, err := network.ReadAnnotations(cfg.AnnotationPath, cfg.AnnotationColumns, cfg.AnnotationDelimiter)
	if err != nil {
		return nil, nil, err
	}
	return network.Build(ctx, interactions, annotations, progress)
}

// generateCacheKey creates a unique key from the input files and how they are parsed
func generateCacheKey(cfg *contract.Config) (string, error) {
	interactome, err := fileFingerprint(cfg.InteractomePath)
	if err != nil {
		return "", err
	}
	annotations, err := fileFingerprint(cfg.AnnotationPath)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s|%v|%q|%s|%v|%q",
		interactome, cfg.InteractomeColumns, cfg.InteractomeDelimiter,
		annotations, cfg.AnnotationColumns, cfg.AnnotationDelimiter)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}

// fileFingerprint identifies a file by path, size and modification time.
func fileFingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano()), nil
}
