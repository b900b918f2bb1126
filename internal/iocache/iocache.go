// Package iocache persists built networks and evaluation runs.
package iocache

import (
	"sync"

	"github.com/annopredict/annopredict/internal/contract"
)

// StoreManagerImpl holds the graph cache and the run store.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	graph        contract.CacheStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetGraphStore returns the graph CacheStore.
func (mgr *StoreManagerImpl) GetGraphStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.graph
}

// GetRunStore returns the RunStore, or nil when run tracking is disabled.
func (mgr *StoreManagerImpl) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
