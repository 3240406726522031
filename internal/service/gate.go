package service

import "sync"

// OwnerGate serializes active-database switches against in-flight operations
// for the same owner. Readers resolve and use the active database under a
// shared lock; a switch takes the exclusive lock, so it waits for running
// operations and blocks new ones until the swap lands.
type OwnerGate struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func NewOwnerGate() *OwnerGate {
	return &OwnerGate{locks: make(map[string]*sync.RWMutex)}
}

func (g *OwnerGate) ownerLock(ownerID string) *sync.RWMutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[ownerID]
	if !ok {
		lock = &sync.RWMutex{}
		g.locks[ownerID] = lock
	}
	return lock
}

func (g *OwnerGate) RLock(ownerID string)   { g.ownerLock(ownerID).RLock() }
func (g *OwnerGate) RUnlock(ownerID string) { g.ownerLock(ownerID).RUnlock() }
func (g *OwnerGate) Lock(ownerID string)    { g.ownerLock(ownerID).Lock() }
func (g *OwnerGate) Unlock(ownerID string)  { g.ownerLock(ownerID).Unlock() }
