// Package store is the persistence gateway: whole-snapshot load and save of
// the in-memory user and post state. Two backends exist — a JSON file store
// with write-temp-then-rename commits, and a Postgres store committing both
// snapshot documents in one transaction.
package store

import (
	"sync"

	"lemon-club-service/models"
)

// Store loads and saves full state snapshots. Save is called after every
// mutation; implementations must commit atomically so a crash mid-save cannot
// corrupt the previous snapshot. Save failures are best-effort for callers:
// they are logged, never rolled back into memory.
//
// Save assumes the caller holds at least a read lock on the state.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
}

// State is the application's in-memory representation: the user map, the
// most-recent-first post list, and the lock serializing mutation. All domain
// services share one State and take the write lock for the full span of a
// mutating operation, which keeps each operation atomic with respect to every
// other (one writer at a time).
type State struct {
	mu sync.RWMutex

	Users map[string]*models.User
	Posts []*models.Post
}

// NewState returns an empty state, used when no snapshot exists yet.
func NewState() *State {
	return &State{Users: make(map[string]*models.User)}
}

func (s *State) Lock()    { s.mu.Lock() }
func (s *State) Unlock()  { s.mu.Unlock() }
func (s *State) RLock()   { s.mu.RLock() }
func (s *State) RUnlock() { s.mu.RUnlock() }

// FindOwner resolves the username owning the given mint address. Used to
// attribute social quest progress to post authors.
func (s *State) FindOwner(mintAddress string) (string, *models.User, bool) {
	for name, u := range s.Users {
		if u.FindNFT(mintAddress) != nil {
			return name, u, true
		}
	}
	return "", nil, false
}
