package tournament

import (
	"fmt"
	"sort"
	"sync"
)

// Lobby is the in-memory tournament registry: it hands out ids, owns the
// tournaments and serializes access to each.
type Lobby struct {
	mu          sync.RWMutex
	tournaments map[uint64]*Tournament
	nextID      uint64
}

// NewLobby creates an empty lobby
func NewLobby() *Lobby {
	return &Lobby{
		tournaments: make(map[uint64]*Tournament),
		nextID:      1,
	}
}

// CreateTournament validates the config and registers a new tournament
func (l *Lobby) CreateTournament(config Config) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	t, err := New(id, config)
	if err != nil {
		return 0, err
	}
	l.nextID++
	l.tournaments[id] = t
	return id, nil
}

// Get returns a tournament by id
func (l *Lobby) Get(id uint64) (*Tournament, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tournaments[id]
	if !ok {
		return nil, fmt.Errorf("tournament %d: %w", id, ErrTournamentNotFound)
	}
	return t, nil
}

// IDs lists tournament ids in ascending order
func (l *Lobby) IDs() []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]uint64, 0, len(l.tournaments))
	for id := range l.tournaments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// With runs fn with exclusive access to the tournament
func (l *Lobby) With(id uint64, fn func(*Tournament) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.tournaments[id]
	if !ok {
		return fmt.Errorf("tournament %d: %w", id, ErrTournamentNotFound)
	}
	return fn(t)
}
