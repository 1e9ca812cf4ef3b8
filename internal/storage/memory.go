package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"holdem-platform/internal/game"
	"holdem-platform/internal/tournament"
)

// MemoryStore is the in-memory Store used by tests and the dev server.
// Values are kept as JSON so loads always hand out independent copies, the
// same isolation a real backend provides.
type MemoryStore struct {
	mu          sync.RWMutex
	tables      map[uint64][]byte
	activeHands map[uint64][]byte
	tournaments map[uint64][]byte
	totalHands  uint64
	playerNames map[uint64]string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:      make(map[uint64][]byte),
		activeHands: make(map[uint64][]byte),
		tournaments: make(map[uint64][]byte),
		playerNames: make(map[uint64]string),
	}
}

func (s *MemoryStore) LoadTable(_ context.Context, tableID uint64) (*game.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.tables[tableID]
	if !ok {
		return nil, nil
	}
	var table game.Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode table %d: %w", tableID, err)
	}
	return &table, nil
}

func (s *MemoryStore) SaveTable(_ context.Context, table *game.Table) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode table %d: %w", table.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table.ID] = raw
	return nil
}

func (s *MemoryStore) ListTableIDs(_ context.Context) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) LoadActiveHand(_ context.Context, tableID uint64) (*game.HandEngineSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.activeHands[tableID]
	if !ok {
		return nil, nil
	}
	var snapshot game.HandEngineSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode active hand for table %d: %w", tableID, err)
	}
	return &snapshot, nil
}

func (s *MemoryStore) SaveActiveHand(_ context.Context, tableID uint64, snapshot *game.HandEngineSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot == nil {
		delete(s.activeHands, tableID)
		return nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode active hand for table %d: %w", tableID, err)
	}
	s.activeHands[tableID] = raw
	return nil
}

func (s *MemoryStore) LoadTournament(_ context.Context, tournamentID uint64) (*tournament.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.tournaments[tournamentID]
	if !ok {
		return nil, nil
	}
	var t tournament.Tournament
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode tournament %d: %w", tournamentID, err)
	}
	return &t, nil
}

func (s *MemoryStore) SaveTournament(_ context.Context, t *tournament.Tournament) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tournament %d: %w", t.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = raw
	return nil
}

func (s *MemoryStore) TotalHandsPlayed(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalHands, nil
}

func (s *MemoryStore) SetTotalHandsPlayed(_ context.Context, total uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalHands = total
	return nil
}

func (s *MemoryStore) PlayerName(_ context.Context, playerID uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerNames[playerID], nil
}

func (s *MemoryStore) SetPlayerName(_ context.Context, playerID uint64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerNames[playerID] = name
	return nil
}
