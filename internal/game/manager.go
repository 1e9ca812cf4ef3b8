package game

import (
	"fmt"
	"sort"
	"sync"

	"holdem-platform/pkg/poker"
	"holdem-platform/pkg/rng"
)

// HandFinishedSink receives finished hands for fan-out (history stream,
// analytics, metrics). Sinks must not mutate their arguments.
type HandFinishedSink interface {
	HandFinished(summary *HandSummary, history *HandHistory)
}

// managedTable pairs a table with its live hand engine, if any
type managedTable struct {
	table  *Table
	engine *HandEngine
}

// TableManager owns tables and the live hand engine of each. Commands against
// one table are linearized under the manager lock; the engine mutates table
// state only inside that critical section.
type TableManager struct {
	mu        sync.RWMutex
	tables    map[uint64]*managedTable
	baseSeed  rng.Seed
	handIndex uint64
	audit     rng.AuditSink
	sinks     []HandFinishedSink
}

// NewTableManager creates a manager with the given base RNG seed
func NewTableManager(baseSeed rng.Seed) *TableManager {
	return &TableManager{
		tables:   make(map[uint64]*managedTable),
		baseSeed: baseSeed,
		audit:    rng.NopAuditSink{},
	}
}

// SetAuditSink routes shuffle audit events to the given sink
func (m *TableManager) SetAuditSink(sink rng.AuditSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = sink
}

// AddSink registers a finished-hand sink
func (m *TableManager) AddSink(sink HandFinishedSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, sink)
}

// SetHandIndex restores the monotonic hand counter, e.g. from the persisted
// total_hands_played on startup.
func (m *TableManager) SetHandIndex(index uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handIndex = index
}

// HandIndex returns the number of hands started so far
func (m *TableManager) HandIndex() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handIndex
}

// CreateTable creates and registers a new table
func (m *TableManager) CreateTable(id uint64, name string, config TableConfig) (*Table, error) {
	table, err := NewTable(id, name, config)
	if err != nil {
		return nil, fmt.Errorf("invalid table config: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[id]; exists {
		return nil, fmt.Errorf("table %d already exists", id)
	}
	m.tables[id] = &managedTable{table: table}
	return table, nil
}

// AddTable registers an externally built table, replacing any previous one
// with the same id. Used by the tournament layer when it seats its tables.
func (m *TableManager) AddTable(table *Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = &managedTable{table: table}
}

// RemoveTable drops a table; fails while a hand is live
func (m *TableManager) RemoveTable(tableID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.tables[tableID]
	if !ok {
		return fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	if mt.engine != nil {
		return fmt.Errorf("table %d: %w", tableID, ErrHandAlreadyInProgress)
	}
	delete(m.tables, tableID)
	return nil
}

// Table returns the table by id
func (m *TableManager) Table(tableID uint64) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	return mt.table, nil
}

// TableIDs lists registered table ids in ascending order
func (m *TableManager) TableIDs() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uint64, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasActiveHand reports whether a hand is live on the table
func (m *TableManager) HasActiveHand(tableID uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.tables[tableID]
	return ok && mt.engine != nil
}

// CurrentActorSeat returns the seat whose turn it is, or -1
func (m *TableManager) CurrentActorSeat(tableID uint64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.tables[tableID]
	if !ok || mt.engine == nil {
		return -1
	}
	return mt.engine.CurrentActor
}

// SeatPlayer seats a player at a table
func (m *TableManager) SeatPlayer(tableID uint64, seat int, playerID uint64, stack poker.Chips) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.tables[tableID]
	if !ok {
		return fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	return mt.table.SeatPlayer(seat, playerID, stack)
}

// UnseatPlayer removes a player from a seat
func (m *TableManager) UnseatPlayer(tableID uint64, seat int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.tables[tableID]
	if !ok {
		return fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	return mt.table.UnseatPlayer(seat)
}

// AdjustStack applies a cash-in/cash-out delta
func (m *TableManager) AdjustStack(tableID uint64, seat int, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.tables[tableID]
	if !ok {
		return fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	return mt.table.AdjustStack(seat, delta)
}

// StartHand derives this hand's seed from the base seed, shuffles, and starts
// a new hand on the table. When every dealt player is already all-in from the
// forced bets the hand runs out immediately.
func (m *TableManager) StartHand(tableID, handID uint64) (HandStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.tables[tableID]
	if !ok {
		return HandStatus{}, fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	if mt.engine != nil {
		return HandStatus{}, ErrHandAlreadyInProgress
	}

	seed := m.baseSeed.Derive(tableID, handID, m.handIndex)
	system, err := rng.NewSystem(seed)
	if err != nil {
		return HandStatus{}, fmt.Errorf("hand rng: %w", err)
	}

	deckBefore := deckIDs(poker.NewStandardDeck())

	engine, err := StartHand(mt.table, system, handID)
	if err != nil {
		return HandStatus{}, err
	}
	m.handIndex++

	// Replay the shuffle from the same seed so the audit record carries the
	// full post-shuffle order, not the post-deal remainder.
	auditSystem, _ := rng.NewSystem(seed)
	shuffled := poker.NewStandardDeck()
	rng.Shuffle(auditSystem, shuffled.Cards)
	_ = m.audit.LogShuffleEvent(rng.NewShuffleAuditEvent(
		seed, tableID, handID, m.handIndex-1, deckBefore, deckIDs(shuffled)))

	mt.engine = engine

	// Forced bets can leave nobody to act.
	if engine.CurrentActor < 0 && engine.Betting.IsRoundComplete() {
		status, err := engine.advanceStreets(mt.table)
		if err != nil {
			return HandStatus{}, err
		}
		if status.Finished {
			m.finishHandLocked(mt, status)
		}
		return status, nil
	}

	return HandStatus{}, nil
}

// ApplyAction validates and applies a player action on a table
func (m *TableManager) ApplyAction(tableID uint64, action PlayerAction) (HandStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.tables[tableID]
	if !ok {
		return HandStatus{}, fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	if mt.engine == nil {
		return HandStatus{}, ErrNoActiveHand
	}

	status, err := mt.engine.ApplyAction(mt.table, action)
	if err != nil {
		return HandStatus{}, err
	}

	if status.Finished {
		m.finishHandLocked(mt, status)
	}
	return status, nil
}

// ToCallFor returns the chips the seat owes to match the current bet.
// The orchestrator uses it to pick auto-check versus auto-fold on timeout.
func (m *TableManager) ToCallFor(tableID uint64, seat int) (poker.Chips, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mt, ok := m.tables[tableID]
	if !ok {
		return 0, fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	if mt.engine == nil {
		return 0, ErrNoActiveHand
	}
	if !mt.table.seatInRange(seat) {
		return 0, ErrInvalidSeat
	}
	p := mt.table.Seats[seat]
	if p == nil {
		return 0, ErrEmptySeat
	}
	return mt.engine.Betting.CurrentBet.Sub(p.CurrentBet), nil
}

// SnapshotHand freezes the table's live hand, if any
func (m *TableManager) SnapshotHand(tableID uint64) *HandEngineSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.tables[tableID]
	if !ok || mt.engine == nil {
		return nil
	}
	return mt.engine.Snapshot()
}

// RestoreHand resumes a hand from a snapshot
func (m *TableManager) RestoreHand(tableID uint64, snapshot *HandEngineSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.tables[tableID]
	if !ok {
		return fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	if mt.engine != nil {
		return ErrHandAlreadyInProgress
	}
	mt.engine = snapshot.Restore()
	return nil
}

// View projects a table for the given hero player (0 hides all hole cards)
func (m *TableManager) View(tableID uint64, heroID uint64, resolveName func(uint64) string) (TableViewDto, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.tables[tableID]
	if !ok {
		return TableViewDto{}, fmt.Errorf("table %d: %w", tableID, ErrTableNotFound)
	}
	return BuildTableView(mt.table, mt.engine, resolveName, func(pid uint64) bool {
		return heroID != 0 && pid == heroID
	}), nil
}

// finishHandLocked clears the engine slot and fans the finished hand out
func (m *TableManager) finishHandLocked(mt *managedTable, status HandStatus) {
	history := mt.engine.History.Clone()
	mt.engine = nil
	for _, sink := range m.sinks {
		sink.HandFinished(status.Summary, &history)
	}
}

func deckIDs(d poker.Deck) []int {
	ids := make([]int, len(d.Cards))
	for i, c := range d.Cards {
		ids[i] = c.ToID()
	}
	return ids
}

