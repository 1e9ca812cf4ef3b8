package game

import "sync/atomic"

// IDGenerator hands out monotonic ids for tables, hands and tournaments.
// Good enough for a single process; a clustered deployment takes ids from
// its coordination layer instead.
type IDGenerator struct {
	tableCounter      atomic.Uint64
	handCounter       atomic.Uint64
	tournamentCounter atomic.Uint64
}

// NewIDGenerator starts every counter at 1
func NewIDGenerator() *IDGenerator {
	g := &IDGenerator{}
	return g
}

// NextTableID returns the next table id
func (g *IDGenerator) NextTableID() uint64 {
	return g.tableCounter.Add(1)
}

// NextHandID returns the next hand id
func (g *IDGenerator) NextHandID() uint64 {
	return g.handCounter.Add(1)
}

// NextTournamentID returns the next tournament id
func (g *IDGenerator) NextTournamentID() uint64 {
	return g.tournamentCounter.Add(1)
}
