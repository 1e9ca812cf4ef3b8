package game

import (
	"testing"

	"holdem-platform/pkg/poker"
	"holdem-platform/pkg/rng"
)

type capturingSink struct {
	summaries []*HandSummary
	histories []*HandHistory
}

func (c *capturingSink) HandFinished(summary *HandSummary, history *HandHistory) {
	c.summaries = append(c.summaries, summary)
	c.histories = append(c.histories, history)
}

func managerWithTable(t *testing.T, seed uint64, stacks ...uint64) *TableManager {
	t.Helper()
	m := NewTableManager(rng.SeedFromUint64(seed))
	_, err := m.CreateTable(1, "test-table", TableConfig{
		MaxSeats:  9,
		TableType: TableCash,
		Stakes:    TableStakes{SmallBlind: 50, BigBlind: 100},
	})
	if err != nil {
		t.Fatalf("expected no error creating table, got %v", err)
	}
	for seat, stack := range stacks {
		if err := m.SeatPlayer(1, seat, uint64(seat+1), poker.Chips(stack)); err != nil {
			t.Fatalf("expected no error seating player, got %v", err)
		}
	}
	return m
}

func holeCardsOf(t *testing.T, m *TableManager) [][]poker.Card {
	t.Helper()
	table, err := m.Table(1)
	if err != nil {
		t.Fatalf("expected table, got %v", err)
	}
	var res [][]poker.Card
	for _, p := range table.Seats {
		if p != nil {
			res = append(res, p.HoleCards)
		}
	}
	return res
}

func TestManagerDealsDeterministically(t *testing.T) {
	a := managerWithTable(t, 1234, 10000, 10000, 10000)
	b := managerWithTable(t, 1234, 10000, 10000, 10000)

	if _, err := a.StartHand(1, 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := b.StartHand(1, 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cardsA := holeCardsOf(t, a)
	cardsB := holeCardsOf(t, b)
	for i := range cardsA {
		for j := range cardsA[i] {
			if cardsA[i][j] != cardsB[i][j] {
				t.Fatalf("same base seed must deal the same cards, seat %d card %d: %v vs %v",
					i, j, cardsA[i][j], cardsB[i][j])
			}
		}
	}

	c := managerWithTable(t, 5678, 10000, 10000, 10000)
	if _, err := c.StartHand(1, 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cardsC := holeCardsOf(t, c)
	same := true
	for i := range cardsA {
		for j := range cardsA[i] {
			if cardsA[i][j] != cardsC[i][j] {
				same = false
			}
		}
	}
	if same {
		t.Error("a different base seed should deal different cards")
	}
}

func TestManagerFinishedHandReachesSinks(t *testing.T) {
	m := managerWithTable(t, 1, 10000, 10000)
	sink := &capturingSink{}
	m.AddSink(sink)

	if _, err := m.StartHand(1, 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !m.HasActiveHand(1) {
		t.Fatal("expected an active hand")
	}

	seat := m.CurrentActorSeat(1)
	table, _ := m.Table(1)
	status, err := m.ApplyAction(1, PlayerAction{
		PlayerID: table.Seats[seat].PlayerID,
		Seat:     seat,
		Kind:     ActionFold,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !status.Finished {
		t.Fatal("expected the hand to finish")
	}
	if m.HasActiveHand(1) {
		t.Error("expected the engine slot to clear after the hand")
	}

	if len(sink.summaries) != 1 {
		t.Fatalf("expected one finished hand at the sink, got %d", len(sink.summaries))
	}
	history := sink.histories[0]
	for i, ev := range history.Events {
		if ev.Index != uint32(i) {
			t.Fatalf("history indices must be contiguous, event %d has %d", i, ev.Index)
		}
	}
}

func TestManagerSnapshotRestoreResumesHand(t *testing.T) {
	m := managerWithTable(t, 9, 10000, 10000, 10000)
	if _, err := m.StartHand(1, 7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snapshot := m.SnapshotHand(1)
	if snapshot == nil {
		t.Fatal("expected a snapshot for the live hand")
	}
	if snapshot.HandID != 7 {
		t.Errorf("expected hand id 7, got %d", snapshot.HandID)
	}

	// Drop and restore the hand on a second manager sharing the table state.
	m2 := NewTableManager(rng.SeedFromUint64(9))
	table, _ := m.Table(1)
	m2.AddTable(table)
	if err := m2.RestoreHand(1, snapshot); err != nil {
		t.Fatalf("expected no error restoring, got %v", err)
	}

	if m2.CurrentActorSeat(1) != m.CurrentActorSeat(1) {
		t.Error("restored hand must resume with the same actor")
	}

	seat := m2.CurrentActorSeat(1)
	status, err := m2.ApplyAction(1, PlayerAction{
		PlayerID: table.Seats[seat].PlayerID,
		Seat:     seat,
		Kind:     ActionFold,
	})
	if err != nil {
		t.Fatalf("expected restored hand to accept actions, got %v", err)
	}
	if status.Finished {
		t.Error("three-handed hand should continue after one fold")
	}
}

func TestManagerRejectsUnknownTable(t *testing.T) {
	m := NewTableManager(rng.SeedFromUint64(1))
	if _, err := m.StartHand(42, 1); err == nil {
		t.Error("expected an error for an unknown table")
	}
	if _, err := m.ApplyAction(42, PlayerAction{}); err == nil {
		t.Error("expected an error for an unknown table")
	}
}

func TestManagerHandIndexAdvances(t *testing.T) {
	m := managerWithTable(t, 3, 10000, 10000)
	m.SetHandIndex(10)

	if _, err := m.StartHand(1, 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m.HandIndex() != 11 {
		t.Errorf("expected hand index 11, got %d", m.HandIndex())
	}
}
