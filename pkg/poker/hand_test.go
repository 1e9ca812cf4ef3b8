package poker

import "testing"

func cards(specs ...string) []Card {
	res := make([]Card, len(specs))
	for i, s := range specs {
		res[i] = MustParseCard(s)
	}
	return res
}

func TestStraightFlushBeatsFourOfAKind(t *testing.T) {
	eval := NewHandEvaluator()
	board := cards("9c", "Tc", "Jc", "Qc", "Qd")

	sf, err := eval.EvaluateBestHand(cards("8c", "Kc"), board)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	quads, err := eval.EvaluateBestHand(cards("Qh", "Qs"), board)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if sf.Category() != StraightFlush {
		t.Errorf("expected straight flush, got %v", sf.Category())
	}
	if quads.Category() != FourOfAKind {
		t.Errorf("expected four of a kind, got %v", quads.Category())
	}
	if sf <= quads {
		t.Errorf("straight flush %v should outrank quads %v", sf, quads)
	}
}

func TestWheelStraightIsFiveHigh(t *testing.T) {
	eval := NewHandEvaluator()
	rank, err := eval.EvaluateCards(cards("As", "2d", "3c", "4h", "5c"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rank.Category() != Straight {
		t.Fatalf("expected straight, got %v", rank.Category())
	}
	expected := [5]Rank{Rank5, Rank4, Rank3, Rank2, RankA}
	if rank.Ranks() != expected {
		t.Errorf("expected wheel ranks %v, got %v", expected, rank.Ranks())
	}

	sixHigh, _ := eval.EvaluateCards(cards("2s", "3d", "4c", "5h", "6c"))
	if sixHigh <= rank {
		t.Errorf("six-high straight should beat the wheel")
	}
}

func TestEvaluationIsOrderIndependent(t *testing.T) {
	eval := NewHandEvaluator()
	hand := cards("Ah", "Kd", "7c", "7s", "2h", "Jd", "7d")

	base, err := eval.EvaluateCards(hand)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	permuted := []Card{hand[6], hand[2], hand[4], hand[0], hand[5], hand[1], hand[3]}
	other, err := eval.EvaluateCards(permuted)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if base != other {
		t.Errorf("evaluation should not depend on card order: %v vs %v", base, other)
	}
	if base.Category() != ThreeOfAKind {
		t.Errorf("expected three of a kind, got %v", base.Category())
	}
}

func TestCategoryPriority(t *testing.T) {
	eval := NewHandEvaluator()
	tests := []struct {
		name     string
		hand     []Card
		expected HandCategory
	}{
		{"high card", cards("2c", "5d", "9h", "Jd", "Ks"), HighCard},
		{"one pair", cards("2c", "2d", "9h", "Jd", "Ks"), OnePair},
		{"two pair", cards("2c", "2d", "9h", "9d", "Ks"), TwoPair},
		{"three of a kind", cards("2c", "2d", "2h", "Jd", "Ks"), ThreeOfAKind},
		{"straight", cards("5c", "6d", "7h", "8d", "9s"), Straight},
		{"flush", cards("2c", "5c", "9c", "Jc", "Kc"), Flush},
		{"full house", cards("2c", "2d", "2h", "Kd", "Ks"), FullHouse},
		{"four of a kind", cards("2c", "2d", "2h", "2s", "Ks"), FourOfAKind},
		{"straight flush", cards("5c", "6c", "7c", "8c", "9c"), StraightFlush},
	}

	var previous HandRank
	for _, tc := range tests {
		rank, err := eval.EvaluateCards(tc.hand)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", tc.name, err)
		}
		if rank.Category() != tc.expected {
			t.Errorf("%s: expected category %v, got %v", tc.name, tc.expected, rank.Category())
		}
		if rank <= previous {
			t.Errorf("%s: expected rank above the previous category", tc.name)
		}
		previous = rank
	}
}

func TestSevenCardPicksBestFive(t *testing.T) {
	eval := NewHandEvaluator()
	// The board flush beats the pocket pair.
	rank, err := eval.EvaluateBestHand(
		cards("2h", "2d"),
		cards("Ac", "Kc", "Qc", "Jc", "9c"),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rank.Category() != Flush {
		t.Errorf("expected flush from the board, got %v", rank.Category())
	}
}

func TestEvaluateRejectsBadCardCounts(t *testing.T) {
	eval := NewHandEvaluator()
	if _, err := eval.EvaluateCards(cards("2h", "3d")); err == nil {
		t.Error("expected error for too few cards")
	}
	if _, err := eval.EvaluateCards(cards("2h", "3d", "4c", "5s", "6h", "7d", "8c", "9s")); err == nil {
		t.Error("expected error for too many cards")
	}
}

func TestCardStringRoundTrip(t *testing.T) {
	for _, s := range []string{"Ah", "Td", "7c", "2s", "Kd", "Qs", "Jh"} {
		card, err := ParseCard(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if card.String() != s {
			t.Errorf("round trip %q -> %q", s, card.String())
		}
	}
	if _, err := ParseCard("Xx"); err == nil {
		t.Error("expected error for invalid card")
	}
}

func TestCardIDRoundTrip(t *testing.T) {
	deck := NewStandardDeck()
	if deck.Len() != 52 {
		t.Fatalf("expected 52 cards, got %d", deck.Len())
	}
	seen := make(map[int]bool)
	for _, c := range deck.Cards {
		id := c.ToID()
		if id < 0 || id > 51 {
			t.Fatalf("card id out of range: %d", id)
		}
		if seen[id] {
			t.Fatalf("duplicate card id %d", id)
		}
		seen[id] = true
		if FromID(id) != c {
			t.Errorf("id round trip failed for %v", c)
		}
	}
}
