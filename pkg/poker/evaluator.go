package poker

import (
	"fmt"
	"sort"
)

// rankMask is a 13-bit mask of present ranks; bit 0 is the deuce, bit 12 the ace.
type rankMask uint16

func rankToBit(r Rank) rankMask {
	return 1 << (uint(r) - 2)
}

// straightMasks lists every straight from the wheel (A-2-3-4-5) up to broadway.
// straightHighs[i] is the high card of straightMasks[i]; the wheel is 5-high.
var (
	straightMasks = [10]rankMask{
		maskOf(RankA, Rank2, Rank3, Rank4, Rank5),
		maskOf(Rank2, Rank3, Rank4, Rank5, Rank6),
		maskOf(Rank3, Rank4, Rank5, Rank6, Rank7),
		maskOf(Rank4, Rank5, Rank6, Rank7, Rank8),
		maskOf(Rank5, Rank6, Rank7, Rank8, Rank9),
		maskOf(Rank6, Rank7, Rank8, Rank9, Rank10),
		maskOf(Rank7, Rank8, Rank9, Rank10, RankJ),
		maskOf(Rank8, Rank9, Rank10, RankJ, RankQ),
		maskOf(Rank9, Rank10, RankJ, RankQ, RankK),
		maskOf(Rank10, RankJ, RankQ, RankK, RankA),
	}
	straightHighs = [10]Rank{Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK, RankA}
)

func maskOf(ranks ...Rank) rankMask {
	var m rankMask
	for _, r := range ranks {
		m |= rankToBit(r)
	}
	return m
}

// detectStraight returns the high card of the best straight in the mask, if any
func detectStraight(m rankMask) (Rank, bool) {
	for i := len(straightMasks) - 1; i >= 0; i-- {
		if m&straightMasks[i] == straightMasks[i] {
			return straightHighs[i], true
		}
	}
	return 0, false
}

// HandEvaluator categorizes and ranks 5-7 card hands
type HandEvaluator struct{}

// NewHandEvaluator creates a new evaluator
func NewHandEvaluator() *HandEvaluator {
	return &HandEvaluator{}
}

// EvaluateBestHand returns the best 5-card rank over hole+board.
// The combined count must be between 5 and 7 cards.
func (e *HandEvaluator) EvaluateBestHand(hole, board []Card) (HandRank, error) {
	all := make([]Card, 0, len(hole)+len(board))
	all = append(all, hole...)
	all = append(all, board...)
	return e.EvaluateCards(all)
}

// EvaluateCards returns the best 5-card rank over 5-7 cards
func (e *HandEvaluator) EvaluateCards(cards []Card) (HandRank, error) {
	n := len(cards)
	if n < 5 || n > 7 {
		return 0, fmt.Errorf("evaluation requires 5 to 7 cards, got %d", n)
	}

	var best HandRank
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for f := d + 1; f < n; f++ {
						r := evaluateFive([5]Card{cards[a], cards[b], cards[c], cards[d], cards[f]})
						if r > best {
							best = r
						}
					}
				}
			}
		}
	}
	return best, nil
}

// evaluateFive ranks exactly five cards
func evaluateFive(cards [5]Card) HandRank {
	var suitCounts [4]uint8
	var rankCounts [15]uint8
	var mask rankMask

	for _, c := range cards {
		suitCounts[c.Suit]++
		rankCounts[c.Rank]++
		mask |= rankToBit(c.Rank)
	}

	isFlush := suitCounts[0] == 5 || suitCounts[1] == 5 || suitCounts[2] == 5 || suitCounts[3] == 5
	straightHigh, isStraight := detectStraight(mask)

	type rankCount struct {
		rank  Rank
		count uint8
	}
	counts := make([]rankCount, 0, 5)
	for r := RankA; r >= Rank2; r-- {
		if rankCounts[r] > 0 {
			counts = append(counts, rankCount{rank: r, count: rankCounts[r]})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].rank > counts[j].rank
	})

	if isFlush && isStraight {
		return NewHandRank(StraightFlush, straightRanks(straightHigh))
	}

	if counts[0].count == 4 {
		return NewHandRank(FourOfAKind, [5]Rank{counts[0].rank, counts[1].rank, Rank2, Rank2, Rank2})
	}

	if counts[0].count == 3 && len(counts) > 1 && counts[1].count == 2 {
		return NewHandRank(FullHouse, [5]Rank{counts[0].rank, counts[1].rank, Rank2, Rank2, Rank2})
	}

	if isFlush {
		return NewHandRank(Flush, topFiveRanks(cards))
	}

	if isStraight {
		return NewHandRank(Straight, straightRanks(straightHigh))
	}

	if counts[0].count == 3 {
		return NewHandRank(ThreeOfAKind, [5]Rank{counts[0].rank, counts[1].rank, counts[2].rank, Rank2, Rank2})
	}

	if counts[0].count == 2 && len(counts) > 1 && counts[1].count == 2 {
		return NewHandRank(TwoPair, [5]Rank{counts[0].rank, counts[1].rank, counts[2].rank, Rank2, Rank2})
	}

	if counts[0].count == 2 {
		return NewHandRank(OnePair, [5]Rank{counts[0].rank, counts[1].rank, counts[2].rank, counts[3].rank, Rank2})
	}

	return NewHandRank(HighCard, [5]Rank{counts[0].rank, counts[1].rank, counts[2].rank, counts[3].rank, counts[4].rank})
}

// straightRanks lists a straight's five ranks from the high card down;
// the wheel encodes as [5,4,3,2,A].
func straightRanks(high Rank) [5]Rank {
	if high == Rank5 {
		return [5]Rank{Rank5, Rank4, Rank3, Rank2, RankA}
	}
	return [5]Rank{high, high - 1, high - 2, high - 3, high - 4}
}

func topFiveRanks(cards [5]Card) [5]Rank {
	ranks := []Rank{cards[0].Rank, cards[1].Rank, cards[2].Rank, cards[3].Rank, cards[4].Rank}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })
	return [5]Rank{ranks[0], ranks[1], ranks[2], ranks[3], ranks[4]}
}
