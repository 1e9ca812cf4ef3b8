package game

import (
	"sort"

	"holdem-platform/pkg/poker"
	"holdem-platform/pkg/rng"
)

// Pot is the running total of chips committed this hand. Side-pot layering is
// derived from contributions at showdown, not tracked here.
type Pot struct {
	Total poker.Chips `json:"total"`
}

func (p *Pot) add(amount poker.Chips) {
	p.Total = p.Total.Add(amount)
}

// HandEngine drives a single hand on one table. It is owned by at most one
// table slot at a time and borrows the table exclusively while a command is
// applied.
type HandEngine struct {
	TableID       uint64              `json:"table_id"`
	HandID        uint64              `json:"hand_id"`
	Deck          poker.Deck          `json:"deck"`
	Betting       BettingState        `json:"betting"`
	Pot           Pot                 `json:"pot"`
	SidePots      []SidePot           `json:"side_pots"`
	Contributions map[int]poker.Chips `json:"contributions"`
	CurrentActor  int                 `json:"current_actor"` // -1 when nobody is to act
	History       HandHistory         `json:"history"`

	evaluator *poker.HandEvaluator
}

// HandStatus is the outcome of applying a command to a hand
type HandStatus struct {
	Finished bool
	Summary  *HandSummary
}

// PlayerHandResult is one player's outcome in a finished hand
type PlayerHandResult struct {
	PlayerID  uint64      `json:"player_id"`
	Seat      int         `json:"seat"`
	RankValue uint32      `json:"rank_value,omitempty"`
	HasRank   bool        `json:"has_rank"`
	WonChips  poker.Chips `json:"won_chips"`
	IsWinner  bool        `json:"is_winner"`
}

// HandSummary describes a finished hand for history and upstream layers
type HandSummary struct {
	HandID        uint64             `json:"hand_id"`
	TableID       uint64             `json:"table_id"`
	StreetReached Street             `json:"street_reached"`
	Board         []poker.Card       `json:"board"`
	TotalPot      poker.Chips        `json:"total_pot"`
	Results       []PlayerHandResult `json:"results"`
}

// StartHand deals a new hand on the table:
// dealer selection, blinds and antes, hole cards, and the preflop betting
// state. The supplied RNG must already be seeded for this hand.
func StartHand(table *Table, r *rng.System, handID uint64) (*HandEngine, error) {
	if table.HandInProgress {
		return nil, ErrHandAlreadyInProgress
	}
	if table.eligibleCount() < 2 {
		return nil, ErrNotEnoughPlayers
	}

	deck := poker.NewStandardDeck()
	rng.Shuffle(r, deck.Cards)

	table.Board = nil
	table.TotalPot = 0
	table.CurrentHandID = handID
	table.Street = StreetPreflop
	table.HandInProgress = true

	for _, p := range table.Seats {
		if p != nil && p.Status != PlayerBusted && p.Status != PlayerSittingOut {
			p.Status = PlayerActive
			p.CurrentBet = 0
			p.HoleCards = nil
		}
	}

	dealerSeat, ok := nextDealer(table)
	if !ok {
		return nil, ErrNotEnoughPlayers
	}
	table.DealerButton = dealerSeat

	engine := &HandEngine{
		TableID:       table.ID,
		HandID:        handID,
		Deck:          deck,
		Betting:       NewBettingState(StreetPreflop, 0, table.Config.Stakes.BigBlind, nil),
		Contributions: make(map[int]poker.Chips),
		CurrentActor:  -1,
		evaluator:     poker.NewHandEvaluator(),
	}

	engine.History.Push(HandEvent{
		Kind:    EventHandStarted,
		TableID: table.ID,
		HandID:  handID,
	})

	engine.postBlindsAndAntes(table, dealerSeat)
	engine.dealHoleCards(table, dealerSeat)

	table.TotalPot = engine.Pot.Total

	return engine, nil
}

// postBlindsAndAntes takes forced bets and sets up the preflop action order
func (e *HandEngine) postBlindsAndAntes(table *Table, dealerSeat int) {
	stakes := table.Config.Stakes

	occupied := eligibleSeatsFrom(table, dealerSeat)
	if len(occupied) < 2 {
		return
	}

	// Heads-up: the dealer posts the small blind and acts first preflop.
	var sbSeat, bbSeat int
	if len(occupied) == 2 {
		sbSeat = occupied[0]
		bbSeat = occupied[1]
	} else {
		sbSeat = occupied[1]
		bbSeat = occupied[2]
	}

	var antes []BlindPost
	switch stakes.AnteType {
	case AnteClassic:
		for _, seat := range occupied {
			if paid := e.takeForcedBet(table, seat, stakes.Ante, false); !paid.IsZero() {
				antes = append(antes, BlindPost{Seat: seat, Amount: paid})
			}
		}
	case AnteBigBlind:
		if paid := e.takeForcedBet(table, bbSeat, stakes.Ante, false); !paid.IsZero() {
			antes = append(antes, BlindPost{Seat: bbSeat, Amount: paid})
		}
	}

	sbPaid := e.takeForcedBet(table, sbSeat, stakes.SmallBlind, true)
	bbPaid := e.takeForcedBet(table, bbSeat, stakes.BigBlind, true)

	e.Betting.CurrentBet = stakes.BigBlind
	e.Betting.MinRaise = stakes.BigBlind
	e.Betting.LastAggressor = bbSeat

	e.History.Push(HandEvent{
		Kind:       EventBlindsPosted,
		Dealer:     dealerSeat,
		SmallBlind: &BlindPost{Seat: sbSeat, Amount: sbPaid},
		BigBlind:   &BlindPost{Seat: bbSeat, Amount: bbPaid},
		Antes:      antes,
	})

	// First to act preflop is the seat after the big blind.
	toAct := make([]int, 0, len(occupied))
	startIdx := 0
	for i, s := range occupied {
		if s == bbSeat {
			startIdx = (i + 1) % len(occupied)
			break
		}
	}
	for i := 0; i < len(occupied); i++ {
		seat := occupied[(startIdx+i)%len(occupied)]
		if p := table.Seats[seat]; p != nil && p.Status == PlayerActive {
			toAct = append(toAct, seat)
		}
	}

	e.Betting.ToAct = toAct
	e.CurrentActor = -1
	if len(toAct) > 0 {
		e.CurrentActor = toAct[0]
	}
}

// takeForcedBet pays min(amount, stack) into the pot; asBet also moves the
// player's street bet so the amount counts toward matching the big blind.
func (e *HandEngine) takeForcedBet(table *Table, seat int, amount poker.Chips, asBet bool) poker.Chips {
	p := table.Seats[seat]
	if p == nil || amount.IsZero() {
		return 0
	}
	paid := p.payFromStack(amount)
	if asBet {
		p.CurrentBet = p.CurrentBet.Add(paid)
	}
	e.addContribution(seat, paid)
	return paid
}

// addContribution books chips into the pot and the per-seat totals
func (e *HandEngine) addContribution(seat int, amount poker.Chips) {
	if amount.IsZero() {
		return
	}
	e.Pot.add(amount)
	e.Contributions[seat] = e.Contributions[seat].Add(amount)
}

// dealHoleCards gives two cards to every eligible seat, one at a time,
// starting from the seat after the dealer.
func (e *HandEngine) dealHoleCards(table *Table, dealerSeat int) {
	order := eligibleSeatsFrom(table, dealerSeat)
	if len(order) > 1 && order[0] == dealerSeat {
		order = append(order[1:], order[0])
	}

	for round := 0; round < 2; round++ {
		for _, seat := range order {
			p := table.Seats[seat]
			if p == nil {
				continue
			}
			card, ok := e.Deck.DrawOne()
			if !ok {
				continue
			}
			p.HoleCards = append(p.HoleCards, card)
		}
	}

	for _, seat := range order {
		if p := table.Seats[seat]; p != nil {
			e.History.Push(HandEvent{
				Kind:  EventHoleCardsDealt,
				Seat:  seat,
				Cards: append([]poker.Card(nil), p.HoleCards...),
			})
		}
	}
}

// eligibleSeatsFrom lists the seats dealt into the hand, clockwise from start
func eligibleSeatsFrom(t *Table, start int) []int {
	seats := make([]int, 0, len(t.Seats))
	for _, seat := range collectOccupiedSeatsFrom(t, start) {
		p := t.Seats[seat]
		if p.Status != PlayerBusted && p.Status != PlayerSittingOut {
			seats = append(seats, seat)
		}
	}
	return seats
}

// ApplyAction validates and applies one player action. The call is atomic:
// it either advances the hand and appends history, or fails with no mutation.
func (e *HandEngine) ApplyAction(table *Table, action PlayerAction) (HandStatus, error) {
	if !table.HandInProgress {
		return HandStatus{}, ErrNoActiveHand
	}
	if !table.seatInRange(action.Seat) {
		return HandStatus{}, ErrInvalidSeat
	}
	player := table.Seats[action.Seat]
	if player == nil {
		return HandStatus{}, ErrEmptySeat
	}
	if player.PlayerID != action.PlayerID {
		return HandStatus{}, ErrPlayerNotAtTable
	}
	if e.CurrentActor != action.Seat {
		return HandStatus{}, ErrNotPlayersTurn
	}
	if err := validateAction(player, action.Kind, action.Amount, &e.Betting); err != nil {
		return HandStatus{}, err
	}

	toCall := e.Betting.CurrentBet.Sub(player.CurrentBet)

	switch action.Kind {
	case ActionFold:
		player.Status = PlayerFolded

	case ActionCheck:
		// no chip movement

	case ActionCall:
		pay := player.payFromStack(toCall)
		player.CurrentBet = player.CurrentBet.Add(pay)
		e.addContribution(action.Seat, pay)

	case ActionBet, ActionRaise:
		prevBet := e.Betting.CurrentBet
		diff := action.Amount.Sub(player.CurrentBet)
		if action.Kind == ActionBet {
			diff = action.Amount
		}
		paid := player.payFromStack(diff)
		player.CurrentBet = player.CurrentBet.Add(paid)
		e.addContribution(action.Seat, paid)

		e.Betting.OnRaise(
			action.Seat,
			player.CurrentBet,
			player.CurrentBet.Sub(prevBet),
			activeSeatsAfter(table, action.Seat),
		)

	case ActionAllIn:
		prevBet := e.Betting.CurrentBet
		paid := player.payFromStack(player.Stack)
		player.CurrentBet = player.CurrentBet.Add(paid)
		e.addContribution(action.Seat, paid)

		if player.CurrentBet > prevBet {
			// An all-in above the current bet reopens action even when the
			// increment is below the minimum raise.
			e.Betting.OnRaise(
				action.Seat,
				player.CurrentBet,
				player.CurrentBet.Sub(prevBet),
				activeSeatsAfter(table, action.Seat),
			)
		}
	}

	e.Betting.MarkActed(action.Seat)

	e.History.Push(HandEvent{
		Kind:     EventPlayerActed,
		PlayerID: action.PlayerID,
		Seat:     action.Seat,
		Action:   action.Kind,
		NewStack: player.Stack,
		PotAfter: e.Pot.Total,
	})

	table.TotalPot = e.Pot.Total

	// Everyone else folded: award without showdown.
	if countInHand(table) == 1 {
		summary := e.finishWithoutShowdown(table)
		return HandStatus{Finished: true, Summary: summary}, nil
	}

	if e.Betting.IsRoundComplete() {
		return e.advanceStreets(table)
	}

	e.CurrentActor = e.Betting.ToAct[0]
	return HandStatus{}, nil
}

// activeSeatsAfter rebuilds the action order after a bet or raise: every
// Active seat clockwise from the seat after the aggressor.
func activeSeatsAfter(table *Table, raiserSeat int) []int {
	order := collectOccupiedSeatsFrom(table, raiserSeat)
	res := make([]int, 0, len(order))
	for i := 1; i < len(order); i++ {
		seat := order[i]
		if p := table.Seats[seat]; p != nil && p.Status == PlayerActive {
			res = append(res, seat)
		}
	}
	return res
}

// countInHand counts the seats still contesting the pot
func countInHand(table *Table) int {
	count := 0
	for _, p := range table.Seats {
		if p != nil && p.IsInHand() {
			count++
		}
	}
	return count
}

// advanceStreets moves the hand forward once the betting round is closed,
// dealing board cards until someone can act again or the hand resolves.
// When only all-in players remain the streets run out automatically.
func (e *HandEngine) advanceStreets(table *Table) (HandStatus, error) {
	for {
		switch table.Street {
		case StreetPreflop:
			e.dealBoardCards(table, 3, StreetFlop)
		case StreetFlop:
			e.dealBoardCards(table, 1, StreetTurn)
		case StreetTurn:
			e.dealBoardCards(table, 1, StreetRiver)
		case StreetRiver:
			summary := e.finishWithShowdown(table)
			return HandStatus{Finished: true, Summary: summary}, nil
		default:
			return HandStatus{}, &InternalError{Reason: "street advance past showdown"}
		}

		e.resetBetsForStreet(table, table.Street)
		if e.CurrentActor >= 0 {
			return HandStatus{}, nil
		}
	}
}

// dealBoardCards opens count cards and records the street transition
func (e *HandEngine) dealBoardCards(table *Table, count int, street Street) {
	dealt := e.Deck.DrawN(count)
	table.Board = append(table.Board, dealt...)
	table.Street = street

	e.History.Push(HandEvent{
		Kind:   EventBoardDealt,
		Street: street,
		Cards:  append([]poker.Card(nil), table.Board...),
	})
	e.History.Push(HandEvent{
		Kind:   EventStreetChanged,
		Street: street,
	})
}

// resetBetsForStreet clears street bets and opens a fresh betting round.
// Post-flop action starts at the first Active seat clockwise from the button.
func (e *HandEngine) resetBetsForStreet(table *Table, street Street) {
	for _, p := range table.Seats {
		if p != nil {
			p.CurrentBet = 0
		}
	}

	occupied := collectOccupiedSeatsFrom(table, table.DealerButton)
	toAct := make([]int, 0, len(occupied))
	for _, seat := range occupied {
		if p := table.Seats[seat]; p != nil && p.Status == PlayerActive {
			toAct = append(toAct, seat)
		}
	}

	e.Betting = NewBettingState(street, 0, table.Config.Stakes.BigBlind, toAct)
	e.CurrentActor = -1
	if len(toAct) > 0 {
		e.CurrentActor = toAct[0]
	}
}

// finishWithoutShowdown awards the whole pot to the last seat in the hand
func (e *HandEngine) finishWithoutShowdown(table *Table) *HandSummary {
	table.Street = StreetShowdown

	winnerSeat := -1
	for seat, p := range table.Seats {
		if p != nil && p.IsInHand() {
			winnerSeat = seat
			break
		}
	}

	totalPot := e.Pot.Total
	results := make([]PlayerHandResult, 0, len(table.Seats))

	if winnerSeat >= 0 {
		winner := table.Seats[winnerSeat]
		winner.Stack = winner.Stack.Add(totalPot)
		e.History.Push(HandEvent{
			Kind:     EventPotAwarded,
			Seat:     winnerSeat,
			PlayerID: winner.PlayerID,
			Amount:   totalPot,
		})
	}

	for seat, p := range table.Seats {
		if p == nil {
			continue
		}
		res := PlayerHandResult{PlayerID: p.PlayerID, Seat: seat}
		if seat == winnerSeat {
			res.WonChips = totalPot
			res.IsWinner = true
		}
		results = append(results, res)
	}

	e.finishHand(table)

	return &HandSummary{
		HandID:        e.HandID,
		TableID:       e.TableID,
		StreetReached: table.Street,
		Board:         append([]poker.Card(nil), table.Board...),
		TotalPot:      totalPot,
		Results:       results,
	}
}

// finishWithShowdown resolves side pots and splits each among its best hands
func (e *HandEngine) finishWithShowdown(table *Table) *HandSummary {
	table.Street = StreetShowdown

	folded := make(map[int]bool)
	for seat, p := range table.Seats {
		if p != nil && (p.Status == PlayerFolded || p.Status == PlayerBusted) {
			folded[seat] = true
		}
	}

	e.SidePots = ComputeSidePots(e.Contributions, folded)

	ranks := make(map[int]poker.HandRank)
	revealed := make(map[int]bool)
	resultsBySeat := make(map[int]*PlayerHandResult)

	for _, sp := range e.SidePots {
		if sp.Amount.IsZero() || len(sp.EligibleSeats) == 0 {
			continue
		}

		var winners []int
		var bestRank poker.HandRank
		haveBest := false

		for _, seat := range sp.EligibleSeats {
			p := table.Seats[seat]
			if p == nil || !p.IsInHand() {
				continue
			}

			rank, ok := ranks[seat]
			if !ok {
				r, err := e.evaluator.EvaluateBestHand(p.HoleCards, table.Board)
				if err != nil {
					continue
				}
				rank = r
				ranks[seat] = rank
			}

			if !revealed[seat] {
				revealed[seat] = true
				e.History.Push(HandEvent{
					Kind:      EventShowdownReveal,
					Seat:      seat,
					PlayerID:  p.PlayerID,
					Cards:     append([]poker.Card(nil), p.HoleCards...),
					RankValue: uint32(rank),
				})
			}

			res := resultsBySeat[seat]
			if res == nil {
				res = &PlayerHandResult{PlayerID: p.PlayerID, Seat: seat}
				resultsBySeat[seat] = res
			}
			res.RankValue = uint32(rank)
			res.HasRank = true

			switch {
			case !haveBest || rank > bestRank:
				bestRank = rank
				haveBest = true
				winners = winners[:0]
				winners = append(winners, seat)
			case rank == bestRank:
				winners = append(winners, seat)
			}
		}

		if len(winners) == 0 {
			continue
		}

		// Even split; the remainder goes one chip at a time to the tied
		// seats in ascending seat order.
		share := poker.Chips(uint64(sp.Amount) / uint64(len(winners)))
		remainder := uint64(sp.Amount) % uint64(len(winners))
		sort.Ints(winners)

		for _, seat := range winners {
			prize := share
			if remainder > 0 {
				prize = prize.Add(1)
				remainder--
			}
			p := table.Seats[seat]
			p.Stack = p.Stack.Add(prize)

			e.History.Push(HandEvent{
				Kind:     EventPotAwarded,
				Seat:     seat,
				PlayerID: p.PlayerID,
				Amount:   prize,
			})

			res := resultsBySeat[seat]
			res.WonChips = res.WonChips.Add(prize)
			res.IsWinner = true
		}
	}

	totalPot := e.Pot.Total

	results := make([]PlayerHandResult, 0, len(resultsBySeat))
	for _, res := range resultsBySeat {
		results = append(results, *res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Seat < results[j].Seat })

	e.finishHand(table)

	return &HandSummary{
		HandID:        e.HandID,
		TableID:       e.TableID,
		StreetReached: table.Street,
		Board:         append([]poker.Card(nil), table.Board...),
		TotalPot:      totalPot,
		Results:       results,
	}
}

// finishHand closes the hand on the table and marks fresh busts
func (e *HandEngine) finishHand(table *Table) {
	e.History.Push(HandEvent{
		Kind:    EventHandFinished,
		HandID:  e.HandID,
		TableID: e.TableID,
	})

	for _, p := range table.Seats {
		if p != nil && p.Stack.IsZero() &&
			p.Status != PlayerBusted && p.Status != PlayerSittingOut {
			p.Status = PlayerBusted
		}
	}

	table.HandInProgress = false
	table.TotalPot = 0
	e.CurrentActor = -1
	e.Betting.ToAct = nil
}
