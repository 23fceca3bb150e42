package game

// Player represents one side's entire state. Every field is written only
// through this player's own engines.
type Player struct {
	Side        int
	Deck        *Deck
	Hand        *Hand
	MentalPower *MentalPower
	Stats       *StatsTracker
	Evolution   *EvolutionEngine

	Move      *Move // committed move for the current round, nil until selection
	RoundWins int
	Collapses int
}

// NewPlayer creates a player with an empty deck and hand.
func NewPlayer(side int, rules Rules, rng Random) *Player {
	stats := NewStatsTracker()
	return &Player{
		Side:        side,
		Deck:        NewDeck(rng),
		Hand:        NewHand(rules.HandSize),
		MentalPower: NewMentalPower(rules.MaxMentalPower),
		Stats:       stats,
		Evolution:   NewEvolutionEngine(stats),
	}
}

// DeckCount returns the number of cards remaining in the deck.
func (p *Player) DeckCount() int {
	return p.Deck.Len()
}

// HandCount returns the number of cards in hand.
func (p *Player) HandCount() int {
	return p.Hand.Len()
}

// FillHand draws until the hand is full or the deck is empty and returns
// the cards drawn. A drawn card the hand rejects goes back to the deck.
func (p *Player) FillHand() []*Card {
	var drawn []*Card
	for !p.Hand.IsFull() {
		card := p.Deck.Draw()
		if card == nil {
			break
		}
		if !p.Hand.TryAdd(card) {
			p.Deck.Return(card)
			break
		}
		drawn = append(drawn, card)
	}
	return drawn
}

// ReturnHand moves the whole hand back into the deck and returns how many
// cards moved.
func (p *Player) ReturnHand() int {
	cards := p.Hand.TakeAll()
	p.Deck.ReturnMany(cards)
	return len(cards)
}

// GameState is the shared, read-mostly view of a session.
type GameState struct {
	Players [2]*Player
	Rules   Rules
	Round   int // 1-based round counter
	Match   int // 1-based match counter
	Phase   Phase
	Theme   *Theme

	Scores      [2]float64 // current round scores, set in Evaluation
	LastOutcome Outcome
	Draws       int

	Evolutions   int
	Degradations int

	rng Random

	// Game result
	Winner    int // 0, 1, or -1 (draw / no winner yet)
	Over      bool
	Cancelled bool
	Result    string
}

// NewGameState creates a fresh session state.
func NewGameState(rules Rules, rng Random) *GameState {
	return &GameState{
		Players: [2]*Player{
			NewPlayer(SidePlayer, rules, rng),
			NewPlayer(SideEnemy, rules, rng),
		},
		Rules:  rules,
		Phase:  PhaseNone,
		Winner: -1,
		rng:    rng,
	}
}

// Rand returns the session's random source.
func (gs *GameState) Rand() Random {
	return gs.rng
}

// Opponent returns the other side.
func (gs *GameState) Opponent(side int) int {
	return 1 - side
}

// BetRange returns the inclusive bet bounds for side given its current
// mental power. The human side may bet from MinBet; the enemy always bets
// at least 1 when it can afford it. hi is never below lo.
func (gs *GameState) BetRange(side int) (lo, hi int) {
	mp := gs.Players[side].MentalPower.Value()
	hi = mp
	if side == SidePlayer {
		lo = gs.Rules.MinBet
		if gs.Rules.MaxBet > 0 {
			hi = min(hi, gs.Rules.MaxBet)
		}
	} else {
		lo = 1
		if gs.Rules.EnemyMaxBet > 0 {
			hi = min(hi, gs.Rules.EnemyMaxBet)
		}
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// ClampBet forces bet into BetRange(side).
func (gs *GameState) ClampBet(side, bet int) int {
	lo, hi := gs.BetRange(side)
	return max(lo, min(bet, hi))
}
