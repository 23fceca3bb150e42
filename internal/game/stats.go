package game

import (
	"sort"

	"github.com/expr-lang/expr"
)

// CardStats accumulates one card definition's results over a session.
type CardStats struct {
	CardID                string
	TotalUse              int
	TotalWin              int
	TotalLoss             int
	CollapseCount         int
	CurrentConsecutiveWin int
	MaxConsecutiveWin     int
	PlayStyleWins         map[PlayStyle]int
	PlayStyleLosses       map[PlayStyle]int
}

func newCardStats(id string) *CardStats {
	return &CardStats{
		CardID:          id,
		PlayStyleWins:   make(map[PlayStyle]int),
		PlayStyleLosses: make(map[PlayStyle]int),
	}
}

func (s *CardStats) clone() CardStats {
	c := *s
	c.PlayStyleWins = make(map[PlayStyle]int, len(s.PlayStyleWins))
	for k, v := range s.PlayStyleWins {
		c.PlayStyleWins[k] = v
	}
	c.PlayStyleLosses = make(map[PlayStyle]int, len(s.PlayStyleLosses))
	for k, v := range s.PlayStyleLosses {
		c.PlayStyleLosses[k] = v
	}
	return c
}

// StatsTracker keeps per-card statistics for one player, keyed by card id,
// plus session totals.
type StatsTracker struct {
	cards       map[string]*CardStats
	totalGames  int
	totalWins   int
	totalLosses int
}

func NewStatsTracker() *StatsTracker {
	return &StatsTracker{cards: make(map[string]*CardStats)}
}

// RecordGameResult records one played move. A drawn round is recorded with
// won == false.
func (t *StatsTracker) RecordGameResult(won bool, move Move, collapsed bool) {
	if move.Card == nil {
		return
	}
	st := t.cards[move.Card.ID]
	if st == nil {
		st = newCardStats(move.Card.ID)
		t.cards[move.Card.ID] = st
	}

	st.TotalUse++
	t.totalGames++
	if won {
		st.TotalWin++
		st.PlayStyleWins[move.Style]++
		st.CurrentConsecutiveWin++
		st.MaxConsecutiveWin = max(st.MaxConsecutiveWin, st.CurrentConsecutiveWin)
		t.totalWins++
	} else {
		st.TotalLoss++
		st.PlayStyleLosses[move.Style]++
		st.CurrentConsecutiveWin = 0
		t.totalLosses++
	}
	if collapsed {
		st.CollapseCount++
	}
}

// Stats returns a snapshot of the card's counters. Cards never played yield
// zeroed stats.
func (t *StatsTracker) Stats(cardID string) CardStats {
	if st := t.cards[cardID]; st != nil {
		return st.clone()
	}
	return newCardStats(cardID).clone()
}

// All returns snapshots for every card played so far, sorted by id.
func (t *StatsTracker) All() []CardStats {
	ids := make([]string, 0, len(t.cards))
	for id := range t.cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]CardStats, 0, len(ids))
	for _, id := range ids {
		result = append(result, t.cards[id].clone())
	}
	return result
}

// CheckCondition evaluates one condition against the card's counters.
func (t *StatsTracker) CheckCondition(card *Card, cond EvolutionCondition) bool {
	if card == nil {
		return false
	}
	st := t.cards[card.ID]
	if st == nil {
		st = newCardStats(card.ID)
	}
	switch cond.Type {
	case ConditionPlayStyleWin:
		return st.PlayStyleWins[cond.PlayStyle] >= cond.Count
	case ConditionPlayStyleLose:
		return st.PlayStyleLosses[cond.PlayStyle] >= cond.Count
	case ConditionTotalWin:
		return st.TotalWin >= cond.Count
	case ConditionCollapseCount:
		return st.CollapseCount >= cond.Count
	case ConditionConsecutiveWin:
		return st.MaxConsecutiveWin >= cond.Count
	case ConditionTotalUse:
		return st.TotalUse >= cond.Count
	case ConditionExpr:
		if cond.program == nil {
			return false
		}
		out, err := expr.Run(cond.program, conditionEnv(st))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	default:
		return false
	}
}

// CheckAllConditions reports whether the card can evolve and every one of
// its evolution conditions holds.
func (t *StatsTracker) CheckAllConditions(card *Card) bool {
	if card == nil || !card.CanEvolve() {
		return false
	}
	return t.checkAll(card, card.EvolutionConditions)
}

// CheckDegradation is the degradation counterpart of CheckAllConditions.
func (t *StatsTracker) CheckDegradation(card *Card) bool {
	if card == nil || !card.CanDegrade() {
		return false
	}
	return t.checkAll(card, card.DegradationConditions)
}

func (t *StatsTracker) checkAll(card *Card, conds []EvolutionCondition) bool {
	for _, cond := range conds {
		if !t.CheckCondition(card, cond) {
			return false
		}
	}
	return true
}

func (t *StatsTracker) TotalGames() int  { return t.totalGames }
func (t *StatsTracker) TotalWins() int   { return t.totalWins }
func (t *StatsTracker) TotalLosses() int { return t.totalLosses }

// WinRate returns wins over games played, or 0 before the first game.
func (t *StatsTracker) WinRate() float64 {
	if t.totalGames == 0 {
		return 0
	}
	return float64(t.totalWins) / float64(t.totalGames)
}

// Reset discards all statistics.
func (t *StatsTracker) Reset() {
	t.cards = make(map[string]*CardStats)
	t.totalGames, t.totalWins, t.totalLosses = 0, 0, 0
}
