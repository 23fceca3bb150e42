package game

import "fmt"

// Move is a committed play: a card, the style it was played with and the
// mental power bet on it. Moves live for a single round.
type Move struct {
	Card  *Card
	Style PlayStyle
	Bet   int
}

// Valid reports whether the move names a card, a known style and a
// non-negative bet.
func (m Move) Valid() bool {
	return m.Card != nil && m.Style.Valid() && m.Bet >= 0
}

// Score is shorthand for s.Score(m, theme).
func (m Move) Score(s *Scorer, theme *Theme) float64 {
	return s.Score(m, theme)
}

// CollapseChance is shorthand for s.CollapseChance(m).
func (m Move) CollapseChance(s *Scorer) float64 {
	return s.CollapseChance(m)
}

func (m Move) String() string {
	return fmt.Sprintf("%s [%s, bet %d]", m.Card, m.Style, m.Bet)
}
