package game

import (
	"fmt"
	"math"
)

// CollapseStep is the collapse chance added per bet point over threshold.
const CollapseStep = 0.2

var sqrt3 = math.Sqrt(3)

// ScoringPolicy maps a card and a theme to a match rate. The score of a
// move is matchRate × bet × card.ScoreMultiplier, so any policy is
// monotonic in bet.
type ScoringPolicy interface {
	Name() string
	MatchRate(card *Card, theme *Theme) float64
}

// AttributeScoring reads the theme's multiplier for the card's attribute.
type AttributeScoring struct{}

func (AttributeScoring) Name() string { return "attribute" }

func (AttributeScoring) MatchRate(card *Card, theme *Theme) float64 {
	return theme.Multiplier(card.Attribute)
}

// DistanceScoring rewards cards whose effect is close to the theme target:
// 1.0 at the far corner of the unit cube, 1.5 on the target.
type DistanceScoring struct{}

func (DistanceScoring) Name() string { return "distance" }

func (DistanceScoring) MatchRate(card *Card, theme *Theme) float64 {
	d := card.Effect.DistanceTo(theme.Target)
	return 1.0 + (1.0-d/sqrt3)*0.5
}

// ScoringPolicyByName resolves a configured policy name.
func ScoringPolicyByName(name string) (ScoringPolicy, error) {
	switch name {
	case "", "attribute":
		return AttributeScoring{}, nil
	case "distance":
		return DistanceScoring{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", name)
	}
}

// Score computes matchRate × bet × card.ScoreMultiplier.
func Score(policy ScoringPolicy, card *Card, bet int, theme *Theme) float64 {
	return policy.MatchRate(card, theme) * float64(bet) * card.ScoreMultiplier
}

// CollapseChance is zero up to the card's threshold and grows by
// CollapseStep per bet point above it. The result is not capped.
func CollapseChance(card *Card, bet int) float64 {
	over := bet - card.CollapseThreshold
	if over <= 0 {
		return 0
	}
	return float64(over) * CollapseStep
}

// ShouldCollapse runs one Bernoulli trial against chance.
func ShouldCollapse(chance float64, rng Random) bool {
	return chance > rng.Float64()
}

// Scorer applies one policy, plus optional play style modifiers, to moves.
type Scorer struct {
	Policy             ScoringPolicy
	PlayStyleModifiers bool
}

func NewScorer(policy ScoringPolicy, playStyleModifiers bool) *Scorer {
	if policy == nil {
		policy = AttributeScoring{}
	}
	return &Scorer{Policy: policy, PlayStyleModifiers: playStyleModifiers}
}

// Score returns the move's score against theme.
func (s *Scorer) Score(m Move, theme *Theme) float64 {
	score := Score(s.Policy, m.Card, m.Bet, theme)
	if s.PlayStyleModifiers {
		score *= m.Style.ScoreMultiplier()
	}
	return score
}

// CollapseChance returns the move's collapse probability.
func (s *Scorer) CollapseChance(m Move) float64 {
	chance := CollapseChance(m.Card, m.Bet)
	if s.PlayStyleModifiers {
		chance *= m.Style.CollapseMultiplier()
	}
	return chance
}

// ShouldCollapse rolls the move's collapse and returns the decision along
// with the chance used.
func (s *Scorer) ShouldCollapse(m Move, rng Random) (bool, float64) {
	chance := s.CollapseChance(m)
	return ShouldCollapse(chance, rng), chance
}
