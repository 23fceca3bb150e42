package game

import (
	"fmt"
	"time"
)

// Rules are the tunable numbers of a session.
type Rules struct {
	HandSize           int    `yaml:"hand_size" json:"hand_size"`
	DeckSize           int    `yaml:"deck_size" json:"deck_size"`
	MaxMentalPower     int    `yaml:"max_mental_power" json:"max_mental_power"`
	MinBet             int    `yaml:"min_bet" json:"min_bet"`
	MaxBet             int    `yaml:"max_bet" json:"max_bet"`
	EnemyMaxBet        int    `yaml:"enemy_max_bet" json:"enemy_max_bet"`
	RestorePerRound    int    `yaml:"restore_per_round" json:"restore_per_round"`
	RoundsPerMatch     int    `yaml:"rounds_per_match" json:"rounds_per_match"`
	MaxRounds          int    `yaml:"max_rounds" json:"max_rounds"` // 0 = until a hand runs dry
	Scoring            string `yaml:"scoring" json:"scoring"`
	PlayStyleModifiers bool   `yaml:"play_style_modifiers" json:"play_style_modifiers"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		HandSize:        3,
		DeckSize:        10,
		MaxMentalPower:  DefaultMaxMentalPower,
		MinBet:          0,
		MaxBet:          7,
		EnemyMaxBet:     5,
		RestorePerRound: 2,
		RoundsPerMatch:  5,
		MaxRounds:       50,
		Scoring:         "attribute",
	}
}

// Validate rejects rule sets the session cannot run with.
func (r Rules) Validate() error {
	switch {
	case r.HandSize < 1 || r.HandSize > 10:
		return fmt.Errorf("hand_size must be within 1..10, got %d", r.HandSize)
	case r.DeckSize < 0:
		return fmt.Errorf("deck_size must not be negative")
	case r.MaxMentalPower < 1:
		return fmt.Errorf("max_mental_power must be positive, got %d", r.MaxMentalPower)
	case r.MinBet < 0:
		return fmt.Errorf("min_bet must not be negative")
	case r.MaxBet > 0 && r.MinBet > r.MaxBet:
		return fmt.Errorf("min_bet %d exceeds max_bet %d", r.MinBet, r.MaxBet)
	case r.EnemyMaxBet < 0 || r.RestorePerRound < 0 || r.RoundsPerMatch < 0 || r.MaxRounds < 0:
		return fmt.Errorf("enemy_max_bet, restore_per_round, rounds_per_match and max_rounds must not be negative")
	}
	if _, err := ScoringPolicyByName(r.Scoring); err != nil {
		return err
	}
	return nil
}

// Pacing holds the presentation delays between phases. They never affect
// outcomes and are all zero in headless runs.
type Pacing struct {
	Theme     time.Duration `yaml:"theme" json:"theme"`
	Announce  time.Duration `yaml:"announce" json:"announce"`
	Think     time.Duration `yaml:"think" json:"think"`
	Result    time.Duration `yaml:"result" json:"result"`
	NextRound time.Duration `yaml:"next_round" json:"next_round"`
}

// DefaultPacing returns the interactive delays.
func DefaultPacing() Pacing {
	return Pacing{
		Theme:     300 * time.Millisecond,
		Announce:  500 * time.Millisecond,
		Think:     time.Second,
		Result:    2 * time.Second,
		NextRound: 500 * time.Millisecond,
	}
}

// Validate rejects negative delays.
func (p Pacing) Validate() error {
	for _, d := range []time.Duration{p.Theme, p.Announce, p.Think, p.Result, p.NextRound} {
		if d < 0 {
			return fmt.Errorf("pacing delays must not be negative")
		}
	}
	return nil
}
