package net

import "github.com/peterkuimelis/voidred/internal/game"

// Message types for the newline-delimited JSON protocol over TCP.

const (
	MsgWelcome    = "welcome"
	MsgNotify     = "notify"
	MsgChooseMove = "choose_move"
	MsgGameOver   = "game_over"
	MsgJoin       = "join"
	MsgMove       = "move"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	SessionID string `json:"session_id,omitempty"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_move"
	State *StateView `json:"state,omitempty"`

	// For "game_over"
	Winner  int           `json:"winner"`
	Result  string        `json:"result,omitempty"`
	Summary *game.Summary `json:"summary,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Round   int    `json:"round"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// EffectView is an effect vector.
type EffectView struct {
	Forgiveness float64 `json:"forgiveness"`
	Rejection   float64 `json:"rejection"`
	Blank       float64 `json:"blank"`
}

// CardView describes a card in hand.
type CardView struct {
	Index             int        `json:"index"`
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Attribute         string     `json:"attribute"`
	Effect            EffectView `json:"effect"`
	ScoreMultiplier   float64    `json:"score_multiplier"`
	CollapseThreshold int        `json:"collapse_threshold"`
	EvolvesTo         string     `json:"evolves_to,omitempty"`
	DegradesTo        string     `json:"degrades_to,omitempty"`
}

// ThemeView describes the round's theme.
type ThemeView struct {
	Title       string             `json:"title"`
	Target      *EffectView        `json:"target,omitempty"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
}

// StateView is the game state from one side's perspective.
type StateView struct {
	SessionID  string     `json:"session_id,omitempty"`
	Round      int        `json:"round"`
	Match      int        `json:"match"`
	Phase      string     `json:"phase"`
	Scoring    string     `json:"scoring"`
	Theme      *ThemeView `json:"theme,omitempty"`
	You        PlayerView `json:"you"`
	Opponent   PlayerView `json:"opponent"`
	MinBet     int        `json:"min_bet"`
	MaxBet     int        `json:"max_bet"`
	PlayStyles []string   `json:"play_styles"`
}

// PlayerView shows one side.
type PlayerView struct {
	MentalPower    int        `json:"mental_power"`
	MaxMentalPower int        `json:"max_mental_power"`
	HandCount      int        `json:"hand_count"`
	Hand           []CardView `json:"hand,omitempty"` // only for "you"
	DeckCount      int        `json:"deck_count"`
	RoundWins      int        `json:"round_wins"`
	Collapses      int        `json:"collapses"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join" (initial handshake)
	Name       string `json:"name,omitempty"`
	DeckNumber int    `json:"deck_number,omitempty"` // 0 = random deal

	// For "move"
	Index int    `json:"index"`
	Style string `json:"style,omitempty"`
	Bet   int    `json:"bet"`
}
