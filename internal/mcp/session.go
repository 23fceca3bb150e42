package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/peterkuimelis/voidred/internal/game"
	"github.com/peterkuimelis/voidred/internal/log"
	vnet "github.com/peterkuimelis/voidred/internal/net"
)

// DecisionType identifies what the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseMove DecisionType = "choose_move"
	DecisionGameOver   DecisionType = "game_over"
)

// PendingDecision is a snapshot taken while the engine waits. The session
// goroutine is blocked until the decision is answered, so the snapshot
// stays current.
type PendingDecision struct {
	Type  DecisionType
	State *vnet.StateView
	Stats []StatView
}

// StatView is one card's record for the agent's side.
type StatView struct {
	CardID          string         `json:"card_id"`
	Uses            int            `json:"uses"`
	Wins            int            `json:"wins"`
	Losses          int            `json:"losses"`
	Collapses       int            `json:"collapses"`
	Streak          int            `json:"streak"`
	MaxStreak       int            `json:"max_streak"`
	PlayStyleWins   map[string]int `json:"play_style_wins,omitempty"`
	PlayStyleLosses map[string]int `json:"play_style_losses,omitempty"`
}

func newStatViews(t *game.StatsTracker) []StatView {
	all := t.All()
	views := make([]StatView, 0, len(all))
	for _, s := range all {
		v := StatView{
			CardID:    s.CardID,
			Uses:      s.TotalUse,
			Wins:      s.TotalWin,
			Losses:    s.TotalLoss,
			Collapses: s.CollapseCount,
			Streak:    s.CurrentConsecutiveWin,
			MaxStreak: s.MaxConsecutiveWin,
		}
		v.PlayStyleWins = styleCounts(s.PlayStyleWins)
		v.PlayStyleLosses = styleCounts(s.PlayStyleLosses)
		views = append(views, v)
	}
	return views
}

func styleCounts(m map[game.PlayStyle]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for ps, n := range m {
		out[ps.String()] = n
	}
	return out
}

// ToolResponse is the JSON envelope returned by the game tools.
type ToolResponse struct {
	SessionID string           `json:"session_id"`
	Events    []vnet.EventView `json:"events"`
	State     *vnet.StateView  `json:"state,omitempty"`
	Pending   *PendingView     `json:"pending,omitempty"`
	GameOver  bool             `json:"game_over"`
	Winner    int              `json:"winner,omitempty"`
	Result    string           `json:"result,omitempty"`
	Summary   *game.Summary    `json:"summary,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type       DecisionType `json:"type"`
	HandSize   int          `json:"hand_size"`
	MinBet     int          `json:"min_bet"`
	MaxBet     int          `json:"max_bet"`
	PlayStyles []string     `json:"play_styles"`
}

// SessionConfig carries everything a new game needs.
type SessionConfig struct {
	Catalog    *game.Catalog
	Rules      game.Rules
	Pacing     game.Pacing
	Logger     log.EventLogger
	Seed       int64
	DeckNumber int // agent's starter deck, 0 = random deal
}

// GameSession holds the state of a single MCP game session. The agent
// plays the player side; the AI controller plays the enemy.
type GameSession struct {
	id      string
	session *game.Session
	agent   *MCPController
	cancel  context.CancelFunc
	done    chan struct{}

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision
	lastStats      []StatView

	mu       sync.Mutex
	events   []vnet.EventView
	gameOver bool
	winner   int
	result   string
	summary  *game.Summary
}

// NewGameSession creates a session and starts its round loop in the
// background. The loop blocks on the agent's first move.
func NewGameSession(cfg SessionConfig) (*GameSession, error) {
	var deck []*game.Card
	if cfg.DeckNumber != 0 {
		_, cards, err := cfg.Catalog.DeckByNumber(cfg.DeckNumber)
		if err != nil {
			return nil, fmt.Errorf("load agent deck: %w", err)
		}
		deck = cards
	}

	sess := &GameSession{
		id:        uuid.NewString(),
		pendingCh: make(chan *PendingDecision, 1),
		done:      make(chan struct{}),
		winner:    -1,
	}
	sess.agent = NewMCPController(game.SidePlayer, sess)

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	session, err := game.NewSession(game.SessionConfig{
		Catalog: cfg.Catalog,
		Rules:   cfg.Rules,
		Pacing:  cfg.Pacing,
		Logger:  logger,
		Seed:    cfg.Seed,
		Deck0:   deck,
	}, sess.agent, game.NewAIController())
	if err != nil {
		return nil, err
	}
	sess.session = session

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	go func() {
		defer close(sess.done)
		winner, err := session.Run(ctx)

		result := session.State.Result
		if err != nil {
			result = fmt.Sprintf("error: %v", err)
		}
		summary := session.Summary()
		gs := session.State

		sess.mu.Lock()
		sess.gameOver = true
		sess.winner = winner
		sess.result = result
		sess.summary = &summary
		sess.mu.Unlock()

		// A move prompt nobody collected is stale now.
		select {
		case <-sess.pendingCh:
		default:
		}
		sess.pendingCh <- &PendingDecision{
			Type:  DecisionGameOver,
			State: vnet.BuildStateView(gs, game.SidePlayer),
			Stats: newStatViews(gs.Players[game.SidePlayer].Stats),
		}
	}()

	return sess, nil
}

// ID returns the session id.
func (s *GameSession) ID() string {
	return s.id
}

// Stop cancels the round loop and waits for it to wind down.
func (s *GameSession) Stop() {
	s.cancel()
	<-s.done
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev vnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []vnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []vnet.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the game
// engine, then builds a ToolResponse with accumulated events and the
// pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	select {
	case pending := <-s.pendingCh:
		s.accept(pending)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.response(), nil
}

// poll picks up a decision the engine has already published, without
// waiting.
func (s *GameSession) poll() {
	select {
	case pending := <-s.pendingCh:
		s.accept(pending)
	default:
	}
}

// pollResponse polls, then describes the current decision.
func (s *GameSession) pollResponse() *ToolResponse {
	s.poll()
	return s.response()
}

func (s *GameSession) accept(pending *PendingDecision) {
	s.currentPending = pending
	if pending.Stats != nil {
		s.lastStats = pending.Stats
	}
}

// moveSent retires the answered prompt. Until the engine publishes the
// next one there is no pending decision.
func (s *GameSession) moveSent() {
	s.currentPending = nil
}

// response describes the current pending decision without waiting.
func (s *GameSession) response() *ToolResponse {
	resp := &ToolResponse{SessionID: s.id, Events: s.drainEvents()}
	pending := s.currentPending
	if pending == nil {
		return resp
	}
	resp.State = pending.State

	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		resp.Summary = s.summary
		s.mu.Unlock()
		return resp
	}

	resp.Pending = &PendingView{
		Type:       pending.Type,
		HandSize:   len(pending.State.You.Hand),
		MinBet:     pending.State.MinBet,
		MaxBet:     pending.State.MaxBet,
		PlayStyles: pending.State.PlayStyles,
	}
	return resp
}

// isOver reports whether the round loop has finished.
func (s *GameSession) isOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// respondJSON marshals a value to a JSON string.
func respondJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
