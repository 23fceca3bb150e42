package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/peterkuimelis/voidred/internal/game"
	"github.com/peterkuimelis/voidred/internal/log"
)

// Tools owns the single game session of one stdio process and serves the
// MCP tools that drive it.
type Tools struct {
	Catalog *game.Catalog
	Rules   game.Rules
	Seed    int64 // default seed when start_game omits one; 0 for random
	Logger  zerolog.Logger

	mu     sync.Mutex
	active *GameSession
}

// NewTools creates the tool set for a catalog and rule set.
func NewTools(cat *game.Catalog, rules game.Rules, seed int64, zl zerolog.Logger) *Tools {
	return &Tools{Catalog: cat, Rules: rules, Seed: seed, Logger: zl}
}

// Register adds all game tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(playCardTool(), t.handlePlayCard)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
	s.AddTool(cardStatsTool(), t.handleCardStats)
	s.AddTool(quitGameTool(), t.handleQuitGame)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Void Red session. You play the player side against the AI enemy. "+
			"Each round a theme is announced; you pick a card from your hand, a play style and a mental power bet. "+
			"Returns the initial state and the first pending move."),
		mcp.WithNumber("seed", mcp.Description("RNG seed for a reproducible session (omit for random)")),
		mcp.WithString("scoring", mcp.Description("Scoring policy for this session"), mcp.Enum("attribute", "distance")),
		mcp.WithNumber("deck", mcp.Description("Starter deck number (1-indexed); omit for a random deal")),
	)
}

func playCardTool() mcp.Tool {
	return mcp.NewTool("play_card",
		mcp.WithDescription("Commit your move for the current round. Use this when the pending decision type is 'choose_move'. "+
			"Returns the round's events and the next pending move, or the final result."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the card in your hand")),
		mcp.WithString("style", mcp.Required(), mcp.Description("Play style"), mcp.Enum("hesitation", "impulse", "conviction")),
		mcp.WithNumber("bet", mcp.Required(), mcp.Description("Mental power to bet, within the pending min_bet..max_bet")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a move. Read-only."),
	)
}

func cardStatsTool() mcp.Tool {
	return mcp.NewTool("card_stats",
		mcp.WithDescription("Per-card statistics for your side (uses, wins, losses, collapses, streaks, play-style records). "+
			"Cards evolve or degrade at match boundaries based on these. Read-only."),
	)
}

func quitGameTool() mcp.Tool {
	return mcp.NewTool("quit_game",
		mcp.WithDescription("Abandon the running session and return its summary."),
	)
}

// --- Tool handlers ---

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil && !t.active.isOver() {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported; use quit_game to abandon it."), nil
	}

	rules := t.Rules
	if scoring := request.GetString("scoring", ""); scoring != "" {
		rules.Scoring = scoring
	}
	seed := int64(request.GetInt("seed", int(t.Seed)))

	sess, err := NewGameSession(SessionConfig{
		Catalog:    t.Catalog,
		Rules:      rules,
		Logger:     log.NewStructuredLogger(t.Logger),
		Seed:       seed,
		DeckNumber: request.GetInt("deck", 0),
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	t.active = sess
	t.Logger.Info().Str("session", sess.ID()).Int64("seed", seed).Str("scoring", rules.Scoring).Msg("game started")

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.active
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	if sess.currentPending == nil {
		sess.poll()
	}
	pending := sess.currentPending
	if pending == nil && !sess.isOver() {
		return mcp.NewToolResultError("The previous move is still resolving. Use get_game_state to fetch the next decision."), nil
	}
	if pending == nil || pending.Type != DecisionChooseMove {
		return mcp.NewToolResultError("No move is pending. The game is over; use start_game to play again."), nil
	}

	hand := len(pending.State.You.Hand)
	index := request.GetInt("index", -1)
	if index < 0 || index >= hand {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, hand-1), nil
	}
	style, err := game.ParsePlayStyle(request.GetString("style", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid style: %v. Use hesitation, impulse or conviction.", err), nil
	}
	lo, hi := pending.State.MinBet, pending.State.MaxBet
	bet := request.GetInt("bet", -1)
	if bet < lo || bet > hi {
		return mcp.NewToolResultErrorf("Invalid bet %d. Must be %d-%d.", bet, lo, hi), nil
	}

	select {
	case sess.agent.responseCh <- game.Selection{Index: index, Style: style, Bet: bet}:
		sess.moveSent()
	case <-ctx.Done():
		return mcp.NewToolResultErrorf("Cancelled: %v", ctx.Err()), nil
	}

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	if resp.GameOver {
		t.Logger.Info().Str("session", sess.ID()).Str("result", resp.Result).Msg("game over")
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(t.active.pollResponse())), nil
}

// cardStatsResponse is the card_stats payload.
type cardStatsResponse struct {
	SessionID string     `json:"session_id"`
	Cards     []StatView `json:"cards"`
}

func (t *Tools) handleCardStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.active
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	sess.poll()
	resp := cardStatsResponse{SessionID: sess.ID(), Cards: []StatView{}}
	if sess.lastStats != nil {
		resp.Cards = sess.lastStats
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleQuitGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.active
	if sess == nil {
		return mcp.NewToolResultError("No game is running."), nil
	}
	sess.Stop()
	resp := sess.pollResponse()
	t.active = nil
	t.Logger.Info().Str("session", sess.ID()).Msg("game abandoned")
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
