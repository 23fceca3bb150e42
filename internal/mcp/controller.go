package mcp

import (
	"context"

	"github.com/peterkuimelis/voidred/internal/game"
	"github.com/peterkuimelis/voidred/internal/log"
	vnet "github.com/peterkuimelis/voidred/internal/net"
)

// MCPController implements game.PlayerController by publishing decisions
// to the session's pending channel and blocking on a response channel.
type MCPController struct {
	player     int
	session    *GameSession
	responseCh chan game.Selection
}

// NewMCPController creates a controller for the given side.
func NewMCPController(player int, session *GameSession) *MCPController {
	return &MCPController{
		player:     player,
		session:    session,
		responseCh: make(chan game.Selection),
	}
}

// ChooseMove implements game.PlayerController.
func (c *MCPController) ChooseMove(ctx context.Context, state *game.GameState, side int) (game.Selection, error) {
	pending := &PendingDecision{
		Type:  DecisionChooseMove,
		State: vnet.BuildStateView(state, side),
		Stats: newStatViews(state.Players[side].Stats),
	}
	pending.State.SessionID = c.session.id

	select {
	case c.session.pendingCh <- pending:
	case <-ctx.Done():
		return game.Selection{}, ctx.Err()
	}

	select {
	case sel := <-c.responseCh:
		return sel, nil
	case <-ctx.Done():
		return game.Selection{}, ctx.Err()
	}
}

// Notify implements game.PlayerController.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(*vnet.NewEventView(event))
	return nil
}
