package game

import (
	"context"

	"github.com/peterkuimelis/voidred/internal/log"
)

// Selection is a controller's answer for a round: the hand index of the
// chosen card, the play style and the requested bet. The session clamps
// the bet; an out-of-range index counts as "nothing selected".
type Selection struct {
	Index int
	Style PlayStyle
	Bet   int
}

// PlayerController is the interface that human (TCP, MCP) and AI players implement.
type PlayerController interface {
	// ChooseMove waits for the side to pick a card, a style and a bet.
	ChooseMove(ctx context.Context, state *GameState, side int) (Selection, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// AIController plays uniformly at random: any card in hand, any style, and
// a bet anywhere in the side's bet range.
type AIController struct{}

func NewAIController() *AIController {
	return &AIController{}
}

// ChooseMove implements PlayerController.
func (AIController) ChooseMove(ctx context.Context, state *GameState, side int) (Selection, error) {
	rng := state.Rand()
	p := state.Players[side]
	card := p.Hand.GetRandomCard(rng)
	style := PlayStyles[rng.Intn(len(PlayStyles))]
	lo, hi := state.BetRange(side)
	bet := lo
	if hi > lo {
		bet = lo + rng.Intn(hi-lo+1)
	}
	return Selection{Index: p.Hand.IndexOf(card), Style: style, Bet: bet}, nil
}

// Notify implements PlayerController.
func (AIController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}
