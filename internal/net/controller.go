package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/peterkuimelis/voidred/internal/game"
	"github.com/peterkuimelis/voidred/internal/log"
)

// NetworkController implements game.PlayerController over a TCP connection.
type NetworkController struct {
	conn      net.Conn
	enc       *json.Encoder
	dec       *json.Decoder
	player    int // which side this controller is (0 or 1)
	sessionID string
	mu        sync.Mutex
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn net.Conn, player int, sessionID string) *NetworkController {
	return &NetworkController{
		conn:      conn,
		enc:       json.NewEncoder(conn),
		dec:       json.NewDecoder(conn),
		player:    player,
		sessionID: sessionID,
	}
}

// NewEventView converts a game event for the wire.
func NewEventView(event log.GameEvent) *EventView {
	return &EventView{
		Round:   event.Round,
		Phase:   event.Phase,
		Player:  event.Player,
		Type:    event.Type.String(),
		Card:    event.Card,
		Details: event.Details,
	}
}

// NewCardView converts a card definition for the wire.
func NewCardView(index int, c *game.Card) CardView {
	cv := CardView{
		Index:             index,
		ID:                c.ID,
		Name:              c.Name,
		Attribute:         c.Attribute.String(),
		Effect:            newEffectView(c.Effect),
		ScoreMultiplier:   c.ScoreMultiplier,
		CollapseThreshold: c.CollapseThreshold,
	}
	if c.EvolvesTo != nil {
		cv.EvolvesTo = c.EvolvesTo.Name
	}
	if c.DegradesTo != nil {
		cv.DegradesTo = c.DegradesTo.Name
	}
	return cv
}

func newEffectView(e game.Effect) EffectView {
	return EffectView{Forgiveness: e.Forgiveness, Rejection: e.Rejection, Blank: e.Blank}
}

// NewThemeView converts a theme for the wire; nil stays nil.
func NewThemeView(t *game.Theme) *ThemeView {
	if t == nil {
		return nil
	}
	tv := &ThemeView{Title: t.Title, Multipliers: make(map[string]float64, len(t.Multipliers))}
	if t.HasTarget {
		ev := newEffectView(t.Target)
		tv.Target = &ev
	}
	for a, m := range t.Multipliers {
		tv.Multipliers[a.String()] = m
	}
	return tv
}

// BuildStateView creates a StateView from the perspective of the given side.
func BuildStateView(state *game.GameState, player int) *StateView {
	me := player
	opp := state.Opponent(me)
	lo, hi := state.BetRange(me)

	sv := &StateView{
		Round:    state.Round,
		Match:    state.Match,
		Phase:    state.Phase.String(),
		Scoring:  state.Rules.Scoring,
		Theme:    NewThemeView(state.Theme),
		You:      newPlayerView(state.Players[me]),
		Opponent: newPlayerView(state.Players[opp]),
		MinBet:   lo,
		MaxBet:   hi,
	}
	if sv.Scoring == "" {
		sv.Scoring = "attribute"
	}
	for _, ps := range game.PlayStyles {
		sv.PlayStyles = append(sv.PlayStyles, ps.String())
	}
	// Hand contents are visible to their owner only.
	for i, c := range state.Players[me].Hand.Cards() {
		sv.You.Hand = append(sv.You.Hand, NewCardView(i, c))
	}
	return sv
}

func newPlayerView(p *game.Player) PlayerView {
	return PlayerView{
		MentalPower:    p.MentalPower.Value(),
		MaxMentalPower: p.MentalPower.Max(),
		HandCount:      p.HandCount(),
		DeckCount:      p.DeckCount(),
		RoundWins:      p.RoundWins,
		Collapses:      p.Collapses,
	}
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held. A cancelled ctx
// unblocks the read by expiring the connection deadline.
func (nc *NetworkController) recv(ctx context.Context) (ClientMessage, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = nc.conn.SetReadDeadline(time.Now())
	})
	defer func() {
		if !stop() {
			_ = nc.conn.SetReadDeadline(time.Time{})
		}
	}()

	var msg ClientMessage
	if err := nc.dec.Decode(&msg); err != nil {
		if ctx.Err() != nil {
			return msg, ctx.Err()
		}
		return msg, err
	}
	return msg, nil
}

// ChooseMove implements game.PlayerController.
func (nc *NetworkController) ChooseMove(ctx context.Context, state *game.GameState, side int) (game.Selection, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	sv := BuildStateView(state, side)
	sv.SessionID = nc.sessionID
	if err := nc.send(ServerMessage{Type: MsgChooseMove, State: sv}); err != nil {
		return game.Selection{}, fmt.Errorf("send choose_move: %w", err)
	}

	for {
		resp, err := nc.recv(ctx)
		if err != nil {
			return game.Selection{}, fmt.Errorf("recv move: %w", err)
		}
		if resp.Type != MsgMove {
			continue
		}
		return SelectionFromMessage(resp), nil
	}
}

// SelectionFromMessage converts a "move" message. An unknown style yields
// an invalid selection, which the session answers by asking again.
func SelectionFromMessage(msg ClientMessage) game.Selection {
	style, err := game.ParsePlayStyle(msg.Style)
	if err != nil {
		style = game.PlayStyle(-1)
	}
	return game.Selection{Index: msg.Index, Style: style, Bet: msg.Bet}
}

// SendGameOver sends a game_over message to the client.
func (nc *NetworkController) SendGameOver(winner int, result string, summary *game.Summary) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: MsgGameOver, Winner: winner, Result: result, Summary: summary})
}

// Notify implements game.PlayerController.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: MsgNotify, Event: NewEventView(event)})
}
