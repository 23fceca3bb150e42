package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/peterkuimelis/voidred/internal/game"
)

// ErrInputClosed is returned when the terminal input ends mid-game.
var ErrInputClosed = errors.New("input closed")

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn      net.Conn
	enc       *json.Encoder
	in        *bufio.Reader
	out       io.Writer
	sessionID string
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{
		conn: conn,
		enc:  json.NewEncoder(conn),
		in:   bufio.NewReader(in),
		out:  out,
	}
}

// Connect connects to a server, sends the join message, and runs the REPL.
func Connect(ctx context.Context, addr, name string, deckNumber int, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	client := NewClient(conn, in, out)
	if err := client.Join(name, deckNumber); err != nil {
		return err
	}
	fmt.Fprintln(out, "Connected! Waiting for game to start...")
	return client.RunREPL(ctx)
}

// Join sends the handshake.
func (c *Client) Join(name string, deckNumber int) error {
	if err := c.enc.Encode(ClientMessage{Type: MsgJoin, Name: name, DeckNumber: deckNumber}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	return nil
}

// SessionID returns the id the server assigned, once welcomed.
func (c *Client) SessionID() string {
	return c.sessionID
}

// RunREPL reads server messages and handles them interactively until the
// game ends.
func (c *Client) RunREPL(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	dec := json.NewDecoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MsgWelcome:
			c.sessionID = msg.SessionID

		case MsgNotify:
			c.renderEvent(msg.Event)

		case MsgChooseMove:
			c.renderState(msg.State)
			reply, err := c.readMove(msg.State)
			if err != nil {
				return err
			}
			if err := c.enc.Encode(reply); err != nil {
				return fmt.Errorf("send move: %w", err)
			}

		case MsgGameOver:
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, msg.Result)
			if s := msg.Summary; s != nil {
				fmt.Fprintf(c.out, "Rounds: %d  Wins: %d–%d  Draws: %d  Collapses: %d/%d  Evolutions: %d  Degradations: %d\n",
					s.Rounds, s.RoundWins[0], s.RoundWins[1], s.Draws, s.Collapses[0], s.Collapses[1], s.Evolutions, s.Degradations)
			}
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 18 {
		phase += " "
	}
	fmt.Fprintf(c.out, "R%-2d %s| %s\n", ev.Round, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	w := c.out

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	opp := sv.Opponent
	fmt.Fprintf(w, "║  ENEMY  MP: %d/%d  Hand: %d  Deck: %d  Wins: %d\n",
		opp.MentalPower, opp.MaxMentalPower, opp.HandCount, opp.DeckCount, opp.RoundWins)
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	if sv.Theme != nil {
		fmt.Fprintf(w, "║  Theme: %s\n", formatTheme(sv.Theme, sv.Scoring))
	}
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	you := sv.You
	fmt.Fprintf(w, "║  YOU    MP: %d/%d  Hand: %d  Deck: %d  Wins: %d\n",
		you.MentalPower, you.MaxMentalPower, you.HandCount, you.DeckCount, you.RoundWins)
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")
	fmt.Fprintf(w, "Round %d | Match %d | %s\n", sv.Round, sv.Match, sv.Phase)

	if len(you.Hand) > 0 {
		fmt.Fprintln(w, "\nHand:")
		for _, cv := range you.Hand {
			fmt.Fprintf(w, "  %d) %s\n", cv.Index+1, formatCard(cv))
		}
	}
}

func formatTheme(tv *ThemeView, scoring string) string {
	if scoring == "distance" && tv.Target != nil {
		return fmt.Sprintf("%s (target F%.1f R%.1f B%.1f)", tv.Title, tv.Target.Forgiveness, tv.Target.Rejection, tv.Target.Blank)
	}
	var parts []string
	for _, a := range game.Attributes {
		if m, ok := tv.Multipliers[a.String()]; ok && m != 1 {
			parts = append(parts, fmt.Sprintf("%s×%.1f", a, m))
		}
	}
	if len(parts) == 0 {
		return tv.Title
	}
	return fmt.Sprintf("%s (%s)", tv.Title, strings.Join(parts, ", "))
}

func formatCard(cv CardView) string {
	s := fmt.Sprintf("%s [%s] ×%.1f  collapse>%d  F%.1f R%.1f B%.1f",
		cv.Name, cv.Attribute, cv.ScoreMultiplier, cv.CollapseThreshold,
		cv.Effect.Forgiveness, cv.Effect.Rejection, cv.Effect.Blank)
	if cv.EvolvesTo != "" {
		s += "  ↑" + cv.EvolvesTo
	}
	if cv.DegradesTo != "" {
		s += "  ↓" + cv.DegradesTo
	}
	return s
}

func (c *Client) readMove(sv *StateView) (ClientMessage, error) {
	count := 0
	lo, hi := 0, 0
	if sv != nil {
		count = len(sv.You.Hand)
		lo, hi = sv.MinBet, sv.MaxBet
	}
	if count == 0 {
		count = 1
	}

	fmt.Fprintln(c.out, "\nPick a card:")
	idx, err := c.readNumber(1, count)
	if err != nil {
		return ClientMessage{}, err
	}
	fmt.Fprintln(c.out, "Play style: (h)esitation, (i)mpulse, (c)onviction")
	style, err := c.readStyle()
	if err != nil {
		return ClientMessage{}, err
	}
	fmt.Fprintf(c.out, "Bet mental power (%d-%d):\n", lo, hi)
	bet, err := c.readNumber(lo, hi)
	if err != nil {
		return ClientMessage{}, err
	}
	return ClientMessage{Type: MsgMove, Index: idx - 1, Style: style.String(), Bet: bet}, nil
}

func (c *Client) readLine() (string, error) {
	fmt.Fprint(c.out, "> ")
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", ErrInputClosed
	}
	return strings.TrimSpace(line), nil
}

func (c *Client) readNumber(lo, hi int) (int, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < lo || n > hi {
			fmt.Fprintf(c.out, "Enter a number between %d and %d\n", lo, hi)
			continue
		}
		return n, nil
	}
}

func (c *Client) readStyle() (game.PlayStyle, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		style, err := game.ParsePlayStyle(line)
		if err != nil {
			fmt.Fprintln(c.out, "Enter h, i or c")
			continue
		}
		return style, nil
	}
}
