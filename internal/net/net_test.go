package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/voidred/internal/game"
)

func testServer(t *testing.T, rounds int) *Server {
	t.Helper()
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	rules := game.DefaultRules()
	rules.MaxRounds = rounds
	return &Server{
		Addr:    "127.0.0.1:0",
		Catalog: cat,
		Rules:   rules,
		Seed:    7,
		Once:    true,
		Logger:  zerolog.Nop(),
	}
}

func runServer(t *testing.T, srv *Server) (string, <-chan error) {
	t.Helper()
	require.NoError(t, srv.Listen())
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()
	return srv.ListenAddr().String(), done
}

func TestServerSessionOverTCP(t *testing.T) {
	srv := testServer(t, 2)
	addr, done := runServer(t, srv)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)
	require.NoError(t, enc.Encode(ClientMessage{Type: MsgJoin, Name: "tester", DeckNumber: 1}))

	var sessionID string
	moves := 0
	events := 0
	for {
		var msg ServerMessage
		require.NoError(t, dec.Decode(&msg))
		switch msg.Type {
		case MsgWelcome:
			sessionID = msg.SessionID
		case MsgNotify:
			require.NotNil(t, msg.Event)
			events++
		case MsgChooseMove:
			require.NotNil(t, msg.State)
			assert.Equal(t, sessionID, msg.State.SessionID)
			assert.Len(t, msg.State.You.Hand, 3)
			assert.Empty(t, msg.State.Opponent.Hand, "enemy hand must stay hidden")
			assert.NotNil(t, msg.State.Theme)
			moves++
			require.NoError(t, enc.Encode(ClientMessage{Type: MsgMove, Index: 0, Style: "conviction", Bet: msg.State.MinBet}))
		case MsgGameOver:
			require.NotNil(t, msg.Summary)
			assert.Equal(t, 2, msg.Summary.Rounds)
			assert.Equal(t, 2, moves)
			assert.NotEmpty(t, sessionID)
			assert.Positive(t, events)
			assert.NotEmpty(t, msg.Result)

			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("server did not return after its single session")
			}
			return
		}
	}
}

func TestInvalidStyleIsAskedAgain(t *testing.T) {
	srv := testServer(t, 1)
	addr, done := runServer(t, srv)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)
	require.NoError(t, enc.Encode(ClientMessage{Type: MsgJoin}))

	prompts := 0
	for {
		var msg ServerMessage
		require.NoError(t, dec.Decode(&msg))
		if msg.Type == MsgChooseMove {
			prompts++
			style := "sideways"
			if prompts > 1 {
				style = "h"
			}
			require.NoError(t, enc.Encode(ClientMessage{Type: MsgMove, Index: 0, Style: style, Bet: 0}))
		}
		if msg.Type == MsgGameOver {
			break
		}
	}
	assert.Equal(t, 2, prompts)
	assert.NoError(t, <-done)
}

func TestJoinRequired(t *testing.T) {
	srv := testServer(t, 1)
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(context.Background(), serverConn) }()

	require.NoError(t, json.NewEncoder(clientConn).Encode(ClientMessage{Type: MsgMove}))
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected join")
}

func TestUnknownDeckRejected(t *testing.T) {
	srv := testServer(t, 1)
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(context.Background(), serverConn) }()

	require.NoError(t, json.NewEncoder(clientConn).Encode(ClientMessage{Type: MsgJoin, DeckNumber: 99}))
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deck 99 not found")
}

func TestSessionSeedsDiffer(t *testing.T) {
	srv := testServer(t, 1)
	assert.Equal(t, []int64{7, 8, 9}, []int64{srv.sessionSeed(), srv.sessionSeed(), srv.sessionSeed()})

	srv.Seed = 0
	assert.Equal(t, int64(0), srv.sessionSeed(), "unseeded sessions stay random")
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := testServer(t, 1)
	srv.Once = false
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestPlayLocal(t *testing.T) {
	srv := testServer(t, 2)
	in := strings.NewReader(strings.Repeat("1\ni\n0\n", 2))
	var out bytes.Buffer

	require.NoError(t, PlayLocal(context.Background(), srv, "local", 0, in, &out))

	text := out.String()
	assert.Contains(t, text, "Pick a card:")
	assert.Contains(t, text, "Theme:")
	assert.Contains(t, text, "GAME OVER")
	assert.Contains(t, text, "Rounds: 2")
}

func TestPlayLocalInputClosed(t *testing.T) {
	srv := testServer(t, 3)
	in := strings.NewReader("1\n")
	var out bytes.Buffer

	err := PlayLocal(context.Background(), srv, "local", 0, in, &out)
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestClientRepromptsOutOfRange(t *testing.T) {
	var out bytes.Buffer
	c := NewClient(nil, strings.NewReader("9\n2\nx\nc\n-1\n3\n"), &out)
	sv := &StateView{
		MinBet: 0,
		MaxBet: 5,
		You:    PlayerView{Hand: []CardView{{Index: 0}, {Index: 1}, {Index: 2}}},
	}

	msg, err := c.readMove(sv)
	require.NoError(t, err)
	assert.Equal(t, ClientMessage{Type: MsgMove, Index: 1, Style: "Conviction", Bet: 3}, msg)
	assert.Contains(t, out.String(), "Enter a number between 1 and 3")
	assert.Contains(t, out.String(), "Enter h, i or c")
	assert.Contains(t, out.String(), "Enter a number between 0 and 5")
}

func TestSelectionFromMessage(t *testing.T) {
	sel := SelectionFromMessage(ClientMessage{Type: MsgMove, Index: 2, Style: "I", Bet: 4})
	assert.Equal(t, game.Selection{Index: 2, Style: game.PlayStyleImpulse, Bet: 4}, sel)

	bad := SelectionFromMessage(ClientMessage{Type: MsgMove, Style: "wobble"})
	assert.False(t, bad.Style.Valid())
}

func TestBuildStateView(t *testing.T) {
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	rules := game.DefaultRules()
	rules.Scoring = ""
	gs := game.NewGameState(rules, game.NewRandom(1))
	for side := 0; side < 2; side++ {
		gs.Players[side].Deck.Initialize(cat.Cards.RandomCards(gs.Rand(), rules.DeckSize))
		gs.Players[side].FillHand()
	}
	gs.Theme = cat.Themes.All()[0]

	sv := BuildStateView(gs, game.SideEnemy)
	assert.Equal(t, "attribute", sv.Scoring)
	assert.Len(t, sv.You.Hand, rules.HandSize)
	assert.Nil(t, sv.Opponent.Hand)
	assert.Equal(t, rules.HandSize, sv.Opponent.HandCount)
	assert.Equal(t, 1, sv.MinBet, "enemy bets at least 1")
	assert.Equal(t, rules.EnemyMaxBet, sv.MaxBet)
	assert.Len(t, sv.PlayStyles, 3)
	require.NotNil(t, sv.Theme)
	assert.Equal(t, gs.Theme.Title, sv.Theme.Title)
}
