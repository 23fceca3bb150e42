package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/voidred/internal/game"
	"github.com/peterkuimelis/voidred/internal/log"
)

// Server hosts sessions between TCP clients and the AI enemy. Each
// connection gets its own session.
type Server struct {
	Addr      string
	Catalog   *game.Catalog
	Rules     game.Rules
	Pacing    game.Pacing
	Seed      int64 // 0 for random
	EnemyDeck int   // enemy starter deck (1-indexed), 0 = random deal
	Once      bool  // serve a single connection, then return
	Logger    zerolog.Logger

	ln       net.Listener
	sessions atomic.Int64
}

// Listen binds the listener. Run calls it when it has not been called yet.
func (s *Server) Listen() error {
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	return nil
}

// ListenAddr returns the bound address, or nil before Listen.
func (s *Server) ListenAddr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run accepts connections until ctx is cancelled (or after the first
// session when Once is set).
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Logger.Info().Str("addr", s.ln.Addr().String()).Msg("waiting for players")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return s.ln.Close()
	})
	g.Go(func() error {
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			s.Logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("player connected")

			if s.Once {
				err := s.serveConn(gctx, conn)
				cancel()
				return err
			}
			g.Go(func() error {
				if err := s.serveConn(gctx, conn); err != nil {
					s.Logger.Warn().Err(err).Msg("session failed")
				}
				return nil
			})
		}
	})

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	return s.Serve(ctx, conn)
}

// Serve runs one session on an established connection: it reads the join
// message, plays the session and sends game_over.
func (s *Server) Serve(ctx context.Context, conn net.Conn) error {
	dec := json.NewDecoder(conn)
	var joinMsg ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	if joinMsg.Type != MsgJoin {
		return fmt.Errorf("expected join, got %q", joinMsg.Type)
	}

	id := uuid.NewString()
	zl := s.Logger.With().Str("session", id).Str("name", joinMsg.Name).Logger()

	playerDeck, err := s.deck(joinMsg.DeckNumber)
	if err != nil {
		return fmt.Errorf("player deck: %w", err)
	}
	enemyDeck, err := s.deck(s.EnemyDeck)
	if err != nil {
		return fmt.Errorf("enemy deck: %w", err)
	}

	// The decoder may have buffered bytes past the join message; the
	// controller continues from the same stream.
	ctrl := NewNetworkController(conn, game.SidePlayer, id)
	ctrl.dec = dec

	ctrl.mu.Lock()
	err = ctrl.send(ServerMessage{Type: MsgWelcome, SessionID: id})
	ctrl.mu.Unlock()
	if err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}

	session, err := game.NewSession(game.SessionConfig{
		Catalog: s.Catalog,
		Rules:   s.Rules,
		Pacing:  s.Pacing,
		Logger:  log.NewStructuredLogger(zl),
		Seed:    s.sessionSeed(),
		Deck0:   playerDeck,
		Deck1:   enemyDeck,
	}, ctrl, game.NewAIController())
	if err != nil {
		return err
	}

	zl.Info().Msg("session started")
	winner, err := session.Run(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	summary := session.Summary()
	zl.Info().Int("winner", winner).Int("rounds", summary.Rounds).Bool("cancelled", summary.Cancelled).Msg("session finished")

	return ctrl.SendGameOver(winner, session.State.Result, &summary)
}

// sessionSeed offsets a fixed seed by the number of sessions served so far,
// so hosted sessions stay reproducible without dealing identical games.
func (s *Server) sessionSeed() int64 {
	n := s.sessions.Add(1) - 1
	if s.Seed == 0 {
		return 0
	}
	return s.Seed + n
}

func (s *Server) deck(n int) ([]*game.Card, error) {
	if n == 0 {
		return nil, nil
	}
	_, cards, err := s.Catalog.DeckByNumber(n)
	return cards, err
}
