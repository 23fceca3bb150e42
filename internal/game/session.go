package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/voidred/internal/log"
)

// maxSelectionAttempts bounds how often a side is re-asked after picking
// an index outside its hand.
const maxSelectionAttempts = 8

// SessionConfig holds configuration for creating a new session.
type SessionConfig struct {
	Catalog *Catalog
	Rules   Rules
	Pacing  Pacing
	Display Display
	Logger  log.EventLogger
	Seed    int64  // RNG seed (0 for random), ignored when Random is set
	Random  Random // injected random source
	Deck0   []*Card // fixed player deck; dealt from the catalog when empty
	Deck1   []*Card // fixed enemy deck; dealt from the catalog when empty
}

// Session orchestrates the round loop between the two sides.
type Session struct {
	State       *GameState
	Controllers [2]PlayerController
	Logger      log.EventLogger
	Display     Display
	Pacing      Pacing

	catalog *Catalog
	scorer  *Scorer
	rng     Random
	ctx     context.Context

	// processing latches Evaluate and ResolveRound; reset on phase entry.
	processing bool
}

// Summary describes a finished (or cancelled) session.
type Summary struct {
	Rounds       int     `json:"rounds"`
	RoundWins    [2]int  `json:"round_wins"`
	Draws        int     `json:"draws"`
	Collapses    [2]int  `json:"collapses"`
	Evolutions   int     `json:"evolutions"`
	Degradations int     `json:"degradations"`
	MentalPower  [2]int  `json:"mental_power"`
	WinRate      float64 `json:"win_rate"`
	Winner       int     `json:"winner"`
	Result       string  `json:"result"`
	Cancelled    bool    `json:"cancelled"`
}

// NewSession creates a session from the given config and player controllers.
// p0 drives the player side and p1 the enemy side.
func NewSession(cfg SessionConfig, p0, p1 PlayerController) (*Session, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("session needs a catalog")
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if err := cfg.Pacing.Validate(); err != nil {
		return nil, fmt.Errorf("pacing: %w", err)
	}
	policy, err := ScoringPolicyByName(cfg.Rules.Scoring)
	if err != nil {
		return nil, err
	}
	if _, ok := policy.(DistanceScoring); ok && !cfg.Catalog.Themes.AllHaveTargets() {
		return nil, fmt.Errorf("distance scoring needs a target on every theme")
	}

	rng := cfg.Random
	if rng == nil {
		rng = NewRandom(cfg.Seed)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	display := cfg.Display
	if display == nil {
		display = PacedDisplay{}
	}

	gs := NewGameState(cfg.Rules, rng)
	decks := [2][]*Card{cfg.Deck0, cfg.Deck1}
	for side, cards := range decks {
		if len(cards) == 0 {
			cards = cfg.Catalog.Cards.RandomCards(rng, cfg.Rules.DeckSize)
		}
		gs.Players[side].Deck.Initialize(cards)
	}

	return &Session{
		State:       gs,
		Controllers: [2]PlayerController{p0, p1},
		Logger:      logger,
		Display:     display,
		Pacing:      cfg.Pacing,
		catalog:     cfg.Catalog,
		scorer:      NewScorer(policy, cfg.Rules.PlayStyleModifiers),
		rng:         rng,
		ctx:         context.Background(),
	}, nil
}

// Scorer returns the scorer applied to both sides.
func (s *Session) Scorer() *Scorer {
	return s.scorer
}

// Run executes the round loop until one side cannot play, the round limit
// is reached or ctx is cancelled. It returns the winner (0, 1, or -1 for a
// draw). Cancellation is a normal outcome: State.Cancelled is set and the
// error is nil.
func (s *Session) Run(ctx context.Context) (int, error) {
	s.ctx = ctx
	gs := s.State

	for side := 0; side < 2; side++ {
		s.log(log.NewShuffleEvent(gs.Round, gs.Phase.String(), side))
		s.fillHand(side)
	}

	for !gs.Over {
		if gs.Rules.MaxRounds > 0 && gs.Round >= gs.Rules.MaxRounds {
			s.finish(fmt.Sprintf("round limit reached (%d rounds)", gs.Rules.MaxRounds))
			break
		}
		if empty := s.emptyHandSide(); empty >= 0 {
			s.finish(fmt.Sprintf("%s has no cards left to play", log.PlayerName(empty)))
			break
		}
		if err := s.runRound(); err != nil {
			if ctx.Err() != nil {
				s.cancel()
				return gs.Winner, nil
			}
			return gs.Winner, err
		}
	}

	return gs.Winner, nil
}

// Summary returns the session's statistics so far.
func (s *Session) Summary() Summary {
	gs := s.State
	return Summary{
		Rounds:       gs.Round,
		RoundWins:    [2]int{gs.Players[0].RoundWins, gs.Players[1].RoundWins},
		Draws:        gs.Draws,
		Collapses:    [2]int{gs.Players[0].Collapses, gs.Players[1].Collapses},
		Evolutions:   gs.Evolutions,
		Degradations: gs.Degradations,
		MentalPower:  [2]int{gs.Players[0].MentalPower.Value(), gs.Players[1].MentalPower.Value()},
		WinRate:      gs.Players[SidePlayer].Stats.WinRate(),
		Winner:       gs.Winner,
		Result:       gs.Result,
		Cancelled:    gs.Cancelled,
	}
}

// runRound executes one full ThemeAnnouncement → ResultDisplay cycle.
func (s *Session) runRound() error {
	gs := s.State
	gs.Round++
	if gs.Rules.RoundsPerMatch > 0 {
		gs.Match = (gs.Round-1)/gs.Rules.RoundsPerMatch + 1
	} else {
		gs.Match = 1
	}

	if err := s.themeAnnouncement(); err != nil {
		return err
	}
	if err := s.selection(PhasePlayerSelection, SidePlayer); err != nil {
		return err
	}
	if err := s.selection(PhaseEnemySelection, SideEnemy); err != nil {
		return err
	}
	s.enterPhase(PhaseEvaluation)
	if err := s.Evaluate(); err != nil {
		return err
	}
	if err := s.ResolveRound(); err != nil {
		return err
	}
	return nil
}

// enterPhase switches phase and clears the processing latch.
func (s *Session) enterPhase(p Phase) {
	s.State.Phase = p
	s.processing = false
	s.log(log.NewPhaseChangeEvent(s.State.Round, p.String()))
}

func (s *Session) themeAnnouncement() error {
	gs := s.State
	s.enterPhase(PhaseThemeAnnouncement)
	s.log(log.NewRoundEvent(gs.Round, gs.Match))

	gs.Theme = s.catalog.Themes.Random(s.rng)
	gs.Scores = [2]float64{}
	s.log(log.NewThemeEvent(gs.Round, gs.Theme.Title))
	return s.Display.ShowTheme(s.ctx, gs.Theme, s.Pacing.Theme)
}

// selection asks side's controller for a move and commits it.
func (s *Session) selection(phase Phase, side int) error {
	gs := s.State
	s.enterPhase(phase)
	if side == SideEnemy {
		if err := s.Display.Announce(s.ctx, "Enemy is thinking...", s.Pacing.Think); err != nil {
			return err
		}
	}

	p := gs.Players[side]
	for attempt := 0; attempt < maxSelectionAttempts; attempt++ {
		sel, err := s.Controllers[side].ChooseMove(s.ctx, gs, side)
		if err != nil {
			return fmt.Errorf("%s selection: %w", log.PlayerName(side), err)
		}
		if s.commit(side, sel) {
			return nil
		}
		p.Hand.Deselect()
	}
	return fmt.Errorf("%s made no valid selection in %d attempts", log.PlayerName(side), maxSelectionAttempts)
}

// commit validates the selection, clamps the bet, consumes mental power
// and records the move. It returns false when nothing valid was selected.
func (s *Session) commit(side int, sel Selection) bool {
	gs := s.State
	p := gs.Players[side]

	p.Hand.SelectAt(sel.Index)
	card := p.Hand.Selected()
	if card == nil || !sel.Style.Valid() {
		return false
	}

	bet := gs.ClampBet(side, sel.Bet)
	old := p.MentalPower.Value()
	if !p.MentalPower.TryConsume(bet) {
		return false
	}
	p.Move = &Move{Card: card, Style: sel.Style, Bet: bet}

	phase := gs.Phase.String()
	s.log(log.NewMoveEvent(gs.Round, phase, side, card.Name, sel.Style.String(), bet))
	if bet > 0 {
		s.log(log.NewMentalPowerEvent(gs.Round, phase, side, old, p.MentalPower.Value(), "bet"))
	}
	return true
}

// Evaluate scores both committed moves against the round's theme. It is a
// no-op outside the Evaluation phase or while already running.
func (s *Session) Evaluate() error {
	gs := s.State
	if gs.Phase != PhaseEvaluation || s.processing {
		return nil
	}
	s.processing = true

	for side, p := range gs.Players {
		if p.Move == nil {
			return fmt.Errorf("%s has no committed move", log.PlayerName(side))
		}
		gs.Scores[side] = s.scorer.Score(*p.Move, gs.Theme)
		s.log(log.NewScoreEvent(gs.Round, side, p.Move.Card.Name, gs.Scores[side]))
	}

	msg := fmt.Sprintf("Player %.2f — Enemy %.2f", gs.Scores[SidePlayer], gs.Scores[SideEnemy])
	if err := s.Display.Announce(s.ctx, msg, s.Pacing.Announce); err != nil {
		return err
	}

	s.enterPhase(PhaseResultDisplay)
	return nil
}

// ResolveRound decides the round, rolls collapses, records statistics and
// prepares both hands for the next round. It is a no-op outside the
// ResultDisplay phase or once it has started for this round.
func (s *Session) ResolveRound() error {
	gs := s.State
	if gs.Phase != PhaseResultDisplay || s.processing {
		return nil
	}
	s.processing = true
	phase := gs.Phase.String()

	ps, es := gs.Scores[SidePlayer], gs.Scores[SideEnemy]
	switch {
	case ps > es:
		gs.LastOutcome = OutcomePlayerWin
		gs.Players[SidePlayer].RoundWins++
		s.log(log.NewRoundWinEvent(gs.Round, SidePlayer, ps, es))
	case es > ps:
		gs.LastOutcome = OutcomeEnemyWin
		gs.Players[SideEnemy].RoundWins++
		s.log(log.NewRoundWinEvent(gs.Round, SideEnemy, ps, es))
	default:
		gs.LastOutcome = OutcomeDraw
		gs.Draws++
		s.log(log.NewRoundDrawEvent(gs.Round, ps))
	}

	for side, p := range gs.Players {
		move := *p.Move
		collapsed, chance := s.scorer.ShouldCollapse(move, s.rng)

		p.Hand.TryRemoveAt(p.Hand.SelectedIndex())
		if collapsed {
			p.Collapses++
			s.log(log.NewCollapseEvent(gs.Round, side, move.Card.Name, chance))
		} else {
			p.Deck.Return(move.Card)
		}
		p.Stats.RecordGameResult(gs.LastOutcome.Winner() == side, move, collapsed)
	}

	if err := s.Display.Announce(s.ctx, gs.LastOutcome.String(), s.Pacing.Result); err != nil {
		return err
	}

	for side, p := range gs.Players {
		if n := p.ReturnHand(); n > 0 {
			s.log(log.NewReturnToDeckEvent(gs.Round, phase, side, n))
		}
		p.Move = nil
		if old := p.MentalPower.Value(); p.MentalPower.Restore(gs.Rules.RestorePerRound) > 0 {
			s.log(log.NewMentalPowerEvent(gs.Round, phase, side, old, p.MentalPower.Value(), "rest"))
		}
	}

	if gs.Rules.RoundsPerMatch > 0 && gs.Round%gs.Rules.RoundsPerMatch == 0 {
		s.endMatch()
	}

	for side := range gs.Players {
		s.fillHand(side)
	}

	return Wait(s.ctx, s.Pacing.NextRound)
}

// endMatch runs the deck-wide evolution sweep for both sides and refills
// mental power. Hands are empty at this point.
func (s *Session) endMatch() {
	gs := s.State
	s.log(log.NewMatchEndEvent(gs.Round, gs.Match, gs.Players[0].RoundWins, gs.Players[1].RoundWins))

	for side, p := range gs.Players {
		for _, t := range p.Evolution.Sweep(p.Deck) {
			if t.Kind == TransformEvolve {
				gs.Evolutions++
				s.log(log.NewEvolveEvent(gs.Round, side, t.From.Name, t.To.Name))
			} else {
				gs.Degradations++
				s.log(log.NewDegradeEvent(gs.Round, side, t.From.Name, t.To.Name))
			}
		}
		if old := p.MentalPower.Value(); old != p.MentalPower.Max() {
			p.MentalPower.Reset()
			s.log(log.NewMentalPowerEvent(gs.Round, gs.Phase.String(), side, old, p.MentalPower.Value(), "match reset"))
		}
	}
}

func (s *Session) fillHand(side int) {
	gs := s.State
	for _, c := range gs.Players[side].FillHand() {
		s.log(log.NewDrawEvent(gs.Round, gs.Phase.String(), side, c.Name))
	}
}

// emptyHandSide returns the first side that cannot play, or -1.
func (s *Session) emptyHandSide() int {
	for side, p := range s.State.Players {
		if p.Hand.IsEmpty() {
			return side
		}
	}
	return -1
}

// finish ends the session, awarding it to the side with more round wins.
func (s *Session) finish(reason string) {
	gs := s.State
	gs.Over = true
	pw, ew := gs.Players[SidePlayer].RoundWins, gs.Players[SideEnemy].RoundWins
	switch {
	case pw > ew:
		gs.Winner = SidePlayer
	case ew > pw:
		gs.Winner = SideEnemy
	default:
		gs.Winner = -1
	}
	if gs.Winner >= 0 {
		gs.Result = fmt.Sprintf("%s wins %d–%d — %s", log.PlayerName(gs.Winner), max(pw, ew), min(pw, ew), reason)
	} else {
		gs.Result = fmt.Sprintf("Draw %d–%d — %s", pw, ew, reason)
	}
	s.log(log.NewGameOverEvent(gs.Round, gs.Phase.String(), gs.Winner, reason))
}

// cancel runs the cleanup for a torn-down session without advancing the
// phase.
func (s *Session) cancel() {
	gs := s.State
	for _, p := range gs.Players {
		p.Hand.Deselect()
	}
	gs.Over = true
	gs.Cancelled = true
	gs.Winner = -1
	gs.Result = fmt.Sprintf("Cancelled during %s", gs.Phase)
	s.log(log.NewCancelledEvent(gs.Round, gs.Phase.String()))
}

// log records an event and forwards it to both controllers. Controllers
// are notified with a background context so that cancellation cleanup
// still reaches them.
func (s *Session) log(event log.GameEvent) {
	s.Logger.Log(event)
	for i := 0; i < 2; i++ {
		_ = s.Controllers[i].Notify(context.WithoutCancel(s.ctx), event)
	}
}
