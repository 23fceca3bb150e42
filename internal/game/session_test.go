package game

import (
	"context"
	"testing"
	"time"

	"github.com/peterkuimelis/voidred/internal/log"
)

func TestEndToEndRoundDistanceScoring(t *testing.T) {
	theme := targetTheme("Centre", Effect{Forgiveness: 0.5, Rejection: 0.5, Blank: 0.5})
	a := safeCard("A", Effect{Forgiveness: 0.5, Rejection: 0.5, Blank: 0.5})
	b := safeCard("B", Effect{})

	rules := testRules()
	rules.Scoring = "distance"
	cfg := SessionConfig{
		Catalog: testCatalog([]*Card{a, b}, theme),
		Rules:   rules,
		Deck0:   repeat(a, 10),
		Deck1:   repeat(b, 10),
	}
	p0 := NewScriptedController(t, "player").AddMove(0, PlayStyleImpulse, 4)
	p1 := NewScriptedController(t, "enemy").AddMove(0, PlayStyleImpulse, 4)

	s, logger := runSessionToCompletion(t, cfg, p0, p1)
	gs := s.State

	if !approx(gs.Scores[SidePlayer], 6.0) {
		t.Errorf("player score: expected 6.0, got %f", gs.Scores[SidePlayer])
	}
	if !approx(gs.Scores[SideEnemy], 5.0) {
		t.Errorf("enemy score: expected 5.0, got %f", gs.Scores[SideEnemy])
	}
	if gs.LastOutcome != OutcomePlayerWin {
		t.Errorf("expected player to win the round, got %s", gs.LastOutcome)
	}
	if gs.Winner != SidePlayer || !gs.Over {
		t.Errorf("expected player to win the session, winner=%d over=%v", gs.Winner, gs.Over)
	}
	if n := len(logger.EventsOfType(log.EventRoundWin)); n != 1 {
		t.Errorf("expected 1 round win event, got %d", n)
	}

	for side, p := range gs.Players {
		if got := p.MentalPower.Value(); got != rules.MaxMentalPower-4+rules.RestorePerRound {
			t.Errorf("side %d mental power: got %d", side, got)
		}
		if p.HandCount() != rules.HandSize {
			t.Errorf("side %d hand not refilled: %d", side, p.HandCount())
		}
		if p.DeckCount()+p.HandCount() != 10 {
			t.Errorf("side %d lost cards: deck %d hand %d", side, p.DeckCount(), p.HandCount())
		}
		if p.Stats.Stats(p.Hand.CardAt(0).ID).TotalUse != 1 {
			t.Errorf("side %d: expected one recorded use", side)
		}
	}
}

func TestPhaseOrder(t *testing.T) {
	theme := targetTheme("T", Effect{})
	a := safeCard("A", Effect{})
	cfg := SessionConfig{Catalog: testCatalog([]*Card{a}, theme), Rules: testRules()}

	_, logger := runSessionToCompletion(t, cfg, NewAIController(), NewAIController())

	var phases []string
	for _, e := range logger.EventsOfType(log.EventPhaseChange) {
		phases = append(phases, e.Phase)
	}
	want := []string{"ThemeAnnouncement", "PlayerSelection", "EnemySelection", "Evaluation", "ResultDisplay"}
	if len(phases) != len(want) {
		t.Fatalf("expected %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase %d: got %s, want %s", i, phases[i], want[i])
		}
	}
}

func TestTieIsDrawAndCountsAsLoss(t *testing.T) {
	theme := targetTheme("T", Effect{})
	a := safeCard("A", Effect{})
	cfg := SessionConfig{
		Catalog: testCatalog([]*Card{a}, theme),
		Rules:   testRules(),
		Deck0:   repeat(a, 5),
		Deck1:   repeat(a, 5),
	}
	p0 := NewScriptedController(t, "player").AddMove(0, PlayStyleImpulse, 3)
	p1 := NewScriptedController(t, "enemy").AddMove(0, PlayStyleImpulse, 3)

	s, logger := runSessionToCompletion(t, cfg, p0, p1)

	if s.State.LastOutcome != OutcomeDraw || s.State.Draws != 1 {
		t.Fatalf("expected a drawn round, got %s", s.State.LastOutcome)
	}
	if s.State.Winner != -1 {
		t.Errorf("expected drawn session, got winner %d", s.State.Winner)
	}
	if len(logger.EventsOfType(log.EventRoundDraw)) != 1 {
		t.Error("expected a RoundDraw event")
	}
	for side, p := range s.State.Players {
		st := p.Stats.Stats("A")
		if st.TotalLoss != 1 || st.TotalWin != 0 {
			t.Errorf("side %d: draw should count as a loss, got %+v", side, st)
		}
	}
}

func TestBetIsClampedToMentalPower(t *testing.T) {
	theme := targetTheme("T", Effect{})
	a := safeCard("A", Effect{})
	rules := testRules()
	rules.RestorePerRound = 0
	cfg := SessionConfig{Catalog: testCatalog([]*Card{a}, theme), Rules: rules}

	p0 := NewScriptedController(t, "player").AddMove(0, PlayStyleImpulse, 3)
	p0.onChoose = func(ctx context.Context, state *GameState) error {
		state.Players[SidePlayer].MentalPower.Set(2)
		return nil
	}
	p1 := NewScriptedController(t, "enemy").AddMove(0, PlayStyleImpulse, 50)

	s, logger := runSessionToCompletion(t, cfg, p0, p1)

	moves := logger.EventsOfType(log.EventMove)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if got := s.State.Players[SidePlayer].MentalPower.Value(); got != 0 {
		t.Errorf("player bet should clamp to remaining 2, left %d", got)
	}
	if got := s.State.Players[SideEnemy].MentalPower.Value(); got != rules.MaxMentalPower-rules.EnemyMaxBet {
		t.Errorf("enemy bet should clamp to %d, left %d", rules.EnemyMaxBet, got)
	}
}

func TestInvalidSelectionIsRetried(t *testing.T) {
	theme := targetTheme("T", Effect{})
	a := safeCard("A", Effect{})
	cfg := SessionConfig{Catalog: testCatalog([]*Card{a}, theme), Rules: testRules()}

	p0 := NewScriptedController(t, "player").
		AddMove(7, PlayStyleImpulse, 1).
		AddMove(-1, PlayStyleImpulse, 1).
		AddMove(1, PlayStyle(9), 1).
		AddMove(2, PlayStyleHesitation, 1)

	s, logger := runSessionToCompletion(t, cfg, p0, NewAIController())

	moves := logger.EventsOfType(log.EventMove)
	if len(moves) != 2 || moves[0].Player != SidePlayer {
		t.Fatalf("expected one committed move per side, got %v", moves)
	}
	if p0.pos != 4 {
		t.Errorf("expected 4 prompts, got %d", p0.pos)
	}
	if !s.State.Over {
		t.Error("session should finish")
	}
}

func TestCollapseRemovesCardPermanently(t *testing.T) {
	theme := targetTheme("T", Effect{})
	fragile := plainCard("F", AttributeHope, Effect{})
	fragile.CollapseThreshold = 0
	a := safeCard("A", Effect{})

	cfg := SessionConfig{
		Catalog: testCatalog([]*Card{fragile, a}, theme),
		Rules:   testRules(),
		Deck0:   repeat(fragile, 4),
		Deck1:   repeat(a, 4),
		// Shuffles and theme draw use Intn; every Float64 roll is 0 so any
		// positive chance collapses.
		Random: &fixedRandom{floats: []float64{0, 0}},
	}
	p0 := NewScriptedController(t, "player").AddMove(0, PlayStyleImpulse, 5)
	p1 := NewScriptedController(t, "enemy").AddMove(0, PlayStyleImpulse, 5)

	s, logger := runSessionToCompletion(t, cfg, p0, p1)

	player := s.State.Players[SidePlayer]
	if player.Collapses != 1 {
		t.Fatalf("expected one collapse, got %d", player.Collapses)
	}
	if player.DeckCount()+player.HandCount() != 3 {
		t.Errorf("collapsed card should be gone: deck %d hand %d", player.DeckCount(), player.HandCount())
	}
	if st := player.Stats.Stats("F"); st.CollapseCount != 1 {
		t.Errorf("collapse not recorded: %+v", st)
	}
	enemy := s.State.Players[SideEnemy]
	if enemy.DeckCount()+enemy.HandCount() != 4 {
		t.Errorf("enemy card should return to deck: deck %d hand %d", enemy.DeckCount(), enemy.HandCount())
	}
	if len(logger.EventsOfType(log.EventCollapse)) != 1 {
		t.Error("expected exactly one collapse event")
	}
}

func TestMatchBoundaryEvolvesDeck(t *testing.T) {
	theme := targetTheme("T", Effect{})
	grown := safeCard("Grown", Effect{})
	seed := safeCard("Seed", Effect{})
	seed.EvolvesTo = grown
	seed.EvolutionConditions = []EvolutionCondition{{Type: ConditionTotalUse, Count: 1}}
	a := safeCard("A", Effect{})

	rules := testRules()
	rules.RoundsPerMatch = 1
	cfg := SessionConfig{
		Catalog: testCatalog([]*Card{seed, grown, a}, theme),
		Rules:   rules,
		Deck0:   repeat(seed, 6),
		Deck1:   repeat(a, 6),
	}

	s, logger := runSessionToCompletion(t, cfg, NewScriptedController(t, "player"), NewScriptedController(t, "enemy"))

	player := s.State.Players[SidePlayer]
	for _, c := range player.Hand.Cards() {
		if c != grown {
			t.Errorf("expected hand refilled with evolved cards, got %s", c.ID)
		}
	}
	if player.Deck.Count("Seed") != 0 {
		t.Errorf("no Seed should remain in the deck")
	}
	if s.State.Evolutions != 6 {
		t.Errorf("expected 6 evolutions, got %d", s.State.Evolutions)
	}
	if len(logger.EventsOfType(log.EventMatchEnd)) != 1 {
		t.Error("expected a MatchEnd event")
	}
	if player.MentalPower.Value() != player.MentalPower.Max() {
		t.Errorf("mental power should reset at match end, got %d", player.MentalPower.Value())
	}
}

// reentrantDisplay fires duplicate phase triggers from inside the display
// callbacks, the way a UI event source might.
type reentrantDisplay struct {
	s     *Session
	calls int
}

func (d *reentrantDisplay) ShowTheme(ctx context.Context, theme *Theme, dur time.Duration) error {
	return d.trigger()
}

func (d *reentrantDisplay) Announce(ctx context.Context, message string, dur time.Duration) error {
	return d.trigger()
}

func (d *reentrantDisplay) trigger() error {
	d.calls++
	if err := d.s.Evaluate(); err != nil {
		return err
	}
	return d.s.ResolveRound()
}

func TestProcessingLatchIgnoresDuplicateTriggers(t *testing.T) {
	theme := targetTheme("T", Effect{})
	a := safeCard("A", Effect{})
	rules := testRules()
	rules.MaxRounds = 3
	logger := log.NewMemoryLogger()
	display := &reentrantDisplay{}

	s, err := NewSession(SessionConfig{
		Catalog: testCatalog([]*Card{a}, theme),
		Rules:   rules,
		Display: display,
		Logger:  logger,
		Random:  seeded(),
	}, NewAIController(), NewAIController())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	display.s = s

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if display.calls == 0 {
		t.Fatal("display was never called")
	}
	if n := len(logger.EventsOfType(log.EventScore)); n != 2*rules.MaxRounds {
		t.Errorf("expected %d score events, got %d", 2*rules.MaxRounds, n)
	}
	outcomes := len(logger.EventsOfType(log.EventRoundWin)) + len(logger.EventsOfType(log.EventRoundDraw))
	if outcomes != rules.MaxRounds {
		t.Errorf("expected %d round outcomes, got %d", rules.MaxRounds, outcomes)
	}
	if s.State.Round != rules.MaxRounds {
		t.Errorf("expected %d rounds, got %d", rules.MaxRounds, s.State.Round)
	}
}

func TestCancelDuringSelection(t *testing.T) {
	theme := targetTheme("T", Effect{})
	a := safeCard("A", Effect{})
	logger := log.NewMemoryLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p0 := NewScriptedController(t, "player")
	p0.onChoose = func(ctx context.Context, state *GameState) error {
		state.Players[SidePlayer].Hand.SelectAt(0)
		cancel()
		return ctx.Err()
	}

	s, err := NewSession(SessionConfig{
		Catalog: testCatalog([]*Card{a}, theme),
		Rules:   testRules(),
		Logger:  logger,
		Random:  seeded(),
	}, p0, NewAIController())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	winner, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("cancellation should not be an error, got %v", err)
	}
	if winner != -1 || !s.State.Cancelled {
		t.Errorf("expected cancelled session, winner=%d cancelled=%v", winner, s.State.Cancelled)
	}
	if s.State.Phase != PhasePlayerSelection {
		t.Errorf("phase should not advance on cancel, got %s", s.State.Phase)
	}
	if s.State.Players[SidePlayer].Hand.SelectedIndex() != -1 {
		t.Error("cleanup should clear the selection")
	}
	if logger.LastEvent().Type != log.EventCancelled {
		t.Errorf("expected last event Cancelled, got %s", logger.LastEvent().Type)
	}
	if len(p0.events) == 0 || p0.events[len(p0.events)-1].Type != log.EventCancelled {
		t.Error("controllers should be told about the cancellation")
	}
}

func TestCancelDuringPacingDelay(t *testing.T) {
	theme := targetTheme("T", Effect{})
	a := safeCard("A", Effect{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s, err := NewSession(SessionConfig{
		Catalog: testCatalog([]*Card{a}, theme),
		Rules:   testRules(),
		Pacing:  Pacing{Theme: time.Hour},
		Random:  seeded(),
	}, NewAIController(), NewAIController())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if _, err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !s.State.Cancelled || s.State.Phase != PhaseThemeAnnouncement {
		t.Errorf("expected cancellation in ThemeAnnouncement, got cancelled=%v phase=%s", s.State.Cancelled, s.State.Phase)
	}
}

func TestAIVersusAIInvariants(t *testing.T) {
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	for _, scoring := range []string{"attribute", "distance"} {
		rules := DefaultRules()
		rules.Scoring = scoring
		rules.MaxRounds = 40

		checker := &invariantChecker{t: t}
		s, err := NewSession(SessionConfig{
			Catalog: cat,
			Rules:   rules,
			Random:  seeded(),
		}, checker, NewAIController())
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("%s: Run: %v", scoring, err)
		}
		if !s.State.Over {
			t.Fatalf("%s: session did not finish", scoring)
		}

		sum := s.Summary()
		if sum.RoundWins[0]+sum.RoundWins[1]+sum.Draws != sum.Rounds {
			t.Errorf("%s: outcomes %v + %d draws != %d rounds", scoring, sum.RoundWins, sum.Draws, sum.Rounds)
		}
		for side, p := range s.State.Players {
			if total := p.DeckCount() + p.HandCount() + p.Collapses; total != rules.DeckSize {
				t.Errorf("%s side %d: card count drifted to %d", scoring, side, total)
			}
		}
		if checker.calls != sum.Rounds {
			t.Errorf("%s: expected %d selections, got %d", scoring, sum.Rounds, checker.calls)
		}
	}
}

// invariantChecker plays like the AI and checks state at every selection.
type invariantChecker struct {
	AIController
	t     *testing.T
	calls int
}

func (c *invariantChecker) ChooseMove(ctx context.Context, state *GameState, side int) (Selection, error) {
	c.calls++
	for s, p := range state.Players {
		if p.HandCount() > p.Hand.Max() {
			c.t.Errorf("side %d hand over capacity: %d", s, p.HandCount())
		}
		if mp := p.MentalPower.Value(); mp < 0 || mp > p.MentalPower.Max() {
			c.t.Errorf("side %d mental power out of range: %d", s, mp)
		}
		if idx := p.Hand.SelectedIndex(); idx < -1 || idx >= p.HandCount() {
			c.t.Errorf("side %d selection out of range: %d", s, idx)
		}
	}
	if state.Phase != PhasePlayerSelection {
		c.t.Errorf("player asked to choose during %s", state.Phase)
	}
	return c.AIController.ChooseMove(ctx, state, side)
}
