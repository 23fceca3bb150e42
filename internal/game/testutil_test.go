package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/peterkuimelis/voidred/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script of moves.
// Used in tests to deterministically drive the game.
type ScriptedController struct {
	t      *testing.T
	name   string
	moves  []Selection
	pos    int
	events []log.GameEvent

	// onChoose, if set, runs before each move is returned.
	onChoose func(ctx context.Context, state *GameState) error
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

// AddMove appends a selection to the script.
func (sc *ScriptedController) AddMove(index int, style PlayStyle, bet int) *ScriptedController {
	sc.moves = append(sc.moves, Selection{Index: index, Style: style, Bet: bet})
	return sc
}

// ChooseMove returns the next scripted move; once the script runs out it
// plays the first card with Impulse and bet 1.
func (sc *ScriptedController) ChooseMove(ctx context.Context, state *GameState, side int) (Selection, error) {
	if sc.onChoose != nil {
		if err := sc.onChoose(ctx, state); err != nil {
			return Selection{}, err
		}
	}
	if sc.pos >= len(sc.moves) {
		return Selection{Index: 0, Style: PlayStyleImpulse, Bet: 1}, nil
	}
	sel := sc.moves[sc.pos]
	sc.pos++
	return sel, nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	sc.events = append(sc.events, event)
	return nil
}

// fixedRandom replays scripted values. Intn falls back to 0 and Float64 to
// 0.999 once the scripts are exhausted.
type fixedRandom struct {
	ints   []int
	floats []float64
	ii, fi int
}

func (r *fixedRandom) Intn(n int) int {
	if r.ii >= len(r.ints) {
		return 0
	}
	v := r.ints[r.ii] % n
	r.ii++
	return v
}

func (r *fixedRandom) Float64() float64 {
	if r.fi >= len(r.floats) {
		return 0.999
	}
	v := r.floats[r.fi]
	r.fi++
	return v
}

// --- Test card helpers ---

func plainCard(id string, attr Attribute, effect Effect) *Card {
	return &Card{
		ID:                id,
		Name:              id,
		Attribute:         attr,
		Effect:            effect,
		ScoreMultiplier:   1.0,
		CollapseThreshold: DefaultCollapseThreshold,
	}
}

// safeCard never collapses under the default bet limits.
func safeCard(id string, effect Effect) *Card {
	c := plainCard(id, AttributeHope, effect)
	c.CollapseThreshold = 100
	return c
}

func repeat(card *Card, n int) []*Card {
	cards := make([]*Card, n)
	for i := range cards {
		cards[i] = card
	}
	return cards
}

func testCatalog(cards []*Card, themes ...*Theme) *Catalog {
	return &Catalog{Cards: NewCardCatalog(cards), Themes: NewThemeCatalog(themes)}
}

func targetTheme(title string, target Effect) *Theme {
	return &Theme{Title: title, Target: target, HasTarget: true, Multipliers: map[Attribute]float64{}}
}

// testRules returns default rules with headless pacing in mind.
func testRules() Rules {
	r := DefaultRules()
	r.MaxRounds = 1
	return r
}

func seeded() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// runSessionToCompletion runs a session and returns the logger for inspection.
func runSessionToCompletion(t *testing.T, cfg SessionConfig, p0, p1 PlayerController) (*Session, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	if cfg.Random == nil {
		cfg.Random = seeded()
	}

	s, err := NewSession(cfg, p0, p1)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	winner, err := s.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("Session error: %v", err)
	}

	t.Logf("Session result: winner=%d (%s)", winner, s.State.Result)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	return s, logger
}
