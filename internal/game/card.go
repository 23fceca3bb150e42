package game

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Effect is a card's position in the three-axis emotional space. Each
// component is expected to lie in [0, 1].
type Effect struct {
	Forgiveness float64
	Rejection   float64
	Blank       float64
}

// DistanceTo returns the Euclidean distance between two effects.
func (e Effect) DistanceTo(o Effect) float64 {
	df := e.Forgiveness - o.Forgiveness
	dr := e.Rejection - o.Rejection
	db := e.Blank - o.Blank
	return math.Sqrt(df*df + dr*dr + db*db)
}

func (e Effect) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", e.Forgiveness, e.Rejection, e.Blank)
}

// EvolutionCondition is one requirement in an evolution or degradation set.
type EvolutionCondition struct {
	Type      ConditionType
	PlayStyle PlayStyle // only for PlayStyleWin / PlayStyleLose
	Count     int
	Expr      string // only for ConditionExpr

	program *vm.Program
}

func (c EvolutionCondition) String() string {
	switch c.Type {
	case ConditionPlayStyleWin, ConditionPlayStyleLose:
		return fmt.Sprintf("%s(%s) >= %d", c.Type, c.PlayStyle, c.Count)
	case ConditionExpr:
		return c.Expr
	default:
		return fmt.Sprintf("%s >= %d", c.Type, c.Count)
	}
}

// conditionEnv is the variable set visible to expression conditions.
func conditionEnv(st *CardStats) map[string]any {
	env := map[string]any{
		"uses":       0,
		"wins":       0,
		"losses":     0,
		"collapses":  0,
		"streak":     0,
		"max_streak": 0,
	}
	for _, ps := range PlayStyles {
		env[styleVar(ps, "wins")] = 0
		env[styleVar(ps, "losses")] = 0
	}
	if st == nil {
		return env
	}
	env["uses"] = st.TotalUse
	env["wins"] = st.TotalWin
	env["losses"] = st.TotalLoss
	env["collapses"] = st.CollapseCount
	env["streak"] = st.CurrentConsecutiveWin
	env["max_streak"] = st.MaxConsecutiveWin
	for _, ps := range PlayStyles {
		env[styleVar(ps, "wins")] = st.PlayStyleWins[ps]
		env[styleVar(ps, "losses")] = st.PlayStyleLosses[ps]
	}
	return env
}

func styleVar(ps PlayStyle, suffix string) string {
	switch ps {
	case PlayStyleHesitation:
		return "hesitation_" + suffix
	case PlayStyleConviction:
		return "conviction_" + suffix
	default:
		return "impulse_" + suffix
	}
}

// compileCondition type-checks an expression condition against the stats
// variables and requires a boolean result.
func compileCondition(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.Env(conditionEnv(nil)), expr.AsBool())
}

// Card is an immutable card definition. Decks and hands hold *Card
// references into the catalog, never copies.
type Card struct {
	ID                string
	Name              string
	Description       string
	Attribute         Attribute
	Effect            Effect
	ScoreMultiplier   float64
	CollapseThreshold int

	EvolvesTo             *Card
	EvolutionConditions   []EvolutionCondition
	DegradesTo            *Card
	DegradationConditions []EvolutionCondition
}

// CanEvolve reports whether the card has an evolution target and at least
// one condition guarding it.
func (c *Card) CanEvolve() bool {
	return c.EvolvesTo != nil && len(c.EvolutionConditions) > 0
}

// CanDegrade is the degradation counterpart of CanEvolve.
func (c *Card) CanDegrade() bool {
	return c.DegradesTo != nil && len(c.DegradationConditions) > 0
}

func (c *Card) String() string {
	if c == nil {
		return "<none>"
	}
	return c.Name
}
