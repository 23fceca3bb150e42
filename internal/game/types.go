package game

import (
	"fmt"
	"strings"
)

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseThemeAnnouncement
	PhasePlayerSelection
	PhaseEnemySelection
	PhaseEvaluation
	PhaseResultDisplay
)

func (p Phase) String() string {
	switch p {
	case PhaseThemeAnnouncement:
		return "ThemeAnnouncement"
	case PhasePlayerSelection:
		return "PlayerSelection"
	case PhaseEnemySelection:
		return "EnemySelection"
	case PhaseEvaluation:
		return "Evaluation"
	case PhaseResultDisplay:
		return "ResultDisplay"
	default:
		return "None"
	}
}

// Next returns the phase that follows p in the round cycle.
func (p Phase) Next() Phase {
	switch p {
	case PhaseThemeAnnouncement:
		return PhasePlayerSelection
	case PhasePlayerSelection:
		return PhaseEnemySelection
	case PhaseEnemySelection:
		return PhaseEvaluation
	case PhaseEvaluation:
		return PhaseResultDisplay
	default:
		return PhaseThemeAnnouncement
	}
}

// Sides. The human-driven side is always 0.
const (
	SidePlayer = 0
	SideEnemy  = 1
)

type Attribute int

const (
	AttributeNone Attribute = iota
	AttributeForgiveness
	AttributeAnger
	AttributeAnxiety
	AttributeRejection
	AttributeLoss
	AttributeHope
)

// Attributes lists every card attribute in declaration order.
var Attributes = []Attribute{
	AttributeForgiveness,
	AttributeAnger,
	AttributeAnxiety,
	AttributeRejection,
	AttributeLoss,
	AttributeHope,
}

func (a Attribute) String() string {
	switch a {
	case AttributeForgiveness:
		return "Forgiveness"
	case AttributeAnger:
		return "Anger"
	case AttributeAnxiety:
		return "Anxiety"
	case AttributeRejection:
		return "Rejection"
	case AttributeLoss:
		return "Loss"
	case AttributeHope:
		return "Hope"
	default:
		return "None"
	}
}

// ParseAttribute parses an attribute name, ignoring case.
func ParseAttribute(s string) (Attribute, error) {
	for _, a := range Attributes {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return AttributeNone, fmt.Errorf("unknown attribute %q", s)
}

type PlayStyle int

const (
	PlayStyleHesitation PlayStyle = iota
	PlayStyleImpulse
	PlayStyleConviction
)

// PlayStyles lists every play style in declaration order.
var PlayStyles = []PlayStyle{PlayStyleHesitation, PlayStyleImpulse, PlayStyleConviction}

func (s PlayStyle) String() string {
	switch s {
	case PlayStyleHesitation:
		return "Hesitation"
	case PlayStyleImpulse:
		return "Impulse"
	case PlayStyleConviction:
		return "Conviction"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the declared play styles.
func (s PlayStyle) Valid() bool {
	return s >= PlayStyleHesitation && s <= PlayStyleConviction
}

// ScoreMultiplier is the per-style score factor used when play style
// modifiers are enabled.
func (s PlayStyle) ScoreMultiplier() float64 {
	switch s {
	case PlayStyleHesitation:
		return 0.8
	case PlayStyleConviction:
		return 1.3
	default:
		return 1.0
	}
}

// CollapseMultiplier is the per-style collapse chance factor used when
// play style modifiers are enabled.
func (s PlayStyle) CollapseMultiplier() float64 {
	switch s {
	case PlayStyleHesitation:
		return 0.5
	case PlayStyleConviction:
		return 1.8
	default:
		return 1.0
	}
}

// ParsePlayStyle accepts a style name (any case) or its first letter.
func ParsePlayStyle(s string) (PlayStyle, error) {
	s = strings.TrimSpace(s)
	for _, ps := range PlayStyles {
		name := ps.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:1]) {
			return ps, nil
		}
	}
	return PlayStyleImpulse, fmt.Errorf("unknown play style %q", s)
}

type ConditionType int

const (
	ConditionPlayStyleWin ConditionType = iota
	ConditionPlayStyleLose
	ConditionTotalWin
	ConditionCollapseCount
	ConditionConsecutiveWin
	ConditionTotalUse
	ConditionExpr // custom boolean expression over card stats
)

func (c ConditionType) String() string {
	switch c {
	case ConditionPlayStyleWin:
		return "PlayStyleWin"
	case ConditionPlayStyleLose:
		return "PlayStyleLose"
	case ConditionTotalWin:
		return "TotalWin"
	case ConditionCollapseCount:
		return "CollapseCount"
	case ConditionConsecutiveWin:
		return "ConsecutiveWin"
	case ConditionTotalUse:
		return "TotalUse"
	case ConditionExpr:
		return "Expr"
	default:
		return "Unknown"
	}
}

// ParseConditionType accepts both snake_case ("play_style_win") and
// CamelCase ("PlayStyleWin") spellings.
func ParseConditionType(s string) (ConditionType, error) {
	norm := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	for c := ConditionPlayStyleWin; c <= ConditionExpr; c++ {
		if norm == strings.ToLower(c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown condition type %q", s)
}

// Outcome is the result of a single round.
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomePlayerWin
	OutcomeEnemyWin
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayerWin:
		return "Player wins"
	case OutcomeEnemyWin:
		return "Enemy wins"
	default:
		return "Draw"
	}
}

// Winner returns the winning side, or -1 for a draw.
func (o Outcome) Winner() int {
	switch o {
	case OutcomePlayerWin:
		return SidePlayer
	case OutcomeEnemyWin:
		return SideEnemy
	default:
		return -1
	}
}
