package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- StructuredLogger: one zerolog entry per event ---

type StructuredLogger struct {
	MemoryLogger
	zl zerolog.Logger
}

// NewStructuredLogger writes every event through zl at debug level, except
// round outcomes and game over which are logged at info.
func NewStructuredLogger(zl zerolog.Logger) *StructuredLogger {
	return &StructuredLogger{zl: zl}
}

func (l *StructuredLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	ev := l.zl.Debug()
	switch event.Type {
	case EventRoundWin, EventRoundDraw, EventGameOver, EventEvolve, EventDegrade:
		ev = l.zl.Info()
	}
	ev = ev.Int("seq", l.seq).
		Int("round", event.Round).
		Str("phase", event.Phase).
		Str("type", event.Type.String())
	if event.Player >= 0 {
		ev = ev.Str("side", PlayerName(event.Player))
	}
	if event.Card != "" {
		ev = ev.Str("card", event.Card)
	}
	ev.Msg(event.Details)
}

// --- Formatting ---

// PlayerName returns "Player" or "Enemy" for display.
func PlayerName(p int) string {
	switch p {
	case 0:
		return "Player"
	case 1:
		return "Enemy"
	default:
		return "-"
	}
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 18 chars for alignment
	for len(phase) < 18 {
		phase += " "
	}

	return fmt.Sprintf("R%-2d %s| %s", e.Round, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(round int, phase string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  -1,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewRoundEvent(round int, match int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ThemeAnnouncement",
		Player:  -1,
		Type:    EventNewRound,
		Details: fmt.Sprintf("=== Round %d (match %d) ===", round, match),
	}
}

func NewThemeEvent(round int, title string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ThemeAnnouncement",
		Player:  -1,
		Type:    EventTheme,
		Details: fmt.Sprintf("Theme: %s", title),
	}
}

func NewDrawEvent(round int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("%s draws %s", PlayerName(player), cardName),
	}
}

func NewShuffleEvent(round int, phase string, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventShuffle,
		Details: fmt.Sprintf("%s shuffled their deck", PlayerName(player)),
	}
}

func NewReturnToDeckEvent(round int, phase string, player int, count int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventReturnToDeck,
		Details: fmt.Sprintf("%s returns %d card(s) to the deck", PlayerName(player), count),
	}
}

func NewMoveEvent(round int, phase string, player int, cardName string, style string, bet int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventMove,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays %s with %s, bet %d", PlayerName(player), cardName, style, bet),
	}
}

func NewScoreEvent(round int, player int, cardName string, score float64) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "Evaluation",
		Player:  player,
		Type:    EventScore,
		Card:    cardName,
		Details: fmt.Sprintf("%s scores %.2f with %s", PlayerName(player), score, cardName),
	}
}

func NewRoundWinEvent(round int, winner int, playerScore, enemyScore float64) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ResultDisplay",
		Player:  winner,
		Type:    EventRoundWin,
		Details: fmt.Sprintf("%s wins the round (%.2f vs %.2f)", PlayerName(winner), playerScore, enemyScore),
	}
}

func NewRoundDrawEvent(round int, score float64) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ResultDisplay",
		Player:  -1,
		Type:    EventRoundDraw,
		Details: fmt.Sprintf("Round is a draw (%.2f each)", score),
	}
}

func NewCollapseEvent(round int, player int, cardName string, chance float64) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ResultDisplay",
		Player:  player,
		Type:    EventCollapse,
		Card:    cardName,
		Details: fmt.Sprintf("%s collapses (chance %.0f%%)", cardName, chance*100),
	}
}

func NewMentalPowerEvent(round int, phase string, player int, oldMP, newMP int, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  player,
		Type:    EventMentalPower,
		Details: fmt.Sprintf("%s mental power: %d → %d (%s)", PlayerName(player), oldMP, newMP, reason),
	}
}

func NewEvolveEvent(round int, player int, from, to string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ResultDisplay",
		Player:  player,
		Type:    EventEvolve,
		Card:    to,
		Details: fmt.Sprintf("%s's %s evolves into %s", PlayerName(player), from, to),
	}
}

func NewDegradeEvent(round int, player int, from, to string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ResultDisplay",
		Player:  player,
		Type:    EventDegrade,
		Card:    to,
		Details: fmt.Sprintf("%s's %s degrades into %s", PlayerName(player), from, to),
	}
}

func NewMatchEndEvent(round int, match int, playerWins, enemyWins int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "ResultDisplay",
		Player:  -1,
		Type:    EventMatchEnd,
		Details: fmt.Sprintf("Match %d complete (rounds won: Player %d, Enemy %d)", match, playerWins, enemyWins),
	}
}

func NewGameOverEvent(round int, phase string, winner int, reason string) GameEvent {
	details := fmt.Sprintf("Game over: draw (%s)", reason)
	if winner >= 0 {
		details = fmt.Sprintf("Game over: %s wins (%s)", PlayerName(winner), reason)
	}
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  winner,
		Type:    EventGameOver,
		Details: details,
	}
}

func NewCancelledEvent(round int, phase string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  -1,
		Type:    EventCancelled,
		Details: fmt.Sprintf("Session cancelled during %s", phase),
	}
}
