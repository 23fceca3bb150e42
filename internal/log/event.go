package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewRound
	EventTheme
	EventDraw
	EventShuffle
	EventReturnToDeck
	EventMove
	EventScore
	EventRoundWin
	EventRoundDraw
	EventCollapse
	EventMentalPower
	EventEvolve
	EventDegrade
	EventMatchEnd
	EventGameOver
	EventCancelled
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewRound:
		return "NewRound"
	case EventTheme:
		return "Theme"
	case EventDraw:
		return "Draw"
	case EventShuffle:
		return "Shuffle"
	case EventReturnToDeck:
		return "ReturnToDeck"
	case EventMove:
		return "Move"
	case EventScore:
		return "Score"
	case EventRoundWin:
		return "RoundWin"
	case EventRoundDraw:
		return "RoundDraw"
	case EventCollapse:
		return "Collapse"
	case EventMentalPower:
		return "MentalPower"
	case EventEvolve:
		return "Evolve"
	case EventDegrade:
		return "Degrade"
	case EventMatchEnd:
		return "MatchEnd"
	case EventGameOver:
		return "GameOver"
	case EventCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a session.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Round   int       // which round (1-based, 0 before the first round)
	Phase   string    // current phase name (e.g. "Evaluation")
	Player  int       // acting side (0 = player, 1 = enemy, -1 = none)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
