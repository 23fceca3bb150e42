package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewThemeEvent(1, "Waiting Room"))
	l.Log(NewDrawEvent(1, "ThemeAnnouncement", 0, "Quiet Apology"))
	l.Log(NewDrawEvent(1, "ThemeAnnouncement", 1, "Clenched Fist"))

	if got := len(l.Events()); got != 3 {
		t.Fatalf("expected 3 events, got %d", got)
	}
	draws := l.EventsOfType(EventDraw)
	if len(draws) != 2 || draws[1].Card != "Clenched Fist" {
		t.Fatalf("unexpected draw events %v", draws)
	}
	if last := l.LastEvent(); last.Seq != 3 || last.Player != 1 {
		t.Errorf("unexpected last event %+v", last)
	}
	if (&MemoryLogger{}).LastEvent().Seq != 0 {
		t.Error("empty logger should return a zero event")
	}
}

func TestFormatEvent(t *testing.T) {
	line := FormatEvent(NewRoundWinEvent(3, 1, 4.5, 6))
	if !strings.HasPrefix(line, "R3  ResultDisplay") {
		t.Errorf("unexpected prefix: %q", line)
	}
	if !strings.HasSuffix(line, "| Enemy wins the round (4.50 vs 6.00)") {
		t.Errorf("unexpected details: %q", line)
	}

	all := FormatAll([]GameEvent{NewThemeEvent(1, "A"), NewThemeEvent(2, "B")})
	if strings.Count(all, "\n") != 2 {
		t.Errorf("expected two lines, got %q", all)
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewGameOverEvent(5, "ResultDisplay", -1, "round limit"))

	if !strings.Contains(buf.String(), "Game over: draw (round limit)") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if len(l.Events()) != 1 {
		t.Error("TextLogger should also keep events")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	l.Log(NewCollapseEvent(2, 0, "Hollow Smile", 0.4))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if entry["type"] != "Collapse" || entry["side"] != "Player" || entry["card"] != "Hollow Smile" {
		t.Errorf("unexpected fields %v", entry)
	}
	if entry["round"] != float64(2) || entry["seq"] != float64(1) {
		t.Errorf("unexpected counters %v", entry)
	}
	if entry["level"] != "debug" {
		t.Errorf("collapse should log at debug, got %v", entry["level"])
	}

	buf.Reset()
	l.Log(NewRoundDrawEvent(3, 2))
	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Errorf("round outcome should log at info: %q", buf.String())
	}
	if strings.Contains(buf.String(), `"side"`) {
		t.Errorf("events without a side should omit it: %q", buf.String())
	}
}
