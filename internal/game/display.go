package game

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Display is the presentation collaborator. Each call resolves once the
// item has been shown for d, or early with ctx's error.
type Display interface {
	ShowTheme(ctx context.Context, theme *Theme, d time.Duration) error
	Announce(ctx context.Context, message string, d time.Duration) error
}

// Wait blocks for d or until ctx is done. A non-positive d only checks ctx.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PacedDisplay writes announcements to W (if set) and waits out each delay.
type PacedDisplay struct {
	W io.Writer
}

func (p PacedDisplay) ShowTheme(ctx context.Context, theme *Theme, d time.Duration) error {
	if p.W != nil {
		fmt.Fprintf(p.W, "\n  ~ %s ~\n\n", theme.Title)
	}
	return Wait(ctx, d)
}

func (p PacedDisplay) Announce(ctx context.Context, message string, d time.Duration) error {
	if p.W != nil {
		fmt.Fprintf(p.W, "  %s\n", message)
	}
	return Wait(ctx, d)
}
