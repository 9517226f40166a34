// Package poll drives the refresh cycle with linear backoff on failure.
package poll

import (
	"context"
	"errors"
	"time"

	"schedboard/internal/config"
	"schedboard/internal/display"
	appLog "schedboard/internal/log"
	"schedboard/internal/render"
)

// State is the refresh interval. Current always lies in [Initial, Max].
type State struct {
	Current time.Duration
	Initial time.Duration
	Max     time.Duration
}

// NewState starts at the initial interval. ceiling is raised to initial if
// lower.
func NewState(initial, ceiling time.Duration) State {
	if ceiling < initial {
		ceiling = initial
	}
	return State{Current: initial, Initial: initial, Max: ceiling}
}

// Succeed resets the interval.
func (s *State) Succeed() {
	s.Current = s.Initial
}

// Fail grows the interval by one step, capped at Max.
func (s *State) Fail() {
	s.Current = min(s.Current+s.Initial, s.Max)
}

// Renderer produces one board. *render.Orchestrator satisfies it.
type Renderer interface {
	Render(ctx context.Context) (render.Output, error)
}

// Loop owns the refresh cycle. Only one cycle is in flight at a time.
type Loop struct {
	Renderer Renderer
	Surface  display.Surface
	State    State

	// First is the delay before the first cycle; zero means State.Current.
	First time.Duration

	// AfterSuccess, when set, runs after a successful cycle has been shown.
	AfterSuccess func(ctx context.Context, out render.Output)

	after func(time.Duration) <-chan time.Time
}

// Cycle renders once and returns the delay before the next cycle. Fetch and
// render failures are logged and absorbed into the backoff; the returned
// error is non-nil only for configuration errors or a cancelled ctx.
func (l *Loop) Cycle(ctx context.Context) (time.Duration, error) {
	out, err := l.Renderer.Render(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if errors.Is(err, config.ErrInvalid) {
			return 0, err
		}
		l.State.Fail()
		appLog.Error("refresh failed", err, "next_in", l.State.Current.String())
		l.Surface.ShowInterval(l.State.Current)
		return l.State.Current, nil
	}

	l.Surface.ShowContent(out.HTML, out.Items)
	l.State.Succeed()
	l.Surface.ShowInterval(l.State.Current)
	appLog.Debug("refresh ok", "items", len(out.Items), "next_in", l.State.Current.String())

	if l.AfterSuccess != nil {
		l.AfterSuccess(ctx, out)
	}
	return l.State.Current, nil
}

// Run waits, cycles, and repeats until ctx is cancelled (nil is returned)
// or a cycle hits a configuration error (that error is returned).
func (l *Loop) Run(ctx context.Context) error {
	after := l.after
	if after == nil {
		after = time.After
	}

	delay := l.First
	if delay <= 0 {
		delay = l.State.Current
	}
	l.Surface.ShowInterval(delay)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-after(delay):
		}

		next, err := l.Cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		delay = next
	}
}
