package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"schedboard/internal/config"
	"schedboard/internal/model"
	"schedboard/internal/render"
	"schedboard/internal/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type step struct {
	out render.Output
	err error
}

// scriptedRenderer replays steps; onExhausted runs when they run out.
type scriptedRenderer struct {
	steps       []step
	calls       int
	onExhausted func() error
}

func (r *scriptedRenderer) Render(ctx context.Context) (render.Output, error) {
	r.calls++
	if len(r.steps) == 0 {
		return render.Output{}, r.onExhausted()
	}
	s := r.steps[0]
	r.steps = r.steps[1:]
	return s.out, s.err
}

type recordingSurface struct {
	html      []string
	intervals []time.Duration
}

func (s *recordingSurface) ShowContent(html string, _ []model.Item) { s.html = append(s.html, html) }
func (s *recordingSurface) ShowInterval(d time.Duration)            { s.intervals = append(s.intervals, d) }
func (s *recordingSurface) ShowClock(string)                       {}

func fetchErr() error {
	return &source.FetchError{Source: "shifts", Kind: source.KindTransport, Err: errors.New("connection refused")}
}

func immediate(delays *[]time.Duration) func(time.Duration) <-chan time.Time {
	return func(d time.Duration) <-chan time.Time {
		*delays = append(*delays, d)
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
}

func TestStateBackoff(t *testing.T) {
	s := NewState(5*time.Second, 300*time.Second)
	var seen []time.Duration
	seen = append(seen, s.Current)
	for i := 0; i < 3; i++ {
		s.Fail()
		seen = append(seen, s.Current)
	}
	s.Succeed()
	seen = append(seen, s.Current)

	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second, 20 * time.Second, 5 * time.Second}, seen)
}

func TestStateCapsAtMax(t *testing.T) {
	s := NewState(30*time.Second, 60*time.Second)
	prev := s.Current
	for i := 0; i < 5; i++ {
		s.Fail()
		assert.GreaterOrEqual(t, s.Current, prev)
		assert.LessOrEqual(t, s.Current, s.Max)
		prev = s.Current
	}
	assert.Equal(t, 60*time.Second, s.Current)

	odd := NewState(time.Minute, time.Second)
	assert.Equal(t, time.Minute, odd.Max)
}

func TestRunBacksOffAndResets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedRenderer{
		steps: []step{
			{err: fetchErr()},
			{err: fetchErr()},
			{err: fetchErr()},
			{out: render.Output{HTML: "<main>ok</main>"}},
		},
		onExhausted: func() error {
			cancel()
			return ctx.Err()
		},
	}
	surface := &recordingSurface{}
	var delays []time.Duration

	l := &Loop{
		Renderer: r,
		Surface:  surface,
		State:    NewState(5*time.Second, 300*time.Second),
		after:    immediate(&delays),
	}

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, 5, r.calls)
	assert.Equal(t, []time.Duration{
		5 * time.Second, 10 * time.Second, 15 * time.Second, 20 * time.Second, 5 * time.Second,
	}, delays)
	assert.Equal(t, []string{"<main>ok</main>"}, surface.html)
	assert.Equal(t, 5*time.Second, surface.intervals[len(surface.intervals)-1])
}

func TestRunUsesFirstDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedRenderer{onExhausted: func() error {
		cancel()
		return ctx.Err()
	}}
	var delays []time.Duration
	surface := &recordingSurface{}
	l := &Loop{
		Renderer: r,
		Surface:  surface,
		State:    NewState(30*time.Second, 300*time.Second),
		First:    5 * time.Second,
		after:    immediate(&delays),
	}
	require.NoError(t, l.Run(ctx))
	assert.Equal(t, []time.Duration{5 * time.Second}, delays)
	require.NotEmpty(t, surface.intervals)
	assert.Equal(t, 5*time.Second, surface.intervals[0], "footer shows the pending first delay")
}

func TestRunStopsOnConfigError(t *testing.T) {
	r := &scriptedRenderer{steps: []step{
		{err: fetchErr()},
		{err: config.Invalidf("locations: no icon mapping for location id %q", "9")},
	}}
	var delays []time.Duration
	l := &Loop{
		Renderer: r,
		Surface:  &recordingSurface{},
		State:    NewState(5*time.Second, 300*time.Second),
		after:    immediate(&delays),
	}

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Equal(t, 2, r.calls)
}

func TestRunReturnsOnCancelWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		Renderer: &scriptedRenderer{},
		Surface:  &recordingSurface{},
		State:    NewState(time.Hour, time.Hour),
	}

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestCycleRunsAfterSuccess(t *testing.T) {
	var got render.Output
	l := &Loop{
		Renderer: &scriptedRenderer{steps: []step{{out: render.Output{HTML: "x", Items: []model.Item{{Title: "a"}}}}}},
		Surface:  &recordingSurface{},
		State:    NewState(5*time.Second, 10*time.Second),
		AfterSuccess: func(_ context.Context, out render.Output) {
			got = out
		},
	}
	l.State.Fail()

	next, err := l.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, next)
	assert.Equal(t, "x", got.HTML)
}
