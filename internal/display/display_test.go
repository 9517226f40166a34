package display

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"schedboard/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBoardShowContent(t *testing.T) {
	b := NewBoard()
	stamp := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return stamp }

	items := []model.Item{{Title: "Chess"}}
	b.ShowContent("<main></main>", items)
	b.ShowInterval(30 * time.Second)
	items[0].Title = "mutated"

	s := b.Snapshot()
	assert.Equal(t, "<main></main>", s.HTML)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Chess", s.Items[0].Title)
	assert.Equal(t, 30*time.Second, s.Interval)
	assert.Equal(t, stamp, s.LastSuccess)
	assert.EqualValues(t, 1, s.Version)

	b.ShowContent("<main>2</main>", nil)
	assert.EqualValues(t, 2, b.Snapshot().Version)
}

func TestBoardConcurrentAccess(t *testing.T) {
	b := NewBoard()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.ShowContent("x", nil)
			b.ShowClock("now")
		}()
		go func() {
			defer wg.Done()
			_ = b.Snapshot()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 8, b.Snapshot().Version)
}

func TestClockTick(t *testing.T) {
	b := NewBoard()
	c := NewClock(b, time.UTC)
	c.now = func() time.Time { return time.Date(2025, 1, 6, 14, 5, 9, 0, time.UTC) }

	c.Tick()
	assert.Equal(t, "Monday, January 6th 2025, 2:05:09 pm", b.Snapshot().Clock)
}

func TestClockStartStop(t *testing.T) {
	b := NewBoard()
	c := NewClock(b, time.UTC)
	require.NoError(t, c.Start())
	assert.NotEmpty(t, b.Snapshot().Clock, "first line is shown without waiting a tick")
	c.Stop()
}
