package display

import (
	"time"

	"github.com/robfig/cron/v3"

	appLog "schedboard/internal/log"
	"schedboard/internal/model"
)

// Clock pushes the formatted wall-clock line to a Surface once a second.
type Clock struct {
	surface Surface
	loc     *time.Location
	now     func() time.Time
	cron    *cron.Cron
}

// NewClock creates a stopped clock rendering times in loc.
func NewClock(surface Surface, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{
		surface: surface,
		loc:     loc,
		now:     time.Now,
		cron:    cron.New(cron.WithLocation(loc)),
	}
}

// Start shows the current time immediately and then ticks every second.
func (c *Clock) Start() error {
	c.Tick()
	if _, err := c.cron.AddFunc("@every 1s", c.Tick); err != nil {
		return err
	}
	c.cron.Start()
	appLog.Debug("clock started", "timezone", c.loc.String())
	return nil
}

// Stop halts the ticker and waits for a running tick to finish.
func (c *Clock) Stop() {
	<-c.cron.Stop().Done()
}

// Tick writes one clock line.
func (c *Clock) Tick() {
	c.surface.ShowClock(model.ClockLine(c.now().In(c.loc)))
}
