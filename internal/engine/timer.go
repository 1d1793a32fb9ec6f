package engine

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/lazypower/kaizen/internal/logger"
)

// DefaultSyncSchedule runs the daily sync five minutes past midnight.
const DefaultSyncSchedule = "5 0 * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule reports whether spec is a standard 5-field cron
// expression.
func ValidateSchedule(spec string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("sync schedule %q: %w", spec, err)
	}
	return nil
}

// StartTimer syncs daily progress once now and then on spec, evaluated in
// the engine's location.
func (e *Engine) StartTimer(spec string) error {
	if spec == "" {
		spec = DefaultSyncSchedule
	}
	c := cron.New(cron.WithLocation(e.loc), cron.WithParser(cronParser))
	if _, err := c.AddFunc(spec, e.runSync); err != nil {
		return fmt.Errorf("sync schedule %q: %w", spec, err)
	}

	e.runSync()

	e.mu.Lock()
	if e.cron != nil {
		e.cron.Stop()
	}
	e.cron = c
	e.mu.Unlock()
	c.Start()
	return nil
}

func (e *Engine) runSync() {
	if _, err := e.SyncDailyProgress(); err != nil {
		logger.Error("engine: daily progress sync failed", "error", err)
	}
}

// Stop shuts down the sync timer and waits for a running sync to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	c := e.cron
	e.cron = nil
	e.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
