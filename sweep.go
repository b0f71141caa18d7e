package main

import (
	"context"
	"time"
)

// cleanupIdleSessions removes sessions idle longer than maxAge and cancels
// their pending reveal timers. It returns the number removed.
func (app *App) cleanupIdleSessions(now time.Time, maxAge time.Duration) int {
	cutoff := now.Add(-maxAge)

	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()

	removed := 0
	for id, ctrl := range app.Sessions {
		if ctrl.LastActive().Before(cutoff) {
			ctrl.Close()
			delete(app.Sessions, id)
			removed++
		}
	}
	app.reportSessions()
	if app.Metrics != nil {
		app.Metrics.AddSwept(removed)
	}
	if removed > 0 {
		logInfo("Session cleanup completed: removed %d idle sessions, %d remaining", removed, len(app.Sessions))
	}
	return removed
}

// runSweeper calls cleanupIdleSessions every SweepInterval until ctx ends.
func (app *App) runSweeper(ctx context.Context) error {
	interval := app.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logInfo("Session sweeper running every %v (timeout %v)", interval, app.SessionTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			app.cleanupIdleSessions(now, app.SessionTimeout)
		}
	}
}
