package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"luckycard/internal/scene"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || !isValidSessionID(sessionID) {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// isValidSessionID reports whether id is a canonical UUID string.
func isValidSessionID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// getController retrieves or creates the scene controller for a session.
func (app *App) getController(sessionID string) *scene.Controller {
	app.SessionMutex.RLock()
	ctrl, exists := app.Sessions[sessionID]
	app.SessionMutex.RUnlock()
	if exists {
		return ctrl
	}

	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	// Another request may have created it between the two locks.
	if ctrl, exists = app.Sessions[sessionID]; exists {
		return ctrl
	}
	ctrl = app.newController()
	app.Sessions[sessionID] = ctrl
	app.reportSessions()
	logInfo("Created new playthrough for session: %s", sessionID)
	return ctrl
}

// newController builds a controller wired to the app's resolver and metrics.
func (app *App) newController() *scene.Controller {
	cfg := scene.Config{
		Shuffle:   app.Game.Shuffle,
		Hold:      app.Game.Hold,
		Scheduler: app.Scheduler,
		Logger:    app.Logger,
		Cards:     app.Cards,
		Source:    app.Source,
	}
	if app.Metrics != nil {
		cfg.Observer = app.Metrics
	}
	return scene.NewController(app.Resolver, cfg)
}

// reportSessions publishes the session count. Callers hold SessionMutex.
func (app *App) reportSessions() {
	if app.Metrics != nil {
		app.Metrics.SetActiveSessions(len(app.Sessions))
	}
}

func (app *App) sessionCount() int {
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	return len(app.Sessions)
}
