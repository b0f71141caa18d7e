package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"luckycard/internal/scene"
	"luckycard/internal/types"
)

// currentView builds the JSON view for a controller, tagging it with the
// notice for a rejected trigger.
func currentView(ctrl *scene.Controller, rejected error) types.SceneView {
	st, v, err := ctrl.Snapshot()
	if err != nil {
		logWarn("Scene %s has no view: %v", st.Scene, err)
	}
	view := buildSceneView(st, v)
	view.Ignored = ignoredNotice(rejected)
	return view
}

// respond writes the current view. Rejected triggers are no-ops and still
// answer 200 with the unchanged state.
func (app *App) respond(c *gin.Context, ctrl *scene.Controller, trigger scene.Trigger, err error) {
	if err != nil {
		logInfo("Session ignored %s: %v", trigger, err)
		c.Header(HeaderTriggerIgnored, string(trigger))
	}
	c.JSON(http.StatusOK, currentView(ctrl, err))
}

// homeHandler renders the page shell with the session's current scene.
func (app *App) homeHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	ctrl := app.getController(sessionID)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":    "카드를 골라 경품을 받으세요",
		"state":    currentView(ctrl, nil),
		"revealMs": app.Game.RevealDuration().Milliseconds(),
	})
}

// stateHandler returns the current scene as JSON. The presentation layer polls
// it while the reveal timer runs.
func (app *App) stateHandler(c *gin.Context) {
	ctrl := app.getController(app.getOrCreateSession(c))
	c.JSON(http.StatusOK, currentView(ctrl, nil))
}

// startHandler fires the intro's start trigger.
func (app *App) startHandler(c *gin.Context) {
	ctrl := app.getController(app.getOrCreateSession(c))
	err := ctrl.Start()
	app.respond(c, ctrl, scene.TriggerStart, err)
}

// selectHandler fires card selection with the posted card number.
func (app *App) selectHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	ctrl := app.getController(sessionID)

	card, err := parseCard(c.PostForm("card"))
	if err != nil {
		app.respond(c, ctrl, scene.TriggerSelect, scene.ErrInvalidCard)
		return
	}

	res, err := ctrl.Select(c.Request.Context(), card)
	if err == nil {
		logInfo("Session %s picked card %d: %s (win=%v)", sessionID, res.CardNumber, res.Prize, res.IsWin)
	}
	app.respond(c, ctrl, scene.TriggerSelect, err)
}

// claimHandler moves a winning result to the coupon screen.
func (app *App) claimHandler(c *gin.Context) {
	ctrl := app.getController(app.getOrCreateSession(c))
	err := ctrl.Claim()
	app.respond(c, ctrl, scene.TriggerClaim, err)
}

// restartHandler returns the session to the intro screen.
func (app *App) restartHandler(c *gin.Context) {
	ctrl := app.getController(app.getOrCreateSession(c))
	ctrl.Restart()
	app.respond(c, ctrl, scene.TriggerRestart, nil)
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"prizes_loaded":   len(app.Game.Prizes.Labels),
		"reveal_ms":       app.Game.RevealDuration().Milliseconds(),
		"active_sessions": app.sessionCount(),
		"uptime":          formatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// metricsHandler serves the Prometheus registry.
func (app *App) metricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(app.Metrics.Registry, promhttp.HandlerOpts{}))
}

// parseCard reads a card number from form input.
func parseCard(input string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(input))
}
