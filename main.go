package main

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"luckycard/internal/config"
	"luckycard/internal/deck"
	"luckycard/internal/logx"
	"luckycard/internal/metrics"
	"luckycard/internal/prize"
	"luckycard/internal/rng"
	"luckycard/internal/scene"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	logger := logx.New(logx.Config{
		Production: isProduction,
		Level:      getEnvString("LOG_LEVEL", "info"),
		App:        AppName,
		Dir:        getEnvString("LOG_DIR", "logs"),
		File:       getEnvBool("LOG_FILE", false),
	})
	defer func() { _ = logger.Sync() }()
	setLogger(logger)

	logInfo("Starting luckycard in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	game, err := loadGameConfig(getEnvString("GAME_CONFIG", "data/game.yaml"))
	if err != nil {
		logFatal("Failed to load game config: %v", err)
	}
	logInfo("Loaded %d prizes (%d winning), reveal %v", len(game.Prizes.Labels), len(game.Prizes.Winning()), game.RevealDuration())

	app := newApp(isProduction, game, logger)
	router := app.setupRouter()

	if err := app.serve(router); err != nil {
		logFatal("Server failed: %v", err)
	}
	logInfo("Server shutdown complete")
}

// loadGameConfig reads the game file, falling back to the built-in table
// when the file does not exist.
func loadGameConfig(path string) (config.Game, error) {
	game, err := config.LoadGame(path)
	if errors.Is(err, fs.ErrNotExist) {
		logWarn("Game config %s not found, using built-in defaults", path)
		return config.DefaultGame(), nil
	}
	return game, err
}

// newApp wires the resolver, metrics and session store from the environment.
func newApp(isProduction bool, game config.Game, logger *zap.Logger) *App {
	src := rng.Crypto{}
	return &App{
		IsProduction:   isProduction,
		StartTime:      time.Now(),
		CookieMaxAge:   getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", 2*time.Hour),
		SweepInterval:  getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		StaticCacheAge: getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		Game:      game,
		Resolver:  prize.NewResolver(game.Prizes, src, logger),
		Cards:     deck.Standard(),
		Source:    src,
		Scheduler: scene.ClockScheduler{},
		Metrics:   metrics.New(),
		Logger:    logger,

		Sessions:   make(map[string]*scene.Controller),
		LimiterMap: make(map[string]*rate.Limiter),
	}
}

// setupRouter registers middleware, templates and routes.
func (app *App) setupRouter() *gin.Engine {
	if app.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts", RouteMetrics})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(requestIDMiddleware())
	router.Use(app.cacheMiddleware())

	router.SetFuncMap(template.FuncMap{
		"hasPrefix": strings.HasPrefix,
		"join":      strings.Join,
		"seq":       func(n int) []int { return lo.RangeFrom(1, n) },
	})

	if app.IsProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		router.LoadHTMLGlob("dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		logInfo("Serving development assets from source directories")
		router.LoadHTMLGlob("templates/*.html")
		router.Static("/static", "./static")
	}

	limited := app.rateLimitMiddleware()
	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteState, app.stateHandler)
	router.POST(RouteStart, limited, app.startHandler)
	router.POST(RouteSelect, limited, app.selectHandler)
	router.POST(RouteClaim, limited, app.claimHandler)
	router.POST(RouteRestart, limited, app.restartHandler)
	router.GET(RouteHealthz, app.healthzHandler)
	router.GET(RouteMetrics, app.metricsHandler())

	return router
}

// serve runs the HTTP server and the session sweeper until SIGINT/SIGTERM.
func (app *App) serve(router *gin.Engine) error {
	port := getEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logInfo("Server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return app.runSweeper(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		app.closeSessions()
		return err
	})

	return g.Wait()
}

// closeSessions cancels every pending reveal timer.
func (app *App) closeSessions() {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	for _, ctrl := range app.Sessions {
		ctrl.Close()
	}
	logInfo("Closed %d sessions", len(app.Sessions))
}
