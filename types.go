package main

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"luckycard/internal/config"
	"luckycard/internal/deck"
	"luckycard/internal/metrics"
	"luckycard/internal/prize"
	"luckycard/internal/rng"
	"luckycard/internal/scene"
)

// App holds server configuration and every live session.
type App struct {
	IsProduction   bool
	StartTime      time.Time
	CookieMaxAge   time.Duration
	SessionTimeout time.Duration
	SweepInterval  time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	Game      config.Game
	Resolver  *prize.Resolver
	Cards     []deck.Card
	Source    rng.Source
	Scheduler scene.Scheduler
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	Sessions     map[string]*scene.Controller
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex
}
