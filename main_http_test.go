package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"luckycard/internal/config"
	"luckycard/internal/deck"
	"luckycard/internal/metrics"
	"luckycard/internal/prize"
	"luckycard/internal/scene"
	"luckycard/internal/types"
)

type fixedSource struct{ val int }

func (s fixedSource) IntN(n int) (int, error) { return s.val % n, nil }

// manualScheduler holds reveal callbacks until the test fires them.
type manualScheduler struct {
	mu    sync.Mutex
	funcs []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) scene.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs = append(s.funcs, f)
	return noopTimer{}
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	funcs := s.funcs
	s.funcs = nil
	s.mu.Unlock()
	for _, f := range funcs {
		f()
	}
}

// newTestApp returns an app whose every draw lands on prizeIndex.
func newTestApp(prizeIndex int) (*App, *manualScheduler) {
	gin.SetMode(gin.TestMode)
	sched := &manualScheduler{}
	game := config.DefaultGame()
	return &App{
		StartTime:      time.Now(),
		CookieMaxAge:   time.Hour,
		SessionTimeout: time.Hour,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		Game:           game,
		Resolver:       prize.NewResolver(game.Prizes, fixedSource{val: prizeIndex}, nil),
		Cards:          deck.Standard(),
		Source:         fixedSource{val: 0},
		Scheduler:      sched,
		Metrics:        metrics.New(),
		Sessions:       make(map[string]*scene.Controller),
		LimiterMap:     make(map[string]*rate.Limiter),
	}, sched
}

// client replays the session cookie across requests.
type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newClient(t *testing.T, app *App) *client {
	return &client{t: t, router: app.setupRouter()}
}

func (cl *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	cl.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, _ := http.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) view(method, path string, form url.Values) types.SceneView {
	cl.t.Helper()
	w := cl.do(method, path, form)
	if w.Code != http.StatusOK {
		cl.t.Fatalf("%s %s returned status %d, want 200", method, path, w.Code)
	}
	var v types.SceneView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		cl.t.Fatalf("%s %s: failed to decode view: %v", method, path, err)
	}
	return v
}

// TestHomeHandler checks home page returns 200 and sets the session cookie
func TestHomeHandler(t *testing.T) {
	app, _ := newTestApp(0)
	cl := newClient(t, app)
	w := cl.do("GET", RouteHome, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / returned status %d, want 200", w.Code)
	}
	if cl.cookie == nil {
		t.Error("Expected session_id cookie to be set")
	}
	if !strings.Contains(w.Body.String(), `data-action="start"`) {
		t.Error("Expected intro start button in page")
	}
}

func TestStateHandler_Intro(t *testing.T) {
	app, _ := newTestApp(0)
	v := newClient(t, app).view("GET", RouteState, nil)
	if v.Scene != 1 || v.Name != "intro" || v.Result != nil {
		t.Errorf("initial view = %+v, want intro without result", v)
	}
	if len(v.Actions) != 1 || v.Actions[0] != "start" {
		t.Errorf("intro actions = %v, want [start]", v.Actions)
	}
}

// TestScenarioLoss plays start, select(4), reveal, restart with the no-win entry.
func TestScenarioLoss(t *testing.T) {
	app, sched := newTestApp(7)
	cl := newClient(t, app)

	v := cl.view("POST", RouteStart, nil)
	if v.Name != "card_select" || len(v.Hand) != scene.HandSize {
		t.Fatalf("after start: %+v", v)
	}

	v = cl.view("POST", RouteSelect, url.Values{"card": {"4"}})
	if v.Name != "reveal" || v.Result == nil || v.Result.CardNumber != 4 {
		t.Fatalf("after select: %+v", v)
	}
	if v.RevealCard == nil || v.Phase != string(scene.PhaseShuffling) {
		t.Errorf("reveal view missing card or phase: %+v", v)
	}

	sched.fire()
	v = cl.view("GET", RouteState, nil)
	want := scene.GameResult{CardNumber: 4, Prize: "아쉽지만, 꽝!", IsWin: false}
	if v.Scene != 4 || v.Result == nil || *v.Result != want {
		t.Fatalf("after reveal: %+v, want result %+v", v, want)
	}
	if len(v.Actions) != 1 || v.Actions[0] != "restart" {
		t.Errorf("losing result actions = %v, want [restart]", v.Actions)
	}

	v = cl.view("POST", RouteRestart, nil)
	if v.Scene != 1 || v.Result != nil {
		t.Errorf("after restart: %+v", v)
	}
}

// TestScenarioWin plays start, select(2), reveal, claim, restart with the first entry.
func TestScenarioWin(t *testing.T) {
	app, sched := newTestApp(0)
	cl := newClient(t, app)

	cl.view("POST", RouteStart, nil)
	cl.view("POST", RouteSelect, url.Values{"card": {"2"}})
	sched.fire()

	v := cl.view("GET", RouteState, nil)
	if v.Scene != 4 || v.Result == nil || !v.Result.IsWin || v.Result.Prize != "전체 금액 10% 할인" {
		t.Fatalf("after reveal: %+v", v)
	}

	v = cl.view("POST", RouteClaim, nil)
	if v.Scene != 5 || v.Name != "followup" || v.Ignored != "" {
		t.Fatalf("after claim: %+v", v)
	}

	v = cl.view("POST", RouteRestart, nil)
	if v.Scene != 1 || v.Result != nil {
		t.Errorf("after restart: %+v", v)
	}
}

func TestClaimOnLossIsIgnored(t *testing.T) {
	app, sched := newTestApp(7)
	cl := newClient(t, app)
	cl.view("POST", RouteStart, nil)
	cl.view("POST", RouteSelect, url.Values{"card": {"1"}})
	sched.fire()

	w := cl.do("POST", RouteClaim, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /claim returned status %d, want 200", w.Code)
	}
	if got := w.Header().Get(HeaderTriggerIgnored); got != "claim" {
		t.Errorf("%s header = %q, want claim", HeaderTriggerIgnored, got)
	}
	var v types.SceneView
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if v.Scene != 4 || v.Ignored != NoticeInvalidTransition {
		t.Errorf("claim on loss: %+v", v)
	}
}

func TestSelectInvalidCard(t *testing.T) {
	app, _ := newTestApp(0)
	cl := newClient(t, app)
	cl.view("POST", RouteStart, nil)

	for _, card := range []string{"0", "10", "abc", ""} {
		v := cl.view("POST", RouteSelect, url.Values{"card": {card}})
		if v.Scene != 2 || v.Result != nil || v.Ignored != NoticeInvalidCard {
			t.Errorf("select %q: %+v", card, v)
		}
	}
}

func TestSelectBeforeStartIsIgnored(t *testing.T) {
	app, _ := newTestApp(0)
	cl := newClient(t, app)
	v := cl.view("POST", RouteSelect, url.Values{"card": {"3"}})
	if v.Scene != 1 || v.Result != nil || v.Ignored == "" {
		t.Errorf("select in intro: %+v", v)
	}
}

func TestRestartDuringRevealDiscardsTimer(t *testing.T) {
	app, sched := newTestApp(0)
	cl := newClient(t, app)
	cl.view("POST", RouteStart, nil)
	cl.view("POST", RouteSelect, url.Values{"card": {"5"}})
	cl.view("POST", RouteRestart, nil)

	sched.fire()
	v := cl.view("GET", RouteState, nil)
	if v.Scene != 1 || v.Result != nil {
		t.Errorf("stale reveal timer changed state: %+v", v)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	app, _ := newTestApp(0)
	a := newClient(t, app)
	b := &client{t: t, router: a.router}

	a.view("POST", RouteStart, nil)
	if v := b.view("GET", RouteState, nil); v.Scene != 1 {
		t.Errorf("second session saw scene %d, want 1", v.Scene)
	}
	if n := app.sessionCount(); n != 2 {
		t.Errorf("sessionCount() = %d, want 2", n)
	}
}

// TestRateLimitMiddleware checks rate limiting blocks excessive requests
func TestRateLimitMiddleware(t *testing.T) {
	app, _ := newTestApp(0)
	app.RateLimitRPS = 5
	app.RateLimitBurst = 10
	router := gin.New()
	router.Use(app.rateLimitMiddleware())
	router.GET("/limited", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req, _ := http.NewRequest("GET", "/limited", nil)
	req.RemoteAddr = "127.0.0.1:12345"

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("11th request: expected 429 Too Many Requests, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.GET("/id", func(c *gin.Context) {
		id := prize.RequestID(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	req, _ := http.NewRequest("GET", "/id", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Body.String() != "fixed-id" || w.Header().Get("X-Request-Id") != "fixed-id" {
		t.Errorf("request id not propagated: body %q header %q", w.Body.String(), w.Header().Get("X-Request-Id"))
	}

	req, _ = http.NewRequest("GET", "/id", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if len(w.Body.String()) < 10 {
		t.Errorf("expected generated request id, got %q", w.Body.String())
	}
}

// TestHealthzHandlerFields checks /healthz endpoint for required fields
func TestHealthzHandlerFields(t *testing.T) {
	app, _ := newTestApp(0)
	w := newClient(t, app).do("GET", RouteHealthz, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz returned status %d, want 200", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal /healthz response: %v", err)
	}
	for _, field := range []string{"status", "env", "prizes_loaded", "reveal_ms", "active_sessions", "uptime", "timestamp"} {
		if _, ok := resp[field]; !ok {
			t.Errorf("Expected '%s' field in /healthz response", field)
		}
	}
	if resp["prizes_loaded"].(float64) != 9 {
		t.Errorf("prizes_loaded = %v, want 9", resp["prizes_loaded"])
	}
	if env, ok := resp["env"].(string); !ok || env != "development" {
		t.Errorf("env field = %v, want development", resp["env"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app, sched := newTestApp(0)
	cl := newClient(t, app)
	cl.view("POST", RouteStart, nil)
	cl.view("POST", RouteSelect, url.Values{"card": {"1"}})
	sched.fire()

	w := cl.do("GET", RouteMetrics, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics returned status %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"luckycard_draws_total",
		`luckycard_scene_transitions_total{from="reveal",to="result"} 1`,
		"luckycard_active_sessions 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestGetStateNotAllowedAsPost(t *testing.T) {
	app, _ := newTestApp(0)
	w := newClient(t, app).do("GET", RouteStart, nil)
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("GET /start returned status %d, want 405 or 404", w.Code)
	}
}

func TestNoStoreOnState(t *testing.T) {
	app, _ := newTestApp(0)
	w := newClient(t, app).do("GET", RouteState, nil)
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
}

func setupGzipTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(
		ginGzip.Gzip(ginGzip.DefaultCompression,
			ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
			ginGzip.WithExcludedPaths([]string{"/static/fonts"})),
	)
	router.GET("/static/test.js", func(c *gin.Context) {
		c.Header("Content-Type", "application/javascript")
		c.String(http.StatusOK, "var x = 1;")
	})
	router.GET("/static/test.png", func(c *gin.Context) {
		c.Header("Content-Type", "image/png")
		c.String(http.StatusOK, "PNGDATA")
	})
	return router
}

func isGzipped(w *httptest.ResponseRecorder) bool {
	return w.Header().Get("Content-Encoding") == "gzip"
}

func decompressGzip(data []byte) (string, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	return string(out), err
}

func TestGzipMiddleware_CompressesJS(t *testing.T) {
	router := setupGzipTestRouter()
	req, _ := http.NewRequest("GET", "/static/test.js", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !isGzipped(w) {
		t.Errorf("Expected gzip Content-Encoding for .js file")
	}
	body, err := decompressGzip(w.Body.Bytes())
	if err != nil || body != "var x = 1;" {
		t.Errorf("Failed to decompress gzipped JS: %v, got: %q", err, body)
	}
}

func TestGzipMiddleware_SkipsPNG(t *testing.T) {
	router := setupGzipTestRouter()
	req, _ := http.NewRequest("GET", "/static/test.png", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if isGzipped(w) {
		t.Errorf("Did not expect gzip Content-Encoding for .png file")
	}
	if w.Body.String() != "PNGDATA" {
		t.Errorf("Unexpected body for .png file: %q", w.Body.String())
	}
}
