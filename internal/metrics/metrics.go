package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"luckycard/internal/scene"
)

// Metric names follow luckycard_<name>.

// Metrics counts game activity. It implements scene.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	draws          *prometheus.CounterVec
	fallbackDraws  prometheus.Counter
	transitions    *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	activeSessions prometheus.Gauge
	sweptSessions  prometheus.Counter
}

var _ scene.Observer = (*Metrics)(nil)

// New registers the game collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		draws: f.NewCounterVec(prometheus.CounterOpts{
			Name: "luckycard_draws_total",
			Help: "Prize draws by label and outcome.",
		}, []string{"prize", "win"}),
		fallbackDraws: f.NewCounter(prometheus.CounterOpts{
			Name: "luckycard_fallback_draws_total",
			Help: "Draws resolved with the fallback index.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "luckycard_scene_transitions_total",
			Help: "Scene transitions by source and target scene.",
		}, []string{"from", "to"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "luckycard_rejected_triggers_total",
			Help: "Triggers ignored because they were not valid in the current scene.",
		}, []string{"trigger", "reason"}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "luckycard_active_sessions",
			Help: "Sessions currently held in memory.",
		}),
		sweptSessions: f.NewCounter(prometheus.CounterOpts{
			Name: "luckycard_swept_sessions_total",
			Help: "Idle sessions removed by the sweeper.",
		}),
	}
}

func (m *Metrics) Transitioned(from, to scene.Scene) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) Drew(r scene.GameResult, fallback bool) {
	m.draws.WithLabelValues(r.Prize, strconv.FormatBool(r.IsWin)).Inc()
	if fallback {
		m.fallbackDraws.Inc()
	}
}

func (m *Metrics) Rejected(t scene.Trigger, err error) {
	m.rejected.WithLabelValues(string(t), reason(err)).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

func (m *Metrics) AddSwept(n int) {
	m.sweptSessions.Add(float64(n))
}

func reason(err error) string {
	switch {
	case errors.Is(err, scene.ErrInvalidCard):
		return "invalid_card"
	case errors.Is(err, scene.ErrMissingResult):
		return "missing_result"
	case errors.Is(err, scene.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "other"
	}
}
