// Package metrics exposes Prometheus collectors for game activity.
// Labels are bounded: no per-player or per-session values.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	rounds       *prometheus.CounterVec
	foodEaten    prometheus.Counter
	milestones   prometheus.Counter
	highScores   prometheus.Counter
	activations  prometheus.Counter
	sessions     prometheus.Gauge
	spectators   prometheus.Gauge
	stepDuration prometheus.Histogram
}

// New registers the collectors with reg and serves them from g.
func New(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: g,
		rounds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nird_rounds_total",
			Help: "Finished rounds by outcome",
		}, []string{"outcome"}), // "won", "lost"
		foodEaten: f.NewCounter(prometheus.CounterOpts{
			Name: "nird_food_eaten_total",
			Help: "Computers liberated across all rounds",
		}),
		milestones: f.NewCounter(prometheus.CounterOpts{
			Name: "nird_milestones_total",
			Help: "Milestone banners shown",
		}),
		highScores: f.NewCounter(prometheus.CounterOpts{
			Name: "nird_high_scores_total",
			Help: "Steps that raised a session's record",
		}),
		activations: f.NewCounter(prometheus.CounterOpts{
			Name: "nird_activations_total",
			Help: "Times the secret code opened the game",
		}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "nird_sessions_active",
			Help: "Open game sessions",
		}),
		spectators: f.NewGauge(prometheus.GaugeOpts{
			Name: "nird_spectators_active",
			Help: "Connected spectator websockets",
		}),
		stepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nird_step_duration_seconds",
			Help:    "Time spent in one frame callback",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the collectors registered with the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return defaultMetrics
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Observe counts engine events.
func (m *Metrics) Observe(events []snake.Event) {
	if m == nil {
		return
	}
	for _, ev := range events {
		switch ev.Kind {
		case snake.EventFoodEaten:
			m.foodEaten.Inc()
		case snake.EventMilestone:
			m.milestones.Inc()
		case snake.EventHighScore:
			m.highScores.Inc()
		case snake.EventGameOver:
			outcome := "lost"
			if ev.Won {
				outcome = "won"
			}
			m.rounds.WithLabelValues(outcome).Inc()
		}
	}
}

// ObserveStep records the duration of one frame callback.
func (m *Metrics) ObserveStep(d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.Observe(d.Seconds())
}

// Activated counts a secret-code activation.
func (m *Metrics) Activated() {
	if m == nil {
		return
	}
	m.activations.Inc()
}

// SessionStarted and SessionEnded track open sessions.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// SpectatorConnected and SpectatorDisconnected track websocket viewers.
func (m *Metrics) SpectatorConnected() {
	if m == nil {
		return
	}
	m.spectators.Inc()
}

func (m *Metrics) SpectatorDisconnected() {
	if m == nil {
		return
	}
	m.spectators.Dec()
}
