package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	RequirementsCompleted *prometheus.CounterVec
	MissionsCompleted     *prometheus.CounterVec
	LevelUps              *prometheus.CounterVec
	Resets                prometheus.Counter
	Rollovers             prometheus.Counter
	SyncFailures          *prometheus.CounterVec
	ActiveSessions        prometheus.Gauge
	Achievements          *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		RequirementsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_requirements_completed_total",
				Help: "Requirements marked complete",
			},
			[]string{"time_window", "level"},
		),
		MissionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_missions_completed_total",
				Help: "Missions fully completed",
			},
			[]string{"time_window", "level"},
		),
		LevelUps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_level_ups_total",
				Help: "Successful level-ups",
			},
			[]string{"time_window", "level"},
		),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_resets_total",
			Help: "Confirmed game resets",
		}),
		Rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_day_rollovers_total",
			Help: "Game states moved to a new day",
		}),
		SyncFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_sync_failures_total",
				Help: "Remote sync jobs given up on",
			},
			[]string{"operation"},
		),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "game_active_sessions",
			Help: "Game sessions held in memory",
		}),
		Achievements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_achievements_unlocked_total",
				Help: "Achievements unlocked",
			},
			[]string{"achievement"},
		),
	}

	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.RequirementsCompleted,
		m.MissionsCompleted,
		m.LevelUps,
		m.Resets,
		m.Rollovers,
		m.SyncFailures,
		m.ActiveSessions,
		m.Achievements,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func bucketLabels(window string, level int) []string {
	return []string{window, strconv.Itoa(level)}
}

func (m *Metrics) RequirementCompleted(window string, level int) {
	m.RequirementsCompleted.WithLabelValues(bucketLabels(window, level)...).Inc()
}

func (m *Metrics) MissionCompleted(window string, level int) {
	m.MissionsCompleted.WithLabelValues(bucketLabels(window, level)...).Inc()
}

func (m *Metrics) LeveledUp(window string, level int) {
	m.LevelUps.WithLabelValues(bucketLabels(window, level)...).Inc()
}

func (m *Metrics) GameReset() {
	m.Resets.Inc()
}

func (m *Metrics) DayRolledOver() {
	m.Rollovers.Inc()
}

func (m *Metrics) SyncFailed(operation string) {
	m.SyncFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) SessionsActive(n int) {
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) AchievementUnlocked(id string) {
	m.Achievements.WithLabelValues(id).Inc()
}

// Middleware records request count and latency by route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			m.RequestCounter.WithLabelValues(
				c.Request().Method,
				path,
				strconv.Itoa(c.Response().Status),
			).Inc()

			m.RequestDuration.WithLabelValues(
				c.Request().Method,
				path,
			).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
