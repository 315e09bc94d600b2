package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the directory's counters and gauges on a private registry
type Metrics struct {
	registry *prometheus.Registry

	Registrations   prometheus.Counter
	Logins          *prometheus.CounterVec
	FriendRequests  *prometheus.CounterVec
	MatchesRecorded *prometheus.CounterVec
	MatchesCreated  prometheus.Counter
	StorageErrors   prometheus.Counter
	Players         prometheus.Gauge
	WaitingPlayers  prometheus.Gauge
	PendingMatches  prometheus.Gauge
	RankedPlayers   prometheus.Gauge
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "xonix_registrations_total",
			Help: "Total number of registered players.",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xonix_logins_total",
			Help: "Total number of login attempts.",
		}, []string{"result"}),
		FriendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xonix_friend_requests_total",
			Help: "Friend request operations.",
		}, []string{"action"}),
		MatchesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xonix_match_results_total",
			Help: "Match results written to player history.",
		}, []string{"mode"}),
		MatchesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "xonix_matches_created_total",
			Help: "Matches paired by the game room.",
		}),
		StorageErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "xonix_storage_errors_total",
			Help: "Failed record writes.",
		}),
		Players: f.NewGauge(prometheus.GaugeOpts{
			Name: "xonix_players",
			Help: "Players in the id list.",
		}),
		WaitingPlayers: f.NewGauge(prometheus.GaugeOpts{
			Name: "xonix_waiting_players",
			Help: "Players in the matchmaking queue.",
		}),
		PendingMatches: f.NewGauge(prometheus.GaugeOpts{
			Name: "xonix_pending_matches",
			Help: "Matches waiting in the match buffer.",
		}),
		RankedPlayers: f.NewGauge(prometheus.GaugeOpts{
			Name: "xonix_ranked_players",
			Help: "Players holding a leaderboard slot.",
		}),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Login counts a login attempt
func (m *Metrics) Login(ok bool) {
	if ok {
		m.Logins.WithLabelValues("success").Inc()
		return
	}
	m.Logins.WithLabelValues("failure").Inc()
}

// WriteTextfile dumps the registry in the text exposition format for a
// node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
