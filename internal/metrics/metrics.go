package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PicksSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pickem_picks_submitted_total", Help: "Total pick upserts accepted"},
	)
	WinnersRevealed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pickem_winners_revealed_total", Help: "Total category reveal operations (mark and clear)"},
	)
	LeaderboardBroadcasts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pickem_leaderboard_broadcasts_total", Help: "Total leaderboard snapshots fanned out"},
	)
	ReactionBroadcasts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pickem_reaction_broadcasts_total", Help: "Total reactions fanned out"},
	)
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pickem_ws_connections", Help: "Currently connected websocket clients"},
	)
)

func Register() {
	prometheus.MustRegister(PicksSubmitted, WinnersRevealed, LeaderboardBroadcasts, ReactionBroadcasts, ActiveConnections)
}
