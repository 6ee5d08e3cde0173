package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignupsTotal counts signup attempts by result.
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_signups_total",
		Help: "Total number of signup attempts by result",
	}, []string{"result"})

	// LoginsTotal counts login attempts by result.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_logins_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// PostViewsTotal counts post detail fetches that incremented a view counter.
	PostViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_post_views_total",
		Help: "Total number of post detail views",
	})

	// UploadsTotal counts uploads by file type and result.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_uploads_total",
		Help: "Total number of uploads by file type and result",
	}, []string{"file_type", "result"})

	// SessionsSweptTotal counts expired sessions removed by the sweeper.
	SessionsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_sessions_swept_total",
		Help: "Total number of expired sessions removed",
	})
)

// ResultLabel turns an error into the result label used by the counters.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
