package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapi_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// VoteActions counts applied vote transitions.
	VoteActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapi_vote_actions_total",
		Help: "Vote transitions applied, by action",
	}, []string{"action"})

	// VoteConflicts counts votes rejected because a concurrent vote won.
	VoteConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogapi_vote_conflicts_total",
		Help: "Votes rejected due to a concurrent write on the same pair",
	})

	// AuthEvents counts registrations, logins and logouts by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapi_auth_events_total",
		Help: "Authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// RateLimited counts requests rejected by the Redis rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapi_rate_limited_total",
		Help: "Requests rejected by rate limiting, by resource",
	}, []string{"resource"})
)
