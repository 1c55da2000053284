package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "broker", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "broker", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	TopicsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "broker", Name: "topics_created_total", Help: "Number of topics created."},
	)
	Subscriptions = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "broker", Name: "subscriptions_total", Help: "Number of subscriptions added."},
	)
	EventsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "broker", Name: "events_published_total", Help: "Number of events recorded on topics."},
	)
	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "broker", Name: "dispatch_total", Help: "Number of subscriber delivery attempts by result."},
		[]string{"result"},
	)
)

// Dispatch results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(TopicsCreated)
	reg.MustRegister(Subscriptions)
	reg.MustRegister(EventsPublished)
	reg.MustRegister(Dispatches)
}
