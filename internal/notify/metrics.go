package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_dispatch_total",
		Help: "Push dispatch attempts by event type and outcome.",
	}, []string{"type", "outcome"})

	tokensSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_tokens_sent_total",
		Help: "Device tokens that accepted a push.",
	})

	tokensFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_tokens_failed_total",
		Help: "Device tokens that rejected a push.",
	})
)
