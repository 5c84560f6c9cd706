package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_portal_api_requests_total",
		Help: "Requests issued to the portal backend, by method and response code.",
	}, []string{"method", "code"})

	tokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_portal_token_refresh_total",
		Help: "Token refresh calls made to the portal backend, by outcome.",
	}, []string{"outcome"})

	refreshWaiters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hr_portal_token_refresh_waiters",
		Help: "Callers currently suspended on an in-flight token refresh.",
	})
)
