package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	oauthFlowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopify_oauth_flows_total",
		Help: "OAuth handshake requests by phase and result.",
	}, []string{"phase", "result"})

	webhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopify_webhook_events_total",
		Help: "Webhook deliveries by topic and result.",
	}, []string{"topic", "result"})
)
