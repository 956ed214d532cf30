// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package router

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "turnflow"

type Metrics struct {
	Messages      *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Folded        prometheus.Counter
	FoldErrors    prometheus.Counter
	PlatformCalls *prometheus.CounterVec
}

// NewMetrics creates the router collectors and registers them on reg when it
// is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "router_messages_total",
			Help:      "Messages handled by the router loop.",
		}, []string{"kind"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Notifications offered to the alert queue.",
		}, []string{"category", "result"}),
		Folded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exchanges_folded_total",
			Help:      "Exchanges folded into match state and saved.",
		}),
		FoldErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exchange_fold_errors_total",
			Help:      "Complete exchanges skipped because they could not be folded.",
		}),
		PlatformCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "platform_calls_total",
			Help:      "Outbound platform calls by result.",
		}, []string{"call", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Messages, m.Notifications, m.Folded, m.FoldErrors, m.PlatformCalls)
	}

	return m
}

func (m *Metrics) platformCall(call string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PlatformCalls.WithLabelValues(call, result).Inc()
}
