package canvasauth

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/middleware"
)

const (
	loginSuccess         = "success"
	loginStateMismatch   = "state_mismatch"
	loginExchangeFailure = "exchange_failure"
)

type metrics struct {
	decisions *prometheus.CounterVec
	logins    *prometheus.CounterVec
	logouts   prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	return &metrics{
		// canvas_auth_gate_decisions_total counts gate outcomes
		decisions: middleware.RegisterCollector(registerer, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_auth_gate_decisions_total",
				Help: "Total number of gate decisions by outcome.",
			},
			[]string{"decision"},
		)),
		logins: middleware.RegisterCollector(registerer, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_auth_logins_total",
				Help: "Total number of completed login callbacks by result.",
			},
			[]string{"result"},
		)),
		logouts: middleware.RegisterCollector(registerer, prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "canvas_auth_logouts_total",
				Help: "Total number of logouts.",
			},
		)),
	}
}
