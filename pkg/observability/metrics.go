// Package observability holds the Prometheus metrics of the voice agent.
package observability

import "github.com/prometheus/client_golang/prometheus"

// ReplyBuckets covers in-process replies (sub-millisecond) up to a slow remote
// round trip hitting the reply timeout.
var ReplyBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10}

var (
	// RequestsTotal counts HTTP requests by method, route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_agent_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voice_agent_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RepliesTotal counts generated replies by intent.
	RepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_agent_replies_total",
			Help: "Replies generated",
		},
		[]string{"intent"},
	)

	ReplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voice_agent_reply_duration_seconds",
			Help:    "Time between a user utterance and the agent reply",
			Buckets: ReplyBuckets,
		},
	)

	// StateTransitionsTotal counts interaction state machine transitions.
	StateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_agent_state_transitions_total",
			Help: "Interaction state transitions",
		},
		[]string{"from", "to"},
	)

	// FailuresTotal counts failed turns by kind (capture, transport, playback).
	FailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_agent_failures_total",
			Help: "Failed turns",
		},
		[]string{"kind"},
	)

	UtterancesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_agent_utterances_total",
			Help: "Utterances appended to transcripts",
		},
		[]string{"role"},
	)

	// ActiveSessions is 1 while a live voice session is open.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "voice_agent_sessions_active",
			Help: "Active voice sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RepliesTotal,
		ReplyDuration,
		StateTransitionsTotal,
		FailuresTotal,
		UtterancesTotal,
		ActiveSessions,
	)
}
