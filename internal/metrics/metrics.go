// Package metrics holds the server's Prometheus collectors. Labels carry
// only bounded values; table tokens are never used as labels.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Table engine metrics
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snooker_tick_duration_seconds",
		Help:    "Time spent in one table tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
	})

	ActiveTables = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snooker_active_tables",
		Help: "Tables currently running",
	})

	ShotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snooker_shots_total",
		Help: "Shots fired on all tables",
	})

	ShotOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snooker_shot_outcomes_total",
		Help: "Resolved shots by outcome",
	}, []string{"outcome"}) // Bounded: FOUL, MISS, GOOD_POT

	FramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snooker_frames_completed_total",
		Help: "Frames played to completion",
	})

	TablesReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snooker_tables_reaped_total",
		Help: "Idle tables stopped by the reaper",
	})

	// Persistence
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snooker_store_errors_total",
		Help: "History writes that failed",
	}, []string{"kind"}) // Bounded: frame, shot

	StoreDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snooker_store_dropped_total",
		Help: "History writes dropped because the queue was full",
	})

	// WebSocket metrics
	WSConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	WSMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})

	WSRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_rejected_total",
		Help: "Inbound WebSocket messages rejected",
	}, []string{"reason"}) // Bounded: rate_limited, malformed, unknown_type, send_buffer_full
)
