package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FixesAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pathrecorder_fixes_accepted_total",
			Help: "Raw fixes that passed the accuracy and interval gates",
		},
	)
	FixesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathrecorder_fixes_rejected_total",
			Help: "Raw fixes dropped by the filter",
		},
		[]string{"reason"},
	)
	Checkpoints = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pathrecorder_session_checkpoints_total",
			Help: "Successful durable session checkpoints",
		},
	)
	CheckpointFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pathrecorder_session_checkpoint_failures_total",
			Help: "Session checkpoint writes that failed",
		},
	)
	PathsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pathrecorder_paths_saved_total",
			Help: "Finalized path records written to the store",
		},
	)
)
