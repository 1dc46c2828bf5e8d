package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	processedNotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medsack_processed_notes_total",
		Help: "Notes processed, by pipeline and outcome.",
	}, []string{"pipeline", "outcome"})

	processingSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medsack_processing_seconds",
		Help:    "End to end note processing latency, by pipeline.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pipeline"})

	annotatorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medsack_annotator_failures_total",
		Help: "Failed annotator calls, by annotator.",
	}, []string{"annotator"})
)
