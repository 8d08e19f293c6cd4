package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	artifactsUploadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siamt_artifacts_uploaded_total",
			Help: "Number of artifacts stored, by variant.",
		},
		[]string{"variant"},
	)

	artifactsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siamt_artifacts_deleted_total",
			Help: "Number of artifacts deleted, by variant.",
		},
		[]string{"variant"},
	)

	artifactUploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "siamt_artifact_upload_bytes",
			Help:    "Size of stored uploads in bytes.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
		},
		[]string{"variant"},
	)

	orphansRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siamt_orphan_files_removed_total",
			Help: "Number of unreferenced upload files removed by the sweeper, by variant.",
		},
		[]string{"variant"},
	)
)
