// Package metrics registers Prometheus counters, gauges, and histograms
// for the pipeline stages and the web server, the way iluha78-FD's
// observability package wires up ML-pipeline metrics. Only ActiveJobs
// and WSConnections are updated by code in this module; the other
// metrics are registered and exported but nothing increments or
// observes them, so they stay at zero.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PhotosScanned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "facecat",
		Name:      "photos_scanned_total",
		Help:      "Total number of candidate image paths discovered by the scanner",
	})

	PhotosIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "facecat",
		Name:      "photos_indexed_total",
		Help:      "Total number of photos newly catalogued by the indexer",
	})

	FacesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "facecat",
		Name:      "faces_detected_total",
		Help:      "Total number of faces detected across all indexed photos",
	})

	ClusterMerges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "facecat",
		Name:      "cluster_merges_total",
		Help:      "Total number of agglomerative merges performed by batch clustering",
	})

	IndexDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "facecat",
		Name:      "index_duration_seconds",
		Help:      "Duration of a single photo's decode-detect-persist step",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"stage"})

	ClusterDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "facecat",
		Name:      "cluster_run_duration_seconds",
		Help:      "Duration of a full cluster_all or cluster_new_faces run",
		Buckets:   prometheus.DefBuckets,
	})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "facecat",
		Name:      "active_jobs",
		Help:      "Number of currently running pipeline jobs",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "facecat",
		Name:      "ws_connections",
		Help:      "Number of active progress-stream WebSocket connections",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "facecat",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
