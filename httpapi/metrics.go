// HTTP instrumentation, grounded on
// _examples/drand-drand/http/server.go's metrics.HTTPCallCounter /
// HTTPLatency / HTTPInFlight (here defined locally with promauto instead of
// the teacher's separate metrics package, since this node has no other
// consumer for them).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label sets are restricted to "code"/"method": promhttp.InstrumentHandler*
// rejects any counter/histogram carrying label names outside that pair.
var (
	httpCallCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gdi_mininode_http_requests_total",
		Help: "Count of HTTP requests by method and status code.",
	}, []string{"method", "code"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gdi_mininode_http_request_duration_seconds",
		Help:    "HTTP request latency by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gdi_mininode_http_requests_in_flight",
		Help: "Number of HTTP requests currently being served.",
	})
)
