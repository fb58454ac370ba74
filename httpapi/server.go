// Package httpapi wires the Beacon personalities and the FDP service onto a
// single chi mux, instrumented the same way as
// _examples/drand-drand/http/server.go wraps its mux with
// promhttp.InstrumentHandlerCounter/Duration/InFlight.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/beacon"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

// Deps carries everything the router needs to mount every enabled surface.
// A nil Aggregated/Sensitive/FDP disables that surface entirely, spec §6
// ("absence of a personality's config file disables it").
type Deps struct {
	App        *config.AppConfig
	Reg        *registry.Registry
	Aggregated *beacon.Setup
	Sensitive  *beacon.Setup
	FDP        *fdp.Service
	Version    string
}

// NewRouter builds the fully-instrumented HTTP handler for the process.
func NewRouter(d Deps) http.Handler {
	mux := chi.NewMux()

	var routes []string
	record := func(path string) { routes = append(routes, path) }

	if d.Aggregated != nil {
		p := &beaconPersonality{setup: d.Aggregated, data: d.Reg.AggregatedBeacon(), reg: d.Reg, aggregated: true}
		p.mount(mux)
		base := d.Aggregated.BasePath()
		for _, suffix := range []string{"/", "/info", "/service-info", "/configuration", "/entry_types", "/map", "/filtering_terms", "/g_variants", "/datasets"} {
			record(base + suffix)
		}
	}
	if d.Sensitive != nil {
		p := &beaconPersonality{setup: d.Sensitive, data: d.Reg.SensitiveBeacon(), reg: d.Reg, aggregated: false}
		p.mount(mux)
		base := d.Sensitive.BasePath()
		for _, suffix := range []string{"/", "/info", "/service-info", "/configuration", "/entry_types", "/map", "/filtering_terms", "/individuals"} {
			record(base + suffix)
		}
	}
	if d.FDP != nil {
		h := &fdpHandlers{svc: d.FDP}
		h.mount(mux)
		base := d.FDP.MountPrefix()
		for _, suffix := range []string{"", "/valid", "/catalog", "/catalog/{id}", "/dataset/{id}", "/profile/{id}", "/shacl/{id}"} {
			record(base + suffix)
		}
	}

	record("/health")
	mux.Get("/health", healthHandler(d.Version))

	record("/")
	status := newStatusPage(d.Reg, d.Version, d.App.BasicAuth, routes)
	mux.Get("/", status.serveHTTP)

	return promhttp.InstrumentHandlerCounter(
		httpCallCounter,
		promhttp.InstrumentHandlerDuration(
			httpLatency,
			promhttp.InstrumentHandlerInFlight(
				httpInFlight,
				mux,
			),
		),
	)
}
