// Beacon personality HTTP handlers, spec §4.4/§6. Grounded on
// original_source/mini_node/beacon/api.py, translated route for route onto
// go-chi handlers.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/beacon"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

// beaconPersonality binds one enabled Beacon personality (aggregated or
// sensitive) to the shared Registry and mounts its routes under mux.
type beaconPersonality struct {
	setup      *beacon.Setup
	data       *registry.BeaconDataView
	reg        *registry.Registry
	aggregated bool
}

func (p *beaconPersonality) mount(mux chi.Router) {
	base := p.setup.BasePath()
	if base == "" {
		base = "/"
	}
	mux.Route(base, func(r chi.Router) {
		r.Get("/", p.info)
		r.Get("/info", p.info)
		r.Get("/service-info", p.serviceInfo)
		r.Get("/configuration", p.configuration)
		r.Get("/entry_types", p.entryTypes)
		r.Get("/map", p.endpointMap)
		r.Get("/filtering_terms", p.filteringTerms)

		if p.aggregated {
			r.Get("/g_variants", p.getGVariants)
			r.Post("/g_variants", p.postGVariants)
			r.Get("/datasets", p.getDatasets)
			r.Post("/datasets", p.postDatasets)
		} else {
			r.Get("/individuals", p.getIndividuals)
			r.Post("/individuals", p.postIndividuals)
		}
	})
}

func (p *beaconPersonality) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, beacon.Response{
		Meta:     p.setup.InfoResponseMeta(beacon.EntityInfo),
		Response: p.setup.BeaconInfo(baseURL(r)),
	})
}

func (p *beaconPersonality) serviceInfo(w http.ResponseWriter, _ *http.Request) {
	// GA4GH service-info is returned bare, never wrapped in a BeaconResponse
	// envelope, spec §4.4.
	writeJSON(w, http.StatusOK, p.setup.ServiceInfo())
}

func (p *beaconPersonality) configuration(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, beacon.Response{
		Meta:     p.setup.InfoResponseMeta(beacon.EntityConfiguration),
		Response: p.setup.Configuration(),
	})
}

func (p *beaconPersonality) entryTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, beacon.Response{
		Meta:     p.setup.InfoResponseMeta(beacon.EntityEntryTypes),
		Response: p.setup.EntryTypesInfo(),
	})
}

func (p *beaconPersonality) endpointMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, beacon.Response{
		Meta:     p.setup.InfoResponseMeta(beacon.EntityMap),
		Response: p.setup.Map(baseURL(r)),
	})
}

func (p *beaconPersonality) filteringTerms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, beacon.Response{
		Meta:     p.setup.InfoResponseMeta(beacon.EntityFilteringTerm),
		Response: p.setup.FilteringTerms(),
	})
}

func (p *beaconPersonality) getGVariants(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r, p.setup) {
		return
	}
	query, err := beacon.QueryFromValues(r.URL.Query(), true)
	if err != nil {
		writeBeaconError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req := p.setup.RequestForQuery(query, beacon.EntityGenomicVariant)
	p.respondGVariants(w, &req)
}

func (p *beaconPersonality) postGVariants(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r, p.setup) {
		return
	}
	var req beacon.Request
	if !decodeBody(w, r, &req) {
		return
	}
	p.respondGVariants(w, &req)
}

func (p *beaconPersonality) respondGVariants(w http.ResponseWriter, req *beacon.Request) {
	var params *beacon.VariantParams
	if req.Query.RequestParameters != nil {
		params = req.Query.RequestParameters.First
	}
	pagination := req.Query.Pagination
	if pagination == nil {
		pagination = &beacon.Pagination{}
	}
	afResults := beacon.AFLookup(p.data, params, pagination)

	results := make([]beacon.ResultSet, 0, len(afResults))
	for datasetID, af := range afResults {
		row := []any{af}
		results = append(results, beacon.ResultSet{ID: datasetID, ResultsCount: 1, Results: row})
	}
	writeJSON(w, http.StatusOK, p.setup.Response(req, beacon.ResultSets{ResultSets: results}, beacon.EntityGenomicVariant))
}

func (p *beaconPersonality) getDatasets(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r, p.setup) {
		return
	}
	query, err := beacon.QueryFromValues(r.URL.Query(), false)
	if err != nil {
		writeBeaconError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req := p.setup.RequestForQuery(query, beacon.EntityDataset)
	p.respondDatasets(w, &req)
}

func (p *beaconPersonality) postDatasets(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r, p.setup) {
		return
	}
	var req beacon.Request
	if !decodeBody(w, r, &req) {
		return
	}
	p.respondDatasets(w, &req)
}

func (p *beaconPersonality) respondDatasets(w http.ResponseWriter, req *beacon.Request) {
	entries := beacon.GetDatasets(p.reg, req)
	writeJSON(w, http.StatusOK, p.setup.CollectionResponse(req, entries, beacon.EntityDataset))
}

func (p *beaconPersonality) getIndividuals(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r, p.setup) {
		return
	}
	query, err := beacon.QueryFromValues(r.URL.Query(), false)
	if err != nil {
		writeBeaconError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req := p.setup.RequestForQuery(query, beacon.EntityIndividual)
	p.respondIndividuals(w, &req)
}

func (p *beaconPersonality) postIndividuals(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r, p.setup) {
		return
	}
	var req beacon.Request
	if !decodeBody(w, r, &req) {
		return
	}
	p.respondIndividuals(w, &req)
}

func (p *beaconPersonality) respondIndividuals(w http.ResponseWriter, req *beacon.Request) {
	results := beacon.IndividualsCount(p.data, req, p.setup.HideLowerCounts())
	writeJSON(w, http.StatusOK, p.setup.Response(req, results, beacon.EntityIndividual))
}

// decodeBody decodes a JSON request body into v, writing a 422 Beacon error
// and returning false on malformed JSON (spec §7).
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBeaconError(w, http.StatusUnprocessableEntity, "could not read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeBeaconError(w, http.StatusUnprocessableEntity, "malformed request body: "+err.Error())
		return false
	}
	return true
}
