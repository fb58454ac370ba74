// FAIR Data Point HTTP handlers, spec §4.5/§6. Grounded on
// original_source/mini_node/fdp/api.py, translated route for route.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp/rdf"
)

type fdpHandlers struct {
	svc *fdp.Service
}

func (h *fdpHandlers) mount(mux chi.Router) {
	base := h.svc.MountPrefix()
	if base == "" {
		base = "/"
	}
	mux.Route(base, func(r chi.Router) {
		r.Get("/", h.serviceInfo)
		r.Get("/valid", h.serviceInfoValid)
		r.Get("/catalog", h.catalogs)
		r.Get("/catalog/valid", h.catalogsValid)
		r.Get("/catalog/{id}", h.catalog)
		r.Get("/catalog/{id}/valid", h.catalogValid)
		r.Get("/dataset/{id}", h.dataset)
		r.Get("/dataset/{id}/valid", h.datasetValid)
		r.Get("/profile/{id}", h.profile)
		r.Get("/profile/{id}/valid", h.profileValid)
		r.Get("/shacl/{id}", h.shacl)
	})
}

func (h *fdpHandlers) serviceInfo(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetServiceInfo(baseURL(r))
	writeGraph(w, r, g, err)
}

func (h *fdpHandlers) serviceInfoValid(w http.ResponseWriter, r *http.Request) {
	h.respondValid(w, r, "fdp", func() (*rdf.Graph, error) { return h.svc.GetServiceInfo(baseURL(r)) })
}

func (h *fdpHandlers) catalogs(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetCatalogs(baseURL(r))
	writeGraph(w, r, g, err)
}

func (h *fdpHandlers) catalogsValid(w http.ResponseWriter, r *http.Request) {
	h.respondValid(w, r, "catalogs", func() (*rdf.Graph, error) { return h.svc.GetCatalogs(baseURL(r)) })
}

func (h *fdpHandlers) catalog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := h.svc.GetCatalog(baseURL(r), id)
	writeGraph(w, r, g, err)
}

func (h *fdpHandlers) catalogValid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.respondValid(w, r, "catalog", func() (*rdf.Graph, error) { return h.svc.GetCatalog(baseURL(r), id) })
}

func (h *fdpHandlers) dataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := h.svc.GetDataset(baseURL(r), id)
	writeGraph(w, r, g, err)
}

func (h *fdpHandlers) datasetValid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.respondValid(w, r, "dataset", func() (*rdf.Graph, error) { return h.svc.GetDataset(baseURL(r), id) })
}

func (h *fdpHandlers) profile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := h.svc.GetProfile(baseURL(r), id)
	writeGraph(w, r, g, err)
}

func (h *fdpHandlers) profileValid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.respondValid(w, r, "profile", func() (*rdf.Graph, error) { return h.svc.GetProfile(baseURL(r), id) })
}

func (h *fdpHandlers) shacl(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := h.svc.GetSHACL(baseURL(r)+r.URL.Path, id)
	if !ok {
		writeNotFoundFDP(w)
		return
	}
	w.Header().Set("Content-Type", "text/turtle")
	_, _ = w.Write([]byte(doc))
}

// respondValid renders the entity via render, then runs it through the SHACL
// validator named by shaclID and returns the textual report as text/plain,
// mirroring fdp/api.py's `/valid` sibling endpoints. A nil graph (unknown
// entity id) still 404s, never produces a validation report.
func (h *fdpHandlers) respondValid(w http.ResponseWriter, r *http.Request, shaclID string, render func() (*rdf.Graph, error)) {
	g, err := render()
	if err != nil {
		writeInternalError(r, w, false, err)
		return
	}
	if g == nil {
		writeNotFoundFDP(w)
		return
	}
	report := h.svc.ValidateGraph(g, shaclID)
	writePlainText(w, http.StatusOK, report)
}
