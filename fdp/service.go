// Service is the FDP entity API, grounded on
// original_source/mini_node/fdp/service/__init__.py and _data.py, backed by
// the shared Registry instead of a static in-process DATA singleton.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fdp

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp/rdf"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

// Service renders FDP entities as RDF graphs and validates them against the
// node's SHACL shapes.
type Service struct {
	gen *Generator
	reg *registry.Registry
	cfg *config.FdpConfig
}

// NewService builds the FDP entity service from the loaded fdp.yaml and the
// shared Registry.
func NewService(cfg *config.FdpConfig, reg *registry.Registry) (*Service, error) {
	gen, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{gen: gen, reg: reg, cfg: cfg}, nil
}

// BasePath returns the FDP root's subject-URI path fragment, i.e. the
// `fairdp` template's `path` (empty: the root FDP entity's IRI is the base
// URL itself, per the FAIR Data Point specification).
func (s *Service) BasePath() string { return s.gen.BasePath() }

// MountPrefix is the HTTP path this service's routes are mounted under,
// derived from fdp.yaml's base_url (distinct from BasePath's RDF-subject
// meaning): an operator sets base_url to e.g. "https://host/fdp" to keep
// the FDP surface off the root status page's "/" route; an empty URL path
// mounts FDP at the root, per DESIGN.md's Open Question on this collision.
func (s *Service) MountPrefix() string {
	u, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

func (s *Service) lastModified() string {
	max := s.cfg.Since
	for _, catalogID := range s.reg.CatalogIDs() {
		for _, datasetID := range s.reg.CatalogDatasets(catalogID) {
			ds, ok := s.reg.FdpDataset(datasetID)
			if ok && ds.Updated > max {
				max = ds.Updated
			}
		}
	}
	return max
}

func (s *Service) catalogURLs(baseURL string) []string {
	ids := s.reg.CatalogIDs()
	sort.Strings(ids)
	urls := make([]string, len(ids))
	for i, id := range ids {
		urls[i] = s.gen.ItemURL(baseURL, "catalog", id)
	}
	return urls
}

// GetServiceInfo renders the FDP root, spec §4.4: a merge of the `fairdp`
// and `catalogs` templates, mirroring get_service_info.
func (s *Service) GetServiceInfo(baseURL string) (*rdf.Graph, error) {
	values := map[string]any{
		"catalogs": s.catalogURLs(baseURL),
		"updated":  s.lastModified(),
	}
	g, err := s.gen.Render("fairdp", baseURL, values, nil)
	if err != nil {
		return nil, err
	}
	return s.gen.Render("catalogs", baseURL, values, g)
}

// GetCatalogs renders the `/catalog` collection.
func (s *Service) GetCatalogs(baseURL string) (*rdf.Graph, error) {
	values := map[string]any{"catalogs": s.catalogURLs(baseURL)}
	return s.gen.Render("catalogs", baseURL, values, nil)
}

// GetCatalog renders one catalog, or nil when catalogID is unknown.
func (s *Service) GetCatalog(baseURL, catalogID string) (*rdf.Graph, error) {
	catalog, ok := s.reg.Catalog(catalogID)
	if !ok {
		return nil, nil
	}
	datasetIDs := s.reg.CatalogDatasets(catalogID)

	latestUpdate := catalog.Since
	if latestUpdate == "" {
		latestUpdate = s.cfg.Since
	}
	datasetURLs := make([]string, 0, len(datasetIDs))
	for _, id := range datasetIDs {
		datasetURLs = append(datasetURLs, s.gen.ItemURL(baseURL, "dataset", id))
		if ds, ok := s.reg.FdpDataset(id); ok && ds.Updated > latestUpdate {
			latestUpdate = ds.Updated
		}
	}

	values := map[string]any{
		"id":          catalogID,
		"title":       catalog.Title,
		"description": catalog.Description,
		"since":       catalog.Since,
		"updated":     latestUpdate,
		"datasets":    datasetURLs,
	}
	return s.gen.Render("catalog", baseURL, values, nil)
}

// GetDataset renders one dataset, or nil when datasetID is unknown or its
// catalog reference is dangling.
func (s *Service) GetDataset(baseURL, datasetID string) (*rdf.Graph, error) {
	ds, ok := s.reg.FdpDataset(datasetID)
	if !ok {
		return nil, nil
	}
	if _, ok := s.reg.Catalog(ds.CatalogID); !ok {
		return nil, nil
	}

	values := map[string]any{
		"id":                 datasetID,
		"title":              ds.Title,
		"description":        ds.Description,
		"keywords":           ds.Keywords,
		"since":              ds.Since,
		"updated":            ds.Updated,
		"record_count":       ds.RecordCount,
		"data_provider_name": ds.DataProviderName,
	}
	if ds.MinAge != nil {
		values["min_age"] = *ds.MinAge
	}
	if ds.MaxAge != nil {
		values["max_age"] = *ds.MaxAge
	}
	if ds.IndividualCount != nil {
		values["individual_count"] = *ds.IndividualCount
	}
	return s.gen.Render("dataset", baseURL, values, nil)
}

// GetProfile renders the profile entity for a known SHACL shape id, or nil
// otherwise.
func (s *Service) GetProfile(baseURL, profileID string) (*rdf.Graph, error) {
	if _, ok := shapeDefs[profileID]; !ok {
		return nil, nil
	}
	shaclURL := s.gen.ItemURL(baseURL, "fairdp", "shacl/"+profileID)
	values := map[string]any{"id": profileID, "shacl_url": shaclURL}
	return s.gen.Render("profile", baseURL, values, nil)
}

// GetSHACL returns the Turtle text of one shape document, prefixed by the
// empty-prefix binding to resourceURL (spec §4.4), or "" when unknown.
func (s *Service) GetSHACL(resourceURL, shaclID string) (string, bool) {
	doc, ok := shaclDocuments[shaclID]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("@prefix : <%s> .\n%s", resourceURL, doc), true
}

// ValidateGraph validates graph against the shape named by shaclID,
// resolving it from the graph's own dct:conformsTo object when shaclID is
// empty, mirroring validate_graph.
func (s *Service) ValidateGraph(graph *rdf.Graph, shaclID string) string {
	if shaclID == "" {
		conformsTo := iri(nsDCT, "conformsTo")
		found := false
		for _, t := range graph.Triples {
			if t.Predicate == conformsTo {
				if obj, ok := t.Object.(rdf.IRI); ok {
					s := string(obj)
					if idx := strings.LastIndex(s, "/"); idx >= 0 {
						shaclID = s[idx+1:]
					} else {
						shaclID = s
					}
					found = true
					break
				}
			}
		}
		if !found {
			return "dct:conformsTo was not found in the graph"
		}
	}

	shape, ok := shapeDefs[shaclID]
	if !ok {
		return fmt.Sprintf("Unknown SHACL shape %q", shaclID)
	}
	_, report := rdf.Validate(graph, shape)
	return report
}
