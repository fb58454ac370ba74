// Setup ties a personality's configuration to request-time behaviour:
// granularity resolution, population-count censoring, response-envelope
// construction and authentication, spec §4.4. Grounded on
// original_source/mini_node/beacon/setup.py::BeaconSetup.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/debug"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/oidc"
)

// Setup is constructed once per enabled personality (aggregated/sensitive)
// at startup and is immutable thereafter; all its methods are safe for
// concurrent use by the HTTP surface.
type Setup struct {
	basePath        string
	serviceInfo     ServiceInfo
	entryTypes      EntryTypes
	configuration   BeaconConfiguration
	filteringTerms  FilteringTerms
	responseSchemas map[EntityType]SchemaPerEntity
	hideLowerCounts int

	common *config.BeaconCommon
	info   *config.InfoConfig
	org    *config.Organisation

	oidcVerifier *oidc.Verifier
	basicHeaders map[string]struct{}

	mu         sync.Mutex
	infoByHost map[string]BeaconInfo
	mapByHost  map[string]BeaconMap
}

// NewSetup builds a Setup for one personality. aggregated selects which
// entity types are exposed: {dataset, genomicVariant} vs {individual}.
func NewSetup(common *config.BeaconCommon, personality *config.PersonalityConfig, aggregated bool) (*Setup, error) {
	visible := map[EntityType]struct{}{}
	if aggregated {
		visible[EntityDataset] = struct{}{}
		visible[EntityGenomicVariant] = struct{}{}
	} else {
		visible[EntityIndividual] = struct{}{}
	}

	entryTypes := createEntryTypes(common, visible)

	s := &Setup{
		basePath:        personality.BasePath,
		serviceInfo:     createServiceInfo(common, &personality.Info, &common.Organisation),
		entryTypes:      entryTypes,
		configuration:   createConfiguration(common, &personality.SecurityAttributes, entryTypes),
		filteringTerms:  createFilteringTerms(),
		responseSchemas: getSchemas(&common.Compliance),
		hideLowerCounts: personality.HideLowerCounts,
		common:          common,
		info:            &personality.Info,
		org:             &common.Organisation,
		infoByHost:      map[string]BeaconInfo{},
		mapByHost:       map[string]BeaconMap{},
	}

	if personality.OIDC.IsEnabled() {
		var visas []oidc.RequiredVisa
		for _, v := range personality.OIDC.RequiredVisas {
			visas = append(visas, oidc.RequiredVisa(v))
		}
		s.oidcVerifier = oidc.New(personality.OIDC.Issuer, visas)
		nlog.Infof("[%s] OIDC authentication is enforced.", s.basePath)
	}

	if len(personality.BasicAuth) > 0 {
		s.basicHeaders = map[string]struct{}{}
		for _, cred := range personality.BasicAuth {
			if cred.Username != "" && cred.Password != "" {
				s.basicHeaders[encodeBasicCredential(cred.Username, cred.Password)] = struct{}{}
			}
		}
		if len(s.basicHeaders) == 0 {
			s.basicHeaders = nil
		} else {
			nlog.Infof("[%s] Basic authentication is enforced.", s.basePath)
		}
	}

	if s.oidcVerifier != nil && s.basicHeaders != nil {
		return nil, fmt.Errorf("[%s] cannot use both OIDC and Basic auth - configure just one of them", s.basePath)
	}
	if s.oidcVerifier == nil && s.basicHeaders == nil {
		nlog.Infof("[%s] No user-authentication is enforced.", s.basePath)
	}

	return s, nil
}

// InitAuth performs the OIDC discovery handshake, when enabled. Call once at
// startup; failure here is fatal (spec §4.3).
func (s *Setup) InitAuth(ctx context.Context) error {
	if s.oidcVerifier == nil {
		return nil
	}
	return s.oidcVerifier.Init(ctx)
}

func encodeBasicCredential(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// Authenticate returns ("", true) when the request is authorized, or
// (method, false) when it should be rejected with a 401 and a
// WWW-Authenticate: <method> header.
func (s *Setup) Authenticate(authorizationHeader string) (string, bool) {
	if s.oidcVerifier != nil {
		valid := false
		if strings.HasPrefix(authorizationHeader, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, "Bearer "))
			valid = s.oidcVerifier.Verify(token)
		} else {
			debug.Infof("[%s] Authorization header is missing or does not begin with 'Bearer '.", s.basePath)
		}
		if !valid {
			return "Bearer", false
		}
	}

	if s.basicHeaders != nil {
		if !strings.HasPrefix(authorizationHeader, "Basic ") {
			debug.Infof("[%s] Authorization header is missing or does not begin with 'Basic '.", s.basePath)
		}
		_, valid := s.basicHeaders[strings.TrimPrefix(authorizationHeader, "Basic ")]
		debug.Infof("[%s] Basic authentication valid: %v", s.basePath, valid)
		if !valid {
			return "Basic", false
		}
	}

	return "", true
}

func (s *Setup) BasePath() string          { return s.basePath }
func (s *Setup) HideLowerCounts() int       { return s.hideLowerCounts }
func (s *Setup) ServiceInfo() ServiceInfo { return s.serviceInfo }
func (s *Setup) EntryTypesInfo() EntryTypes { return s.entryTypes }
func (s *Setup) Configuration() BeaconConfiguration { return s.configuration }
func (s *Setup) FilteringTerms() FilteringTerms { return s.filteringTerms }

func (s *Setup) urlWithPath(baseURL string) string {
	base := strings.TrimSuffix(baseURL, "/")
	url := joinURL(base, s.basePath)
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}

// BeaconInfo resolves (and caches, per distinct base URL) the BeaconInfo
// payload for GET `/` and `/info`.
func (s *Setup) BeaconInfo(baseURL string) BeaconInfo {
	url := s.urlWithPath(baseURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.infoByHost[url]; ok {
		return cached
	}
	info := createBeaconInfo(s.common, s.info, s.org, s.basePath, url)
	s.infoByHost[url] = info
	return info
}

// Map resolves (and caches) the BeaconMap payload for GET `/map`.
func (s *Setup) Map(baseURL string) BeaconMap {
	url := s.urlWithPath(baseURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.mapByHost[url]; ok {
		return cached
	}
	visible := map[EntityType]struct{}{}
	for id := range s.entryTypes.EntryTypes {
		visible[EntityType(id)] = struct{}{}
	}
	m := createEndpointMap(s.common, visible, url)
	s.mapByHost[url] = m
	return m
}

// InfoResponseMeta builds the ResponseMeta for a pure info/framework
// endpoint (no query was involved).
func (s *Setup) InfoResponseMeta(entityType EntityType) ResponseMeta {
	schema := s.responseSchemas[entityType]
	return ResponseMeta{
		BeaconID:        s.common.BeaconID,
		APIVersion:      s.serviceInfo.Type.Version,
		ReturnedSchemas: []SchemaPerEntity{schema},
	}
}

// granularity resolves query.requestedGranularity, falling back to this
// personality's configured default and then to "boolean", spec §4.4.
func (s *Setup) granularity(req *Request) Granularity {
	if req.Query.RequestedGranularity != "" {
		return req.Query.RequestedGranularity
	}
	if s.configuration.SecurityAttributes.DefaultGranularity != "" {
		return s.configuration.SecurityAttributes.DefaultGranularity
	}
	return GranularityBoolean
}

func (s *Setup) requestSummary(req *Request) *ReceivedRequestSummary {
	pagination := Pagination{}
	if req.Query.Pagination != nil {
		pagination = *req.Query.Pagination
	}
	return &ReceivedRequestSummary{
		APIVersion:                req.Meta.APIVersion,
		RequestedSchemas:          req.Meta.RequestedSchemas,
		Filters:                   req.Query.Filters,
		RequestParameters:         req.Query.RequestParameters,
		IncludeResultsetResponses: req.Query.IncludeResultsetResponses,
		Pagination:                pagination,
		RequestedGranularity:      s.granularity(req),
		TestMode:                  req.Query.TestMode,
	}
}

func (s *Setup) queryResponseMeta(req *Request, entityType EntityType) ResponseMeta {
	schema, hasSchema := s.responseSchemas[entityType]
	var schemas []SchemaPerEntity
	if hasSchema {
		schemas = []SchemaPerEntity{schema}
	}
	return ResponseMeta{
		BeaconID:               s.common.BeaconID,
		APIVersion:             s.serviceInfo.Type.Version,
		ReturnedSchemas:        schemas,
		ReturnedGranularity:    s.granularity(req),
		ReceivedRequestSummary: s.requestSummary(req),
		TestMode:               req.Query.TestMode,
	}
}

// countValue hides numTotalResults entirely at "boolean" granularity,
// spec §4.4.
func (s *Setup) countValue(req *Request, count int) *int {
	if s.granularity(req) == GranularityBoolean {
		return nil
	}
	return &count
}

// isShowRecords reports whether the per-dataset `results` arrays should be
// populated (only at "record" granularity).
func (s *Setup) isShowRecords(req *Request) bool {
	return s.granularity(req) == GranularityRecord
}

// Response wraps a ResultSets payload (the /g_variants and /individuals
// shape) in the shared BeaconResponse envelope, applying granularity
// shaping.
func (s *Setup) Response(req *Request, results ResultSets, entityType EntityType) Response {
	count := len(results.ResultSets)
	summary := &QueryResponse{Exists: count > 0, NumTotalResults: s.countValue(req, count)}

	var body any
	if s.isShowRecords(req) {
		body = results
	}

	return Response{
		Meta:            s.queryResponseMeta(req, entityType),
		ResponseSummary: summary,
		Response:        body,
	}
}

// DatasetEntry is one row of the /datasets collection response.
type DatasetEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	CreateDateTime string `json:"createDateTime,omitempty"`
	UpdateDateTime string `json:"updateDateTime,omitempty"`
}

// CollectionResponse wraps a plain collection payload (the /datasets
// shape), spec §4.4.
func (s *Setup) CollectionResponse(req *Request, entries []DatasetEntry, entityType EntityType) Response {
	count := len(entries)
	summary := &QueryResponse{Exists: count > 0, NumTotalResults: s.countValue(req, count)}

	var body any
	if s.isShowRecords(req) {
		body = map[string]any{"collections": entries}
	}

	return Response{
		Meta:            s.queryResponseMeta(req, entityType),
		ResponseSummary: summary,
		Response:        body,
	}
}

// CensorCount applies this personality's hideLowerCounts threshold.
func (s *Setup) CensorCount(count *int) *int {
	return CensorCount(count, s.hideLowerCounts)
}

// RequestForQuery builds the implicit BeaconRequest used by GET endpoints
// that carry no JSON body (spec §4.4's GET /g_variants and /individuals).
func (s *Setup) RequestForQuery(query Query, entityType EntityType) Request {
	var schemas []SchemaPerEntity
	if schema, ok := s.responseSchemas[entityType]; ok {
		schemas = []SchemaPerEntity{schema}
	}
	return Request{
		Meta: RequestMeta{
			APIVersion:       s.serviceInfo.Type.Version,
			RequestedSchemas: schemas,
		},
		Query: query,
	}
}
