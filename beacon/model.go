// Package beacon is the Beacon Query Engine, spec §4.4: request/response
// model, filter parsing, allele-frequency lookup, individuals counting,
// dataset listing, and granularity shaping, shared by the aggregated and
// sensitive personalities.
//
// Grounded on
// original_source/mini_node/beacon/model/{common,variant,enums}.py.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

// Granularity is the Beacon response-shaping mode, spec §4.4.
type Granularity string

const (
	GranularityBoolean Granularity = "boolean"
	GranularityCount   Granularity = "count"
	GranularityRecord  Granularity = "record"
)

// FilterOperator is one of the comparison operators accepted in a filter
// string, spec §4.4.
type FilterOperator string

const (
	OpEqual       FilterOperator = "="
	OpNotEqual    FilterOperator = "!"
	OpLess        FilterOperator = "<"
	OpLessEqual   FilterOperator = "<="
	OpGreater     FilterOperator = ">"
	OpGreaterEqual FilterOperator = ">="
)

// IncludeResponses mirrors the Beacon `includeResultsetResponses` enum.
type IncludeResponses string

const (
	IncludeAll  IncludeResponses = "ALL"
	IncludeHit  IncludeResponses = "HIT"
	IncludeMiss IncludeResponses = "MISS"
	IncludeNone IncludeResponses = "NONE"
)

// QueryFilter is one entry of the request's `filters` array.
type QueryFilter struct {
	ID       string         `json:"id"`
	Operator FilterOperator `json:"operator,omitempty"`
	Value    string         `json:"value,omitempty"`
	Scope    string         `json:"scope,omitempty"`
}

// Pagination mirrors the Beacon pagination object; Limit/Skip default to
// 10/0 when absent (spec §4.4).
type Pagination struct {
	Limit *int `json:"limit,omitempty"`
	Skip  *int `json:"skip,omitempty"`
}

func (p *Pagination) limit() int {
	if p == nil || p.Limit == nil {
		return 10
	}
	return *p.Limit
}

func (p *Pagination) skip() int {
	if p == nil || p.Skip == nil {
		return 0
	}
	return *p.Skip
}

// SchemaPerEntity names one returned/requested schema.
type SchemaPerEntity struct {
	EntityType string `json:"entityType"`
	SchemaURL  string `json:"schema"`
}

// Query is the request's `query` object, spec §4.4.
type Query struct {
	RequestParameters         *VariantParamsOrList `json:"requestParameters,omitempty"`
	Filters                   []QueryFilter         `json:"filters,omitempty"`
	IncludeResultsetResponses IncludeResponses      `json:"includeResultsetResponses,omitempty"`
	Pagination                *Pagination           `json:"pagination,omitempty"`
	RequestedGranularity      Granularity           `json:"requestedGranularity,omitempty"`
	TestMode                  bool                  `json:"testMode,omitempty"`
}

// RequestMeta is the request's `meta` object.
type RequestMeta struct {
	APIVersion       string            `json:"apiVersion"`
	RequestedSchemas []SchemaPerEntity `json:"requestedSchemas,omitempty"`
}

// Request is the full Beacon request body, spec §4.4.
type Request struct {
	Meta  RequestMeta `json:"meta"`
	Query Query       `json:"query"`
}

// ReceivedRequestSummary echoes the incoming query with defaults filled in.
type ReceivedRequestSummary struct {
	APIVersion                string                `json:"apiVersion"`
	RequestedSchemas          []SchemaPerEntity     `json:"requestedSchemas"`
	Filters                   []QueryFilter         `json:"filters,omitempty"`
	RequestParameters         *VariantParamsOrList  `json:"requestParameters,omitempty"`
	IncludeResultsetResponses IncludeResponses      `json:"includeResultsetResponses,omitempty"`
	Pagination                Pagination            `json:"pagination"`
	RequestedGranularity      Granularity           `json:"requestedGranularity"`
	TestMode                  bool                  `json:"testMode,omitempty"`
}

// ResponseMeta is always present on a BeaconResponse, spec §4.4.
type ResponseMeta struct {
	BeaconID               string                  `json:"beaconId"`
	APIVersion             string                  `json:"apiVersion"`
	ReceivedRequestSummary *ReceivedRequestSummary `json:"receivedRequestSummary,omitempty"`
	ReturnedSchemas        []SchemaPerEntity       `json:"returnedSchemas"`
	ReturnedGranularity    Granularity             `json:"returnedGranularity,omitempty"`
	TestMode               bool                    `json:"testMode,omitempty"`
}

// QueryResponse is the top-level `responseSummary` object.
type QueryResponse struct {
	Exists          bool `json:"exists"`
	NumTotalResults *int `json:"numTotalResults,omitempty"`
}

// BeaconError is the error object on failed responses.
type BeaconError struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Response is the envelope shared by every Beacon endpoint.
type Response struct {
	Meta            ResponseMeta   `json:"meta"`
	ResponseSummary *QueryResponse `json:"responseSummary,omitempty"`
	Response        any            `json:"response,omitempty"`
	Error           *BeaconError   `json:"error,omitempty"`
}

// ResultSet is one dataset's row in a ResultSets response.
type ResultSet struct {
	ID            string `json:"id"`
	ResultsCount  int    `json:"resultsCount"`
	Results       []any  `json:"results"`
	SetType       string `json:"setType,omitempty"`
	ExactMatchCount *int `json:"exactMatchCount,omitempty"`
}

// ResultSets wraps the collection returned by /individuals and /datasets.
type ResultSets struct {
	ResultSets []ResultSet `json:"resultSets"`
}

func newResultSets() ResultSets {
	return ResultSets{ResultSets: []ResultSet{}}
}
