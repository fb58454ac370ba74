// GET query-string parsing: the same fields POST endpoints take as a JSON
// body, spec §4.4. Grounded on
// original_source/mini_node/beacon/api/request.py.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import (
	"net/url"
	"strconv"
	"strings"
)

// filterOperatorsByLength lists the two-char operators first so they are
// matched before their single-char prefix (">="
// before ">", "<=" before "<"), otherwise a string like "age>=P40Y" would
// wrongly split on the bare ">" and leave a stray "=" in the value.
var filterOperatorsByLength = []FilterOperator{
	OpLessEqual, OpGreaterEqual, OpEqual, OpNotEqual, OpLess, OpGreater,
}

// ParseFiltersString parses the comma-separated `filters` query parameter,
// spec §4.4 scenario 5: an id with no operator is a bare-id filter; an id
// followed by one of `{=, !, <, <=, >, >=}` splits into id/operator/value,
// with the id's underscores mapped to colons (so colon-bearing ontology ids
// are expressible in a URL).
func ParseFiltersString(value string) []QueryFilter {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var filters []QueryFilter
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		filters = append(filters, parseFilterItem(item))
	}
	return filters
}

func parseFilterItem(item string) QueryFilter {
	for _, op := range filterOperatorsByLength {
		pos := strings.Index(item, string(op))
		if pos > 1 {
			id := strings.TrimSuffix(item[:pos], ":")
			id = strings.ReplaceAll(id, "_", ":")
			fieldValue := strings.TrimLeft(item[pos+len(op):], " ")
			return QueryFilter{ID: id, Operator: op, Value: fieldValue}
		}
	}
	return QueryFilter{ID: item}
}

// ParseIncludeResponses maps the `includeResultsetResponses` query
// parameter, returning "" for anything not in the enum.
func ParseIncludeResponses(v string) IncludeResponses {
	switch IncludeResponses(v) {
	case IncludeAll, IncludeHit, IncludeMiss, IncludeNone:
		return IncludeResponses(v)
	default:
		return ""
	}
}

// ParseGranularity maps `requestedGranularity` (or, as a fallback, the
// shorter `granularity` alias some clients use).
func ParseGranularity(query url.Values) Granularity {
	v := query.Get("requestedGranularity")
	if v == "" {
		v = query.Get("granularity")
	}
	switch Granularity(v) {
	case GranularityBoolean, GranularityCount, GranularityRecord:
		return Granularity(v)
	default:
		return ""
	}
}

// ParseTestMode recognises only the literal "true"/"false" values.
func ParseTestMode(v string) bool {
	return v == "true"
}

// ParsePagination builds a *Pagination from `skip`/`limit`, or nil when
// neither was supplied (letting Pagination's own defaults take over).
func ParsePagination(query url.Values) *Pagination {
	skipStr, limitStr := query.Get("skip"), query.Get("limit")
	if skipStr == "" && limitStr == "" {
		return nil
	}
	p := &Pagination{}
	if skipStr != "" {
		if n, err := strconv.Atoi(skipStr); err == nil && n >= 0 {
			p.Skip = &n
		}
	}
	if limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n >= 0 {
			p.Limit = &n
		}
	}
	return p
}

// variantQueryFields lists the VariantParams JSON keys recognised on a GET
// `/g_variants` request's query string, in VariantParams field order.
var variantQueryFields = []string{
	"assemblyId", "geneId", "mateName", "aminoacidChange",
	"genomicAlleleShortForm", "referenceName", "referenceBases",
	"alternateBases", "start", "end", "variantType",
	"variantMinLength", "variantMaxLength",
}

// ParseVariantParamsFromQuery builds VariantParams from a GET `/g_variants`
// request's query string; returns nil when none of the recognised fields
// were supplied.
func ParseVariantParamsFromQuery(query url.Values) (*VariantParams, error) {
	present := false
	for _, name := range variantQueryFields {
		if query.Has(name) {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}

	p := &VariantParams{present: true}
	p.AssemblyID = query.Get("assemblyId")
	p.GeneID = query.Get("geneId")
	p.MateName = query.Get("mateName")
	p.AminoacidChange = query.Get("aminoacidChange")
	p.GenomicAlleleShortForm = query.Get("genomicAlleleShortForm")
	p.ReferenceName = query.Get("referenceName")
	p.ReferenceBases = query.Get("referenceBases")
	p.AlternateBases = query.Get("alternateBases")
	p.VariantType = query.Get("variantType")

	if s := query.Get("start"); s != "" {
		start, err := ParseStart(s)
		if err != nil {
			return nil, err
		}
		p.Start = start
	}
	if s := query.Get("end"); s != "" {
		end, err := ParseStart(s)
		if err != nil {
			return nil, err
		}
		p.End = end
	}
	if s := query.Get("variantMinLength"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			p.VariantMinLength = &n
		}
	}
	if s := query.Get("variantMaxLength"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			p.VariantMaxLength = &n
		}
	}

	return p, nil
}

// QueryFromValues assembles a Query from a GET request's URL parameters,
// the counterpart of decoding a POST body's `query` object.
func QueryFromValues(query url.Values, isGVariants bool) (Query, error) {
	q := Query{
		IncludeResultsetResponses: ParseIncludeResponses(query.Get("includeResultsetResponses")),
		Pagination:                ParsePagination(query),
		RequestedGranularity:      ParseGranularity(query),
		TestMode:                  ParseTestMode(query.Get("testMode")),
	}
	if f := ParseFiltersString(query.Get("filters")); f != nil {
		q.Filters = f
	}
	if isGVariants {
		params, err := ParseVariantParamsFromQuery(query)
		if err != nil {
			return Query{}, err
		}
		if params != nil {
			q.RequestParameters = &VariantParamsOrList{First: params}
		}
	}
	return q, nil
}
