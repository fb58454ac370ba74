// Individuals count, sensitive personality's /individuals, spec §4.4.
// Grounded on original_source/mini_node/beacon/service/individuals.py,
// translated function for function (IndividualFilter,
// get_individuals_count, resolve_variant_filter, resolve_filters,
// get_results_from_individuals_parquet, get_results_from_variants,
// filter_individuals_by_variant, parse_range, filter_individuals).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import (
	"strconv"
	"strings"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/parquetio"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

const (
	ontologyMale   = "NCIT:C20197"
	ontologyFemale = "NCIT:C16576"
)

// IndividualFilter is the resolved sex/age-of-onset filter for an
// individuals-count query. A zero-value filter matches everyone.
type IndividualFilter struct {
	sex      string // "", "M", "F", or "UNKNOWN"
	hasAge   bool
	age      isoPeriod
	operator FilterOperator
}

func newIndividualFilter(sexValue string, age *isoPeriod, operator FilterOperator) IndividualFilter {
	f := IndividualFilter{sex: convertSexOntology(sexValue)}
	if age != nil && operator != "" {
		f.hasAge = true
		f.age = *age
		f.operator = operator
	}
	return f
}

func convertSexOntology(v string) string {
	switch v {
	case "":
		return ""
	case ontologyMale:
		return "M"
	case ontologyFemale:
		return "F"
	default:
		return "UNKNOWN"
	}
}

func (f IndividualFilter) matchesAll() bool { return f.sex == "" && !f.hasAge }
func (f IndividualFilter) hasAgeFilter() bool { return f.hasAge }

func (f IndividualFilter) matchesAge(fileAge string) bool {
	if !f.hasAge {
		return true
	}
	if !strings.HasPrefix(fileAge, "P") {
		return false
	}
	value, err := parseISOPeriod(fileAge)
	if err != nil {
		nlog.Warningf("invalid ISO 8601 period %q encountered in individuals.parquet: %v", fileAge, err)
		return false
	}
	a, b := f.age.approxDays(), value.approxDays()
	switch f.operator {
	case OpLess:
		return a < b
	case OpGreater:
		return a > b
	case OpLessEqual:
		return a <= b
	case OpGreaterEqual:
		return a >= b
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	default:
		return false
	}
}

// IndividualsCount implements get_individuals_count. hideLowerCounts is the
// personality's configured censoring threshold (spec §4.4).
func IndividualsCount(beaconData *registry.BeaconDataView, req *Request, hideLowerCounts int) ResultSets {
	if req.Query.TestMode {
		nlog.Infof("returning empty results due to testMode=true")
		return newResultSets()
	}
	if req.Query.IncludeResultsetResponses != "" && req.Query.IncludeResultsetResponses != IncludeHit {
		nlog.Infof("returning empty results due to includeResultsetResponses=%s", req.Query.IncludeResultsetResponses)
		return newResultSets()
	}

	params := resolveVariantFilter(req)
	if params != nil && !params.HasSufficientValues() {
		params = nil
	}
	if params != nil && params.HasUnsupportedValues() {
		nlog.Warningf("returning empty results due to unsupported request parameters")
		return newResultSets()
	}

	filter, ok := resolveIndividualFilters(req.Query.Filters)
	if !ok {
		nlog.Infof("returning empty results due to issues in query.filters")
		return newResultSets()
	}

	limit, skip := req.Query.Pagination.limit(), req.Query.Pagination.skip()

	if params == nil {
		return resultsFromIndividualsParquet(beaconData, filter, skip, limit)
	}
	return resultsFromVariants(beaconData, params, filter, skip, limit, hideLowerCounts)
}

func resolveVariantFilter(req *Request) *VariantParams {
	if req.Query.RequestParameters == nil || req.Query.RequestParameters.First == nil {
		return nil
	}
	p := req.Query.RequestParameters.First
	if !p.HasValues() {
		return nil
	}
	return p
}

// resolveIndividualFilters implements resolve_filters; ok is false on any
// validation failure (unsupported filter id, wrong scope, bad duration).
func resolveIndividualFilters(filters []QueryFilter) (IndividualFilter, bool) {
	var sexValue string
	var ageValue *isoPeriod
	var ageOperator FilterOperator

	for _, item := range filters {
		if item.ID != "sex" && item.ID != "diseases.ageOfOnset.iso8601duration" {
			nlog.Warningf("unsupported filter %q", item.ID)
			return IndividualFilter{}, false
		}
		if item.Scope != "individual" {
			nlog.Warningf("unexpected scope %q for filter %q", item.Scope, item.ID)
			return IndividualFilter{}, false
		}
		switch item.ID {
		case "sex":
			sexValue = item.Value
		case "diseases.ageOfOnset.iso8601duration":
			parsed, err := parseISOPeriod(item.Value)
			if err != nil {
				nlog.Warningf("could not parse age-of-onset duration: %v", err)
				return IndividualFilter{}, false
			}
			ageValue = &parsed
			ageOperator = item.Operator
		}
	}
	return newIndividualFilter(sexValue, ageValue, ageOperator), true
}

func resultsFromIndividualsParquet(beaconData *registry.BeaconDataView, filter IndividualFilter, skip, limit int) ResultSets {
	results := newResultSets()
	datasets := beaconData.GetDatasetIndividuals(false, "", "", 0)
	matchCount := 0

	for datasetID, files := range datasets {
		count := filterIndividuals(beaconData, files[0], nil, filter)
		if count == 0 {
			continue
		}
		matchCount++
		if matchCount <= skip {
			continue
		}
		results.ResultSets = append(results.ResultSets, ResultSet{ID: datasetID, ResultsCount: count, Results: []any{}})
		if len(results.ResultSets) >= limit {
			break
		}
	}
	return results
}

func resultsFromVariants(beaconData *registry.BeaconDataView, params *VariantParams, filter IndividualFilter, skip, limit, hideLowerCounts int) ResultSets {
	datasets := beaconData.GetDatasetIndividuals(true, params.AssemblyID, params.ReferenceName, params.Start[0])

	results := newResultSets()
	matchCount := 0

	for datasetID, files := range datasets {
		rawCount := filterIndividualsByVariant(beaconData, params, filter, files[1], files[0])
		// Censoring enables filtering out rare individuals with rare
		// variants; the default threshold (1) does not censor at all.
		count := CensorCount(asCount(rawCount), hideLowerCounts)
		if count == nil {
			continue
		}
		matchCount++
		if matchCount <= skip {
			continue
		}
		results.ResultSets = append(results.ResultSets, ResultSet{ID: datasetID, ResultsCount: *count, Results: []any{}})
		if len(results.ResultSets) >= limit {
			break
		}
	}
	return results
}

// CensorCount applies the hideLowerCounts threshold, spec §4.4: counts
// strictly below the threshold (nil included) are replaced with "no result".
func CensorCount(count *int, hideLowerCounts int) *int {
	if count == nil || *count < hideLowerCounts {
		return nil
	}
	return count
}

// asCount turns a zero "no match" sentinel into nil, mirroring the original's
// match_count if match_count > 0 else None.
func asCount(count int) *int {
	if count == 0 {
		return nil
	}
	return &count
}

func filterIndividualsByVariant(beaconData *registry.BeaconDataView, params *VariantParams, filter IndividualFilter, variantsFile, individualsFile string) int {
	variantType := params.effectiveVariantType()
	pos := int32(params.Start[0])

	beaconData.ForgetIssue(variantsFile)
	matched, err := parquetio.ReadVariantIndividuals(variantsFile, func(r parquetio.VariantIndividualsRow) bool {
		return r.POS == pos && r.REF == params.ReferenceBases && r.ALT == params.AlternateBases && r.VT == variantType
	})
	if err != nil {
		beaconData.RecordIssue(variantsFile, err)
		return 0
	}
	if len(matched) == 0 {
		return 0
	}

	indices := parseRange(matched[0].Individuals)
	if len(indices) == 0 {
		return 0
	}
	return filterIndividuals(beaconData, individualsFile, indices, filter)
}

// parseRange parses the INDIVIDUALS column's comma-delimited list of
// integers and inclusive a-b ranges into a set, spec §6.
func parseRange(s string) map[int]struct{} {
	out := map[int]struct{}{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "-") {
			parts := strings.SplitN(item, "-", 2)
			start, err1 := strconv.Atoi(parts[0])
			end, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				continue
			}
			for i := start; i <= end; i++ {
				out[i] = struct{}{}
			}
			continue
		}
		if n, err := strconv.Atoi(item); err == nil {
			out[n] = struct{}{}
		}
	}
	return out
}

// filterIndividuals returns the count of individuals matching filter,
// restricted to indices when non-empty (a nil or empty indices set means "no
// restriction"; filterIndividualsByVariant returns 0 itself when a matched
// variant's INDIVIDUALS list is empty, so it never reaches this call).
func filterIndividuals(beaconData *registry.BeaconDataView, parquetFile string, indices map[int]struct{}, filter IndividualFilter) int {
	if filter.matchesAll() && len(indices) > 0 {
		return len(indices)
	}

	beaconData.ForgetIssue(parquetFile)
	rows, err := parquetio.ReadIndividualsProjected(parquetFile, func(r parquetio.IndividualProjectedRow) bool {
		if len(indices) > 0 {
			if _, ok := indices[int(r.Index)]; !ok {
				return false
			}
		}
		if filter.sex != "" && r.Sex != filter.sex {
			return false
		}
		return true
	})
	if err != nil {
		beaconData.RecordIssue(parquetFile, err)
		return 0
	}
	if len(rows) == 0 {
		return 0
	}

	if !filter.hasAgeFilter() {
		return len(rows)
	}

	beaconData.ForgetIssue(parquetFile)
	ages, err := parquetio.ReadIndividuals(parquetFile, func(r parquetio.IndividualRow) bool {
		if len(indices) > 0 {
			if _, ok := indices[int(r.Index)]; !ok {
				return false
			}
		}
		if filter.sex != "" && r.Sex != filter.sex {
			return false
		}
		return true
	})
	if err != nil {
		beaconData.RecordIssue(parquetFile, err)
		return 0
	}
	matchCount := 0
	for _, r := range ages {
		if filter.matchesAge(r.Age) {
			matchCount++
		}
	}
	return matchCount
}
