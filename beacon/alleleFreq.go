// Allele-frequency lookup, aggregated personality's /g_variants, spec §4.4.
// Grounded on
// original_source/mini_node/beacon/service/allele_freq.py, translated
// function for function.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/parquetio"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

// SequenceInterval is a 0-based [start, end) interval.
type SequenceInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type SequenceLocation struct {
	SequenceID string           `json:"sequence_id"`
	Interval   SequenceInterval `json:"interval"`
}

type LegacyVariation struct {
	Location       SequenceLocation `json:"location"`
	ReferenceBases string           `json:"referenceBases"`
	AlternateBases string           `json:"alternateBases"`
	VariantType    string           `json:"variantType"`
}

type Identifiers struct {
	GenomicHGVSID string `json:"genomicHGVSId"`
}

type PopulationFrequency struct {
	Population              string  `json:"population"`
	AlleleFrequency         float64 `json:"alleleFrequency"`
	AlleleCount             int32   `json:"alleleCount"`
	AlleleCountHomozygous   int32   `json:"alleleCountHomozygous"`
	AlleleCountHeterozygous int32   `json:"alleleCountHeterozygous"`
	AlleleCountHemizygous   int32   `json:"alleleCountHemizygous"`
	AlleleNumber            int32   `json:"alleleNumber"`
}

type FrequencyInPopulations struct {
	NumberOfPopulations int                   `json:"numberOfPopulations"`
	Populations         []PopulationFrequency `json:"populations"`
}

type AlleleFreqResult struct {
	Identifiers            Identifiers              `json:"identifiers"`
	VariantInternalID      string                   `json:"variantInternalId"`
	Variation              LegacyVariation          `json:"variation"`
	FrequencyInPopulations []FrequencyInPopulations `json:"frequencyInPopulations"`
}

// AFLookup finds, per dataset, the rows matching the request's variant
// parameters and builds one AlleleFreqResult per matching dataset.
func AFLookup(beaconData *registry.BeaconDataView, params *VariantParams, page *Pagination) map[string]AlleleFreqResult {
	results := map[string]AlleleFreqResult{}
	if params == nil || params.IsNotSufficient() {
		return results
	}

	datasetFiles := beaconData.GetDatasetFiles(params.AssemblyID, params.ReferenceName, params.Start[0])

	limit := page.limit()
	skip := page.skip()
	matchCount := 0

	for datasetID, path := range datasetFiles {
		skipDetails := matchCount < skip
		result, hit := findAF(beaconData, path, params, skipDetails)
		if !hit {
			continue
		}
		matchCount++
		if result != nil {
			results[datasetID] = *result
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}

// findAF reads path, applying the variant predicate. hit is false when the
// file could not be read or matched nothing; when skipDetails is true a
// matching file still counts toward pagination but result is nil.
func findAF(beaconData *registry.BeaconDataView, path string, params *VariantParams, skipDetails bool) (result *AlleleFreqResult, hit bool) {
	variantType := params.effectiveVariantType()
	pos := int32(params.Start[0])

	beaconData.ForgetIssue(path)
	rows, err := parquetio.ReadAF(path, func(r parquetio.AFRow) bool {
		return r.POS == pos && r.REF == params.ReferenceBases &&
			r.ALT == params.AlternateBases && r.VT == variantType
	})
	if err != nil {
		beaconData.RecordIssue(path, err)
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}
	if skipDetails {
		return nil, true
	}

	r := afResult(params, rows)
	return &r, true
}

func afResult(params *VariantParams, rows []parquetio.AFRow) AlleleFreqResult {
	return AlleleFreqResult{
		Identifiers:            afIdentifiers(params),
		VariantInternalID:      variantInternalID(params.ReferenceBases, params.AlternateBases),
		Variation:              afVariation(params),
		FrequencyInPopulations: afFrequencies(rows),
	}
}

func afIdentifiers(params *VariantParams) Identifiers {
	refSeqID := refSeq[params.AssemblyID][params.ReferenceName]
	hgvs := fmt.Sprintf("%s:g.%d%s>%s", refSeqID, params.Start[0]+1, params.ReferenceBases, params.AlternateBases)
	return Identifiers{GenomicHGVSID: hgvs}
}

// variantInternalID follows the internal id shape used by
// beacon2-ri-tools-v2 (see DESIGN.md Open Question 4 for the uuid1->uuid4
// deviation).
func variantInternalID(ref, alt string) string {
	return uuid.New().String() + ":" + ref + ":" + alt
}

func afVariation(params *VariantParams) LegacyVariation {
	pos := params.Start[0]
	seqPos := pos + 1
	seqID := fmt.Sprintf("HGVSid:%s:g.%d%s>%s", params.ReferenceName, seqPos, params.ReferenceBases, params.AlternateBases)
	return LegacyVariation{
		Location: SequenceLocation{
			SequenceID: seqID,
			Interval:   SequenceInterval{Start: pos, End: pos + len(params.ReferenceBases)},
		},
		ReferenceBases: params.ReferenceBases,
		AlternateBases: params.AlternateBases,
		VariantType:    params.effectiveVariantType(),
	}
}

func afFrequencies(rows []parquetio.AFRow) []FrequencyInPopulations {
	pops := make([]PopulationFrequency, 0, len(rows))
	for _, r := range rows {
		pops = append(pops, PopulationFrequency{
			Population:              r.POPULATION,
			AlleleFrequency:         r.AF,
			AlleleCount:             r.AC,
			AlleleCountHomozygous:   r.ACHom,
			AlleleCountHeterozygous: r.ACHet,
			AlleleCountHemizygous:   r.ACHemi,
			AlleleNumber:            r.AN,
		})
	}
	return []FrequencyInPopulations{{
		NumberOfPopulations: len(pops),
		Populations:         pops,
	}}
}
