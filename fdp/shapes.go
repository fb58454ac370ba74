// SHACL shape definitions, spec §4.4: one NodeShape (and matching served
// Turtle document) per FDP entity. See fdp/rdf/shacl.go for why shapes are
// defined natively here instead of parsed from Turtle.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fdp

import (
	_ "embed"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp/rdf"
)

const (
	nsDCT          rdf.IRI = "http://purl.org/dc/terms/"
	nsDCAT         rdf.IRI = "http://www.w3.org/ns/dcat#"
	nsFDPO         rdf.IRI = "https://w3id.org/fdp/fdp-o#"
	nsHealthDCATAP rdf.IRI = "https://healthdcat-ap.github.io/#"
)

func iri(ns rdf.IRI, local string) rdf.IRI { return rdf.IRI(string(ns) + local) }

var shapeDefs = map[string]rdf.NodeShape{
	"fdp": {
		ID:          "fdp",
		TargetClass: iri(nsFDPO, "FAIRDataPoint"),
		Properties: []rdf.PropertyShape{
			{Path: iri(nsDCT, "title"), MinCount: 1, MaxCount: 1, Message: "a FAIR Data Point needs exactly one title"},
			{Path: iri(nsDCT, "publisher"), MinCount: 1, Message: "a FAIR Data Point needs a publisher"},
		},
	},
	"catalogs": {
		ID:          "catalogs",
		TargetClass: iri(nsDCAT, "Catalog"),
		Properties: []rdf.PropertyShape{
			{Path: iri(nsDCT, "title"), MinCount: 1, MaxCount: 1},
		},
	},
	"catalog": {
		ID:          "catalog",
		TargetClass: iri(nsDCAT, "Catalog"),
		Properties: []rdf.PropertyShape{
			{Path: iri(nsDCT, "title"), MinCount: 1, MaxCount: 1, Message: "a catalog needs exactly one title"},
			{Path: iri(nsDCT, "description"), MinCount: 1, MaxCount: 1},
		},
	},
	"dataset": {
		ID:          "dataset",
		TargetClass: iri(nsDCAT, "Dataset"),
		Properties: []rdf.PropertyShape{
			{Path: iri(nsDCT, "title"), MinCount: 1, MaxCount: 1, Message: "a dataset needs exactly one title"},
			{Path: iri(nsDCT, "description"), MinCount: 1, MaxCount: 1},
			{Path: iri(nsHealthDCATAP, "numberOfRecords"), MaxCount: 1, Datatype: rdf.XSDNonNegativeInteger},
		},
	},
	"profile": {
		ID:          "profile",
		TargetClass: iri(nsDCT, "Standard"),
		Properties: []rdf.PropertyShape{
			{Path: iri(nsDCT, "conformsTo"), MinCount: 1, MaxCount: 1},
		},
	},
}

//go:embed shacl/fdp.ttl
var shaclFDP string

//go:embed shacl/catalogs.ttl
var shaclCatalogs string

//go:embed shacl/catalog.ttl
var shaclCatalog string

//go:embed shacl/dataset.ttl
var shaclDataset string

//go:embed shacl/profile.ttl
var shaclProfile string

var shaclDocuments = map[string]string{
	"fdp":      shaclFDP,
	"catalogs": shaclCatalogs,
	"catalog":  shaclCatalog,
	"dataset":  shaclDataset,
	"profile":  shaclProfile,
}
