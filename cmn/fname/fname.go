// Package fname contains filename and directory-layout constants shared
// across the registry, monitor, and config packages.
/*
 * Copyright (c) 2018-2022, NVIDIA CORPORATION. All rights reserved.
 */
package fname

const (
	// per-dataset metadata, DATA_DIR/<dataset_id>/metadata.yaml
	Metadata = "metadata.yaml"

	// configuration, loaded relative to -config
	AppConfig              = "app.yaml"
	FdpConfig              = "fdp.yaml"
	BeaconCommonConfig     = "beacon-common.yaml"
	BeaconAggregatedConfig = "beacon-aggregated.yaml"
	BeaconSensitiveConfig  = "beacon-sensitive.yaml"

	// parquet basename prefixes/names, spec §3/§6
	AlleleFreqPrefix   = "allele-freq-"
	IndividualsPrefix  = "individuals-"
	IndividualsParquet = "individuals.parquet"

	ParquetSuffix = ".parquet"

	// SHACL shapes shipped alongside the FDP templates
	ShaclDir = "shacl"
)

// Assembly directory names, spec §3: BeaconAssembly is the closed set
// {GRCh37, GRCh38}.
const (
	GRCh37 = "GRCh37"
	GRCh38 = "GRCh38"
)

// IsBeaconAssembly reports whether s is a recognised assembly name.
func IsBeaconAssembly(s string) bool { return s == GRCh37 || s == GRCh38 }
