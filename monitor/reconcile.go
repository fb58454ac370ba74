// Startup reconcile pass, spec §2: before either Monitor back-end starts
// streaming events, the data directory is scanned once to populate the
// Registry. Grounded on
// original_source/mini_node/data/registry.py::scan_data_directory.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package monitor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/fname"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
	"gopkg.in/yaml.v3"
)

// ScanDataDirectory walks dataDir one level deep for dataset directories,
// loading each metadata.yaml and each {GRCh37,GRCh38}/*.parquet file into reg.
// A dataset whose metadata.yaml is missing or malformed is recorded as a
// problematic file rather than aborting the whole scan (spec §7).
func ScanDataDirectory(dataDir string, reg *registry.Registry) error {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		datasetID := e.Name()
		datasetDir := filepath.Join(dataDir, datasetID)
		scanDataset(datasetID, datasetDir, reg)
	}
	return nil
}

func scanDataset(datasetID, datasetDir string, reg *registry.Registry) {
	metadataPath := filepath.Join(datasetDir, fname.Metadata)
	data, err := os.ReadFile(metadataPath)
	if err != nil {
		reg.RecordIssue(metadataPath, err)
		return
	}
	var ds registry.FdpDataset
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		reg.RecordIssue(metadataPath, err)
		return
	}
	ds.ID = datasetID
	reg.AddDataset(datasetID, &ds)

	for _, assembly := range []string{fname.GRCh37, fname.GRCh38} {
		assemblyDir := filepath.Join(datasetDir, assembly)
		st, err := os.Stat(assemblyDir)
		if err != nil || !st.IsDir() {
			continue
		}
		scanAssembly(datasetID, assembly, assemblyDir, reg)
	}
}

func scanAssembly(datasetID, assembly, assemblyDir string, reg *registry.Registry) {
	entries, err := os.ReadDir(assemblyDir)
	if err != nil {
		nlog.Warningf("cannot list assembly dir %s: %v", assemblyDir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fname.ParquetSuffix) {
			continue
		}
		reg.AddParquet(datasetID, assembly, filepath.Join(assemblyDir, e.Name()))
	}
}
