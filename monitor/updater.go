// Package monitor implements the two Monitor back-ends (Filesystem Observer
// and, in objstore, the Object-Store Synchroniser) and the common Registry
// Updater that both dispatch through, spec §4.2.
//
// Grounded on original_source/mini_node/data/fs.py.
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

// Updater is the backend-agnostic dispatcher both Monitor implementations
// call into; it is the single writer of the Registry (spec §5).
type Updater struct {
	dataDir string
	reg     *registry.Registry
}

func NewUpdater(dataDir string, reg *registry.Registry) *Updater {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		abs = dataDir
	}
	return &Updater{dataDir: abs, reg: reg}
}

// OnNewFile handles a file created-or-modified event (spec §4.2).
func (u *Updater) OnNewFile(path string) {
	base := filepath.Base(path)
	switch {
	case base == fname.Metadata:
		u.onNewMetadata(path)
	case strings.HasSuffix(base, fname.ParquetSuffix):
		u.onNewParquet(path)
	}
}

// OnRemovedFile handles a file-removed event.
func (u *Updater) OnRemovedFile(path string) {
	base := filepath.Base(path)
	switch {
	case base == fname.Metadata:
		u.onRemovedMetadata(path)
	case strings.HasSuffix(base, fname.ParquetSuffix):
		u.onRemovedParquet(path)
	}
}

func (u *Updater) onNewMetadata(path string) {
	datasetID, ok := u.resolveDataset(path)
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		u.reg.RecordIssue(path, err)
		return
	}
	var ds registry.FdpDataset
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		u.reg.RecordIssue(path, err)
		return
	}
	ds.ID = datasetID
	u.reg.ForgetIssue(path)
	u.reg.AddDataset(datasetID, &ds)
}

// onRemovedMetadata implements spec §4.2's plain-removal rule: inverse of
// add, purgeBeacon=false. See DESIGN.md Open Question 1 — the Python
// original passes also_beacon_data=True here; spec.md overrides it.
func (u *Updater) onRemovedMetadata(path string) {
	datasetID, ok := u.resolveDataset(path)
	if !ok {
		return
	}
	u.reg.ForgetIssue(path)
	u.reg.RemoveDataset(datasetID, false)
}

func (u *Updater) onNewParquet(path string) {
	datasetID, assembly, ok := u.resolveDatasetAssembly(path)
	if !ok {
		return
	}
	u.reg.AddParquet(datasetID, assembly, path)
}

func (u *Updater) onRemovedParquet(path string) {
	datasetID, _, ok := u.resolveDatasetAssembly(path)
	if !ok {
		return
	}
	u.reg.ForgetIssue(path)
	u.reg.RemoveParquet(datasetID, path)
}

// OnMovedDir implements spec §4.2's directory-rename handling.
func (u *Updater) OnMovedDir(src, dest string) {
	srcParent := filepath.Dir(src)
	srcBase := filepath.Base(src)

	switch {
	case srcParent == u.dataDir:
		// dataset directory renamed away
		u.reg.RemoveDataset(srcBase, true)
	case fname.IsBeaconAssembly(srcBase):
		// assembly directory renamed away; see DESIGN.md Open Question 2
		datasetID := filepath.Base(srcParent)
		u.reg.RemoveBeaconDataset(datasetID, srcBase)
	}

	u.reg.ForgetIssuesInDir(src)

	destParent := filepath.Dir(dest)
	destBase := filepath.Base(dest)

	switch {
	case destParent == u.dataDir:
		metadata := filepath.Join(dest, fname.Metadata)
		if _, err := os.Stat(metadata); err == nil {
			u.onNewMetadata(metadata)
		}
		for _, assembly := range []string{fname.GRCh37, fname.GRCh38} {
			assemblyDir := filepath.Join(dest, assembly)
			if st, err := os.Stat(assemblyDir); err == nil && st.IsDir() {
				u.includeAssemblyDir(destBase, assemblyDir)
			}
		}
	case fname.IsBeaconAssembly(destBase):
		datasetID := filepath.Base(destParent)
		u.includeAssemblyDir(datasetID, dest)
	}
}

func (u *Updater) includeAssemblyDir(datasetID, assemblyDir string) {
	assembly := filepath.Base(assemblyDir)
	entries, err := os.ReadDir(assemblyDir)
	if err != nil {
		nlog.Warningf("cannot list assembly dir %s: %v", assemblyDir, err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fname.ParquetSuffix) {
			u.reg.AddParquet(datasetID, assembly, filepath.Join(assemblyDir, e.Name()))
		}
	}
}

// resolveDataset requires file_path's parent directory to be a direct child
// of dataDir (spec §3 path grammar); anything else is ignored with a
// warning, not recorded as problematic.
func (u *Updater) resolveDataset(path string) (string, bool) {
	datasetDir := filepath.Dir(path)
	if filepath.Dir(datasetDir) != u.dataDir {
		nlog.Warningf("ignoring metadata file outside the expected layout: %s", path)
		return "", false
	}
	return filepath.Base(datasetDir), true
}

func (u *Updater) resolveDatasetAssembly(path string) (string, string, bool) {
	assemblyDir := filepath.Dir(path)
	assembly := filepath.Base(assemblyDir)
	if !fname.IsBeaconAssembly(assembly) {
		nlog.Warningf("ignoring parquet file with unrecognised assembly directory: %s", path)
		return "", "", false
	}
	datasetDir := filepath.Dir(assemblyDir)
	if filepath.Dir(datasetDir) != u.dataDir {
		nlog.Warningf("ignoring parquet file outside the expected layout: %s", path)
		return "", "", false
	}
	return filepath.Base(datasetDir), assembly, true
}
