// Package registry implements the process-wide Data Registry: an in-memory
// index over FDP catalogs/datasets and, per Beacon personality, the
// assembly -> dataset -> file mapping that the Beacon Engine reads.
//
// Grounded on original_source/mini_node/data/registry.py, method for method.
// Concurrency follows the teacher's single-writer/many-reader convention
// (one sync.RWMutex protects every map; readers never mutate).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package registry

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/fname"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
)

// posDivider partitions positions into chr_group buckets, spec §3/GLOSSARY.
const posDivider = 10_000_000

type FdpCatalog struct {
	ID          string
	Title       string
	Description string
	Since       string
}

// FdpDataset is the mutable-via-metadata-file record, spec §3. Field tags
// match metadata.yaml's keys (yaml.safe_load(**kwargs) in the original).
type FdpDataset struct {
	ID               string   `yaml:"-"`
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	CatalogID        string   `yaml:"catalog_id"`
	Keywords         []string `yaml:"keywords"`
	Since            string   `yaml:"since"`
	Updated          string   `yaml:"updated"`
	MinAge           *int     `yaml:"min_age"`
	MaxAge           *int     `yaml:"max_age"`
	IndividualCount  *int     `yaml:"individual_count"`
	RecordCount      int      `yaml:"record_count"`
	DataProviderName string   `yaml:"data_provider_name"`
}

type fdpData struct {
	catalogs        map[string]FdpCatalog
	datasets        map[string]*FdpDataset
	catalogDatasets map[string][]string // ordered
}

// BeaconDataset is one dataset's file index within a single Beacon
// personality, spec §3.
type BeaconDataset struct {
	DatasetID          string
	IndividualsParquet string // "" means absent
	ChrGroupFiles      map[string]string
}

func (d *BeaconDataset) empty() bool {
	return d.IndividualsParquet == "" && len(d.ChrGroupFiles) == 0
}

// BeaconData holds one Beacon personality's assembly -> ordered dataset list.
type BeaconData struct {
	assemblies map[string][]*BeaconDataset // key: fname.GRCh37/GRCh38
}

func newBeaconData() *BeaconData {
	return &BeaconData{assemblies: make(map[string][]*BeaconDataset)}
}

// GetDatasetIDs returns every distinct dataset id indexed by this
// personality, sorted.
func (b *BeaconData) GetDatasetIDs() []string {
	seen := map[string]struct{}{}
	for _, list := range b.assemblies {
		for _, ds := range list {
			seen[ds.DatasetID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sortStrings(out)
	return out
}

// GetDatasetFiles returns dataset_id -> allele-freq/individuals-variant file
// path for the chr_group implied by (chrom, pos), spec §4.1.
func (b *BeaconData) GetDatasetFiles(assembly, chrom string, pos int) map[string]string {
	out := map[string]string{}
	list, ok := b.assemblies[assembly]
	if !ok {
		return out
	}
	group := chrGroup(chrom, pos)
	for _, ds := range list {
		if p, ok := ds.ChrGroupFiles[group]; ok {
			out[ds.DatasetID] = p
		}
	}
	return out
}

// GetDatasetIndividuals returns dataset_id -> (individuals.parquet,
// chr_group_file) for the sensitive personality, spec §4.1. When
// assembly/chrom/pos are all supplied (hasKey=true), only datasets with BOTH
// files are returned; otherwise every dataset with an individuals file.
func (b *BeaconData) GetDatasetIndividuals(hasKey bool, assembly, chrom string, pos int) map[string][2]string {
	out := map[string][2]string{}
	var group string
	if hasKey {
		group = chrGroup(chrom, pos)
		list, ok := b.assemblies[assembly]
		if !ok {
			return out
		}
		for _, ds := range list {
			if ds.IndividualsParquet == "" {
				nlog.Warningf("dataset %s is missing its individuals.parquet file", ds.DatasetID)
				continue
			}
			p2, ok := ds.ChrGroupFiles[group]
			if !ok {
				continue
			}
			out[ds.DatasetID] = [2]string{ds.IndividualsParquet, p2}
		}
		return out
	}
	for _, list := range b.assemblies {
		for _, ds := range list {
			if ds.IndividualsParquet == "" {
				nlog.Warningf("dataset %s is missing its individuals.parquet file", ds.DatasetID)
				continue
			}
			out[ds.DatasetID] = [2]string{ds.IndividualsParquet, ""}
		}
	}
	return out
}

func chrGroup(chrom string, pos int) string {
	return chrom + "." + strconv.Itoa(pos/posDivider)
}

// Registry is the process-wide singleton, spec §3: readers take a shared
// (read-locked) view; the single Monitor goroutine is the exclusive writer.
type Registry struct {
	mu sync.RWMutex

	fdp                fdpData
	aggregatedBeacon   *BeaconData
	sensitiveBeacon    *BeaconData
	problematicFiles   map[string]string
}

// New constructs a Registry seeded with the FDP catalogs known at startup
// (loaded from fdp.yaml); catalogs are immutable for the process lifetime.
func New(catalogs map[string]FdpCatalog) *Registry {
	r := &Registry{
		fdp: fdpData{
			catalogs:        map[string]FdpCatalog{},
			datasets:        map[string]*FdpDataset{},
			catalogDatasets: map[string][]string{},
		},
		aggregatedBeacon: newBeaconData(),
		sensitiveBeacon:  newBeaconData(),
		problematicFiles: map[string]string{},
	}
	for id, c := range catalogs {
		r.fdp.catalogs[id] = c
	}
	return r
}

//
// FDP / catalog side
//

// AddDataset upserts a dataset's FDP metadata and (re)registers it to its
// catalog's ordered list, removing it from any other catalog list first.
func (r *Registry) AddDataset(id string, props *FdpDataset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fdp.datasets[id] = props

	catalogID := props.CatalogID
	if catalogID == "" {
		nlog.Warningf("[add_dataset] %s is missing catalog_id", id)
		return
	}

	for cid, ids := range r.fdp.catalogDatasets {
		r.fdp.catalogDatasets[cid] = removeString(ids, id)
	}
	r.fdp.catalogDatasets[catalogID] = append(r.fdp.catalogDatasets[catalogID], id)

	if _, known := r.fdp.catalogs[catalogID]; !known {
		nlog.Warningf("[add_dataset] %s references catalog_id %q, which is not "+
			"defined in FDP configuration, thus the dataset is not visible.", id, catalogID)
	}
}

// RemoveDataset removes the dataset's FDP entry and, only when purgeBeacon
// is true, its Beacon-side entries in both personalities too. See
// DESIGN.md Open Question 1 for why this flag is never set on a plain
// metadata-file removal.
func (r *Registry) RemoveDataset(id string, purgeBeacon bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for cid, ids := range r.fdp.catalogDatasets {
		r.fdp.catalogDatasets[cid] = removeString(ids, id)
	}
	delete(r.fdp.datasets, id)

	if !purgeBeacon {
		return
	}
	for _, bd := range []*BeaconData{r.aggregatedBeacon, r.sensitiveBeacon} {
		for assembly, list := range bd.assemblies {
			bd.assemblies[assembly] = filterBeaconDatasets(list, id)
		}
	}
}

// RemoveBeaconDataset removes only the Beacon-side entries for (id,
// assembly) in both personalities, leaving FDP metadata untouched. Used for
// assembly-directory renames (DESIGN.md Open Question 2).
func (r *Registry) RemoveBeaconDataset(id, assembly string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bd := range []*BeaconData{r.aggregatedBeacon, r.sensitiveBeacon} {
		if list, ok := bd.assemblies[assembly]; ok {
			bd.assemblies[assembly] = filterBeaconDatasets(list, id)
		}
	}
}

func filterBeaconDatasets(list []*BeaconDataset, id string) []*BeaconDataset {
	out := list[:0:0]
	for _, ds := range list {
		if ds.DatasetID != id {
			out = append(out, ds)
		}
	}
	return out
}

//
// Beacon / parquet side
//

// AddParquet resolves the target personality from the file's basename and
// upserts the file into that dataset's BeaconDataset, spec §4.1.
func (r *Registry) AddParquet(id, assembly, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	filename := filepath.Base(path)
	bd := r.personalityFor(filename)
	if bd == nil {
		nlog.Warningf("[add_parquet] ignoring parquet file due to unsupported prefix [%s]", path)
		return
	}
	ds := r.resolveBeaconDataset(bd, assembly, id, true)

	if filename == fname.IndividualsParquet {
		ds.IndividualsParquet = path
		return
	}
	group, ok := resolveChrGroup(filename)
	if !ok {
		nlog.Warningf("[add_parquet] ignoring parquet file due to bad chr-group [%s]", path)
		return
	}
	ds.ChrGroupFiles[group] = path
}

// RemoveParquet is the inverse of AddParquet; it removes the BeaconDataset
// entirely once it holds no files.
func (r *Registry) RemoveParquet(id, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	filename := filepath.Base(path)
	assembly := filepath.Base(filepath.Dir(path))
	bd := r.personalityFor(filename)
	if bd == nil {
		return
	}
	ds := r.resolveBeaconDataset(bd, assembly, id, false)
	if ds == nil {
		return
	}

	if filename == fname.IndividualsParquet {
		ds.IndividualsParquet = ""
	} else if group, ok := resolveChrGroup(filename); ok {
		delete(ds.ChrGroupFiles, group)
	}

	if ds.empty() {
		if list, ok := bd.assemblies[assembly]; ok {
			bd.assemblies[assembly] = filterBeaconDatasets(list, id)
		}
	}
}

// personalityFor routes a parquet basename to its personality's BeaconData,
// spec §4.1 "Basename routing".
func (r *Registry) personalityFor(filename string) *BeaconData {
	switch {
	case strings.HasPrefix(filename, fname.AlleleFreqPrefix):
		return r.aggregatedBeacon
	case strings.HasPrefix(filename, fname.IndividualsPrefix), filename == fname.IndividualsParquet:
		return r.sensitiveBeacon
	default:
		return nil
	}
}

// resolveBeaconDataset finds (or, if create, creates) the BeaconDataset for
// (assembly, id) within bd. When assembly=="" it searches every assembly
// (used by RemoveParquet's cousin paths that only know the dataset id).
func (r *Registry) resolveBeaconDataset(bd *BeaconData, assembly, id string, create bool) *BeaconDataset {
	if assembly != "" {
		list := bd.assemblies[assembly]
		for _, ds := range list {
			if ds.DatasetID == id {
				return ds
			}
		}
		if !create {
			return nil
		}
		ds := &BeaconDataset{DatasetID: id, ChrGroupFiles: map[string]string{}}
		bd.assemblies[assembly] = append(list, ds)
		return ds
	}
	for _, list := range bd.assemblies {
		for _, ds := range list {
			if ds.DatasetID == id {
				return ds
			}
		}
	}
	return nil
}

// resolveChrGroup extracts the <K> substring between the final "chr" and the
// final "." in filename, spec §4.1 "Chr-group extraction".
func resolveChrGroup(filename string) (string, bool) {
	start := strings.LastIndex(filename, "chr")
	if start < 0 {
		return "", false
	}
	start += 3
	end := strings.LastIndex(filename, ".")
	if start <= 0 || end <= start {
		return "", false
	}
	return filename[start:end], true
}

//
// Problematic files
//

func (r *Registry) RecordIssue(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.problematicFiles[path] = err.Error()
	nlog.Warningf("problematic file [%s]: %v", path, err)
}

func (r *Registry) ForgetIssue(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.problematicFiles, path)
}

func (r *Registry) ForgetIssuesInDir(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path := range r.problematicFiles {
		if strings.HasPrefix(path, dir) {
			delete(r.problematicFiles, path)
		}
	}
}

func (r *Registry) ProblematicFiles() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.problematicFiles))
	for k, v := range r.problematicFiles {
		out[k] = v
	}
	return out
}

//
// Read-side accessors, each RLock'd for the duration of its own call: one
// accessor sees a consistent view of the maps it reads, but a handler that
// makes several accessor calls can observe writes made between them.
//

func (r *Registry) AggregatedBeacon() *BeaconDataView { return r.beaconView(r.aggregatedBeacon) }
func (r *Registry) SensitiveBeacon() *BeaconDataView  { return r.beaconView(r.sensitiveBeacon) }

// BeaconDataView exposes read-only BeaconData operations under the
// registry's lock; callers must not retain it past the call that produced
// it.
type BeaconDataView struct {
	r  *Registry
	bd *BeaconData
}

func (r *Registry) beaconView(bd *BeaconData) *BeaconDataView { return &BeaconDataView{r: r, bd: bd} }

func (v *BeaconDataView) GetDatasetIDs() []string {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	return v.bd.GetDatasetIDs()
}

func (v *BeaconDataView) GetDatasetFiles(assembly, chrom string, pos int) map[string]string {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	return v.bd.GetDatasetFiles(assembly, chrom, pos)
}

func (v *BeaconDataView) GetDatasetIndividuals(hasKey bool, assembly, chrom string, pos int) map[string][2]string {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	return v.bd.GetDatasetIndividuals(hasKey, assembly, chrom, pos)
}

// ForgetIssue and RecordIssue let query-time Parquet reads update the same
// problematic-files ledger the Monitor backends populate, mirroring
// original_source/mini_node/beacon/service/_parquet.py::read_parquet's
// forget_issues_with/record_issues_with pair around every file read.
func (v *BeaconDataView) ForgetIssue(path string)            { v.r.ForgetIssue(path) }
func (v *BeaconDataView) RecordIssue(path string, err error) { v.r.RecordIssue(path, err) }

// FdpDataset looks up one dataset's FDP metadata, if known.
func (r *Registry) FdpDataset(id string) (*FdpDataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.fdp.datasets[id]
	return ds, ok
}

// CatalogDatasets returns the ordered dataset-id list for a catalog.
func (r *Registry) CatalogDatasets(catalogID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.fdp.catalogDatasets[catalogID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (r *Registry) Catalog(id string) (FdpCatalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.fdp.catalogs[id]
	return c, ok
}

func (r *Registry) CatalogIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.fdp.catalogs))
	for id := range r.fdp.catalogs {
		out = append(out, id)
	}
	sortStrings(out)
	return out
}

// DatasetIDs returns every dataset id known from metadata.yaml files,
// regardless of whether its catalog_id resolves. Used by the root status
// page to report datasets hidden by a dangling catalog reference.
func (r *Registry) DatasetIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.fdp.datasets))
	for id := range r.fdp.datasets {
		out = append(out, id)
	}
	sortStrings(out)
	return out
}

//
// small local helpers (kept dependency-free deliberately: these are used
// only inside this package and don't warrant pulling in golang.org/x/exp)
//

func removeString(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func sortStrings(s []string) { sort.Strings(s) }
