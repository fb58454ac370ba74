package registry_test

import (
	"errors"
	"testing"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/fname"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDatasetCatalogMembership(t *testing.T) {
	r := registry.New(map[string]registry.FdpCatalog{"c1": {ID: "c1"}})
	r.AddDataset("d1", &registry.FdpDataset{ID: "d1", CatalogID: "c1"})
	assert.Equal(t, []string{"d1"}, r.CatalogDatasets("c1"))

	r.AddDataset("d1", &registry.FdpDataset{ID: "d1", CatalogID: "c2"})
	assert.Empty(t, r.CatalogDatasets("c1"))
	assert.Equal(t, []string{"d1"}, r.CatalogDatasets("c2"))
}

func TestAddParquetRoutingAndChrGroup(t *testing.T) {
	r := registry.New(nil)
	r.AddParquet("d1", fname.GRCh37, "/data/d1/GRCh37/allele-freq-chr1.0.parquet")
	files := r.AggregatedBeacon().GetDatasetFiles(fname.GRCh37, "1", 12344)
	require.Contains(t, files, "d1")
	assert.Equal(t, "/data/d1/GRCh37/allele-freq-chr1.0.parquet", files["d1"])
}

func TestIndividualsParquetBothRequired(t *testing.T) {
	r := registry.New(nil)
	r.AddParquet("d1", fname.GRCh37, "/data/d1/GRCh37/individuals-chr1.0.parquet")
	// only the variant-level file exists so far; individuals.parquet missing
	ids := r.SensitiveBeacon().GetDatasetIndividuals(true, fname.GRCh37, "1", 999)
	assert.Empty(t, ids)

	r.AddParquet("d1", fname.GRCh37, "/data/d1/GRCh37/individuals.parquet")
	ids = r.SensitiveBeacon().GetDatasetIndividuals(true, fname.GRCh37, "1", 999)
	require.Contains(t, ids, "d1")
	assert.Equal(t, [2]string{"/data/d1/GRCh37/individuals.parquet", "/data/d1/GRCh37/individuals-chr1.0.parquet"}, ids["d1"])
}

func TestRemoveParquetDropsEmptyDataset(t *testing.T) {
	r := registry.New(nil)
	r.AddParquet("d1", fname.GRCh37, "/data/d1/GRCh37/individuals.parquet")
	r.RemoveParquet("d1", "/data/d1/GRCh37/individuals.parquet")
	assert.Empty(t, r.SensitiveBeacon().GetDatasetIDs())
}

func TestRemoveDatasetPurgeBeaconFlag(t *testing.T) {
	r := registry.New(map[string]registry.FdpCatalog{"c1": {}})
	r.AddDataset("d1", &registry.FdpDataset{ID: "d1", CatalogID: "c1"})
	r.AddParquet("d1", fname.GRCh37, "/data/d1/GRCh37/allele-freq-chr1.0.parquet")

	r.RemoveDataset("d1", false)
	assert.NotEmpty(t, r.AggregatedBeacon().GetDatasetIDs(), "purgeBeacon=false must not touch Beacon side")

	r.RemoveDataset("d1", true)
	assert.Empty(t, r.AggregatedBeacon().GetDatasetIDs())
}

func TestProblematicFiles(t *testing.T) {
	r := registry.New(nil)
	r.RecordIssue("/data/d1/metadata.yaml", errors.New("bad yaml"))
	assert.Contains(t, r.ProblematicFiles(), "/data/d1/metadata.yaml")
	r.ForgetIssue("/data/d1/metadata.yaml")
	assert.NotContains(t, r.ProblematicFiles(), "/data/d1/metadata.yaml")
}
