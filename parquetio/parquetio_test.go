package parquetio_test

import (
	"path/filepath"
	"testing"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/parquetio"
	"github.com/stretchr/testify/require"
)

func TestReadAFPredicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allele-freq-chr1.0.parquet")
	rows := []parquetio.AFRow{
		{POS: 12344, REF: "A", ALT: "G", VT: "SNP", POPULATION: "FI", AF: 0.1, AC: 1, AN: 10},
		{POS: 99999, REF: "C", ALT: "T", VT: "SNP", POPULATION: "FI", AF: 0.5, AC: 5, AN: 10},
	}
	require.NoError(t, parquetio.WriteAF(path, rows))

	got, err := parquetio.ReadAF(path, func(r parquetio.AFRow) bool {
		return r.POS == 12344 && r.REF == "A" && r.ALT == "G" && r.VT == "SNP"
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "FI", got[0].POPULATION)
}
