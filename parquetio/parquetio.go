// Package parquetio is the Columnar Reader Adapter: a narrow interface over
// github.com/parquet-go/parquet-go that opens a file under one of this
// service's three fixed schemas (spec §6), applies a row predicate, and
// returns the matching rows, optionally projecting to a narrower row type.
//
// Grounded on the parquet-go usage in
// other_examples/…ClusterCockpit-cc-backend__pkg-metricstore-parquetArchive.go
// (typed row structs with `parquet:"..."` tags, pq.NewGenericReader/Writer).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	pq "github.com/parquet-go/parquet-go"
)

// AFRow is the allele-freq schema, spec §6.
type AFRow struct {
	POS        int32   `parquet:"POS"`
	REF        string  `parquet:"REF"`
	ALT        string  `parquet:"ALT"`
	VT         string  `parquet:"VT"`
	POPULATION string  `parquet:"POPULATION"`
	AF         float64 `parquet:"AF"`
	AC         int32   `parquet:"AC"`
	ACHet      int32   `parquet:"AC_HET"`
	ACHom      int32   `parquet:"AC_HOM"`
	ACHemi     int32   `parquet:"AC_HEMI"`
	AN         int32   `parquet:"AN"`
}

// VariantIndividualsRow is the variant->individuals schema, spec §6.
type VariantIndividualsRow struct {
	POS         int32  `parquet:"POS"`
	REF         string `parquet:"REF"`
	ALT         string `parquet:"ALT"`
	VT          string `parquet:"VT"`
	Individuals string `parquet:"INDIVIDUALS"`
}

// VariantIndividualsOnlyRow projects just the INDIVIDUALS column. Its rows
// carry no POS/REF/ALT/VT, so the individuals-count path
// (beacon/individuals.go) reads VariantIndividualsRow instead.
type VariantIndividualsOnlyRow struct {
	Individuals string `parquet:"INDIVIDUALS"`
}

// IndividualRow is the individuals schema, spec §6.
type IndividualRow struct {
	Index int32  `parquet:"INDEX"`
	Sex   string `parquet:"SEX"`
	Age   string `parquet:"AGE"`
}

// IndividualProjectedRow is used when the age filter is inactive and only
// INDEX/SEX are needed (spec §4.4 "fetch AGE only if the age filter is
// active").
type IndividualProjectedRow struct {
	Index int32  `parquet:"INDEX"`
	Sex   string `parquet:"SEX"`
}

// ReadAF opens path under the AFRow schema and returns every row for which
// pred returns true. A missing/corrupt file surfaces as an error so the
// caller can record it as a problematic file rather than crash (spec §7).
func ReadAF(path string, pred func(AFRow) bool) ([]AFRow, error) {
	return read(path, pred)
}

// ReadVariantIndividuals reads the variant->individuals file, matching pred.
func ReadVariantIndividuals(path string, pred func(VariantIndividualsRow) bool) ([]VariantIndividualsRow, error) {
	return read(path, pred)
}

// ReadVariantIndividualsOnly is the INDIVIDUALS-column projection variant.
func ReadVariantIndividualsOnly(path string, pred func(VariantIndividualsOnlyRow) bool) ([]VariantIndividualsOnlyRow, error) {
	return read(path, pred)
}

// ReadIndividuals reads the individuals file, matching pred.
func ReadIndividuals(path string, pred func(IndividualRow) bool) ([]IndividualRow, error) {
	return read(path, pred)
}

// ReadIndividualsProjected reads only INDEX/SEX.
func ReadIndividualsProjected(path string, pred func(IndividualProjectedRow) bool) ([]IndividualProjectedRow, error) {
	return read(path, pred)
}

func read[T any](path string, pred func(T) bool) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	r := pq.NewGenericReader[T](f, info.Size())
	defer r.Close()

	out := make([]T, 0, 64)
	buf := make([]T, 128)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			if pred == nil || pred(buf[i]) {
				out = append(out, buf[i])
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return out, nil
}

// WriteAF is the inverse of ReadAF, used only by tests to fabricate fixture
// files (spec's offline VCF tool is out of scope, per spec §1, but tests
// need a way to produce a parquet file to read back).
func WriteAF(path string, rows []AFRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := pq.NewGenericWriter[AFRow](f, pq.Compression(&pq.Zstd))
	if _, err := w.Write(rows); err != nil {
		return err
	}
	return w.Close()
}
