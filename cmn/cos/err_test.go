// Package cos provides common low-level types and utilities.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package cos_test

import (
	"errors"
	"testing"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/cos"
	"github.com/stretchr/testify/assert"
)

func TestErrsDedup(t *testing.T) {
	var errs cos.Errs
	errs.Add(errors.New("boom"))
	errs.Add(errors.New("boom"))
	errs.Add(errors.New("bang"))
	assert.Equal(t, 2, errs.Cnt())
}

func TestErrsCap(t *testing.T) {
	var errs cos.Errs
	for i := 0; i < 10; i++ {
		errs.Add(errors.New(string(rune('a' + i))))
	}
	assert.LessOrEqual(t, errs.Cnt(), 4)
}

func TestErrNotFound(t *testing.T) {
	err := cos.NewErrNotFound("dataset %q", "x")
	assert.True(t, cos.IsErrNotFound(err))
	assert.Contains(t, err.Error(), "does not exist")
}
