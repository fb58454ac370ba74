// Package mono provides a monotonic time source for the logger's rotation
// and staleness checks.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

var start = time.Now()

// NanoTime returns a monotonically non-decreasing count of nanoseconds
// since process start.
//
// The teacher's original used a //go:build mono linkname into
// runtime.nanotime; its non-tagged counterpart file was not present in the
// retrieved pack, so this falls back to the stdlib monotonic clock reading
// carried inside time.Time, which Go guarantees is monotonic for diffs
// within a process.
func NanoTime() int64 { return int64(time.Since(start)) }
