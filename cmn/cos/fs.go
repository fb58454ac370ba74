// Small filesystem/env helpers kept in cos for the same reason the teacher
// keeps them here: cmd/mininode/main.go needs them at startup, before any
// other package is in a position to log or fail loudly.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"io"
	"os"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
)

// CreateDir creates dir and any missing parents, a no-op if it already
// exists.
func CreateDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// GetEnvOrDefault returns the named environment variable, or def when unset.
func GetEnvOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// Close closes c, logging rather than propagating the error: used for
// best-effort cleanup at process exit, where the caller has nothing useful
// to do with the error anyway.
func Close(c io.Closer) {
	if err := c.Close(); err != nil {
		nlog.Warningf("close: %v", err)
	}
}
