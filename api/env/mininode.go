// Package env contains environment variables
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package env

// See also: docs/environment-vars.md

var MiniNode = struct {
	ConfDir string
	LogDir  string
}{
	// directory holding app.yaml, fdp.yaml, beacon-*.yaml (to specify, use
	// '-config' or this environment variable)
	ConfDir: "GDI_MININODE_CONF_DIR",
	LogDir:  "GDI_MININODE_LOG_DIR",
}
