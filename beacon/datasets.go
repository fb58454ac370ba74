// Dataset listing, aggregated personality's /datasets, spec §4.4. Grounded
// on original_source/mini_node/beacon/service/datasets.py.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import "github.com/GenomicDataInfrastructure/gdi-mini-node/registry"

// GetDatasets returns the dataset records visible in the aggregated Beacon,
// cross-referencing the FDP catalog for human-readable properties.
func GetDatasets(reg *registry.Registry, req *Request) []DatasetEntry {
	datasetIDs := reg.AggregatedBeacon().GetDatasetIDs()

	limit, skip := req.Query.Pagination.limit(), req.Query.Pagination.skip()

	var results []DatasetEntry
	if skip >= len(datasetIDs) {
		return results
	}
	if skip > 0 {
		datasetIDs = datasetIDs[skip:]
	}

	for _, id := range datasetIDs {
		props, ok := reg.FdpDataset(id)
		if !ok {
			continue
		}
		results = append(results, DatasetEntry{
			ID:             id,
			Name:           props.Title,
			Description:    props.Description,
			CreateDateTime: props.Since,
			UpdateDateTime: props.Updated,
		})
		if len(results) >= limit {
			break
		}
	}
	return results
}
