// Package config: FDP configuration, grounded on
// original_source/mini_node/fdp/config.py.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package config

import "fmt"

type FdpContactPoint struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type FdpCatalog struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Since       *string `yaml:"since"`
}

type FdpDataset struct {
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

// FdpConfig is the fdp.yaml document: BaseURL under which /catalog, /dataset
// etc. are mounted, plus the static catalog/dataset/contact metadata that
// seeds the registry's FDP side at startup.
type FdpConfig struct {
	BaseURL      string                `yaml:"base_url"`
	Title        string                `yaml:"title"`
	Description  string                `yaml:"description"`
	Publisher    string                `yaml:"publisher"`
	Contact      FdpContactPoint       `yaml:"contact"`
	Since        string                `yaml:"since"`
	Catalogs     map[string]FdpCatalog `yaml:"catalogs"`
	Datasets     map[string]FdpDataset `yaml:"datasets"`
}

// LoadFdpConfig returns (nil, false, nil) when fdp.yaml is absent: the FDP
// surface is disabled entirely, per spec §6.
func LoadFdpConfig(path string) (*FdpConfig, bool, error) {
	var c FdpConfig
	ok, err := loadOptional(path, &c)
	if err != nil || !ok {
		return nil, ok, err
	}
	if c.BaseURL == "" {
		return nil, true, fmt.Errorf("fdp config %s: base_url is required", path)
	}
	for id, ds := range c.Datasets {
		if _, known := c.Catalogs[ds.CatalogID]; !known {
			return nil, true, fmt.Errorf("fdp config %s: dataset %q references unknown catalog %q", path, id, ds.CatalogID)
		}
	}
	return &c, true, nil
}
