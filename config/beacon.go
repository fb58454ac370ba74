// Package config: Beacon personality configuration, grounded on
// original_source/mini_node/beacon/config.py and beacon/setup.py.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package config

import "fmt"

// Organisation mirrors BeaconOrganisationConfig, spec §4.4's BeaconInfo
// response.
type Organisation struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Address     string `yaml:"address"`
	WelcomeURL  string `yaml:"welcome_url"`
	ContactURL  string `yaml:"contact_url"`
	LogoURL     string `yaml:"logo_url"`
}

// ComplianceSchema is one entry of compliance.schemas, identifying a GA4GH
// schema this node conforms to (used to build SchemaPerEntity and the
// entry-type default-schema reference).
type ComplianceSchema struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Path        string `yaml:"path"`
}

// Compliance mirrors BeaconComplianceConfig.
type Compliance struct {
	Specification    string             `yaml:"specification"`
	SchemaBaseURL    string             `yaml:"schema_base_url"`
	SchemaVersionTag string             `yaml:"schema_version_tag"`
	Schemas          []ComplianceSchema `yaml:"schemas"`
}

func (c *Compliance) URL(path string) string {
	return c.SchemaBaseURL + c.SchemaVersionTag + path
}

func (c *Compliance) Schema(entityID string) (ComplianceSchema, bool) {
	for _, s := range c.Schemas {
		if s.ID == entityID {
			return s, true
		}
	}
	return ComplianceSchema{}, false
}

func (c *Compliance) SchemaURL(entityID string) string {
	s, ok := c.Schema(entityID)
	if !ok {
		return ""
	}
	return c.URL(s.Path)
}

// OntologyTerm mirrors BeaconOntologyTermConfig.
type OntologyTerm struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// EntryTypeConfig mirrors BeaconEntryTypesConfig, one row per supported
// Beacon entity.
type EntryTypeConfig struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description"`
	OpenAPI      string        `yaml:"openapi"`
	SchemaID     string        `yaml:"schema_id"`
	MainPath     string        `yaml:"main_path"`
	ItemPath     string        `yaml:"item_path"`
	OntologyTerm *OntologyTerm `yaml:"ontology_term"`
}

// BeaconCommon (beacon-common.yaml) carries fields shared by both
// personalities: organisation/compliance metadata and the full entry-type
// catalog, of which each personality exposes a subset (spec §4.4).
type BeaconCommon struct {
	BeaconID     string            `yaml:"beacon_id"`
	ApiVersion   string            `yaml:"api_version"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Organisation Organisation      `yaml:"organisation"`
	Compliance   Compliance        `yaml:"compliance"`
	EntryTypes   []EntryTypeConfig `yaml:"entry_types"`
}

// OIDCConfig is the bearer-token auth block; mutually exclusive with
// BasicAuth within the same personality (spec §4.4 "Configuring both is a
// fatal startup error").
type OIDCConfig struct {
	Issuer        string              `yaml:"issuer"`
	ClientID      string              `yaml:"client_id"`
	ClientSecret  string              `yaml:"client_secret"`
	RequiredVisas []map[string]string `yaml:"required_visas"`
}

func (o *OIDCConfig) IsEnabled() bool {
	return o != nil && o.Issuer != "" && o.ClientID != "" && o.ClientSecret != ""
}

// SecurityAttributes carries the granularity fallback used when a request
// doesn't specify requestedGranularity (spec §4.4), plus the other
// informational configuration-endpoint fields.
type SecurityAttributes struct {
	DefaultGranularity string   `yaml:"default_granularity"`
	ProductionStatus   string   `yaml:"production_status"`
	SecurityLevel      string   `yaml:"security_level"`
}

// InfoConfig mirrors BeaconInfoConfig, the service-identity block included
// verbatim in the BeaconInfo/ServiceInfo responses.
type InfoConfig struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	Version           string `yaml:"version"`
	Environment       string `yaml:"environment"`
	Description       string `yaml:"description"`
	AlternativeURL    string `yaml:"alternative_url"`
	DocumentationURL  string `yaml:"documentation_url"`
	CreatedAt         string `yaml:"created_at"`
	UpdatedAt         string `yaml:"updated_at"`
}

// PersonalityConfig is shared shape of beacon-aggregated.yaml and
// beacon-sensitive.yaml.
type PersonalityConfig struct {
	BasePath           string                `yaml:"base_path"`
	Info               InfoConfig            `yaml:"info"`
	OIDC               *OIDCConfig           `yaml:"oidc"`
	BasicAuth          []BasicAuthCredential `yaml:"basic_auth"`
	SecurityAttributes SecurityAttributes    `yaml:"security_attributes"`
	HideLowerCounts    int                   `yaml:"hide_lower_counts"`
}

func (p *PersonalityConfig) Validate(name string) error {
	if p.OIDC.IsEnabled() && len(p.BasicAuth) > 0 {
		return fmt.Errorf("%s: oidc and basic_auth are mutually exclusive", name)
	}
	if p.HideLowerCounts <= 0 {
		p.HideLowerCounts = 1
	}
	return nil
}

// LoadBeaconCommon is fatal-on-absence only if at least one personality file
// is present; the caller decides based on which personalities are enabled.
func LoadBeaconCommon(path string) (*BeaconCommon, bool, error) {
	var c BeaconCommon
	ok, err := loadOptional(path, &c)
	return &c, ok, err
}

func LoadPersonality(path, name string) (*PersonalityConfig, bool, error) {
	var c PersonalityConfig
	ok, err := loadOptional(path, &c)
	if err != nil || !ok {
		return nil, ok, err
	}
	if err := c.Validate(name); err != nil {
		return nil, true, err
	}
	return &c, true, nil
}
