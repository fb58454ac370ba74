// Info/metadata endpoint types and builders: pure derivations of the two
// Beacon configuration files, spec §4.4. Grounded on
// original_source/mini_node/beacon/model/framework/*.py and beacon/setup.py's
// create_beacon_info/create_service_info/create_entry_types/
// create_endpoint_map/create_configuration/create_filtering_terms.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import (
	"strings"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
)

// EntityType is one of the GA4GH Beacon entity identifiers this node may
// expose in its framework responses.
type EntityType string

const (
	EntityInfo           EntityType = "info"
	EntityConfiguration  EntityType = "configuration"
	EntityEntryTypes     EntityType = "entryTypes"
	EntityMap            EntityType = "map"
	EntityFilteringTerm  EntityType = "filteringTerm"
	EntityDataset        EntityType = "dataset"
	EntityGenomicVariant EntityType = "genomicVariant"
	EntityIndividual     EntityType = "individual"
)

type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	WelcomeURL  string `json:"welcomeUrl,omitempty"`
	ContactURL  string `json:"contactUrl,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// BeaconInfo is the payload of GET `<base_path>` / `<base_path>/info`.
type BeaconInfo struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	APIVersion     string       `json:"apiVersion"`
	Environment    string       `json:"environment,omitempty"`
	Organization   Organization `json:"organization"`
	Description    string       `json:"description,omitempty"`
	Version        string       `json:"version,omitempty"`
	WelcomeURL     string       `json:"welcomeUrl,omitempty"`
	AlternativeURL string       `json:"alternativeUrl,omitempty"`
	CreateDateTime string       `json:"createDateTime,omitempty"`
	UpdateDateTime string       `json:"updateDateTime,omitempty"`
}

type ServiceInfoType struct {
	Artifact string `json:"artifact"`
	Group    string `json:"group"`
	Version  string `json:"version"`
}

type ServiceInfoOrganization struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ServiceInfo is the payload of GET `<base_path>/service-info` (GA4GH
// service-info specification, not wrapped in a BeaconResponse envelope).
type ServiceInfo struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Type             ServiceInfoType         `json:"type"`
	Description      string                  `json:"description,omitempty"`
	Organization     ServiceInfoOrganization `json:"organization"`
	ContactURL       string                  `json:"contactUrl,omitempty"`
	DocumentationURL string                  `json:"documentationUrl,omitempty"`
	CreatedAt        string                  `json:"createdAt,omitempty"`
	UpdatedAt        string                  `json:"updatedAt,omitempty"`
	Environment      string                  `json:"environment,omitempty"`
	Version          string                  `json:"version"`
}

type ReferenceToSchema struct {
	ID                           string `json:"id"`
	Name                         string `json:"name"`
	Description                  string `json:"description,omitempty"`
	ReferenceToSchemaDefinition string `json:"referenceToSchemaDefinition"`
}

type OntologyTerm struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

type EntryType struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Description            string            `json:"description,omitempty"`
	PartOfSpecification    string            `json:"partOfSpecification"`
	DefaultSchema          ReferenceToSchema `json:"defaultSchema"`
	OntologyTermForThisType *OntologyTerm    `json:"ontologyTermForThisType,omitempty"`
}

type EntryTypes struct {
	EntryTypes map[string]EntryType `json:"entryTypes"`
}

type MaturityAttributes struct {
	ProductionStatus string `json:"productionStatus"`
}

type SecurityAttributes struct {
	SecurityLevels     []string    `json:"securityLevels,omitempty"`
	DefaultGranularity Granularity `json:"defaultGranularity,omitempty"`
}

type BeaconConfiguration struct {
	SchemaURL           string               `json:"$schema,omitempty"`
	EntryTypes          map[string]EntryType `json:"entryTypes"`
	MaturityAttributes  MaturityAttributes   `json:"maturityAttributes"`
	SecurityAttributes  SecurityAttributes   `json:"securityAttributes"`
}

type Endpoint struct {
	EntryType                EntityType `json:"entryType"`
	OpenAPIEndpointsDefinition string   `json:"openAPIEndpointsDefinition,omitempty"`
	RootURL                  string     `json:"rootUrl"`
	SingleEntryURL           string     `json:"singleEntryUrl,omitempty"`
}

type BeaconMap struct {
	SchemaURL    string              `json:"$schema"`
	EndpointSets map[EntityType]Endpoint `json:"endpointSets"`
}

type FilteringTermResource struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	URL             string `json:"url,omitempty"`
	Version         string `json:"version,omitempty"`
	NameSpacePrefix string `json:"nameSpacePrefix,omitempty"`
	IriPrefix       string `json:"iriPrefix,omitempty"`
}

type FilteringTermEntry struct {
	Type   string   `json:"type"`
	ID     string   `json:"id"`
	Label  string   `json:"label,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
	Values []string `json:"values,omitempty"`
}

// FilteringTerms is currently always empty: filtering-term enumeration is
// not implemented, matching the original (spec §4.4 describes only
// query-time filters, never a discoverable catalog of them).
type FilteringTerms struct {
	Resources      []FilteringTermResource `json:"resources"`
	FilteringTerms []FilteringTermEntry    `json:"filteringTerms"`
}

func createBeaconInfo(common *config.BeaconCommon, info *config.InfoConfig, org *config.Organisation, basePath, welcomeURL string) BeaconInfo {
	return BeaconInfo{
		ID:         info.ID,
		Name:       info.Name,
		APIVersion: common.Compliance.SchemaVersionTag,
		Environment: info.Environment,
		Organization: Organization{
			ID: org.ID, Name: org.Name, Description: org.Description,
			Address: org.Address, WelcomeURL: org.WelcomeURL,
			ContactURL: org.ContactURL, LogoURL: org.LogoURL,
		},
		Description:    info.Description,
		Version:        "v" + info.Version,
		WelcomeURL:     welcomeURL,
		AlternativeURL: info.AlternativeURL,
		CreateDateTime: info.CreatedAt,
		UpdateDateTime: info.UpdatedAt,
	}
}

func createServiceInfo(common *config.BeaconCommon, info *config.InfoConfig, org *config.Organisation) ServiceInfo {
	return ServiceInfo{
		ID:   info.ID,
		Name: info.Name,
		Type: ServiceInfoType{
			Artifact: "beacon",
			Group:    "org.ga4gh",
			Version:  common.Compliance.SchemaVersionTag,
		},
		Description: info.Description,
		Organization: ServiceInfoOrganization{
			Name: org.Name,
			URL:  org.WelcomeURL,
		},
		ContactURL:       org.ContactURL,
		DocumentationURL: info.DocumentationURL,
		CreatedAt:        info.CreatedAt,
		UpdatedAt:        info.UpdatedAt,
		Environment:      info.Environment,
		Version:          "v" + info.Version,
	}
}

func getSchemaRef(compliance *config.Compliance, entryType config.EntryTypeConfig) ReferenceToSchema {
	schema, _ := compliance.Schema(entryType.SchemaID)
	return ReferenceToSchema{
		ID:                           schema.ID,
		Name:                         schema.Name,
		Description:                  schema.Description,
		ReferenceToSchemaDefinition: compliance.URL(schema.Path),
	}
}

func getSchemas(compliance *config.Compliance) map[EntityType]SchemaPerEntity {
	out := map[EntityType]SchemaPerEntity{}
	for _, schema := range compliance.Schemas {
		out[EntityType(schema.ID)] = SchemaPerEntity{
			EntityType: schema.ID,
			SchemaURL:  compliance.URL(schema.Path),
		}
	}
	return out
}

func createEntryTypes(common *config.BeaconCommon, visible map[EntityType]struct{}) EntryTypes {
	out := map[string]EntryType{}
	for _, entry := range common.EntryTypes {
		if _, ok := visible[EntityType(entry.ID)]; !ok {
			continue
		}
		var ontologyTerm *OntologyTerm
		if entry.OntologyTerm != nil {
			ontologyTerm = &OntologyTerm{ID: entry.OntologyTerm.ID, Label: entry.OntologyTerm.Label}
		}
		out[entry.ID] = EntryType{
			ID:                      entry.ID,
			Name:                    entry.Name,
			Description:             entry.Description,
			PartOfSpecification:     common.Compliance.Specification,
			DefaultSchema:           getSchemaRef(&common.Compliance, entry),
			OntologyTermForThisType: ontologyTerm,
		}
	}
	return EntryTypes{EntryTypes: out}
}

func createConfiguration(common *config.BeaconCommon, sec *config.SecurityAttributes, entryTypes EntryTypes) BeaconConfiguration {
	return BeaconConfiguration{
		SchemaURL:  common.Compliance.SchemaURL(string(EntityConfiguration)),
		EntryTypes: entryTypes.EntryTypes,
		MaturityAttributes: MaturityAttributes{
			ProductionStatus: sec.ProductionStatus,
		},
		SecurityAttributes: SecurityAttributes{
			SecurityLevels:     []string{sec.SecurityLevel},
			DefaultGranularity: Granularity(sec.DefaultGranularity),
		},
	}
}

func createEndpointMap(common *config.BeaconCommon, visible map[EntityType]struct{}, baseURL string) BeaconMap {
	endpoints := map[EntityType]Endpoint{}
	for _, entry := range common.EntryTypes {
		entity := EntityType(entry.ID)
		if _, ok := visible[entity]; !ok {
			continue
		}
		openAPIURL := common.Compliance.URL(entry.OpenAPI)
		rootURL := joinURL(baseURL, entry.MainPath)
		var singleEntryURL string
		if entry.ItemPath != "" {
			singleEntryURL = joinURL(baseURL, entry.ItemPath)
		}
		endpoints[entity] = Endpoint{
			EntryType:                  entity,
			OpenAPIEndpointsDefinition: openAPIURL,
			RootURL:                    rootURL,
			SingleEntryURL:             singleEntryURL,
		}
	}
	return BeaconMap{
		SchemaURL:    common.Compliance.SchemaURL(string(EntityMap)),
		EndpointSets: endpoints,
	}
}

func createFilteringTerms() FilteringTerms {
	return FilteringTerms{Resources: []FilteringTermResource{}, FilteringTerms: []FilteringTermEntry{}}
}

func joinURL(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	path = strings.TrimPrefix(path, "/")
	return base + "/" + path
}
