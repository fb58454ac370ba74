// RDF graph generator, configured by the embedded templates.yaml and
// grounded on original_source/mini_node/fdp/service/_template.py's
// RDFGraphGenerator. See that file's extensive docstring for the template
// grammar (static/mapping blocks, $FDP_URL/$FDP_CONFIG substitution,
// blank-node nesting) — this port follows it section for section.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fdp

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp/rdf"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type rawTemplates struct {
	Namespaces map[string]string        `yaml:"namespaces"`
	Templates  map[string]rawTemplate   `yaml:"templates"`
}

type rawTemplate struct {
	Path    string         `yaml:"path"`
	Static  map[string]any `yaml:"static"`
	Mapping map[string]any `yaml:"mapping"`
}

// Generator renders RDF graphs for the FDP entities (fairdp/catalogs/
// catalog/dataset/profile), configured once at startup from templates.yaml
// and the loaded fdp.yaml.
type Generator struct {
	namespaces map[string]rdf.IRI
	templates  map[string]rawTemplate
	paths      map[string]string
}

// NewGenerator parses templates.yaml and resolves every `$FDP_CONFIG.*`
// reference against cfg, mirroring RDFGraphGenerator.__init__.
func NewGenerator(cfg *config.FdpConfig) (*Generator, error) {
	var data rawTemplates
	if err := yaml.Unmarshal(templatesYAML, &data); err != nil {
		return nil, fmt.Errorf("fdp: parsing templates.yaml: %w", err)
	}

	g := &Generator{
		namespaces: map[string]rdf.IRI{},
		templates:  map[string]rawTemplate{},
		paths:      map[string]string{},
	}
	for pfx, iri := range data.Namespaces {
		g.namespaces[pfx] = rdf.IRI(iri)
	}

	for key, tmpl := range data.Templates {
		applyConfig(tmpl.Static, cfg)
		applyConfig(tmpl.Mapping, cfg)
		g.templates[key] = tmpl
		g.paths[key] = tmpl.Path
	}
	return g, nil
}

// applyConfig resolves `$FDP_CONFIG.<path>` string values in-place, removing
// the key entirely when the referenced config value is empty (mirrors
// _apply_config/_get_config).
func applyConfig(section map[string]any, cfg *config.FdpConfig) {
	for key, value := range section {
		switch v := value.(type) {
		case map[string]any:
			applyConfig(v, cfg)
		case []any:
			applyConfigList(v, cfg)
		case string:
			if !strings.HasPrefix(v, "$FDP_CONFIG.") {
				continue
			}
			resolved := resolveConfigValue(v, cfg)
			if resolved == "" {
				delete(section, key)
			} else {
				section[key] = resolved
			}
		}
	}
}

func applyConfigList(values []any, cfg *config.FdpConfig) {
	for i, v := range values {
		switch val := v.(type) {
		case map[string]any:
			applyConfig(val, cfg)
		case string:
			if strings.HasPrefix(val, "$FDP_CONFIG.") {
				values[i] = resolveConfigValue(val, cfg)
			}
		}
	}
}

// resolveConfigValue supports the small, fixed set of dotted paths this
// node's templates actually reference.
func resolveConfigValue(expr string, cfg *config.FdpConfig) string {
	switch strings.TrimPrefix(expr, "$FDP_CONFIG.") {
	case "title":
		return cfg.Title
	case "description":
		return cfg.Description
	case "publisher":
		return cfg.Publisher
	case "since":
		return cfg.Since
	case "contact.name":
		return cfg.Contact.Name
	case "contact.email":
		return cfg.Contact.Email
	default:
		return ""
	}
}

// BasePath returns the FDP root's URL path, as configured by the `fairdp`
// template.
func (g *Generator) BasePath() string {
	return g.paths["fairdp"]
}

// ItemURL constructs a subject URL for the given template, optionally with
// an item id appended, mirroring RDFGraphGenerator.item_url.
func (g *Generator) ItemURL(baseURL, tmplID, itemID string) string {
	path := g.paths[tmplID]
	result := strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	if itemID != "" {
		result = strings.TrimSuffix(result, "/") + "/" + strings.TrimPrefix(itemID, "/")
	}
	return result
}

// Render builds (or extends) a Graph for the named template with the given
// runtime values, mirroring RDFGraphGenerator.render.
func (g *Generator) Render(templateKey, baseURL string, values map[string]any, graph *rdf.Graph) (*rdf.Graph, error) {
	tmpl, ok := g.templates[templateKey]
	if !ok {
		return nil, fmt.Errorf("fdp: unknown template %q", templateKey)
	}

	if graph == nil {
		graph = rdf.NewGraph(g.namespaces)
	}

	var itemID string
	if id, ok := values["id"].(string); ok {
		itemID = id
	}
	subject := rdf.IRI(g.ItemURL(baseURL, templateKey, itemID))
	fdpURL := g.ItemURL(baseURL, "fairdp", "")

	g.applyStatic(graph, subject, tmpl.Static, fdpURL)
	g.applyMappings(graph, subject, tmpl.Mapping, values, fdpURL)

	return graph, nil
}

func (g *Generator) resolveQName(qname string) (rdf.IRI, error) {
	qname = strings.TrimSpace(qname)
	if qname == "a" {
		return rdf.RDFType, nil
	}
	pfx, local, ok := strings.Cut(qname, ":")
	if !ok {
		return "", fmt.Errorf("fdp: expected CURIE like 'dct:title', got %q", qname)
	}
	ns, ok := g.namespaces[pfx]
	if !ok {
		return "", fmt.Errorf("fdp: unknown namespace prefix %q in %q", pfx, qname)
	}
	return rdf.IRI(string(ns) + local), nil
}

func (g *Generator) applyStatic(graph *rdf.Graph, subject rdf.Term, static map[string]any, fdpURL string) {
	for key, val := range static {
		pred, err := g.resolveQName(key)
		if err != nil {
			continue
		}
		g.setValue(graph, subject, pred, val, fdpURL, false)
	}
}

func (g *Generator) applyMappings(graph *rdf.Graph, subject rdf.Term, mapping map[string]any, values map[string]any, fdpURL string) {
	if len(values) == 0 || len(mapping) == 0 {
		return
	}
	for paramKey, path := range mapping {
		val, ok := values[paramKey]
		if !ok || rdf.IsEmptyValue(val) {
			continue
		}
		g.applyMappingPath(graph, subject, path, val, fdpURL)
	}
}

func (g *Generator) applyMappingPath(graph *rdf.Graph, subject rdf.Term, path any, value any, fdpURL string) {
	switch p := path.(type) {
	case string:
		pred, err := g.resolveQName(p)
		if err != nil {
			return
		}
		g.setValue(graph, subject, pred, value, fdpURL, false)
	case []any:
		for _, item := range p {
			g.applyMappingPath(graph, subject, item, value, fdpURL)
		}
	case map[string]any:
		for predKey, nested := range p {
			pred, err := g.resolveQName(predKey)
			if err != nil {
				continue
			}
			if nested == nil {
				g.setValue(graph, subject, pred, value, fdpURL, false)
				continue
			}
			switch nested.(type) {
			case string, int, bool:
				g.setValue(graph, subject, pred, nested, fdpURL, false)
			case map[string]any:
				var blank rdf.Term
				if objs := graph.Objects(subject, pred); len(objs) > 0 {
					blank = objs[0]
				} else {
					blank = graph.NewBlankNode()
					graph.Add(subject, pred, blank)
				}
				g.applyMappingPath(graph, blank, nested, value, fdpURL)
			}
		}
	}
}

// setValue applies one resolved predicate/value pair, handling nested maps
// (blank nodes), lists (repeated triples), rdf:type dedup, and $FDP_URL
// substitution, mirroring _set_value.
func (g *Generator) setValue(graph *rdf.Graph, subject rdf.Term, predicate rdf.IRI, value any, fdpURL string, add bool) {
	if value == nil {
		return
	}

	switch v := value.(type) {
	case map[string]any:
		var blank rdf.Term
		if !add {
			if objs := graph.Objects(subject, predicate); len(objs) > 0 {
				blank = objs[0]
			}
		}
		if blank == nil {
			blank = graph.NewBlankNode()
			graph.Add(subject, predicate, blank)
		}
		for dk, dv := range v {
			pred, err := g.resolveQName(dk)
			if err != nil {
				continue
			}
			g.setValue(graph, blank, pred, dv, fdpURL, false)
		}
		return
	case []any:
		for _, item := range v {
			g.setValue(graph, subject, predicate, item, fdpURL, true)
		}
		return
	case []string:
		for _, item := range v {
			g.setValue(graph, subject, predicate, item, fdpURL, true)
		}
		return
	}

	if predicate == rdf.RDFType {
		qname, ok := value.(string)
		if !ok {
			return
		}
		typeIRI, err := g.resolveQName(qname)
		if err != nil {
			return
		}
		for _, o := range graph.Objects(subject, predicate) {
			if o == typeIRI {
				return
			}
		}
		graph.Add(subject, predicate, typeIRI)
		return
	}

	if s, ok := value.(string); ok && strings.Contains(s, "$FDP_URL") {
		value = strings.ReplaceAll(s, "$FDP_URL", fdpURL)
	}

	term := rdf.ConvertValue(value)
	if add {
		graph.Add(subject, predicate, term)
	} else {
		graph.Set(subject, predicate, term)
	}
}
