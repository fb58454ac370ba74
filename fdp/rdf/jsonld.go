/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package rdf

import (
	"encoding/json"
	"sort"
)

// SerializeJSONLD renders the graph as expanded JSON-LD: one object per
// distinct subject, `@id`/`@type` plus one array per predicate.
func SerializeJSONLD(g *Graph) ([]byte, error) {
	order := []Term{}
	bySubject := map[Term][]Triple{}
	for _, t := range g.Triples {
		if _, ok := bySubject[t.Subject]; !ok {
			order = append(order, t.Subject)
		}
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}

	nodes := make([]map[string]any, 0, len(order))
	for _, subject := range order {
		node := map[string]any{"@id": jsonldID(subject)}
		var types []string
		byPredicate := map[string][]any{}
		var predOrder []string
		for _, t := range bySubject[subject] {
			if t.Predicate == RDFType {
				if iri, ok := t.Object.(IRI); ok {
					types = append(types, string(iri))
				}
				continue
			}
			key := string(t.Predicate)
			if _, ok := byPredicate[key]; !ok {
				predOrder = append(predOrder, key)
			}
			byPredicate[key] = append(byPredicate[key], jsonldValue(t.Object))
		}
		if len(types) > 0 {
			node["@type"] = types
		}
		sort.Strings(predOrder)
		for _, key := range predOrder {
			node[key] = byPredicate[key]
		}
		nodes = append(nodes, node)
	}

	return json.MarshalIndent(map[string]any{"@graph": nodes}, "", "  ")
}

func jsonldID(t Term) string {
	switch v := t.(type) {
	case IRI:
		return string(v)
	case BlankNode:
		return "_:" + string(v)
	default:
		return ""
	}
}

func jsonldValue(t Term) any {
	switch v := t.(type) {
	case IRI:
		return map[string]any{"@id": string(v)}
	case BlankNode:
		return map[string]any{"@id": "_:" + string(v)}
	case Literal:
		out := map[string]any{"@value": v.Value}
		if v.Datatype != "" && v.Datatype != XSDString {
			out["@type"] = string(v.Datatype)
		}
		return out
	default:
		return nil
	}
}
