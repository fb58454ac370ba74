/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package rdf

import "fmt"

// Graph is an ordered set of triples plus the prefix bindings used to
// render them, mirroring rdflib.Graph + NamespaceManager.
type Graph struct {
	Triples    []Triple
	Namespaces map[string]IRI // prefix -> base IRI, insertion order not required for correctness

	blankCounter int
}

// NewGraph returns an empty graph bound to the given prefixes.
func NewGraph(namespaces map[string]IRI) *Graph {
	ns := make(map[string]IRI, len(namespaces))
	for k, v := range namespaces {
		ns[k] = v
	}
	return &Graph{Namespaces: ns}
}

// NewBlankNode returns a fresh blank node scoped to this graph.
func (g *Graph) NewBlankNode() BlankNode {
	g.blankCounter++
	return BlankNode(fmt.Sprintf("b%d", g.blankCounter))
}

// Add appends a triple unconditionally (mirrors graph.add in rdflib).
func (g *Graph) Add(s Term, p IRI, o Term) {
	g.Triples = append(g.Triples, Triple{Subject: s, Predicate: p, Object: o})
}

// Set replaces any existing triple with the same subject+predicate (mirrors
// graph.set), used for single-valued predicates.
func (g *Graph) Set(s Term, p IRI, o Term) {
	for i, t := range g.Triples {
		if t.Subject == s && t.Predicate == p {
			g.Triples[i].Object = o
			return
		}
	}
	g.Add(s, p, o)
}

// Objects returns every object stored under subject+predicate, in insertion
// order (mirrors graph.objects(subject, predicate, unique=True)).
func (g *Graph) Objects(s Term, p IRI) []Term {
	var out []Term
	seen := map[Term]struct{}{}
	for _, t := range g.Triples {
		if t.Subject == s && t.Predicate == p {
			if _, ok := seen[t.Object]; ok {
				continue
			}
			seen[t.Object] = struct{}{}
			out = append(out, t.Object)
		}
	}
	return out
}

// FirstObject returns the first object stored under subject+predicate, if
// any.
func (g *Graph) FirstObject(s Term, p IRI) (Term, bool) {
	for _, t := range g.Triples {
		if t.Subject == s && t.Predicate == p {
			return t.Object, true
		}
	}
	return nil, false
}

// Merge appends another graph's triples into this one, keeping its own
// namespace bindings.
func (g *Graph) Merge(other *Graph) {
	g.Triples = append(g.Triples, other.Triples...)
}
