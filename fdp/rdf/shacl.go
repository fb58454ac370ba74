// Minimal SHACL-like shape validator. Parsing arbitrary Turtle shape graphs
// has no grounding anywhere in the retrieved pack (no RDF/SHACL library
// exists there, and full Turtle parsing is disproportionate to this node's
// five known shapes) — shapes are therefore defined natively as Go values;
// only the served `/shacl/{id}` document text is plain Turtle, spec §4.4.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package rdf

import (
	"fmt"
	"strings"
)

// PropertyShape constrains one predicate reachable from a shape's focus
// nodes.
type PropertyShape struct {
	Path      IRI
	MinCount  int // 0 means unconstrained
	MaxCount  int // 0 means unconstrained
	Datatype  IRI // empty means unconstrained
	NodeKind  string // "IRI", "Literal", "BlankNodeOrIRI", or "" for unconstrained
	Message   string
}

// NodeShape constrains every subject in the graph that has rdf:type
// TargetClass.
type NodeShape struct {
	ID          string
	TargetClass IRI
	Properties  []PropertyShape
}

// Validate checks every focus node (subject typed TargetClass) against the
// shape's property constraints, returning a pyshacl-style textual report.
func Validate(g *Graph, shape NodeShape) (conforms bool, report string) {
	var focusNodes []Term
	for _, t := range g.Triples {
		if t.Predicate == RDFType {
			if obj, ok := t.Object.(IRI); ok && obj == shape.TargetClass {
				focusNodes = append(focusNodes, t.Subject)
			}
		}
	}

	var violations []string
	for _, focus := range focusNodes {
		for _, prop := range shape.Properties {
			objects := g.Objects(focus, prop.Path)
			if prop.MinCount > 0 && len(objects) < prop.MinCount {
				violations = append(violations, fmt.Sprintf(
					"Focus node %s: property %s has %d values, expected at least %d%s",
					focus, prop.Path, len(objects), prop.MinCount, messageSuffix(prop)))
			}
			if prop.MaxCount > 0 && len(objects) > prop.MaxCount {
				violations = append(violations, fmt.Sprintf(
					"Focus node %s: property %s has %d values, expected at most %d%s",
					focus, prop.Path, len(objects), prop.MaxCount, messageSuffix(prop)))
			}
			for _, obj := range objects {
				if !matchesNodeKind(obj, prop.NodeKind) {
					violations = append(violations, fmt.Sprintf(
						"Focus node %s: property %s value %s is not of kind %s%s",
						focus, prop.Path, obj, prop.NodeKind, messageSuffix(prop)))
				}
				if prop.Datatype != "" {
					if lit, ok := obj.(Literal); !ok || lit.Datatype != prop.Datatype {
						violations = append(violations, fmt.Sprintf(
							"Focus node %s: property %s value %s is not of datatype %s%s",
							focus, prop.Path, obj, prop.Datatype, messageSuffix(prop)))
					}
				}
			}
		}
	}

	if len(violations) == 0 {
		return true, "Validation Report\nConforms: True\n"
	}
	var b strings.Builder
	b.WriteString("Validation Report\nConforms: False\n")
	for range violations {
		b.WriteString("Results (")
		b.WriteString(fmt.Sprint(len(violations)))
		b.WriteString("):\n")
		break
	}
	for _, v := range violations {
		b.WriteString("Constraint Violation in ")
		b.WriteString(shape.ID)
		b.WriteString(":\n\t")
		b.WriteString(v)
		b.WriteString("\n")
	}
	return false, b.String()
}

func messageSuffix(p PropertyShape) string {
	if p.Message == "" {
		return ""
	}
	return " (" + p.Message + ")"
}

func matchesNodeKind(t Term, kind string) bool {
	switch kind {
	case "", "BlankNodeOrIRI":
		return true
	case "IRI":
		_, ok := t.(IRI)
		return ok
	case "Literal":
		_, ok := t.(Literal)
		return ok
	default:
		return true
	}
}
