/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// SerializeTurtle renders the graph as Turtle text, with @prefix lines for
// every bound namespace.
func SerializeTurtle(g *Graph) string {
	var b strings.Builder

	prefixes := make([]string, 0, len(g.Namespaces))
	for pfx := range g.Namespaces {
		prefixes = append(prefixes, pfx)
	}
	sort.Strings(prefixes)
	for _, pfx := range prefixes {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", pfx, g.Namespaces[pfx])
	}
	b.WriteString("\n")

	for _, t := range g.Triples {
		fmt.Fprintf(&b, "%s %s %s .\n",
			turtleTerm(g, t.Subject), turtleTerm(g, IRI(t.Predicate)), turtleTerm(g, t.Object))
	}
	return b.String()
}

func turtleTerm(g *Graph, t Term) string {
	switch v := t.(type) {
	case IRI:
		if v == RDFType {
			return "a"
		}
		if curie, ok := toCURIE(g, v); ok {
			return curie
		}
		return "<" + string(v) + ">"
	case BlankNode:
		return "_:" + string(v)
	case Literal:
		return turtleLiteral(g, v)
	default:
		return ""
	}
}

func turtleLiteral(g *Graph, l Literal) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(l.Value)
	quoted := `"` + escaped + `"`
	if l.Datatype == "" || l.Datatype == XSDString {
		return quoted
	}
	if curie, ok := toCURIE(g, l.Datatype); ok {
		return quoted + "^^" + curie
	}
	return quoted + "^^<" + string(l.Datatype) + ">"
}

func toCURIE(g *Graph, iri IRI) (string, bool) {
	s := string(iri)
	var bestPfx string
	var bestBase string
	for pfx, base := range g.Namespaces {
		b := string(base)
		if strings.HasPrefix(s, b) && len(b) > len(bestBase) {
			bestPfx, bestBase = pfx, b
		}
	}
	if bestBase == "" {
		return "", false
	}
	local := s[len(bestBase):]
	if local == "" || strings.ContainsAny(local, "/#") {
		return "", false
	}
	return bestPfx + ":" + local, true
}
