// Response helpers implementing the error taxonomy of spec §7: malformed
// requests and 404s are shaped differently depending on whether the path
// belongs to a Beacon personality or to the FDP surface; internal errors are
// logged in full but answered with a fixed, non-revealing message.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/beacon"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp/rdf"
)

const internalErrorMessage = "Failed to serve the request due to technical error"

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeBeaconError answers with a BeaconResponse carrying only an error
// block, spec §7's "surfaced as Beacon error response" rule.
func writeBeaconError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, beacon.Response{
		Error: &beacon.BeaconError{ErrorCode: status, ErrorMessage: message},
	})
}

// plainError is the non-Beacon error shape, spec §7.
type plainError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func writePlainError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, plainError{StatusCode: status, Message: message})
}

// writeNotFoundFDP matches fdp/api.py's not_found_response: a plain text
// 404, never a Beacon error shape.
func writeNotFoundFDP(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Sorry, this URL path is not supported"))
}

// writeInternalError logs the failure in full and answers with the fixed
// message from spec §7, shaped per isBeacon.
func writeInternalError(r *http.Request, w http.ResponseWriter, isBeacon bool, err error) {
	nlog.Errorf("internal error serving %s %s?%s: %v", r.Method, r.URL.Path, r.URL.RawQuery, err)
	if isBeacon {
		writeBeaconError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	writePlainError(w, http.StatusInternalServerError, internalErrorMessage)
}

// requireAuth gates a Beacon query endpoint, spec §4.4's authentication
// gate: on failure it writes 401 with WWW-Authenticate and returns false.
func requireAuth(w http.ResponseWriter, r *http.Request, setup *beacon.Setup) bool {
	scheme, ok := setup.Authenticate(r.Header.Get("Authorization"))
	if ok {
		return true
	}
	w.Header().Set("WWW-Authenticate", scheme)
	writeBeaconError(w, http.StatusUnauthorized, "Authentication is required to access this resource")
	return false
}

// baseURL reconstructs the externally-visible origin for a request, used to
// build self-referential URLs in BeaconInfo/BeaconMap/FDP responses. It
// honours a reverse proxy's X-Forwarded-Proto, mirroring the common
// FastAPI/uvicorn-behind-proxy deployment the original targets.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + host
}

// wantsJSONLD implements fdp/api.py's to_response Accept-header negotiation:
// Turtle unless the client explicitly asks for JSON-LD.
func wantsJSONLD(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/ld+json")
}

// writeGraph serialises g per content negotiation, or 404s when g is nil
// (unknown entity id).
func writeGraph(w http.ResponseWriter, r *http.Request, g *rdf.Graph, err error) {
	if err != nil {
		writeInternalError(r, w, false, err)
		return
	}
	if g == nil {
		writeNotFoundFDP(w)
		return
	}
	if wantsJSONLD(r) {
		body, err := rdf.SerializeJSONLD(g)
		if err != nil {
			writeInternalError(r, w, false, err)
			return
		}
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = w.Write(body)
		return
	}
	w.Header().Set("Content-Type", "text/turtle")
	_, _ = w.Write([]byte(rdf.SerializeTurtle(g)))
}

func writePlainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
