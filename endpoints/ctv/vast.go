package ctv

import (
	"context"
	"io"
	"net/http"

	"github.com/ctvbid/ctvbid/exchange"
	"github.com/ctvbid/ctvbid/sanitizer"
	"github.com/julienschmidt/httprouter"
)

const (
	headerRequestID   = "X-Request-ID"
	headerAllowOrigin = "Access-Control-Allow-Origin"
	contentTypeXML    = "application/xml"
)

// Auctioneer runs one VAST auction for a set of raw caller parameters.
type Auctioneer interface {
	HoldAuction(ctx context.Context, raw map[string]string) *exchange.AuctionResult
}

// NewVastEndpoint serves a VAST document for every request. GET reads the query string,
// POST also reads a form body. The response always carries the correlation id, and every
// status except 204 carries a complete VAST body.
func NewVastEndpoint(ex Auctioneer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		result := ex.HoldAuction(r.Context(), rawParameters(r))

		w.Header().Set("Content-Type", contentTypeXML)
		w.Header().Set(headerRequestID, result.RequestID)
		if w.Header().Get(headerAllowOrigin) == "" {
			w.Header().Set(headerAllowOrigin, "*")
		}

		w.WriteHeader(result.Status)
		if result.Status != http.StatusNoContent {
			io.WriteString(w, result.Body)
		}
	}
}

// rawParameters never fails: an unreadable form body falls back to the query string,
// which the sanitizer then defaults like any other bad input.
func rawParameters(r *http.Request) map[string]string {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			return sanitizer.FromQuery(r.Form)
		}
	}
	return sanitizer.FromQuery(r.URL.Query())
}
