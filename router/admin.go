package router

import (
	"net/http"
	"net/http/pprof"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/endpoints"
)

// Admin serves the profiling and build information endpoints on the admin port.
func Admin(cfg *config.Configuration, version, revision string) *http.ServeMux {
	mux := http.NewServeMux()
	// Register pprof handlers
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	// Register ctvbid defined admin handlers
	mux.HandleFunc("/version", endpoints.NewVersionEndpoint(version, revision, cfg.DSP.OpenRTBVersion))
	return mux
}
