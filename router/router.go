package router

import (
	"fmt"
	"net/http"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/dsp"
	"github.com/ctvbid/ctvbid/endpoints"
	"github.com/ctvbid/ctvbid/endpoints/ctv"
	"github.com/ctvbid/ctvbid/exchange"
	"github.com/ctvbid/ctvbid/logger"
	metricsConf "github.com/ctvbid/ctvbid/metrics/config"
	"github.com/ctvbid/ctvbid/ssl"
	"github.com/ctvbid/ctvbid/util/randomutil"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// Router serves the VAST endpoint and the readiness probe on the main port.
type Router struct {
	*httprouter.Router
	MetricsEngine *metricsConf.DetailedMetricsEngine
}

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// New wires the auction pipeline: one pooled DSP transport, the metrics engines, and the
// exchange behind the VAST endpoint.
func New(cfg *config.Configuration) (r *Router, err error) {
	r = &Router{
		Router: httprouter.New(),
	}

	certPool := ssl.GetRootCAPool()
	certPool, err = ssl.AppendPEMFileToRootCAPool(certPool, cfg.DSP.PemCertsFile)
	if err != nil {
		return nil, fmt.Errorf("could not read DSP certificates file: %v", err)
	}

	httpClient := &http.Client{
		Transport: dsp.NewTransport(cfg.DSP, certPool),
	}

	dsps := dsp.Names(cfg.DSP.Endpoints)
	r.MetricsEngine = metricsConf.NewMetricsEngine(cfg, dsps)

	log := logger.NewGlogLogger()
	client := dsp.NewClient(httpClient, cfg.DSP, r.MetricsEngine, log)
	dispatcher := dsp.NewDispatcher(client, r.MetricsEngine, log)
	ex := exchange.NewExchange(cfg, dispatcher, randomutil.NewIDGenerator(), r.MetricsEngine, log)

	vastEndpoint := ctv.NewVastEndpoint(ex)
	r.GET(cfg.VastPath, vastEndpoint)
	r.POST(cfg.VastPath, vastEndpoint)
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))

	glog.Infof("Serving VAST on %s with %d DSP endpoint(s)", cfg.VastPath, len(dsps))
	return r, nil
}

// For more info, see:
//
// - https://github.com/rs/cors/issues/55
// - https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS/Errors/CORSNotSupportingCredentials
// - https://portswigger.net/blog/exploiting-cors-misconfigurations-for-bitcoins-and-bounties
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"},
		ExposedHeaders: []string{"X-Request-ID"}})
	return c.Handler(handler)
}
