package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/metrics"
	metricsconfig "github.com/ctvbid/ctvbid/metrics/config"
	"github.com/golang/glog"
)

const shutdownTimeout = 10 * time.Second

// Listen serves VAST requests on the main port, plus the admin and Prometheus ports when
// configured. It blocks until SIGTERM or SIGINT, then shuts every server down gracefully,
// letting in-flight requests finish.
func Listen(cfg *config.Configuration, handler http.Handler, adminHandler http.Handler, metricsEngine *metricsconfig.DetailedMetricsEngine) error {
	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, syscall.SIGTERM, syscall.SIGINT)

	// Run the servers. Fan any process-stopper signals out to each server for graceful shutdowns.
	done := make(chan struct{})
	var stoppers []chan<- os.Signal

	mainServer := newMainServer(cfg, handler)
	mainListener, err := newListener(mainServer.Addr, metricsEngine)
	if err != nil {
		return fmt.Errorf("main server: %v", err)
	}
	stoppers = append(stoppers, serve(mainServer, "Main", mainListener, done))

	if cfg.AdminPort != 0 {
		adminServer := newAdminServer(cfg, adminHandler)
		adminListener, err := newListener(adminServer.Addr, nil)
		if err != nil {
			return fmt.Errorf("admin server: %v", err)
		}
		stoppers = append(stoppers, serve(adminServer, "Admin", adminListener, done))
	}

	if cfg.Metrics.Prometheus.Port != 0 {
		prometheusServer, err := newPrometheusServer(cfg, metricsEngine)
		if err != nil {
			return err
		}
		prometheusListener, err := newListener(prometheusServer.Addr, nil)
		if err != nil {
			return fmt.Errorf("prometheus server: %v", err)
		}
		stoppers = append(stoppers, serve(prometheusServer, "Prometheus", prometheusListener, done))
	}

	wait(stopSignals, done, stoppers...)
	return nil
}

func serve(server *http.Server, name string, listener net.Listener, done chan<- struct{}) chan<- os.Signal {
	stopper := make(chan os.Signal)
	go shutdownAfterSignals(server, stopper, done)
	go runServer(server, name, listener)
	return stopper
}

func newAdminServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    cfg.Host + ":" + strconv.Itoa(cfg.AdminPort),
		Handler: handler,
	}
}

func newMainServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	var serverHandler = handler
	if cfg.EnableGzip {
		serverHandler = gziphandler.GzipHandler(handler)
	}

	return &http.Server{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Handler:      serverHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

func runServer(server *http.Server, name string, listener net.Listener) {
	glog.Infof("%s server starting on: %s", name, server.Addr)
	err := server.Serve(listener)
	if err != http.ErrServerClosed {
		glog.Errorf("%s server quit with error: %v", name, err)
	}
}

func newListener(address string, metricsEngine metrics.MetricsEngine) (net.Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("Error listening for TCP connections on %s: %v", address, err)
	}

	if metricsEngine != nil {
		ln = &monitorableListener{ln, metricsEngine}
	}

	return ln, nil
}

func wait(inbound <-chan os.Signal, done <-chan struct{}, outbound ...chan<- os.Signal) {
	sig := <-inbound

	for i := 0; i < len(outbound); i++ {
		go sendSignal(outbound[i], sig)
	}

	for i := 0; i < len(outbound); i++ {
		<-done
	}
}

func shutdownAfterSignals(server *http.Server, stopper <-chan os.Signal, done chan<- struct{}) {
	sig := <-stopper

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var s struct{}
	glog.Infof("Stopping %s because of signal: %s", server.Addr, sig.String())
	if err := server.Shutdown(ctx); err != nil {
		glog.Errorf("Failed to shutdown %s: %v", server.Addr, err)
	}
	done <- s
}

func sendSignal(to chan<- os.Signal, sig os.Signal) {
	to <- sig
}
