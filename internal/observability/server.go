package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	metricsPath       = "/metrics"
	readHeaderTimeout = 5 * time.Second
)

// Server exposes a scrape handler over HTTP.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// StartServer serves the handler at /metrics on addr in a background
// goroutine. Listen failures are logged, not returned; a scrape
// endpoint that cannot bind must not abort a measurement run.
func StartServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s := &Server{srv: srv, log: logger}

	go func() {
		logger.Debug("metrics endpoint listening", "addr", addr, "path", metricsPath)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics endpoint failed", "addr", addr, "err", err)
		}
	}()

	return s
}

// Shutdown stops accepting scrapes and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
