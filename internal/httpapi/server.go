// Package httpapi exposes the display controller and the watchdog summary over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/displayd/internal/ddc"
	"github.com/dokzlo13/displayd/internal/watchdog"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "displayd"

// Display is the device control surface used by the handlers.
type Display interface {
	QueryPower(ctx context.Context) (ddc.PowerState, error)
	TurnOn(ctx context.Context) (ddc.PowerState, error)
	TurnOff(ctx context.Context) (ddc.PowerState, error)
	GetBrightness(ctx context.Context) (int, error)
	SetBrightness(ctx context.Context, requested int) (int, error)
}

// Watchdog provides the network watchdog view.
type Watchdog interface {
	Summarize() watchdog.Summary
	Recent(n int) []string
}

// Options tunes the HTTP surface.
type Options struct {
	// RecentEntries is the number of log lines returned by /watchdog/log.
	RecentEntries int
	// RateLimitRPS limits device routes. Zero or negative disables limiting.
	RateLimitRPS float64
}

// Server is the HTTP control API.
type Server struct {
	addr       string
	handler    http.Handler
	httpServer *http.Server
}

// NewServer creates a new control API server.
func NewServer(addr string, display Display, wd Watchdog, opts Options) *Server {
	if opts.RecentEntries <= 0 {
		opts.RecentEntries = watchdog.DefaultRecentEntries
	}

	h := &handlers{
		display:       display,
		watchdog:      wd,
		recentEntries: opts.RecentEntries,
	}
	limit := newLimiter(opts.RateLimitRPS)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc("/", h.index).Methods(http.MethodGet)

	// Device routes run external commands and share the limiter
	r.Handle("/on", limit(http.HandlerFunc(h.turnOn))).Methods(http.MethodGet)
	r.Handle("/off", limit(http.HandlerFunc(h.turnOff))).Methods(http.MethodGet)
	r.Handle("/status", limit(http.HandlerFunc(h.status))).Methods(http.MethodGet)
	r.Handle("/brightness", limit(http.HandlerFunc(h.getBrightness))).Methods(http.MethodGet)
	r.Handle("/brightness/{value}", limit(http.HandlerFunc(h.setBrightness))).Methods(http.MethodGet)

	r.HandleFunc("/watchdog", h.watchdogStatus).Methods(http.MethodGet)
	r.HandleFunc("/watchdog/log", h.watchdogLog).Methods(http.MethodGet)

	r.HandleFunc("/health", health).Methods(http.MethodGet)
	r.HandleFunc("/ready", ready).Methods(http.MethodGet)

	return &Server{
		addr:    addr,
		handler: requestID(accessLog(r)),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run starts the server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting HTTP server")

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
