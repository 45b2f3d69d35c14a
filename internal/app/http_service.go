package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/displayd/internal/config"
	"github.com/dokzlo13/displayd/internal/httpapi"
)

// HTTPService wraps the control API server.
type HTTPService struct {
	cfg    *config.Config
	server *httpapi.Server

	wg  sync.WaitGroup
	err error
}

// NewHTTPService creates a new HTTPService.
func NewHTTPService(cfg *config.Config, display httpapi.Display, wd httpapi.Watchdog) *HTTPService {
	server := httpapi.NewServer(cfg.HTTP.Addr(), display, wd, httpapi.Options{
		RecentEntries: cfg.Watchdog.RecentEntries,
		RateLimitRPS:  cfg.HTTP.RateLimitRPS,
	})
	return &HTTPService{
		cfg:    cfg,
		server: server,
	}
}

// Start runs the server in the background. A listener failure is fatal.
func (s *HTTPService) Start(ctx context.Context, onFatalError func(error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			s.err = err
			if onFatalError != nil {
				onFatalError(err)
			}
		}
	}()
}

// Wait blocks until the server has shut down and returns its error, if any.
func (s *HTTPService) Wait() error {
	s.wg.Wait()
	return s.err
}
