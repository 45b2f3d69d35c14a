package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/displayd/internal/command"
	"github.com/dokzlo13/displayd/internal/config"
	"github.com/dokzlo13/displayd/internal/ddc"
	"github.com/dokzlo13/displayd/internal/display"
	"github.com/dokzlo13/displayd/internal/watchdog"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	Runner   command.Runner
	Display  *display.Controller
	Watchdog *watchdog.Summarizer

	HTTP *HTTPService
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	return newServices(cfg, command.NewExecRunner(cfg.Command.Timeout.Duration(), cfg.Command.WaitDelay.Duration()))
}

func newServices(cfg *config.Config, runner command.Runner) (*Services, error) {
	s := &Services{cfg: cfg, Runner: runner}

	ddcArgv, err := cfg.DDC.Argv()
	if err != nil {
		return nil, err
	}
	onArgv, err := cfg.Power.OnArgv()
	if err != nil {
		return nil, err
	}
	offArgv, err := cfg.Power.OffArgv()
	if err != nil {
		return nil, err
	}

	s.Display = display.New(display.Config{
		Bus:               ddc.Bus{Command: ddcArgv, ID: cfg.DDC.Bus},
		PowerFeature:      cfg.DDC.PowerFeature,
		BrightnessFeature: cfg.DDC.BrightnessFeature,
		OnScript:          onArgv,
		OffScript:         offArgv,
		SettleDelay:       cfg.Power.SettleDelay.Duration(),
	}, runner)

	s.Watchdog = watchdog.New(cfg.Watchdog.LogPath)

	s.HTTP = NewHTTPService(cfg, s.Display, s.Watchdog)

	log.Debug().
		Strs("ddc", ddcArgv).
		Str("bus", cfg.DDC.Bus).
		Strs("on_script", onArgv).
		Strs("off_script", offArgv).
		Str("watchdog_log", cfg.Watchdog.LogPath).
		Msg("Services configured")

	return s, nil
}

// Start starts all background services.
// The onFatalError callback is called when a service cannot keep running.
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	s.HTTP.Start(ctx, onFatalError)
	return nil
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	return s.HTTP.Wait()
}
