// Package display orchestrates power and brightness control of a DDC/CI display.
//
// Every operation is computed from live command output; the Controller keeps no
// state between calls other than its configuration.
package display

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/displayd/internal/command"
	"github.com/dokzlo13/displayd/internal/ddc"
)

// Brightness bounds accepted by SetBrightness.
const (
	MinBrightness = 0
	MaxBrightness = 100
)

// DefaultSettleDelay is how long the panel is given after a wake before a brightness write.
const DefaultSettleDelay = 5 * time.Second

// Config fixes the device addressing and the power scripts.
type Config struct {
	Bus               ddc.Bus
	PowerFeature      string
	BrightnessFeature string
	OnScript          []string
	OffScript         []string
	SettleDelay       time.Duration
}

// Option customizes a Controller.
type Option func(*Controller)

// WithSleep replaces the settle wait. Tests use it to avoid real delays.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Controller) {
		c.sleep = sleep
	}
}

// Controller runs the display control commands.
type Controller struct {
	cfg    Config
	runner command.Runner
	sleep  func(time.Duration)
}

// New creates a Controller that executes commands through runner.
func New(cfg Config, runner command.Runner, opts ...Option) *Controller {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	c := &Controller{
		cfg:    cfg,
		runner: runner,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryPower reads the current power mode.
func (c *Controller) QueryPower(ctx context.Context) (ddc.PowerState, error) {
	res := c.runner.Run(ctx, c.cfg.Bus.GetVCP(c.cfg.PowerFeature))
	if !res.Success {
		return "", commandError("query_power", "Failed to query monitor", res)
	}

	state, ok := ddc.ParsePower(res.Stdout)
	if !ok {
		log.Ctx(ctx).Warn().Str("stdout", strings.TrimSpace(res.Stdout)).Msg("Unrecognized power mode output")
		return "", &Error{Kind: KindUnparseable, Op: "query_power", Msg: "Could not parse monitor status"}
	}
	return state, nil
}

// TurnOn runs the power-on script. A successful run is reported as PowerOn
// without querying the device.
func (c *Controller) TurnOn(ctx context.Context) (ddc.PowerState, error) {
	res := c.runner.Run(ctx, c.cfg.OnScript)
	if !res.Success {
		return "", commandError("turn_on", "Failed to turn on monitor", res)
	}
	log.Ctx(ctx).Info().Msg("Monitor turned on")
	return ddc.PowerOn, nil
}

// TurnOff runs the power-off script.
func (c *Controller) TurnOff(ctx context.Context) (ddc.PowerState, error) {
	res := c.runner.Run(ctx, c.cfg.OffScript)
	if !res.Success {
		return "", commandError("turn_off", "Failed to turn off monitor", res)
	}
	log.Ctx(ctx).Info().Msg("Monitor turned off")
	return ddc.PowerOff, nil
}

// GetBrightness reads the current brightness as reported by the device.
func (c *Controller) GetBrightness(ctx context.Context) (int, error) {
	res := c.runner.Run(ctx, c.cfg.Bus.GetVCP(c.cfg.BrightnessFeature))
	if !res.Success {
		return 0, commandError("get_brightness", "Failed to query brightness", res)
	}

	value, ok := ddc.ParseBrightness(res.Stdout)
	if !ok {
		log.Ctx(ctx).Warn().Str("stdout", strings.TrimSpace(res.Stdout)).Msg("Unrecognized brightness output")
		return 0, &Error{Kind: KindUnparseable, Op: "get_brightness", Msg: "Could not parse brightness value"}
	}
	return value, nil
}

// SetBrightness writes a new brightness level and returns the level read back.
//
// A panel at brightness 0 is asleep and ignores writes, so a non-zero request
// first wakes it with the power-on script and waits the settle delay. A failed
// pre-check read never prevents the write. A failed confirmation read reports
// the requested level.
func (c *Controller) SetBrightness(ctx context.Context, requested int) (int, error) {
	logger := log.Ctx(ctx)

	if requested < MinBrightness || requested > MaxBrightness {
		return 0, &Error{
			Kind: KindInvalidInput,
			Op:   "set_brightness",
			Msg:  fmt.Sprintf("Brightness must be between %d and %d", MinBrightness, MaxBrightness),
		}
	}

	if requested > 0 {
		c.wakeIfAsleep(ctx)
	}

	res := c.runner.Run(ctx, c.cfg.Bus.SetVCP(c.cfg.BrightnessFeature, requested))
	if !res.Success {
		return 0, commandError("set_brightness", "Failed to set brightness", res)
	}

	confirmed, err := c.GetBrightness(ctx)
	if err != nil {
		logger.Warn().Err(err).Int("requested", requested).Msg("Brightness confirmation failed, reporting requested value")
		return requested, nil
	}

	logger.Info().Int("requested", requested).Int("brightness", confirmed).Msg("Brightness set")
	return confirmed, nil
}

// wakeIfAsleep powers the panel on when it reports brightness 0.
func (c *Controller) wakeIfAsleep(ctx context.Context) {
	logger := log.Ctx(ctx)

	current, err := c.GetBrightness(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Brightness pre-check failed, writing anyway")
		return
	}
	if current != 0 {
		return
	}

	logger.Info().Dur("settle_delay", c.cfg.SettleDelay).Msg("Display asleep, waking before brightness change")
	if res := c.runner.Run(ctx, c.cfg.OnScript); !res.Success {
		logger.Warn().Str("stderr", strings.TrimSpace(res.Stderr)).Msg("Power-on script failed during wake")
	}
	c.sleep(c.cfg.SettleDelay)
}

// ParseLevel converts a request value into a brightness level.
// Range validation is left to SetBrightness.
func ParseLevel(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &Error{Kind: KindInvalidInput, Op: "parse_level", Msg: "Invalid brightness value", Err: err}
	}
	return v, nil
}

func commandError(op, prefix string, res command.Result) *Error {
	return &Error{
		Kind: KindCommandFailed,
		Op:   op,
		Msg:  fmt.Sprintf("%s: %s", prefix, strings.TrimSpace(res.Stderr)),
	}
}
