// Package config loads the displayd YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Log             LogConfig      `yaml:"log"`
	HTTP            HTTPConfig     `yaml:"http"`
	DDC             DDCConfig      `yaml:"ddc"`
	Power           PowerConfig    `yaml:"power"`
	Command         CommandConfig  `yaml:"command"`
	Watchdog        WatchdogConfig `yaml:"watchdog"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // Graceful HTTP shutdown timeout
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	JSON   bool   `yaml:"json"`
	Colors *bool  `yaml:"colors"`
}

// UseColors returns whether console output is colored (default: true)
func (c *LogConfig) UseColors() bool {
	return c.Colors == nil || *c.Colors
}

// HTTPConfig contains the control API listener settings
type HTTPConfig struct {
	Host         string  `yaml:"host"`
	Port         int     `yaml:"port"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"` // Device route limit, negative disables (default: 10)
}

// Addr returns host:port for the listener
func (c *HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DDCConfig contains the ddcutil addressing. Bus and feature codes are fixed, never discovered.
type DDCConfig struct {
	Command           string `yaml:"command"`            // ddcutil invocation prefix (default: "sudo ddcutil")
	Bus               string `yaml:"bus"`                // I2C bus number
	PowerFeature      string `yaml:"power_feature"`      // VCP code for power mode (default: d6)
	BrightnessFeature string `yaml:"brightness_feature"` // VCP code for brightness (default: 10)
}

// PowerConfig contains the externally supplied power scripts
type PowerConfig struct {
	OnScript    string   `yaml:"on_script"`
	OffScript   string   `yaml:"off_script"`
	SettleDelay Duration `yaml:"settle_delay"` // Wait after waking before a brightness write (default: 5s)
}

// CommandConfig contains external process limits
type CommandConfig struct {
	Timeout   Duration `yaml:"timeout"`    // Hard limit per invocation (default: 10s)
	WaitDelay Duration `yaml:"wait_delay"` // Extra wait for pipes after a kill (default: 2s)
}

// WatchdogConfig contains the network watchdog log settings
type WatchdogConfig struct {
	LogPath       string `yaml:"log_path"`
	RecentEntries int    `yaml:"recent_entries"` // Entries returned by /watchdog/log (default: 20)
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads and parses the configuration file.
// When allowMissing is set, a nonexistent file yields the defaults.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// HTTP defaults
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 5000
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 10.0
	}

	// DDC defaults
	if cfg.DDC.Command == "" {
		cfg.DDC.Command = "sudo ddcutil"
	}
	if cfg.DDC.Bus == "" {
		cfg.DDC.Bus = "20"
	}
	if cfg.DDC.PowerFeature == "" {
		cfg.DDC.PowerFeature = "d6"
	}
	if cfg.DDC.BrightnessFeature == "" {
		cfg.DDC.BrightnessFeature = "10"
	}

	// Power defaults
	if cfg.Power.OnScript == "" {
		cfg.Power.OnScript = "/home/pi/monitor-on.sh"
	}
	if cfg.Power.OffScript == "" {
		cfg.Power.OffScript = "/home/pi/monitor-off.sh"
	}
	if cfg.Power.SettleDelay == 0 {
		cfg.Power.SettleDelay = Duration(5 * time.Second)
	}

	// Command defaults
	if cfg.Command.Timeout == 0 {
		cfg.Command.Timeout = Duration(10 * time.Second)
	}
	if cfg.Command.WaitDelay == 0 {
		cfg.Command.WaitDelay = Duration(2 * time.Second)
	}

	// Watchdog defaults
	if cfg.Watchdog.LogPath == "" {
		cfg.Watchdog.LogPath = "/var/log/wifi-watchdog.log"
	}
	if cfg.Watchdog.RecentEntries == 0 {
		cfg.Watchdog.RecentEntries = 20
	}

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

var (
	busPattern     = regexp.MustCompile(`^[0-9]+$`)
	featurePattern = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]{1,2}$`)
)

// Validate checks values that would otherwise only fail at the first device call.
func (cfg *Config) Validate() error {
	if !busPattern.MatchString(cfg.DDC.Bus) {
		return fmt.Errorf("ddc.bus must be a bus number, got %q", cfg.DDC.Bus)
	}
	if !featurePattern.MatchString(cfg.DDC.PowerFeature) {
		return fmt.Errorf("ddc.power_feature must be a hex VCP code, got %q", cfg.DDC.PowerFeature)
	}
	if !featurePattern.MatchString(cfg.DDC.BrightnessFeature) {
		return fmt.Errorf("ddc.brightness_feature must be a hex VCP code, got %q", cfg.DDC.BrightnessFeature)
	}
	if _, err := cfg.DDC.Argv(); err != nil {
		return err
	}
	if _, err := cfg.Power.OnArgv(); err != nil {
		return err
	}
	if _, err := cfg.Power.OffArgv(); err != nil {
		return err
	}
	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", cfg.HTTP.Port)
	}
	if cfg.Command.Timeout.Duration() < 0 {
		return fmt.Errorf("command.timeout must not be negative")
	}
	return nil
}

// Argv returns the ddcutil invocation prefix split into arguments
func (c *DDCConfig) Argv() ([]string, error) {
	return splitCommand("ddc.command", c.Command)
}

// OnArgv returns the power-on script as an argument vector
func (c *PowerConfig) OnArgv() ([]string, error) {
	return splitCommand("power.on_script", c.OnScript)
}

// OffArgv returns the power-off script as an argument vector
func (c *PowerConfig) OffArgv() ([]string, error) {
	return splitCommand("power.off_script", c.OffScript)
}

// splitCommand splits a configured command with shell quoting rules, without invoking a shell.
func splitCommand(field, s string) ([]string, error) {
	argv, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%s must not be empty", field)
	}
	return argv, nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
