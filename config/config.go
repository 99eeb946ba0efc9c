// Package config loads keybridge settings from file, environment and flags
// through viper.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/wippyai/keybridge/bridge"
)

// EnvPrefix prefixes every environment override, e.g. KEYBRIDGE_MODULE_PATH.
const EnvPrefix = "KEYBRIDGE"

// Config represents the complete keybridge configuration
type Config struct {
	Module   ModuleConfig    `mapstructure:"module"`
	Surface  SurfaceConfig   `mapstructure:"surface"`
	Controls []ControlConfig `mapstructure:"controls"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	UI       UIConfig        `mapstructure:"ui"`
}

// ModuleConfig describes the embedded module
type ModuleConfig struct {
	// Path is a file path or http(s) URL of the module
	Path string `mapstructure:"path"`
	// Name is the guest instance name
	Name string `mapstructure:"name"`
	// MemoryLimitPages caps guest memory in 64KiB pages (0 = runtime default)
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages"`
}

// SurfaceConfig identifies the focus and dispatch target
type SurfaceConfig struct {
	ID string `mapstructure:"id"`
}

// ControlConfig is one on-screen control
type ControlConfig struct {
	ID   string `mapstructure:"id"`
	Code string `mapstructure:"code"`
	// Mode is "oneShot" or "momentary"
	Mode string `mapstructure:"mode"`
	// Label is shown on the control's button. Defaults to the id.
	Label string `mapstructure:"label"`
}

// LoggingConfig controls the bridge log
type LoggingConfig struct {
	// Level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Format: "json" or "console"
	Format string `mapstructure:"format"`
	// File receives the log. Empty means stderr.
	File string `mapstructure:"file"`
}

// UIConfig controls the terminal front end
type UIConfig struct {
	// Headless forces script mode even on a terminal
	Headless bool `mapstructure:"headless"`
	// KeyLogLines is how many synthetic key events the TUI keeps on screen
	KeyLogLines int `mapstructure:"key_log_lines"`
}

// Default returns a Config with the stock surface and controls.
func Default() *Config {
	defaults := bridge.DefaultControls()
	controls := make([]ControlConfig, len(defaults))
	for i, c := range defaults {
		controls[i] = ControlConfig{ID: c.ID, Code: c.Code, Mode: c.Mode.String()}
	}

	return &Config{
		Module: ModuleConfig{
			Path: "pkg/game.wasm",
			Name: "game",
		},
		Surface: SurfaceConfig{
			ID: bridge.DefaultSurfaceID,
		},
		Controls: controls,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			KeyLogLines: 12,
		},
	}
}

// SetDefaults registers every default with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("module.path", defaults.Module.Path)
	v.SetDefault("module.name", defaults.Module.Name)
	v.SetDefault("module.memory_limit_pages", defaults.Module.MemoryLimitPages)

	v.SetDefault("surface.id", defaults.Surface.ID)

	controls := make([]map[string]any, len(defaults.Controls))
	for i, c := range defaults.Controls {
		controls[i] = map[string]any{"id": c.ID, "code": c.Code, "mode": c.Mode}
	}
	v.SetDefault("controls", controls)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.file", defaults.Logging.File)

	v.SetDefault("ui.headless", defaults.UI.Headless)
	v.SetDefault("ui.key_log_lines", defaults.UI.KeyLogLines)
}

// Init prepares v: defaults, environment overrides, and the config file. An
// explicit file must exist; otherwise "keybridge.{yaml,toml,json}" is looked
// up in the working directory and ConfigDir, and its absence is not an error.
func Init(v *viper.Viper, fs afero.Fs, file string) error {
	if fs != nil {
		v.SetFs(fs)
	}
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.SetConfigName("keybridge")
	v.AddConfigPath(".")
	v.AddConfigPath(ConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// BridgeControls converts the control list for bridge.Options. Call on a
// validated Config.
func (c *Config) BridgeControls() ([]bridge.VirtualControl, error) {
	out := make([]bridge.VirtualControl, 0, len(c.Controls))
	for _, ctl := range c.Controls {
		mode, err := bridge.ParseMode(ctl.Mode)
		if err != nil {
			return nil, err
		}
		out = append(out, bridge.VirtualControl{ID: ctl.ID, Code: ctl.Code, Mode: mode})
	}
	return out, nil
}

// Label returns the button text for the control with id.
func (c *Config) Label(id string) string {
	for _, ctl := range c.Controls {
		if ctl.ID == id && ctl.Label != "" {
			return ctl.Label
		}
	}
	return id
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "keybridge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keybridge")
}
