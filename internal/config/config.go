// Package config loads opdusage settings from a TOML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. OPDUSAGE_SERVER_ADDR.
const EnvPrefix = "OPDUSAGE"

// Themes lists the accepted appearance.theme values.
var Themes = []string{"flexoki-dark", "catppuccin-mocha", "tokyo-night", "terminal"}

// Config holds all opdusage configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds the input location and how to read it.
type GeneralConfig struct {
	DataFile  string `toml:"data_file" split_words:"true" validate:"required"`
	Delimiter string `toml:"delimiter" split_words:"true" validate:"delimiter"`
	Sheet     string `toml:"sheet,omitempty" split_words:"true"`
	UseCache  bool   `toml:"use_cache" split_words:"true"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" split_words:"true" validate:"theme"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr" split_words:"true" validate:"required,hostname_port"`
}

// LogConfig holds logrus settings.
type LogConfig struct {
	Level  string `toml:"level" split_words:"true" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `toml:"format" split_words:"true" validate:"oneof=text json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataFile:  "data1.csv",
			Delimiter: ",",
			UseCache:  true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8788",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "opdusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "opdusage")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the default config file, applies environment overrides and validates.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom is Load for an explicit file. A missing file yields the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	// Only variables that are set override the file.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DelimiterRune returns the configured CSV separator.
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.General.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		for _, t := range Themes {
			if t == name {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) == 1
	})
	return v
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
