package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Ingestion
	PreviewRows int    `mapstructure:"preview_rows" yaml:"preview_rows" validate:"min=1,max=1000"`
	MaxRows     int    `mapstructure:"max_rows" yaml:"max_rows" validate:"min=0"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" validate:"min=1,max=1024"`
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter" validate:"delimiter"`

	// Web dashboard
	ListenAddr        string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes" validate:"min=0"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level" validate:"required,oneof=DEBUG INFO WARN ERROR"`

	// Chart images
	ChartWidth    int `mapstructure:"chart_width" yaml:"chart_width" validate:"min=200,max=4096"`
	ChartHeight   int `mapstructure:"chart_height" yaml:"chart_height" validate:"min=150,max=4096"`
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"min=0,max=500"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"preview_rows", "max_rows", "max_upload_mb", "delimiter",
	"listen_addr", "session_ttl_minutes", "log_level",
	"chart_width", "chart_height", "histogram_bins",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("preview_rows", 5)
	v.SetDefault("max_rows", 100000)
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("delimiter", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("session_ttl_minutes", 60)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("chart_width", 1024)
	v.SetDefault("chart_height", 576)
	v.SetDefault("histogram_bins", 0)
}

// Default returns the built-in configuration.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".csvlens", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.csvlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CSVLENS")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit --config that does not exist yet is created on Save
		if !errors.As(err, &notFound) && !(cfgFile != "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.LogLevel = strings.ToUpper(c.LogLevel)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", ",", ";", "|", "tab", `\t`:
			return true
		}
		return false
	})
	return v
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Set assigns one key from its text form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "preview_rows":
		return setInt(&c.PreviewRows, key, val)
	case "max_rows":
		return setInt(&c.MaxRows, key, val)
	case "max_upload_mb":
		return setInt(&c.MaxUploadMB, key, val)
	case "session_ttl_minutes":
		return setInt(&c.SessionTTLMinutes, key, val)
	case "chart_width":
		return setInt(&c.ChartWidth, key, val)
	case "chart_height":
		return setInt(&c.ChartHeight, key, val)
	case "histogram_bins":
		return setInt(&c.HistogramBins, key, val)
	case "delimiter":
		c.Delimiter = val
	case "listen_addr":
		c.ListenAddr = val
	case "log_level":
		c.LogLevel = strings.ToUpper(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get returns one key in its text form.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "preview_rows":
		return fmt.Sprint(c.PreviewRows), nil
	case "max_rows":
		return fmt.Sprint(c.MaxRows), nil
	case "max_upload_mb":
		return fmt.Sprint(c.MaxUploadMB), nil
	case "delimiter":
		return c.Delimiter, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "session_ttl_minutes":
		return fmt.Sprint(c.SessionTTLMinutes), nil
	case "log_level":
		return c.LogLevel, nil
	case "chart_width":
		return fmt.Sprint(c.ChartWidth), nil
	case "chart_height":
		return fmt.Sprint(c.ChartHeight), nil
	case "histogram_bins":
		return fmt.Sprint(c.HistogramBins), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

func setInt(dst *int, key, val string) error {
	i, err := cast.ToIntE(val)
	if err != nil {
		return fmt.Errorf("invalid int for %s: %v", key, val)
	}
	*dst = i
	return nil
}

// DelimiterRune maps the delimiter setting to a rune; 0 means auto.
func (c *Global) DelimiterRune() rune {
	return ParseDelimiter(c.Delimiter)
}

// ParseDelimiter accepts a single character or "tab".
func ParseDelimiter(s string) rune {
	switch s {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	}
	return []rune(s)[0]
}

// SlogLevel maps log_level to a slog level, defaulting to info.
func (c *Global) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
