package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/qryx/internal/session"
)

const (
	DefaultExportDir    = "."
	DefaultSize         = 300
	DefaultJPEGQuality  = 92
	DefaultCompactWidth = 96
	DefaultLogsDir      = "logs"

	EnvPrefix = "QRYX"
	FileName  = "qryx"
)

var (
	ErrInvalidConfig = errors.New("config: invalid value")
	ErrUnknownPreset = errors.New("config: unknown preset")
)

type Config struct {
	Settings SettingsConfig `yaml:"settings" mapstructure:"settings"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	UI       UIConfig       `yaml:"ui" mapstructure:"ui"`
	QR       QRConfig       `yaml:"qr" mapstructure:"qr"`
}

type SettingsConfig struct {
	Debug     bool   `yaml:"debug" mapstructure:"debug"`
	LogToFile bool   `yaml:"log-to-file" mapstructure:"log-to-file"`
	LogsDir   string `yaml:"logs-dir" mapstructure:"logs-dir"`
}

type ExportConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	Size        int    `yaml:"size" mapstructure:"size"`
	JPEGQuality int    `yaml:"jpeg-quality" mapstructure:"jpeg-quality"`
}

type UIConfig struct {
	CompactWidth int  `yaml:"compact-width" mapstructure:"compact-width"`
	Preloader    bool `yaml:"preloader" mapstructure:"preloader"`
}

type QRConfig struct {
	Preset  string `yaml:"preset" mapstructure:"preset"`
	Content string `yaml:"content" mapstructure:"content"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogToFile: true,
			LogsDir:   DefaultLogsDir,
		},
		Export: ExportConfig{
			Dir:         DefaultExportDir,
			Size:        DefaultSize,
			JPEGQuality: DefaultJPEGQuality,
		},
		UI: UIConfig{
			CompactWidth: DefaultCompactWidth,
			Preloader:    true,
		},
		QR: QRConfig{
			Content: session.DefaultContent,
		},
	}
}

// New returns a viper instance with defaults, the QRYX_ environment
// prefix and the standard search paths.
func New() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("settings.debug", d.Settings.Debug)
	v.SetDefault("settings.log-to-file", d.Settings.LogToFile)
	v.SetDefault("settings.logs-dir", d.Settings.LogsDir)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.size", d.Export.Size)
	v.SetDefault("export.jpeg-quality", d.Export.JPEGQuality)
	v.SetDefault("ui.compact-width", d.UI.CompactWidth)
	v.SetDefault("ui.preloader", d.UI.Preloader)
	v.SetDefault("qr.preset", d.QR.Preset)
	v.SetDefault("qr.content", d.QR.Content)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}
	return v
}

// Load reads path, or searches for qryx.yaml when path is empty. A
// missing file is only an error when path was given explicitly.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Export.Size < 64 || c.Export.Size > 4096:
		return fmt.Errorf("%w: export.size %d (64..4096)", ErrInvalidConfig, c.Export.Size)
	case c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100:
		return fmt.Errorf("%w: export.jpeg-quality %d (1..100)", ErrInvalidConfig, c.Export.JPEGQuality)
	case c.UI.CompactWidth < 40:
		return fmt.Errorf("%w: ui.compact-width %d (>= 40)", ErrInvalidConfig, c.UI.CompactWidth)
	case c.QR.Preset != "":
		if _, ok := GetPreset(c.QR.Preset); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPreset, c.QR.Preset)
		}
	}
	return nil
}

// Session returns the configuration a new session starts with.
func (c *Config) Session() session.Configuration {
	cfg := session.DefaultConfiguration()
	if p, ok := GetPreset(c.QR.Preset); ok {
		cfg = p
	}
	if c.QR.Content != "" {
		cfg.Content = c.QR.Content
	}
	return cfg
}

func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
