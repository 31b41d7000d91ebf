package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Workspace string
	DataDir   string
	DBPath    string
	OutputDir string `mapstructure:"output_dir" validate:"required"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=trace debug info warn error off"`

	Capture   CaptureConfig   `mapstructure:"capture"`
	Animation AnimationConfig `mapstructure:"animation"`
	Export    ExportConfig    `mapstructure:"export"`
	Device    DeviceConfig    `mapstructure:"device"`
}

type CaptureConfig struct {
	MinCaptures        int           `mapstructure:"min_captures" validate:"gte=1"`
	MaxCapturesPerHour int           `mapstructure:"max_captures_per_hour" validate:"gte=1"`
	GrabTimeout        time.Duration `mapstructure:"grab_timeout" validate:"gt=0"`
}

type AnimationConfig struct {
	BaseRadius      float64 `mapstructure:"base_radius" validate:"gt=0"`
	RadiusIncrement float64 `mapstructure:"radius_increment" validate:"gte=0"`
	MaxPhotos       int     `mapstructure:"max_photos" validate:"gte=1"`
	Seed            uint64  `mapstructure:"seed"`
}

type ExportConfig struct {
	PixelRatio float64 `mapstructure:"pixel_ratio" validate:"gt=0,lte=4"`
	Format     string  `mapstructure:"format" validate:"oneof=png jpeg"`
	Width      int     `mapstructure:"width" validate:"gte=120"`
	Layout     string  `mapstructure:"layout" validate:"oneof=pile grid"`
	Rasterizer string  `mapstructure:"rasterizer" validate:"oneof=native browser"`
	ShareDir   string  `mapstructure:"share_dir"`
	Wide       bool    `mapstructure:"wide"`
}

type DeviceConfig struct {
	Manifest  string `mapstructure:"manifest"`
	WebcamDir string `mapstructure:"webcam_dir"`
	ScreenDir string `mapstructure:"screen_dir"`
	ScreenURL string `mapstructure:"screen_url"`
}

// New loads <workspace>/.focusreel/config.yaml when present and applies
// FOCUSREEL_* environment overrides on top of the defaults.
func New(workspace string) (Config, error) {
	if workspace == "" {
		return Config{}, fmt.Errorf("workspace path is required")
	}
	dataDir := filepath.Join(workspace, ".focusreel")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)
	v.SetEnvPrefix("FOCUSREEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, workspace)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Workspace = workspace
	cfg.DataDir = dataDir
	cfg.DBPath = filepath.Join(dataDir, "focusreel.db")
	if !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(workspace, cfg.OutputDir)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, workspace string) {
	v.SetDefault("output_dir", "montages")
	v.SetDefault("log_level", "info")

	v.SetDefault("capture.min_captures", 4)
	v.SetDefault("capture.max_captures_per_hour", 12)
	v.SetDefault("capture.grab_timeout", "30s")

	v.SetDefault("animation.base_radius", 100.0)
	v.SetDefault("animation.radius_increment", 8.0)
	v.SetDefault("animation.max_photos", 12)
	v.SetDefault("animation.seed", 42)

	v.SetDefault("export.pixel_ratio", 2.0)
	v.SetDefault("export.format", "png")
	v.SetDefault("export.width", 600)
	v.SetDefault("export.layout", "pile")
	v.SetDefault("export.rasterizer", "native")
	v.SetDefault("export.share_dir", "")
	v.SetDefault("export.wide", true)

	v.SetDefault("device.manifest", filepath.Join(workspace, ".focusreel", "devices.json"))
	v.SetDefault("device.webcam_dir", "")
	v.SetDefault("device.screen_dir", "")
	v.SetDefault("device.screen_url", "")
}
