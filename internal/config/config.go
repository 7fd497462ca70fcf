// Package config loads application configuration from config.yaml and
// DIGITIZE_* environment variables, and wires the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Digitize DigitizeConfig `yaml:"digitize" mapstructure:"digitize"`
	Overlay  OverlayConfig  `yaml:"overlay" mapstructure:"overlay"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run ledger database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// DigitizeConfig holds the raster-to-vector pipeline tunables. Geographic
// bounds default to the Cleveland map extent.
type DigitizeConfig struct {
	PalettePath    string       `yaml:"palette_path" mapstructure:"palette_path"`
	Tolerance      int          `yaml:"tolerance" mapstructure:"tolerance"`
	MinPixelCount  int          `yaml:"min_pixel_count" mapstructure:"min_pixel_count"`
	WidenMargin    int          `yaml:"widen_margin" mapstructure:"widen_margin"`
	CleanRadius    int          `yaml:"clean_radius" mapstructure:"clean_radius"`
	MajorityWindow int          `yaml:"majority_window" mapstructure:"majority_window"`
	Connectivity   int          `yaml:"connectivity" mapstructure:"connectivity"`
	MinPolygonArea float64      `yaml:"min_polygon_area" mapstructure:"min_polygon_area"`
	PixelTolerance float64      `yaml:"pixel_tolerance" mapstructure:"pixel_tolerance"`
	GeoTolerance   float64      `yaml:"geo_tolerance" mapstructure:"geo_tolerance"`
	Workers        int          `yaml:"workers" mapstructure:"workers"`
	Bounds         BoundsConfig `yaml:"bounds" mapstructure:"bounds"`
	Crop           CropConfig   `yaml:"crop" mapstructure:"crop"`
	MaxDimension   int          `yaml:"max_dimension" mapstructure:"max_dimension"`
}

// BoundsConfig is the geographic extent the raster covers.
type BoundsConfig struct {
	West  float64 `yaml:"west" mapstructure:"west"`
	South float64 `yaml:"south" mapstructure:"south"`
	East  float64 `yaml:"east" mapstructure:"east"`
	North float64 `yaml:"north" mapstructure:"north"`
}

// CropConfig trims map margins before classification, as fractions of the
// image dimensions.
type CropConfig struct {
	Top    float64 `yaml:"top" mapstructure:"top"`
	Bottom float64 `yaml:"bottom" mapstructure:"bottom"`
	Left   float64 `yaml:"left" mapstructure:"left"`
	Right  float64 `yaml:"right" mapstructure:"right"`
}

// OverlayConfig configures overlay analysis.
type OverlayConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DIGITIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "digitize.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("digitize.tolerance", 50)
	v.SetDefault("digitize.min_pixel_count", 100)
	v.SetDefault("digitize.widen_margin", 15)
	v.SetDefault("digitize.clean_radius", 2)
	v.SetDefault("digitize.majority_window", 0)
	v.SetDefault("digitize.connectivity", 8)
	v.SetDefault("digitize.min_polygon_area", 100)
	v.SetDefault("digitize.pixel_tolerance", 2.0)
	v.SetDefault("digitize.geo_tolerance", 0.0001)
	v.SetDefault("digitize.bounds.west", -81.82)
	v.SetDefault("digitize.bounds.south", 41.39)
	v.SetDefault("digitize.bounds.east", -81.55)
	v.SetDefault("digitize.bounds.north", 41.60)
	v.SetDefault("digitize.crop.top", 0.25)
	v.SetDefault("digitize.crop.bottom", 0.88)
	v.SetDefault("digitize.crop.left", 0.08)
	v.SetDefault("digitize.crop.right", 0.70)
	v.SetDefault("overlay.workers", 0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger builds the global zap logger from LogConfig.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
