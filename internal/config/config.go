package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/form-omr/internal/imaging"
	"github.com/ironsheep/form-omr/internal/layout"
	"github.com/ironsheep/form-omr/internal/omr"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Upload UploadConfig
	Engine EngineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	Environment    string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// UploadConfig holds multipart upload settings.
type UploadConfig struct {
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	TempDir       string `mapstructure:"temp_dir"`
}

// EngineConfig holds overrides for the mark detection engine.
type EngineConfig struct {
	Layout              string   `mapstructure:"layout"`
	Vocabulary          []string `mapstructure:"vocabulary"`
	BlurRadius          float64  `mapstructure:"blur_radius"`
	BlurFraction        float64  `mapstructure:"blur_fraction"`
	BinarizeMethod      string   `mapstructure:"binarize_method"`
	WindowFraction      float64  `mapstructure:"window_fraction"`
	Offset              float64  `mapstructure:"offset"`
	GlobalThreshold     int      `mapstructure:"global_threshold"`
	MarkThreshold       float64  `mapstructure:"mark_threshold"`
	MarkInset           float64  `mapstructure:"mark_inset"`
	MinMarkArea         int      `mapstructure:"min_mark_area"`
	MaxMarkAreaFraction float64  `mapstructure:"max_mark_area_fraction"`
	MaxDimension        int      `mapstructure:"max_dimension"`
	BatchConcurrency    int      `mapstructure:"batch_concurrency"`
}

// Layout names accepted by engine.layout.
const (
	LayoutReference = "reference"
	LayoutTwoUp     = "two-up"
)

// Load reads configuration from environment variables with the OMR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OMR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := omr.DefaultConfig()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.process_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.temp_dir", "")

	// Engine defaults
	v.SetDefault("engine.layout", LayoutReference)
	v.SetDefault("engine.vocabulary", "")
	v.SetDefault("engine.blur_radius", defaults.BlurRadius)
	v.SetDefault("engine.blur_fraction", defaults.BlurFraction)
	v.SetDefault("engine.binarize_method", string(defaults.Binarize.Method))
	v.SetDefault("engine.window_fraction", defaults.Binarize.WindowFraction)
	v.SetDefault("engine.offset", defaults.Binarize.Offset)
	v.SetDefault("engine.global_threshold", int(defaults.Binarize.GlobalThreshold))
	v.SetDefault("engine.mark_threshold", defaults.MarkThreshold)
	v.SetDefault("engine.mark_inset", defaults.MarkInset)
	v.SetDefault("engine.min_mark_area", defaults.MinMarkArea)
	v.SetDefault("engine.max_mark_area_fraction", defaults.MaxMarkAreaFraction)
	v.SetDefault("engine.max_dimension", defaults.MaxDimension)
	v.SetDefault("engine.batch_concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "OMR_SERVER_PORT",
		"server.read_timeout":           "OMR_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "OMR_SERVER_WRITE_TIMEOUT",
		"server.process_timeout":        "OMR_SERVER_PROCESS_TIMEOUT",
		"server.environment":            "OMR_SERVER_ENVIRONMENT",
		"log.level":                     "OMR_LOG_LEVEL",
		"upload.max_file_size_mb":       "OMR_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.temp_dir":               "OMR_UPLOAD_TEMP_DIR",
		"engine.layout":                 "OMR_ENGINE_LAYOUT",
		"engine.vocabulary":             "OMR_ENGINE_VOCABULARY",
		"engine.blur_radius":            "OMR_ENGINE_BLUR_RADIUS",
		"engine.blur_fraction":          "OMR_ENGINE_BLUR_FRACTION",
		"engine.binarize_method":        "OMR_ENGINE_BINARIZE_METHOD",
		"engine.window_fraction":        "OMR_ENGINE_WINDOW_FRACTION",
		"engine.offset":                 "OMR_ENGINE_OFFSET",
		"engine.global_threshold":       "OMR_ENGINE_GLOBAL_THRESHOLD",
		"engine.mark_threshold":         "OMR_ENGINE_MARK_THRESHOLD",
		"engine.mark_inset":             "OMR_ENGINE_MARK_INSET",
		"engine.min_mark_area":          "OMR_ENGINE_MIN_MARK_AREA",
		"engine.max_mark_area_fraction": "OMR_ENGINE_MAX_MARK_AREA_FRACTION",
		"engine.max_dimension":          "OMR_ENGINE_MAX_DIMENSION",
		"engine.batch_concurrency":      "OMR_ENGINE_BATCH_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it if OMR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("OMR_SERVER_PORT") == "" {
		serverPort = port
	}

	cfg.Server = ServerConfig{
		Port:           listenAddr(serverPort),
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		ProcessTimeout: v.GetDuration("server.process_timeout"),
		Environment:    v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level: strings.ToLower(v.GetString("log.level")),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		TempDir:       v.GetString("upload.temp_dir"),
	}

	// Parse vocabulary from comma-separated string
	var vocabulary []string
	for _, item := range strings.Split(v.GetString("engine.vocabulary"), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			vocabulary = append(vocabulary, item)
		}
	}

	cfg.Engine = EngineConfig{
		Layout:              strings.ToLower(v.GetString("engine.layout")),
		Vocabulary:          vocabulary,
		BlurRadius:          v.GetFloat64("engine.blur_radius"),
		BlurFraction:        v.GetFloat64("engine.blur_fraction"),
		BinarizeMethod:      strings.ToLower(v.GetString("engine.binarize_method")),
		WindowFraction:      v.GetFloat64("engine.window_fraction"),
		Offset:              v.GetFloat64("engine.offset"),
		GlobalThreshold:     v.GetInt("engine.global_threshold"),
		MarkThreshold:       v.GetFloat64("engine.mark_threshold"),
		MarkInset:           v.GetFloat64("engine.mark_inset"),
		MinMarkArea:         v.GetInt("engine.min_mark_area"),
		MaxMarkAreaFraction: v.GetFloat64("engine.max_mark_area_fraction"),
		MaxDimension:        v.GetInt("engine.max_dimension"),
		BatchConcurrency:    v.GetInt("engine.batch_concurrency"),
	}

	if _, err := cfg.Engine.ToEngineConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// listenAddr turns a bare port number into a listen address.
func listenAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// ToEngineConfig maps the loaded settings onto a validated omr.Config.
func (e EngineConfig) ToEngineConfig() (omr.Config, error) {
	cfg := omr.DefaultConfig()

	switch e.Layout {
	case LayoutReference, "":
		cfg.Form = layout.ReferenceForm()
	case LayoutTwoUp:
		cfg.Form = layout.TwoUpForm()
	default:
		return omr.Config{}, fmt.Errorf("%w: unknown layout %q", omr.ErrInvalidConfig, e.Layout)
	}
	if len(e.Vocabulary) > 0 {
		cfg.Form.Vocabulary = append([]string(nil), e.Vocabulary...)
	}

	if e.GlobalThreshold < 0 || e.GlobalThreshold > 255 {
		return omr.Config{}, fmt.Errorf("%w: global_threshold must be in [0,255]", omr.ErrInvalidConfig)
	}

	cfg.BlurRadius = e.BlurRadius
	cfg.BlurFraction = e.BlurFraction
	cfg.Binarize = imaging.BinarizeOptions{
		Method:          imaging.Method(e.BinarizeMethod),
		WindowFraction:  e.WindowFraction,
		Offset:          e.Offset,
		GlobalThreshold: uint8(e.GlobalThreshold),
	}
	cfg.MarkThreshold = e.MarkThreshold
	cfg.MarkInset = e.MarkInset
	cfg.MinMarkArea = e.MinMarkArea
	cfg.MaxMarkAreaFraction = e.MaxMarkAreaFraction
	cfg.MaxDimension = e.MaxDimension

	if err := cfg.Validate(); err != nil {
		return omr.Config{}, err
	}
	return cfg, nil
}
