package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvAPIKey        = "API_KEY"
	EnvEndpoint      = "API_ENDPOINT"
	EnvBackend       = "ANALYZER_BACKEND"
	EnvModel         = "ANALYZER_MODEL"
	EnvLanguage      = "ANALYZE_LANGUAGE"
	EnvCameraDevice  = "CAMERA_DEVICE"
	EnvResultDisplay = "RESULT_DISPLAY"
	EnvKeyPoll       = "KEY_POLL"
	EnvTempDir       = "CAPTURE_TEMP_DIR"
	EnvJPEGQuality   = "CAPTURE_JPEG_QUALITY"
	EnvSaveDir       = "CAPTURE_SAVE_DIR"
	EnvSaveFormat    = "CAPTURE_SAVE_FORMAT"
	EnvLogLevel      = "LOG_LEVEL"
)

// Analysis backends
const (
	BackendAzure    = "azure"
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
)

var (
	// ErrMissing reports a required setting that is not set
	ErrMissing = errors.New("missing required setting")
	// ErrInvalid reports a setting with an unusable value
	ErrInvalid = errors.New("invalid setting")
)

// Config holds the application configuration. It is built once at startup
// and never modified afterwards.
type Config struct {
	APIKey   string
	Endpoint string
	Backend  string
	Model    string
	Language string

	CameraDevice  int
	ResultDisplay time.Duration
	KeyPoll       time.Duration

	TempDir     string
	JPEGQuality int
	SaveDir     string
	SaveFormat  string

	LogLevel string
}

// Default returns a configuration with default values and no credentials
func Default() Config {
	return Config{
		Backend:       BackendAzure,
		Model:         "llava",
		Language:      "es",
		CameraDevice:  0,
		ResultDisplay: 5 * time.Second,
		KeyPoll:       time.Millisecond,
		TempDir:       ".",
		JPEGQuality:   95,
		SaveFormat:    "jpg",
		LogLevel:      "info",
	}
}

// LoadEnvFile loads KEY=VALUE pairs from the given files (".env" when none is
// given) into the process environment. Variables already set win. Missing
// files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the configuration from an environment lookup such as os.LookupEnv
func Load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg.APIKey = get(EnvAPIKey)
	cfg.Endpoint = get(EnvEndpoint)

	if v := get(EnvBackend); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := get(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := get(EnvLanguage); v != "" {
		cfg.Language = v
	}
	if v := get(EnvCameraDevice); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvCameraDevice, v)
		}
		cfg.CameraDevice = n
	}
	if v := get(EnvResultDisplay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvResultDisplay, v, err)
		}
		cfg.ResultDisplay = d
	}
	if v := get(EnvKeyPoll); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvKeyPoll, v, err)
		}
		cfg.KeyPoll = d
	}
	if v := get(EnvTempDir); v != "" {
		cfg.TempDir = v
	}
	if v := get(EnvJPEGQuality); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvJPEGQuality, v)
		}
		cfg.JPEGQuality = n
	}
	cfg.SaveDir = get(EnvSaveDir)
	if v := get(EnvSaveFormat); v != "" {
		cfg.SaveFormat = strings.ToLower(v)
	}
	if v := get(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAzure:
		if c.APIKey == "" || c.Endpoint == "" {
			return fmt.Errorf("%w: %s and %s must both be set", ErrMissing, EnvAPIKey, EnvEndpoint)
		}
	case BackendOllama, BackendLlamaCpp:
		if c.Endpoint == "" {
			return fmt.Errorf("%w: %s must be set", ErrMissing, EnvEndpoint)
		}
	default:
		return fmt.Errorf("%w: %s must be one of %s, %s, %s", ErrInvalid, EnvBackend,
			BackendAzure, BackendOllama, BackendLlamaCpp)
	}

	if c.CameraDevice < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, EnvCameraDevice)
	}
	if c.ResultDisplay <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, EnvResultDisplay)
	}
	if c.KeyPoll <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, EnvKeyPoll)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: %s must be between 1 and 100", ErrInvalid, EnvJPEGQuality)
	}
	switch c.SaveFormat {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("%w: %s must be jpg, png or webp", ErrInvalid, EnvSaveFormat)
	}
	return nil
}
