package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	VideoSource string `validate:"required"`
	FrameStride int    `validate:"gte=1"` // Co którą klatkę przetwarzać (1=każdą)

	ModelPath           string `validate:"required"`
	ModelConfigPath     string
	ModelFormat         string  `validate:"oneof=ssd yolo"`
	ConfidenceThreshold float64 `validate:"gte=0,lte=1"`

	WarmupFrames  int           `validate:"gte=0"`
	AlertCooldown time.Duration `validate:"gte=0"`

	ImageDirectory string `validate:"required"`
	AnnotateAlerts bool
	DatabasePath   string `validate:"required"`
	CSVLogPath     string

	LogDirectory string `validate:"required"`
	LogFormat    string `validate:"oneof=console json"`
	LogLevel     string `validate:"oneof=debug info warn error"`

	HTTPPort int `validate:"gte=0,lte=65535"`

	SMTPHost     string
	SMTPPort     int `validate:"gte=0,lte=65535"`
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPTo       string `validate:"required_with=SMTPHost"`
	SMTPTLS      string `validate:"oneof=implicit starttls none"`

	NATSURL     string `validate:"omitempty,url"`
	NATSSubject string
}

// Load reads an optional .env file and then builds the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		VideoSource: getEnv("VIDEO_SOURCE", "downloaded_video.mp4"),
		FrameStride: getEnvAsInt("FRAME_STRIDE", 1),

		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ModelConfigPath:     getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		ModelFormat:         strings.ToLower(getEnv("MODEL_FORMAT", "ssd")),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),

		WarmupFrames:  getEnvAsInt("WARMUP_FRAMES", 30),
		AlertCooldown: getEnvAsSeconds("ALERT_COOLDOWN", 10*time.Second),

		ImageDirectory: getEnv("IMAGE_DIR", "alert_images"),
		AnnotateAlerts: getEnvAsBool("ANNOTATE_ALERTS", false),
		DatabasePath:   getEnv("DB_PATH", filepath.Join(".", "data", "alerts.db")),
		CSVLogPath:     getEnvAllowEmpty("CSV_LOG_PATH", "alerts_log.csv"),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "console")),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),

		HTTPPort: getEnvAsInt("HTTP_PORT", 8080),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPTo:       getEnv("SMTP_TO", ""),
		SMTPTLS:      strings.ToLower(getEnv("SMTP_TLS", "implicit")),

		NATSURL:     getEnv("NATS_URL", ""),
		NATSSubject: getEnv("NATS_SUBJECT", "noveltycam.alerts"),
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every violation in one error.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		problems = append(problems, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// EmailEnabled reports whether alert emails should be sent.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one explicitly set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsSeconds accepts either a plain number of seconds ("10", "2.5") or a Go duration ("1m30s").
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
