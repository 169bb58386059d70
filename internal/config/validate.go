package config

import (
	"fmt"
	"strings"

	"github.com/HaiFongPan/gdrive-picker/internal/utils"
)

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	if err := validateGoogleConfig(&config.Google); err != nil {
		return fmt.Errorf("google config validation failed: %w", err)
	}

	if err := validatePickerConfig(&config.Picker); err != nil {
		return fmt.Errorf("picker config validation failed: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := validateGeneralConfig(&config.General); err != nil {
		return fmt.Errorf("general config validation failed: %w", err)
	}

	if err := validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("ui config validation failed: %w", err)
	}

	return nil
}

// validateGoogleConfig requires either a credentials file or a client id
func validateGoogleConfig(config *GoogleConfig) error {
	if strings.TrimSpace(config.CredentialsFile) == "" && strings.TrimSpace(config.ClientID) == "" {
		return fmt.Errorf("client_id or credentials_file is required")
	}

	if config.RedirectPort < 0 || config.RedirectPort > 65535 {
		return fmt.Errorf("redirect_port out of range: %d", config.RedirectPort)
	}

	return nil
}

func validatePickerConfig(config *PickerConfig) error {
	if len(config.MimeTypes) == 0 {
		return fmt.Errorf("mime_types must not be empty")
	}
	for _, mt := range config.MimeTypes {
		if !utils.IsValidMimeType(mt) {
			return fmt.Errorf("invalid mime type: %s", mt)
		}
	}

	switch strings.ToLower(config.DefaultView) {
	case "grid", "list":
	default:
		return fmt.Errorf("invalid default_view: %s (valid: grid, list)", config.DefaultView)
	}

	switch strings.ToLower(config.OutputFormat) {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("invalid output_format: %s (valid: json, yaml, text)", config.OutputFormat)
	}

	if config.SearchDebounceMs < 0 {
		return fmt.Errorf("search_debounce_ms must be non-negative, got: %d", config.SearchDebounceMs)
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

// validateGeneralConfig validates general configuration
func validateGeneralConfig(config *GeneralConfig) error {
	if config.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive, got: %d", config.DefaultTimeout)
	}

	if config.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative, got: %d", config.MaxRetries)
	}

	return nil
}

func validateUIConfig(config *UIConfig) error {
	switch strings.ToLower(config.ImagePreviewMethod) {
	case "auto", "text", "none":
	default:
		return fmt.Errorf("invalid image_preview_method: %s (valid: auto, text, none)", config.ImagePreviewMethod)
	}

	if config.ThumbnailCacheMB < 0 {
		return fmt.Errorf("thumbnail_cache_mb must be non-negative, got: %d", config.ThumbnailCacheMB)
	}

	return nil
}
