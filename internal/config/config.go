package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const appDirName = ".gdrive-picker"

// Config holds the complete application configuration
type Config struct {
	Google  GoogleConfig  `mapstructure:"google"`
	Picker  PickerConfig  `mapstructure:"picker"`
	Log     LogConfig     `mapstructure:"log"`
	General GeneralConfig `mapstructure:"general"`
	UI      UIConfig      `mapstructure:"ui"`
}

// GoogleConfig holds the OAuth client credentials
type GoogleConfig struct {
	ClientID        string `mapstructure:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"`
	CredentialsFile string `mapstructure:"credentials_file"`
	RedirectPort    int    `mapstructure:"redirect_port"`
}

// PickerConfig holds the picker component options
type PickerConfig struct {
	Multiple         bool     `mapstructure:"multiple"`
	MimeTypes        []string `mapstructure:"mime_types"`
	DefaultView      string   `mapstructure:"default_view"`
	ShowToolbar      bool     `mapstructure:"show_toolbar"`
	ShowBreadcrumb   bool     `mapstructure:"show_breadcrumb"`
	SearchDebounceMs int      `mapstructure:"search_debounce_ms"`
	OutputFormat     string   `mapstructure:"output_format"`
	RememberToken    bool     `mapstructure:"remember_token"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeneralConfig holds general application configuration
type GeneralConfig struct {
	DefaultTimeout int `mapstructure:"default_timeout"`
	MaxRetries     int `mapstructure:"max_retries"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	ImagePreviewMethod string `mapstructure:"image_preview_method"`
	ThumbnailCacheMB   int    `mapstructure:"thumbnail_cache_mb"`
}

// Timeout returns the per-request timeout
func (c *GeneralConfig) Timeout() time.Duration {
	return time.Duration(c.DefaultTimeout) * time.Second
}

// SearchDebounce returns the search quiet period
func (c *PickerConfig) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// Load loads configuration from multiple sources with priority:
// 1. Command line flags (highest)
// 2. Environment variables
// 3. Configuration file
// 4. Defaults (lowest)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("GDPICKER")
	v.AutomaticEnv()

	v.BindEnv("google.client_id", "GDPICKER_CLIENT_ID")
	v.BindEnv("google.client_secret", "GDPICKER_CLIENT_SECRET")
	v.BindEnv("google.credentials_file", "GDPICKER_CREDENTIALS_FILE")
	v.BindEnv("google.redirect_port", "GDPICKER_REDIRECT_PORT")
	v.BindEnv("picker.multiple", "GDPICKER_MULTIPLE")
	v.BindEnv("picker.mime_types", "GDPICKER_MIME_TYPES")
	v.BindEnv("picker.default_view", "GDPICKER_DEFAULT_VIEW")
	v.BindEnv("picker.output_format", "GDPICKER_OUTPUT_FORMAT")
	v.BindEnv("picker.remember_token", "GDPICKER_REMEMBER_TOKEN")
	v.BindEnv("log.level", "GDPICKER_LOG_LEVEL")
	v.BindEnv("log.format", "GDPICKER_LOG_FORMAT")
	v.BindEnv("ui.image_preview_method", "GDPICKER_UI_IMAGE_PREVIEW_METHOD")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/" + appDirName)
		v.AddConfigPath("/etc/gdrive-picker/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we can use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("google.redirect_port", 0)

	v.SetDefault("picker.multiple", false)
	v.SetDefault("picker.mime_types", []string{
		"image/jpeg",
		"image/png",
		"image/webp",
		"video/mp4",
		"video/quicktime",
	})
	v.SetDefault("picker.default_view", "grid")
	v.SetDefault("picker.show_toolbar", true)
	v.SetDefault("picker.show_breadcrumb", true)
	v.SetDefault("picker.search_debounce_ms", 400)
	v.SetDefault("picker.output_format", "json")
	v.SetDefault("picker.remember_token", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("general.default_timeout", 30)
	v.SetDefault("general.max_retries", 3)

	v.SetDefault("ui.image_preview_method", "auto")
	v.SetDefault("ui.thumbnail_cache_mb", 50)
}

// GetConfigDir returns the per-user configuration directory
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(homeDir, appDirName)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// GetTokenPath returns where the OAuth token is cached
func GetTokenPath() string {
	return filepath.Join(GetConfigDir(), "token.json")
}

// GetThumbnailCacheDir returns the thumbnail cache directory
func GetThumbnailCacheDir() string {
	return filepath.Join(GetConfigDir(), "cache", "thumbnails")
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(GetConfigDir(), 0700)
}
