// Package config holds the settings of the in-process platform host.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string           `yaml:"log_level"`
	App        AppConfig        `yaml:"app"`
	Properties PropertiesConfig `yaml:"properties"`
	Resources  ResourcesConfig  `yaml:"resources"`
	Services   ServicesConfig   `yaml:"services"`
}

// AppConfig describes the application being hosted.
type AppConfig struct {
	// InfoPath locates appinfo.json inside the resource filesystem.
	InfoPath   string `yaml:"info"`
	Parameters string `yaml:"parameters"`
	ProcessID  string `yaml:"process_id"`
	ActivityID int    `yaml:"activity_id"`
}

// PropertiesConfig seeds the values reported in the initial property bundle.
type PropertiesConfig struct {
	Locale            string `yaml:"locale"`
	LocaleRegion      string `yaml:"locale_region"`
	PhoneRegion       string `yaml:"phone_region"`
	TimeFormat        string `yaml:"time_format"`
	TimeZone          string `yaml:"time_zone"`
	Version           string `yaml:"version"`
	IsMinimal         bool   `yaml:"is_minimal"`
	ScreenOrientation string `yaml:"screen_orientation"`
	WindowOrientation string `yaml:"window_orientation"`
	// UserAgent derives deviceInfo when ModelName and PlatformVersion are unset.
	UserAgent       string `yaml:"user_agent"`
	ModelName       string `yaml:"model_name"`
	PlatformVersion string `yaml:"platform_version"`
}

type ResourcesConfig struct {
	// Root is prefixed to relative resource paths.
	Root             string        `yaml:"root"`
	CacheEntries     int           `yaml:"cache_entries"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	// Restrict limits resources to the platform's allowed path prefixes.
	Restrict       bool   `yaml:"restrict"`
	FirstUseMarker string `yaml:"first_use_marker"`
}

type ServicesConfig struct {
	CallTimeout time.Duration          `yaml:"call_timeout"`
	Preferences map[string]interface{} `yaml:"preferences"`
}

func Defaults() *Config {
	return &Config{
		LogLevel: "log",
		App: AppConfig{
			InfoPath:   "appinfo.json",
			Parameters: "{}",
			ProcessID:  "1000",
			ActivityID: 1,
		},
		Properties: PropertiesConfig{
			Locale:            "en",
			LocaleRegion:      "us",
			PhoneRegion:       "us",
			TimeFormat:        "HH12",
			TimeZone:          "Etc/UTC",
			ScreenOrientation: "up",
			WindowOrientation: "up",
		},
		Resources: ResourcesConfig{
			CacheEntries:     64,
			ProgressInterval: 100 * time.Millisecond,
			FirstUseMarker:   "/var/luna/preferences/ran-first-use",
		},
		Services: ServicesConfig{
			CallTimeout: 30 * time.Second,
			Preferences: map[string]interface{}{
				"locale": map[string]interface{}{
					"languageCode": "en",
					"countryCode":  "us",
				},
				"timeFormat": "HH12",
			},
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML onto cfg, leaving fields absent from data untouched.
func Parse(data []byte, cfg *Config) error {
	err := yaml.Unmarshal(data, cfg)
	return errors.Wrap(err, "parse config")
}

// ApplyEnvOverrides applies PALMHOST_* environment variables.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PALMHOST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PALMHOST_APP_INFO"); v != "" {
		cfg.App.InfoPath = v
	}
	if v := os.Getenv("PALMHOST_APP_PARAMETERS"); v != "" {
		cfg.App.Parameters = v
	}
	if v := os.Getenv("PALMHOST_ACTIVITY_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.ActivityID = n
		}
	}
	if v := os.Getenv("PALMHOST_LOCALE"); v != "" {
		cfg.Properties.Locale = v
	}
	if v := os.Getenv("PALMHOST_TIME_ZONE"); v != "" {
		cfg.Properties.TimeZone = v
	}
	if v := os.Getenv("PALMHOST_USER_AGENT"); v != "" {
		cfg.Properties.UserAgent = v
	}
	if v := os.Getenv("PALMHOST_RESOURCES_ROOT"); v != "" {
		cfg.Resources.Root = v
	}
	if v := os.Getenv("PALMHOST_RESOURCES_RESTRICT"); v != "" {
		cfg.Resources.Restrict = v == "true"
	}
	if v := os.Getenv("PALMHOST_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Services.CallTimeout = d
		}
	}
}
