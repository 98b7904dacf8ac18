package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"zymeboard/internal/errors"

	"gopkg.in/yaml.v3"
)

// SourceKind names where the result artifacts come from
type SourceKind string

const (
	SourceLocal SourceKind = "local"
	SourceHub   SourceKind = "hub"
	SourceS3    SourceKind = "s3"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Server  ServerConfig  `yaml:"server"`
	Shell   ShellConfig   `yaml:"shell"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// DataConfig selects and describes the result artifacts
type DataConfig struct {
	Dir             string `yaml:"input_dir"`
	HubName         string `yaml:"hub_name"`
	HubRepo         string `yaml:"hub_repo"`
	HubEndpoint     string `yaml:"hub_endpoint"`
	HubRevision     string `yaml:"hub_revision"`
	HubToken        string `yaml:"-"`
	S3URL           string `yaml:"s3_url"`
	S3Region        string `yaml:"s3_region"`
	S3Endpoint      string `yaml:"s3_endpoint"`
	S3PathStyle     bool   `yaml:"s3_path_style"`
	CacheDir        string `yaml:"cache_dir"`
	LegendAttribute string `yaml:"legend_attribute"`
	IDColumn        string `yaml:"id_column"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
	GinMode  string `yaml:"gin_mode"`
}

// ShellConfig holds the static parts of the outer page
type ShellConfig struct {
	BackLink string `yaml:"back_link"`
}

// SessionConfig controls the per-session shared state slot
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// HelpRequest is returned by Load for -h and -help. It carries the flag
// usage text and unwraps to flag.ErrHelp.
type HelpRequest struct {
	Usage string
}

func (h *HelpRequest) Error() string { return h.Usage }

func (h *HelpRequest) Unwrap() error { return flag.ErrHelp }

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:             "data/",
			HubRepo:         "ipb-halle/selectzyme-results",
			HubEndpoint:     "https://huggingface.co",
			HubRevision:     "main",
			S3Region:        "us-east-1",
			CacheDir:        ".cache/zymeboard",
			LegendAttribute: "cluster",
			IDColumn:        "accession",
		},
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     "8050",
			BasePath: "/",
			GinMode:  "release",
		},
		Shell: ShellConfig{
			BackLink: "/selectzyme-demo/",
		},
		Session: SessionConfig{
			TTL: 30 * time.Minute,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// environment variables and finally command-line flags.
func Load(args []string) (*Config, error) {
	cfg := Default()

	var usage strings.Builder
	fs := flag.NewFlagSet("zymeboard", flag.ContinueOnError)
	fs.SetOutput(&usage)
	configFile := fs.String("config", os.Getenv("ZB_CONFIG"), "path to a YAML configuration file")
	inputDir := fs.String("input-dir", "", "directory containing df.* and the .npz archives")
	hubName := fs.String("hub-name", "", "dataset name to download from the hub")
	hubRepo := fs.String("hub-repo", "", "hub dataset repository")
	s3URL := fs.String("s3-url", "", "s3://bucket/prefix holding the artifacts")
	cacheDir := fs.String("cache-dir", "", "download cache directory")
	legend := fs.String("legend", "", "legend attribute column")
	host := fs.String("host", "", "listen host")
	port := fs.String("port", "", "listen port")
	basePath := fs.String("base-path", "", "URL prefix the dashboard is served under")
	logLevel := fs.String("log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, &HelpRequest{Usage: usage.String()}
		}
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to parse flags")
	}

	if *configFile != "" {
		if err := loadFile(cfg, *configFile); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input-dir":
			cfg.Data.Dir = *inputDir
		case "hub-name":
			cfg.Data.HubName = *hubName
		case "hub-repo":
			cfg.Data.HubRepo = *hubRepo
		case "s3-url":
			cfg.Data.S3URL = *s3URL
		case "cache-dir":
			cfg.Data.CacheDir = *cacheDir
		case "legend":
			cfg.Data.LegendAttribute = *legend
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "base-path":
			cfg.Server.BasePath = *basePath
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), fmt.Sprintf("failed to read config file %s", path))
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), fmt.Sprintf("failed to parse config file %s", path))
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Data.Dir = getEnvOrDefault("ZB_INPUT_DIR", cfg.Data.Dir)
	cfg.Data.HubName = getEnvOrDefault("ZB_HUB_NAME", cfg.Data.HubName)
	cfg.Data.HubRepo = getEnvOrDefault("ZB_HUB_REPO", cfg.Data.HubRepo)
	cfg.Data.HubEndpoint = getEnvOrDefault("ZB_HUB_ENDPOINT", cfg.Data.HubEndpoint)
	cfg.Data.HubRevision = getEnvOrDefault("ZB_HUB_REVISION", cfg.Data.HubRevision)
	cfg.Data.HubToken = getEnvOrDefault("HF_TOKEN", cfg.Data.HubToken)
	cfg.Data.S3URL = getEnvOrDefault("ZB_S3_URL", cfg.Data.S3URL)
	cfg.Data.S3Region = getEnvOrDefault("ZB_S3_REGION", cfg.Data.S3Region)
	cfg.Data.S3Endpoint = getEnvOrDefault("ZB_S3_ENDPOINT", cfg.Data.S3Endpoint)
	cfg.Data.S3PathStyle = getEnvBoolOrDefault("ZB_S3_PATH_STYLE", cfg.Data.S3PathStyle)
	cfg.Data.CacheDir = getEnvOrDefault("ZB_CACHE_DIR", cfg.Data.CacheDir)
	cfg.Data.LegendAttribute = getEnvOrDefault("ZB_LEGEND_ATTRIBUTE", cfg.Data.LegendAttribute)
	cfg.Data.IDColumn = getEnvOrDefault("ZB_ID_COLUMN", cfg.Data.IDColumn)

	cfg.Server.Host = getEnvOrDefault("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.BasePath = getEnvOrDefault("ZB_BASE_PATH", cfg.Server.BasePath)
	cfg.Server.GinMode = getEnvOrDefault("GIN_MODE", cfg.Server.GinMode)

	cfg.Shell.BackLink = getEnvOrDefault("ZB_BACK_LINK", cfg.Shell.BackLink)
	cfg.Session.TTL = getEnvDurationOrDefault("ZB_SESSION_TTL", cfg.Session.TTL)
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
}

func validateConfig(config *Config) error {
	if config.Data.LegendAttribute == "" {
		return errors.ConfigInvalid("legend attribute is required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("server port %q is not a number", config.Server.Port))
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("session TTL must be positive")
	}
	switch config.SourceKind() {
	case SourceS3:
		if !strings.HasPrefix(config.Data.S3URL, "s3://") {
			return errors.ConfigInvalid(fmt.Sprintf("s3 url %q must start with s3://", config.Data.S3URL))
		}
	case SourceHub:
		if config.Data.HubRepo == "" {
			return errors.ConfigInvalid("hub repository is required in hub mode")
		}
		for _, part := range strings.Split(config.Data.HubName+"/"+config.Data.HubRepo, "/") {
			if part == ".." || part == "." || part == "" {
				return errors.ConfigInvalid(fmt.Sprintf("hub name %q and repository %q must be plain relative paths", config.Data.HubName, config.Data.HubRepo))
			}
		}
	case SourceLocal:
		if config.Data.Dir == "" {
			return errors.ConfigInvalid("input directory is required in local mode")
		}
	}
	return nil
}

// SourceKind picks the data source: S3 beats hub, hub beats local
func (c *Config) SourceKind() SourceKind {
	switch {
	case c.Data.S3URL != "":
		return SourceS3
	case c.Data.HubName != "":
		return SourceHub
	default:
		return SourceLocal
	}
}

// SourceName is the human-readable dataset name shown in the page title
func (c *Config) SourceName() string {
	switch c.SourceKind() {
	case SourceS3:
		return lastPathElement(strings.TrimPrefix(c.Data.S3URL, "s3://"))
	case SourceHub:
		return c.Data.HubName
	default:
		return lastPathElement(c.Data.Dir)
	}
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func lastPathElement(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
