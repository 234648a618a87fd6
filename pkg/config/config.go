package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config is the service configuration. File values are overridden by the environment.
type Config struct {
	Server struct {
		Port         string   `yaml:"port"`
		CorsHosts    []string `yaml:"cors_hosts"`
		CookieName   string   `yaml:"cookie_name"`
		SecureCookie bool     `yaml:"secure_cookie"`
	} `yaml:"server"`

	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`

	Firebase struct {
		ProjectID       string `yaml:"project_id"`
		CredentialsJSON string `yaml:"credentials_json"`
		StorageBucket   string `yaml:"storage_bucket"`
	} `yaml:"firebase"`

	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`

	Display struct {
		TimeZone string `yaml:"time_zone"`
	} `yaml:"display"`

	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

// Load reads configPath if it exists, applies environment overrides and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, xerrors.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, xerrors.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, xerrors.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, xerrors.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Port = "8080"
	cfg.Server.CookieName = "gjc_user_id"
	cfg.Store.Driver = StoreMemory
	cfg.Session.TTL = "10m"
	cfg.Display.TimeZone = "Asia/Tokyo"
	cfg.Logging.Level = "info"
}

func loadFromEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("PORT"); ok {
		cfg.Server.Port = v
	}
	if v, ok := os.LookupEnv("CORS_HOSTS"); ok && v != "" {
		cfg.Server.CorsHosts = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("SECURE_COOKIE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return xerrors.Errorf("SECURE_COOKIE: %w", err)
		}
		cfg.Server.SecureCookie = b
	}
	if v, ok := os.LookupEnv("STORE_DRIVER"); ok {
		cfg.Store.Driver = v
	}
	if v, ok := os.LookupEnv("FIREBASE_PROJECT_ID"); ok {
		cfg.Firebase.ProjectID = v
	}
	if v, ok := os.LookupEnv("FIREBASE_CREDENTIALS_JSON"); ok {
		cfg.Firebase.CredentialsJSON = v
	}
	if v, ok := os.LookupEnv("FIREBASE_STORAGE_BUCKET"); ok {
		cfg.Firebase.StorageBucket = v
	}
	if v, ok := os.LookupEnv("SESSION_TTL"); ok {
		cfg.Session.TTL = v
	}
	if v, ok := os.LookupEnv("TIME_ZONE"); ok {
		cfg.Display.TimeZone = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return xerrors.Errorf("LOG_PRETTY: %w", err)
		}
		cfg.Logging.Pretty = b
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return xerrors.New("server port is required")
	}
	switch cfg.Store.Driver {
	case StoreMemory:
	case StoreFirestore:
		if cfg.Firebase.ProjectID == "" {
			return xerrors.New("firebase project id is required for the firestore driver")
		}
		if cfg.Firebase.StorageBucket == "" {
			return xerrors.New("firebase storage bucket is required for the firestore driver")
		}
	default:
		return xerrors.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if _, err := time.ParseDuration(cfg.Session.TTL); err != nil {
		return xerrors.Errorf("session ttl: %w", err)
	}
	return nil
}

// SessionTTL returns the parsed session cache lifetime.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// Location returns the display time zone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
