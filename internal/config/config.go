package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server's startup settings. Values come from an optional
// YAML file; flags override it in main.
type Config struct {
	Addr        string `yaml:"addr"`
	DBPath      string `yaml:"db_path"`
	UploadsDir  string `yaml:"uploads_dir"`
	SessionTTL  string `yaml:"session_ttl"`
	CompanyName string `yaml:"company_name"`
}

// Default returns the built-in settings used when no config file exists.
func Default() Config {
	return Config{
		Addr:        ":9000",
		DBPath:      "cmms.db",
		UploadsDir:  "uploads",
		SessionTTL:  "24h",
		CompanyName: "Maintenance",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// TTL parses the session lifetime, falling back to 24h on bad input.
func (c Config) TTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
