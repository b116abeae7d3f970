package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"linguahub/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	App struct {
		// Timezone anchors heatmap day buckets to the learner-facing
		// calendar instead of server-local time.
		Timezone string `yaml:"timezone"`
	} `yaml:"app"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Tests struct {
		CacheTTL string `yaml:"cacheTtl"`
	} `yaml:"tests"`
	Rate struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate"`
	// Auth holds static dev tokens for the built-in verifier. Deployments
	// with a real token service leave this empty.
	Auth struct {
		Tokens map[string]TokenUser `yaml:"tokens"`
	} `yaml:"auth"`
}

// TokenUser is the principal a static dev token resolves to.
type TokenUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty
// or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Location resolves the configured timezone, defaulting to
// Europe/Amsterdam and falling back to UTC when the zone is unknown.
func (c Config) Location() *time.Location {
	name := c.App.Timezone
	if name == "" {
		name = "Europe/Amsterdam"
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

// DirectoryUsers converts the static token table into directory seeds.
func (c Config) DirectoryUsers() []domain.User {
	out := make([]domain.User, 0, len(c.Auth.Tokens))
	for _, tu := range c.Auth.Tokens {
		out = append(out, domain.User{ID: tu.ID, Name: tu.Name, Email: tu.Email, Role: domain.Role(tu.Role)})
	}
	return out
}
