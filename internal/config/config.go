package config

import (
	"os"
	"strconv"

	"github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yamlv3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port        int      `config:"port"`
	CORSOrigins []string `config:"cors_origins"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `config:"path"`
}

// JWTConfig holds the token signing and validation settings.
type JWTConfig struct {
	Secret        string `config:"secret"`
	Issuer        string `config:"issuer"`
	Audience      string `config:"audience"`
	ExpiryMinutes int    `config:"expiry_minutes"`
}

// SeedConfig controls the demo-user provisioning step run at startup.
type SeedConfig struct {
	Enabled  bool   `config:"enabled"`
	Password string `config:"password"`
}

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `config:"server"`
	Database DatabaseConfig `config:"database"`
	JWT      JWTConfig      `config:"jwt"`
	Seed     SeedConfig     `config:"seed"`
}

// Load reads the optional YAML config file, then applies environment
// variable overrides on top of the defaults.
func Load() (*Config, error) {
	c := config.NewWithOptions("todoboard", func(opt *config.Options) {
		opt.ParseEnv = true
		opt.DecoderConfig.TagName = "config"
	})
	c.AddDriver(yamlv3.Driver)

	if err := c.LoadExists(getEnv("TODOBOARD_CONFIG", "config.yml")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Database: DatabaseConfig{Path: "./todoboard.db"},
		JWT: JWTConfig{
			Issuer:        "todoboard",
			Audience:      "todoboard-client",
			ExpiryMinutes: 60,
		},
		Seed: SeedConfig{Enabled: true, Password: "ChangeMe123!"},
	}
	if err := c.BindStruct("", cfg); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv("DATABASE_PATH"); ok {
		cfg.Database.Path = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		cfg.JWT.Secret = v
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
