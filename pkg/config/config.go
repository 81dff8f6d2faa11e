// Package config reads the notemaker settings from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/james-see/notemaker/pkg/theory"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string
	LogLevel    string

	// Generation defaults
	Seed  uint64  // 0 seeds from the clock
	Root  string  // root note name, C..B
	Scale string  // scale name from the scale table
	Tempo float64 // BPM used for export and capture
	Genre string  // filename genre tag
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Seed:        getUint("NOTEMAKER_SEED", 0),
		Root:        getEnv("NOTEMAKER_ROOT", "C"),
		Scale:       getEnv("NOTEMAKER_SCALE", "Major"),
		Tempo:       getFloat("NOTEMAKER_TEMPO", 120),
		Genre:       getEnv("NOTEMAKER_GENRE", "DNB"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getUint(key string, defaultValue uint64) uint64 {
	v, err := strconv.ParseUint(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

// IsProduction reports whether the server should run gin in release mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DefaultKey resolves the configured root and scale
func (c *Config) DefaultKey() (root int, intervals []int, err error) {
	root, err = theory.ParseRoot(c.Root)
	if err != nil {
		return 0, nil, err
	}
	intervals, err = theory.LookupScale(c.Scale)
	if err != nil {
		return 0, nil, err
	}
	return root, intervals, nil
}
