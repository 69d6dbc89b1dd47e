package config

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// PostgresURL enables run recording and lookup when set.
	PostgresURL string
	SaveRuns    bool

	// OverpassURL enables health facility lookup when set.
	OverpassURL     string
	OverpassTimeout time.Duration

	CacheTTL     time.Duration
	CacheCleanup time.Duration

	ClusterThreshold  int
	ClusterResolution float64

	AllowedOrigins []string
}

// Load reads the configuration from the environment, falling back to
// defaults for unset or unparsable values.
func Load() Config {
	return Config{
		Port:              getEnvWithDefault("PORT", "8080"),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		SaveRuns:          getEnvAsBool("SAVE_RUNS", false),
		OverpassURL:       os.Getenv("OVERPASS_URL"),
		OverpassTimeout:   getEnvAsDuration("OVERPASS_TIMEOUT", 30*time.Second),
		CacheTTL:          getEnvAsDuration("CACHE_TTL", 30*time.Minute),
		CacheCleanup:      getEnvAsDuration("CACHE_CLEANUP", time.Hour),
		ClusterThreshold:  getEnvAsInt("CLUSTER_THRESHOLD", 5),
		ClusterResolution: getEnvAsFloat("CLUSTER_RESOLUTION", 100),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8080",
		}),
	}
}

func (c Config) Validate() error {
	if c.ClusterThreshold <= 0 {
		return fmt.Errorf("CLUSTER_THRESHOLD must be positive, got %d", c.ClusterThreshold)
	}
	if c.ClusterResolution <= 0 {
		return fmt.Errorf("CLUSTER_RESOLUTION must be positive, got %g", c.ClusterResolution)
	}
	if c.SaveRuns && c.PostgresURL == "" {
		return fmt.Errorf("SAVE_RUNS requires POSTGRES_URL")
	}
	return nil
}

// LoadEnv sets variables from a .env file in the working directory or the
// path in OUTBREAK_ENV. Variables already present in the environment win.
// A missing file is not an error.
func LoadEnv() error {
	paths := []string{os.Getenv("OUTBREAK_ENV"), ".env", "../.env"}

	var path string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening .env file: %w", err)
	}
	defer file.Close()

	log.Printf("Loading environment variables from %s", path)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
	return scanner.Err()
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Printf("Warning: invalid %s=%q, using %g", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Warning: invalid %s=%q, using %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
