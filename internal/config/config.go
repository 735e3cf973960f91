package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Recognition RecognitionConfig
	Liveness    LivenessConfig
	Clock       ClockConfig
	Gallery     GalleryConfig
	Database    DatabaseConfig
	Extractor   ExtractorConfig
}

type RecognitionConfig struct {
	Dim       int     `yaml:"dim"`       // embedding vector length, fixed per deployment
	Tolerance float64 `yaml:"tolerance"` // maximum Euclidean distance for a match
}

type LivenessConfig struct {
	VariationThreshold float64 `yaml:"variation_threshold"` // minimum frame-diff score to accept as live
}

type ClockConfig struct {
	Timezone string `yaml:"timezone"` // IANA zone used for attendance day boundaries
}

type GalleryConfig struct {
	Path string // file the enrolled embeddings are saved to
}

type DatabaseConfig struct {
	URL          string // connection string; postgres URL or MySQL DSN depending on Driver
	Driver       string // "postgres" (default) or "mysql"; empty URL falls back to in-memory
	MaxOpenConns int    // maximum open connections (default 10)
	MaxIdleConns int    // maximum idle connections (default 2)
}

type ExtractorConfig struct {
	URL string // embedding extraction service, e.g. http://localhost:8000
}

// defaults mirrors the embedded YAML layout.
type defaults struct {
	Recognition RecognitionConfig `yaml:"recognition"`
	Liveness    LivenessConfig    `yaml:"liveness"`
	Clock       ClockConfig       `yaml:"clock"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var def defaults
	if err := yaml.Unmarshal(defaultsYAML, &def); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Recognition: RecognitionConfig{
			Dim:       envInt("EMBEDDING_DIM", def.Recognition.Dim),
			Tolerance: envFloat("MATCH_TOLERANCE", def.Recognition.Tolerance),
		},
		Liveness: LivenessConfig{
			VariationThreshold: envFloat("LIVENESS_THRESHOLD", def.Liveness.VariationThreshold),
		},
		Clock: ClockConfig{
			Timezone: envString("ATTENDANCE_TIMEZONE", def.Clock.Timezone),
		},
		Gallery: GalleryConfig{
			Path: envString("GALLERY_PATH", "data/gallery.json"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			Driver:       envString("DATABASE_DRIVER", "postgres"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Extractor: ExtractorConfig{
			URL: os.Getenv("EXTRACTOR_URL"),
		},
	}
}
