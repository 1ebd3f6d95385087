package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang/geo/r2"
	"github.com/joho/godotenv"
)

// Strip is a half-open column range [Start, End) of the frame used for feature detection.
type Strip struct {
	Start int
	End   int
}

type Config struct {
	Port              int    `validate:"gt=0,lte=65535"`
	Password          string `validate:"required"`
	LogDirectory      string `validate:"required"`
	ProcessingWorkers int    `validate:"gte=1"`

	VideoPath       string
	TracksPath      string
	MotionCachePath string
	TracksCachePath string
	UseCache        bool

	FrameRate   float64 `validate:"gt=0"`
	FrameWindow int     `validate:"gte=1"`

	MinMotionDistance  float64 `validate:"gte=0"`
	MaxCorners         int     `validate:"gte=1"`
	QualityLevel       float64 `validate:"gt=0,lte=1"`
	MinFeatureDistance float64 `validate:"gte=0"`
	FlowWindow         int     `validate:"gte=3"`
	FlowMaxLevel       int     `validate:"gte=0"`
	FlowMaxIterations  int     `validate:"gte=1"`
	FlowEpsilon        float64 `validate:"gt=0"`
	MaskStrips         []Strip `validate:"min=1"`

	PixelVertices []r2.Point `validate:"min=1"`
	CourtLength   float64    `validate:"gt=0"`
	CourtWidth    float64    `validate:"gt=0"`

	KinematicsExcluded []string
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	strips, err := ParseStrips(getEnv("MASK_STRIPS", "0-20,900-1050"))
	if err != nil {
		return nil, fmt.Errorf("MASK_STRIPS: %w", err)
	}
	vertices, err := ParseVertices(getEnv("PIXEL_VERTICES", "110,1035;265,275;910,260;1640,915"))
	if err != nil {
		return nil, fmt.Errorf("PIXEL_VERTICES: %w", err)
	}

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8080),
		Password:          getEnv("PASSWORD", "fieldtrack"),
		LogDirectory:      getEnv("LOG_DIR", filepath.Join(".", "logs")),
		ProcessingWorkers: getEnvAsInt("PROCESSING_WORKERS", 3),

		VideoPath:       getEnv("VIDEO_PATH", filepath.Join(".", "input", "match.mp4")),
		TracksPath:      getEnv("TRACKS_PATH", filepath.Join(".", "input", "tracks.json")),
		MotionCachePath: getEnv("MOTION_CACHE_PATH", filepath.Join(".", "cache", "camera_motion.db")),
		TracksCachePath: getEnv("TRACKS_CACHE_PATH", filepath.Join(".", "cache", "tracks.db")),
		UseCache:        getEnvAsBool("USE_CACHE", true),

		FrameRate:   getEnvAsFloat("FRAME_RATE", 24),
		FrameWindow: getEnvAsInt("FRAME_WINDOW", 5),

		MinMotionDistance:  getEnvAsFloat("MIN_MOTION_DISTANCE", 5),
		MaxCorners:         getEnvAsInt("MAX_CORNERS", 100),
		QualityLevel:       getEnvAsFloat("QUALITY_LEVEL", 0.3),
		MinFeatureDistance: getEnvAsFloat("MIN_FEATURE_DISTANCE", 3),
		FlowWindow:         getEnvAsInt("LK_WINDOW", 15),
		FlowMaxLevel:       getEnvAsInt("LK_MAX_LEVEL", 2),
		FlowMaxIterations:  getEnvAsInt("LK_MAX_ITER", 10),
		FlowEpsilon:        getEnvAsFloat("LK_EPSILON", 0.03),
		MaskStrips:         strips,

		PixelVertices: vertices,
		CourtLength:   getEnvAsFloat("COURT_LENGTH", 23.32),
		CourtWidth:    getEnvAsFloat("COURT_WIDTH", 68),

		KinematicsExcluded: splitList(getEnv("KINEMATICS_EXCLUDED", "ball,referees")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and the calibration and mask geometry.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, s := range c.MaskStrips {
		if s.Start < 0 || s.End <= s.Start {
			return fmt.Errorf("invalid config: mask strip %d-%d", s.Start, s.End)
		}
	}
	return nil
}

// ParseStrips parses "start-end,start-end" column ranges.
func ParseStrips(value string) ([]Strip, error) {
	var strips []Strip
	for _, part := range splitList(value) {
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("strip %q: want start-end", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("strip %q: %w", part, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("strip %q: %w", part, err)
		}
		strips = append(strips, Strip{Start: start, End: end})
	}
	return strips, nil
}

// ParseVertices parses "x,y;x,y;..." pixel coordinates.
func ParseVertices(value string) ([]r2.Point, error) {
	var points []r2.Point
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		xy := strings.Split(part, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("vertex %q: want x,y", part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", part, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", part, err)
		}
		points = append(points, r2.Point{X: x, Y: y})
	}
	return points, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
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
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
