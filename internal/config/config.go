package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/aescanero/dago-levelset/internal/animation"
	"github.com/aescanero/dago-levelset/internal/grid"
	"github.com/aescanero/dago-levelset/internal/planner"
)

// Config holds all configuration for the levelset worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"levelset-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"levelset.work"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"levelset-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"levelset.planned"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// Sampling grid, shared by drawing and planning
	GridXMin       float64 `env:"GRID_X_MIN" envDefault:"-10"`
	GridXMax       float64 `env:"GRID_X_MAX" envDefault:"10"`
	GridYMin       float64 `env:"GRID_Y_MIN" envDefault:"-10"`
	GridYMax       float64 `env:"GRID_Y_MAX" envDefault:"10"`
	GridResolution int     `env:"GRID_RESOLUTION" envDefault:"400"`

	// Level planning
	FrameCount  int    `env:"FRAME_COUNT" envDefault:"20"`
	RoundDigits int    `env:"ROUND_DIGITS" envDefault:"3"`
	LevelPolicy string `env:"LEVEL_POLICY" envDefault:"filtered"`

	// Animation
	AnimationSpeed string `env:"ANIMATION_SPEED" envDefault:"x1"`
	LeaveTrace     bool   `env:"LEAVE_TRACE" envDefault:"true"`

	// Plan cache in Redis
	PlanTTL time.Duration `env:"PLAN_TTL" envDefault:"1h"`

	// CEL region masks
	RegionEnabled bool `env:"REGION_ENABLED" envDefault:"true"`

	// Frame titles (Handlebars)
	DrawTitle      string `env:"DRAW_TITLE" envDefault:"Level curve: N = {{fixed level}}"`
	AnimationTitle string `env:"ANIMATION_TITLE" envDefault:"Animation: N = {{fixed level}}"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8083"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if err := c.Sampling().Validate(); err != nil {
		return fmt.Errorf("GRID_*: %w", err)
	}

	if c.GridResolution > 4000 {
		return fmt.Errorf("GRID_RESOLUTION must not exceed 4000")
	}

	if err := c.PlannerOptions().Validate(); err != nil {
		return fmt.Errorf("FRAME_COUNT/ROUND_DIGITS/LEVEL_POLICY: %w", err)
	}

	if c.FrameCount == 0 {
		return fmt.Errorf("FRAME_COUNT must be positive")
	}

	if !isValidSpeed(c.AnimationSpeed) {
		return fmt.Errorf("ANIMATION_SPEED must be one of: x0.5, x1, x1.5, x2")
	}

	if c.PlanTTL < 0 {
		return fmt.Errorf("PLAN_TTL must be non-negative")
	}

	if c.DrawTitle == "" || c.AnimationTitle == "" {
		return fmt.Errorf("DRAW_TITLE and ANIMATION_TITLE are required")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

func isValidSpeed(speed string) bool {
	_, ok := animation.Speeds[speed]
	return ok
}

// SpeedInterval returns the frame interval for a speed multiplier. Unknown
// speeds get the x1 interval.
func SpeedInterval(speed string) time.Duration {
	return animation.SpeedInterval(speed)
}

// FrameInterval returns the configured frame interval
func (c *Config) FrameInterval() time.Duration {
	return SpeedInterval(c.AnimationSpeed)
}

// Sampling returns the session sampling grid
func (c *Config) Sampling() grid.Sampling {
	return grid.Sampling{
		Bounds: grid.Bounds{
			XMin: c.GridXMin,
			XMax: c.GridXMax,
			YMin: c.GridYMin,
			YMax: c.GridYMax,
		},
		Resolution: c.GridResolution,
	}
}

// PlannerOptions returns the level planner options
func (c *Config) PlannerOptions() planner.Options {
	return planner.Options{
		FrameCount: c.FrameCount,
		Digits:     c.RoundDigits,
		Policy:     planner.Policy(c.LevelPolicy),
	}
}

// RedisOptions returns Redis client options
func (c *Config) RedisOptions() map[string]interface{} {
	return map[string]interface{}{
		"addr":     c.RedisAddr,
		"password": c.RedisPassword,
		"db":       c.RedisDB,
	}
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	s := c.Sampling()
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"Grid=[%g,%g]x[%g,%g]@%d, FrameCount=%d, RoundDigits=%d, LevelPolicy=%s, "+
			"AnimationSpeed=%s, RegionEnabled=%v, HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		s.Bounds.XMin, s.Bounds.XMax, s.Bounds.YMin, s.Bounds.YMax, s.Resolution,
		c.FrameCount,
		c.RoundDigits,
		c.LevelPolicy,
		c.AnimationSpeed,
		c.RegionEnabled,
		c.HealthPort,
		c.LogLevel,
	)
}

