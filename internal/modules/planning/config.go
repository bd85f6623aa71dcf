package planning

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron"
	"gopkg.in/yaml.v3"

	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/plan"
)

//go:embed planner.yaml
var defaultConfigYAML []byte

type GeneratorConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type BatchConfig struct {
	// Schedule is a six-field cron spec (seconds first).
	Schedule string        `yaml:"schedule"`
	Delay    time.Duration `yaml:"delay"`
}

type MealRatios struct {
	ThreeMeal plan.Ratios `yaml:"three_meal"`
	WithSnack plan.Ratios `yaml:"with_snack"`
}

type Config struct {
	Version     int             `yaml:"version"`
	Timezone    string          `yaml:"timezone"`
	LateHour    int             `yaml:"late_hour"`
	HistoryDays int             `yaml:"history_days"`
	MealRatios  MealRatios      `yaml:"meal_ratios"`
	Generator   GeneratorConfig `yaml:"generator"`
	Batch       BatchConfig     `yaml:"batch"`
}

// DefaultConfig decodes the embedded planner.yaml.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("planning: embedded planner.yaml: %v", err))
	}
	return cfg
}

// LoadConfig overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read planner config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse planner config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.LateHour < 0 || c.LateHour > 24 {
		return fmt.Errorf("planner config: late_hour %d out of range", c.LateHour)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("planner config: history_days must be positive")
	}
	if err := c.MealRatios.ThreeMeal.Validate(); err != nil {
		return fmt.Errorf("planner config: three_meal: %w", err)
	}
	if err := c.MealRatios.WithSnack.Validate(); err != nil {
		return fmt.Errorf("planner config: with_snack: %w", err)
	}
	if _, err := cron.Parse(c.Batch.Schedule); err != nil {
		return fmt.Errorf("planner config: batch schedule %q: %w", c.Batch.Schedule, err)
	}
	if c.Batch.Delay < 0 {
		return fmt.Errorf("planner config: batch delay must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; "" and "Local" mean the process zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("planner config: timezone %q: %w", tz, err)
	}
	return loc, nil
}
