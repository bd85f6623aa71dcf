package app

import (
	"strings"
	"time"

	"github.com/fitpilot/fitpilot-backend/internal/modules/planning"
	"github.com/fitpilot/fitpilot-backend/internal/platform/envutil"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port             string
	ServiceName      string
	Environment      string
	Version          string
	JWTSecretKey     string
	AccessTokenTTL   time.Duration
	AllowedOrigins   []string
	DailyPlanEnabled bool
	Planner          planning.Config
}

// LoadConfig reads the process environment; .env is applied by main before this runs.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:             envutil.String("PORT", "8080"),
		ServiceName:      envutil.String("OTEL_SERVICE_NAME", "fitpilot"),
		Environment:      envutil.String("APP_ENV", "development"),
		Version:          envutil.String("APP_VERSION", "dev"),
		JWTSecretKey:     envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:   envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		DailyPlanEnabled: envutil.Bool("DAILY_PLAN_ENABLED", true),
	}
	if raw := envutil.String("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		cfg.AllowedOrigins = strings.Split(raw, ",")
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}

	planner, err := planning.LoadConfig(envutil.String("PLANNER_CONFIG_PATH", ""))
	if err != nil {
		return cfg, err
	}
	cfg.Planner = planner
	return cfg, nil
}
