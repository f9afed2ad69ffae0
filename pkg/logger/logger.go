package logger

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/grundschule/timetabler-core/pkg/config"
)

// New builds the module's zap.Logger, selecting the production or
// development preset by environment exactly as the teacher's constructor
// does, with an ISO8601 timestamp key.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// NewSolveID mints a correlation id for one generate/optimize call,
// replacing the teacher's HTTP request_id with a solve_id (the core never
// serves HTTP). WithSolve attaches it to a logger; generator.Service does
// not call either, so its own log lines carry no solve_id.
func NewSolveID() string {
	return uuid.NewString()
}

// WithSolve returns a child logger scoped to one solve run, carrying the
// solve id and the wall-clock start time so every subsequent field the
// caller adds lines up under one correlation id.
func WithSolve(l *zap.Logger, solveID string) *zap.Logger {
	return l.With(zap.String("solve_id", solveID), zap.Time("solve_started_at", time.Now().UTC()))
}
