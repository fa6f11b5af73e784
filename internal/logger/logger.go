package logger

import (
	"go.uber.org/zap"

	"sprint-quiz-service/internal/config"
)

// New builds the service logger: JSON output in production, console output
// everywhere else. An unparsable level keeps the preset's default.
func New(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Log.Env == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Log.Level != "" {
		if lvl, err := zap.ParseAtomicLevel(cfg.Log.Level); err == nil {
			zcfg.Level = lvl
		}
	}
	return zcfg.Build()
}
