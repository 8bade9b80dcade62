package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/config"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		LogFile:    cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// quietLogger builds a console logger that only reports problems, for
// CLI inspection commands where structured run output is noise.
func quietLogger() *slog.Logger {
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console"})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
