package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"polilink/internal/config"
	"polilink/internal/logging"
	"polilink/internal/resolver"
	"polilink/internal/services/extraction"
	"polilink/internal/store"
)

type commandContext struct {
	configFlag   *string
	databaseFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, databaseFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		databaseFlag: databaseFlag,
	}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) databasePath() (string, error) {
	if c.databaseFlag != nil && strings.TrimSpace(*c.databaseFlag) != "" {
		return strings.TrimSpace(*c.databaseFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.DatabasePath(), nil
}

func (c *commandContext) openStore() (*store.Store, error) {
	path, err := c.databasePath()
	if err != nil {
		return nil, err
	}
	return store.OpenPath(path)
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "polilink.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// newResolver opens the store and assembles a resolver with the configured
// fallback matcher. The caller closes the returned store.
func (c *commandContext) newResolver() (*resolver.Resolver, *store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := c.openStore()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.newLogger()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	var fallback resolver.FallbackMatcher
	if cfg.Fallback.Enabled {
		fallback = extraction.NewClient(extraction.Config{
			APIKey:         cfg.Fallback.APIKey,
			BaseURL:        cfg.Fallback.BaseURL,
			Model:          cfg.Fallback.Model,
			TimeoutSeconds: cfg.Fallback.TimeoutSeconds,
		})
	}
	return resolver.New(st, fallback, logger), st, nil
}
