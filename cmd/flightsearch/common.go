package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dharmasatrya/flightcrawl/internal/config"
	"github.com/dharmasatrya/flightcrawl/internal/logger"
	"github.com/dharmasatrya/flightcrawl/internal/session"
)

// setup loads configuration and sends logs to stderr so stdout stays clean
// for results.
func setup(c *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if c.Bool("debug") {
		level = "debug"
	}
	return cfg, logger.Setup(level, cfg.LogFormat, os.Stderr), nil
}

// readCookies loads a JSON array of cookies.
func readCookies(path string) ([]session.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookies: %w", err)
	}
	var cookies []session.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parsing cookies %s: %w", path, err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%s contains no cookies", path)
	}
	return cookies, nil
}
