package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dharmasatrya/flightcrawl/internal/app"
	"github.com/dharmasatrya/flightcrawl/internal/session"
)

func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Manage provider sessions",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Store the cookies a provider needs before it can be searched",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "provider",
						Usage:    "Provider name, e.g. google_flights",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "cookies",
						Usage:    "JSON cookie file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "user-agent",
						Usage: "User agent the cookies were issued to",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Session lifetime (defaults to SESSION_TTL)",
					},
				},
				Action: runSessionSet,
			},
		},
	}
}

func runSessionSet(ctx context.Context, c *cli.Command) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.SessionBackend == "memory" {
		log.Warn("SESSION_BACKEND is memory, the session will not outlive this command")
	}

	cookies, err := readCookies(c.String("cookies"))
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ttl := cfg.SessionTTL
	if c.IsSet("ttl") {
		ttl = c.Duration("ttl")
	}
	s := &session.Session{
		Provider:  c.String("provider"),
		Cookies:   cookies,
		UserAgent: c.String("user-agent"),
	}
	session.Prepare(s, time.Now(), ttl)

	if err := a.Sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Printf("Stored %d cookies for %s, valid until %s\n", len(s.Cookies), s.Provider, s.ExpiresAt.Format(time.RFC3339))
	return nil
}
