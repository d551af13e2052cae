package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dharmasatrya/flightcrawl/internal/app"
	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/providers"
	"github.com/dharmasatrya/flightcrawl/internal/session"
)

func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Crawl every date combination and print the cheapest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "template-url",
				Usage:    "Results URL with {date1}..{dateN} placeholders or one ISO date per segment",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "segment",
				Usage:    "Date range of one segment as START:END (repeat per segment)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "cookies",
				Usage: "JSON cookie file used as the session for this search only",
			},
			&cli.IntFlag{
				Name:  "max-stops",
				Usage: "Stop ceiling applied to every segment",
				Value: -1,
			},
			&cli.StringFlag{
				Name:  "max-duration",
				Usage: "Duration ceiling (HH:MM) applied to every segment",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw JSON response",
			},
		},
		Action: runSearch,
	}
}

func runSearch(ctx context.Context, c *cli.Command) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	req, err := buildRequest(c)
	if err != nil {
		return err
	}
	if err := req.Validate(time.Now()); err != nil {
		return err
	}

	var opts []app.Option
	if path := c.String("cookies"); path != "" {
		store, err := cookieStore(ctx, path, req.TemplateURL)
		if err != nil {
			return err
		}
		opts = append(opts, app.WithSessions(store))
	}

	a, err := app.New(cfg, log, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Search.Search(ctx, req)
	if err != nil {
		var serr *session.SessionError
		if errors.As(err, &serr) {
			return fmt.Errorf("%w (pass --cookies or run: flightsearch session set --provider %s)", err, serr.Provider)
		}
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Println(renderResults(resp))
	return nil
}

func buildRequest(c *cli.Command) (models.SearchRequest, error) {
	req := models.SearchRequest{TemplateURL: c.String("template-url")}

	var filters *models.SegmentFilters
	if stops := c.Int("max-stops"); stops >= 0 {
		filters = &models.SegmentFilters{MaxStops: &stops}
	}
	if d := c.String("max-duration"); d != "" {
		if filters == nil {
			filters = &models.SegmentFilters{}
		}
		filters.MaxDuration = &d
	}

	for _, seg := range c.StringSlice("segment") {
		start, end, ok := strings.Cut(seg, ":")
		if !ok {
			return req, fmt.Errorf("segment %q must look like START:END", seg)
		}
		req.SegmentsDateRanges = append(req.SegmentsDateRanges, models.SegmentDateRange{
			Start:   strings.TrimSpace(start),
			End:     strings.TrimSpace(end),
			Filters: filters,
		})
	}
	return req, nil
}

// cookieStore holds a single session built from a cookie file, keyed by the
// provider the template resolves to.
func cookieStore(ctx context.Context, path, templateURL string) (session.Store, error) {
	cookies, err := readCookies(path)
	if err != nil {
		return nil, err
	}
	provider, err := providers.NewDefaultRegistry(nil).Lookup(templateURL)
	if err != nil {
		return nil, err
	}

	store := session.NewMemoryStore()
	s := &session.Session{Provider: provider.Name(), Cookies: cookies}
	session.Prepare(s, time.Now(), time.Hour)
	if err := store.Save(ctx, s); err != nil {
		return nil, err
	}
	return store, nil
}
