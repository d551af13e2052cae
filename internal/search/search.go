// Package search runs a multi-segment flight search: every date combination
// is crawled, parsed and filtered concurrently, then the survivors are ranked
// by total price.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/dharmasatrya/flightcrawl/internal/combination"
	"github.com/dharmasatrya/flightcrawl/internal/crawler"
	"github.com/dharmasatrya/flightcrawl/internal/filter"
	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/providers"
	"github.com/dharmasatrya/flightcrawl/internal/ranking"
	"github.com/dharmasatrya/flightcrawl/internal/session"
	"github.com/dharmasatrya/flightcrawl/pkg/currency"
)

// ErrNoItinerary marks a combination the provider answered with 404.
var ErrNoItinerary = errors.New("provider has no itinerary for these dates")

type Crawler interface {
	Crawl(ctx context.Context, req crawler.Request) (*crawler.Result, error)
}

type ProviderResolver interface {
	Lookup(templateURL string) (providers.Provider, error)
}

type Config struct {
	MaxConcurrency int
	ResultLimit    int
	// SearchTimeout bounds the whole fan-out. Zero leaves only the per-crawl
	// timeouts in place.
	SearchTimeout time.Duration
	UseProxy      bool
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 8,
		ResultLimit:    ranking.DefaultLimit,
	}
}

type Service struct {
	crawler   Crawler
	providers ProviderResolver
	sessions  session.Store
	filters   *filter.Service
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(c Crawler, resolver ProviderResolver, sessions session.Store, config Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxConcurrency < 1 {
		config.MaxConcurrency = 1
	}
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	return &Service{
		crawler:   c,
		providers: resolver,
		sessions:  sessions,
		filters:   filter.NewService(logger),
		config:    config,
		logger:    logger.With("component", "search"),
		now:       time.Now,
	}
}

// outcome is the terminal state of one combination.
type outcome struct {
	state  models.CombinationState
	result *models.CombinationResult
	err    error
}

// Search returns the cheapest combinations for req. Failures of single
// combinations never surface as errors; only a missing session, a bad
// template or an unknown provider do, and those abort before any crawl.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	start := s.now()
	searchID := uuid.NewString()
	logger := s.logger.With("search_id", searchID)

	provider, err := s.providers.Lookup(req.TemplateURL)
	if err != nil {
		return nil, models.ValidationError(err.Error())
	}

	sess, err := session.Require(ctx, s.sessions, provider.Name(), start)
	if err != nil {
		return nil, err
	}

	ranges, err := req.DateRanges()
	if err != nil {
		return nil, err
	}
	if err := providers.CheckTemplate(req.TemplateURL, len(ranges)); err != nil {
		return nil, models.ValidationError(err.Error())
	}

	combos, err := combination.Generate(ranges)
	if err != nil {
		return nil, models.ValidationError(err.Error())
	}

	logger.Info("search started",
		"provider", provider.Name(),
		"segments", len(ranges),
		"combinations", len(combos),
	)

	u := unit{
		provider: provider,
		template: req.TemplateURL,
		identity: sess.Identity(),
		filters:  req.SegmentFilters(),
		logger:   logger,
	}
	outcomes := s.fanOut(ctx, u, combos)

	resp := s.aggregate(outcomes)
	resp.SearchStats.SearchID = searchID
	resp.SearchStats.SegmentsCount = len(ranges)
	resp.SearchStats.SearchTimeMs = s.now().Sub(start).Milliseconds()

	logger.Info("search finished",
		"kept", resp.SearchStats.CombinationsSucceeded,
		"dropped", resp.SearchStats.CombinationsDropped,
		"failed", resp.SearchStats.CombinationsFailed,
		"results", resp.SearchStats.TotalResults,
		"duration_ms", resp.SearchStats.SearchTimeMs,
	)
	return resp, nil
}

// fanOut runs one unit per combination, at most MaxConcurrency at a time.
// outcomes[i] always belongs to combos[i].
func (s *Service) fanOut(ctx context.Context, u unit, combos []models.DateCombination) []outcome {
	if s.config.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SearchTimeout)
		defer cancel()
	}

	outcomes := make([]outcome, len(combos))
	sem := semaphore.NewWeighted(int64(s.config.MaxConcurrency))
	var wg sync.WaitGroup

	for i, combo := range combos {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(combos); j++ {
				outcomes[j] = outcome{
					state: models.StateFailed,
					err:   &crawler.NetworkError{URL: u.template, Err: err},
				}
			}
			u.logger.Warn("search deadline reached before all combinations started",
				"started", i,
				"pending", len(combos)-i,
			)
			break
		}

		wg.Add(1)
		go func(i int, combo models.DateCombination) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = s.run(ctx, u, i, combo)
		}(i, combo)
	}

	wg.Wait()
	return outcomes
}

func (s *Service) aggregate(outcomes []outcome) *models.SearchResponse {
	var stats models.SearchStats
	stats.CombinationsTotal = len(outcomes)

	kept := make([]models.CombinationResult, 0)
	for _, o := range outcomes {
		switch o.state {
		case models.StateKept:
			stats.CombinationsSucceeded++
			kept = append(kept, *o.result)
		case models.StateDropped:
			stats.CombinationsDropped++
		default:
			stats.CombinationsFailed++
		}
	}

	results := ranking.Rank(kept, s.config.ResultLimit)
	for i := range results {
		results[i].FormattedTotal = currency.Format(results[i].TotalPrice, results[i].Currency)
	}

	stats.TotalResults = len(results)
	stats.BestPrice = ranking.BestPrice(results)
	return &models.SearchResponse{
		Results:     results,
		SearchStats: stats,
	}
}

// unit carries what every combination of one search shares.
type unit struct {
	provider providers.Provider
	template string
	identity crawler.Identity
	filters  []*models.SegmentFilters
	logger   *slog.Logger
}

// run takes one combination from pending to a terminal state. Panics are
// recovered into a failure of this combination alone.
func (s *Service) run(ctx context.Context, u unit, index int, combo models.DateCombination) (out outcome) {
	logger := u.logger.With("combination", index, "dates", combo)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("combination panicked", "panic", r)
			out = outcome{state: models.StateFailed, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	fail := func(err error) outcome {
		logger.Warn("combination failed", "error_type", fmt.Sprintf("%T", err), "error", err)
		return outcome{state: models.StateFailed, err: err}
	}

	url, err := u.provider.BuildURL(u.template, combo)
	if err != nil {
		return fail(err)
	}

	logger.Debug("combination state", "state", models.StateCrawling)
	res, err := s.crawler.Crawl(ctx, crawler.Request{
		Provider:     u.provider.Name(),
		URL:          url,
		WaitSelector: u.provider.WaitSelector(),
		Identity:     u.identity,
		UseProxy:     s.config.UseProxy,
	})
	if err != nil {
		return fail(err)
	}
	if !res.Success {
		return fail(ErrNoItinerary)
	}

	logger.Debug("combination state", "state", models.StateParsing)
	parsed, err := u.provider.Parse(res)
	if err != nil {
		return fail(err)
	}

	offers := s.filters.ApplySegments(parsed.Offers, u.filters)
	logger.Debug("combination state", "state", models.StateFiltered, "offers", len(offers))
	if len(offers) == 0 {
		logger.Info("combination dropped, no offers left after filtering")
		return outcome{state: models.StateDropped}
	}

	result := &models.CombinationResult{
		DateCombination: combo,
		Offers:          offers,
		TotalPrice:      totalPrice(parsed.TotalPrice, offers),
		Currency:        offers[0].Currency,
		Index:           index,
	}
	logger.Debug("combination state", "state", models.StateKept, "total_price", result.TotalPrice)
	return outcome{state: models.StateKept, result: result}
}

// totalPrice prefers the total stated by the source and otherwise adds up
// the surviving offers.
func totalPrice(stated *float64, offers []models.FlightOffer) float64 {
	if stated != nil {
		return *stated
	}
	var total float64
	for _, o := range offers {
		total += o.Price
	}
	return total
}
