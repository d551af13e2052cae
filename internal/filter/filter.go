package filter

import (
	"log/slog"

	"github.com/dharmasatrya/flightcrawl/internal/duration"
	"github.com/dharmasatrya/flightcrawl/internal/models"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger.With("component", "filter")}
}

// bounds holds a segment's filters in minutes. Unset fields are nil.
type bounds struct {
	maxDuration *int
	maxStops    *int
	minLayover  *int
	maxLayover  *int
}

// Apply keeps the offers matching every active filter. Nil or empty filters
// return offers unchanged.
func (s *Service) Apply(offers []models.FlightOffer, filters *models.SegmentFilters) []models.FlightOffer {
	if filters.IsEmpty() {
		return offers
	}

	b, err := compile(filters)
	if err != nil {
		// Requests are validated upstream; a bad bound here filters nothing out.
		s.logger.Warn("ignoring invalid filters", "error", err)
		return offers
	}

	result := make([]models.FlightOffer, 0, len(offers))
	for _, o := range offers {
		if s.matches(o, b) {
			result = append(result, o)
		}
	}

	s.logger.Info("filters applied",
		"before", len(offers),
		"after", len(result),
		"filters", active(filters),
	)
	return result
}

// ApplySegments filters each offer with the filters of its own segment.
func (s *Service) ApplySegments(offers []models.FlightOffer, filters []*models.SegmentFilters) []models.FlightOffer {
	empty := true
	for _, f := range filters {
		if !f.IsEmpty() {
			empty = false
			break
		}
	}
	if empty {
		return offers
	}

	bySegment := make(map[int][]models.FlightOffer)
	order := make([]int, 0)
	for _, o := range offers {
		if _, ok := bySegment[o.SegmentIndex]; !ok {
			order = append(order, o.SegmentIndex)
		}
		bySegment[o.SegmentIndex] = append(bySegment[o.SegmentIndex], o)
	}

	result := make([]models.FlightOffer, 0, len(offers))
	for _, idx := range order {
		group := bySegment[idx]
		if idx >= 0 && idx < len(filters) {
			group = s.Apply(group, filters[idx])
		}
		result = append(result, group...)
	}
	return result
}

func (s *Service) matches(o models.FlightOffer, b bounds) bool {
	if b.maxDuration != nil {
		d, err := duration.Parse(o.Duration)
		if err != nil {
			s.logger.Warn("dropping offer with unparseable duration", "duration", o.Duration, "airline", o.Airline)
			return false
		}
		if d > *b.maxDuration {
			return false
		}
	}

	// Offers without a stop count are not held to the ceiling.
	if b.maxStops != nil && o.Stops != nil && *o.Stops > *b.maxStops {
		return false
	}

	if b.minLayover == nil && b.maxLayover == nil {
		return true
	}
	for _, l := range o.Layovers {
		d, err := duration.Parse(l.Duration)
		if err != nil {
			s.logger.Warn("dropping offer with unparseable layover", "duration", l.Duration, "airport", l.Airport)
			return false
		}
		if b.minLayover != nil && d < *b.minLayover {
			return false
		}
		if b.maxLayover != nil && d > *b.maxLayover {
			return false
		}
	}
	return true
}

func compile(f *models.SegmentFilters) (bounds, error) {
	var b bounds
	var err error
	b.maxStops = f.MaxStops
	if b.maxDuration, err = minutes(f.MaxDuration); err != nil {
		return b, err
	}
	if b.minLayover, err = minutes(f.MinLayoverDuration); err != nil {
		return b, err
	}
	if b.maxLayover, err = minutes(f.MaxLayoverDuration); err != nil {
		return b, err
	}
	return b, nil
}

func minutes(v *string) (*int, error) {
	if v == nil {
		return nil, nil
	}
	m, err := duration.Parse(*v)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func active(f *models.SegmentFilters) map[string]any {
	out := make(map[string]any)
	if f.MaxDuration != nil {
		out["max_duration"] = *f.MaxDuration
	}
	if f.MaxStops != nil {
		out["max_stops"] = *f.MaxStops
	}
	if f.MinLayoverDuration != nil {
		out["min_layover_duration"] = *f.MinLayoverDuration
	}
	if f.MaxLayoverDuration != nil {
		out["max_layover_duration"] = *f.MaxLayoverDuration
	}
	return out
}
