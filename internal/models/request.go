package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dharmasatrya/flightcrawl/internal/duration"
)

const (
	MinSegments        = 2
	MaxSegments        = 5
	MaxCombinations    = 1000
	MaxStopsCeiling    = 3
	MaxDurationMinutes = 1440
	MaxMinLayover      = 720
)

type SegmentDateRange struct {
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Filters *SegmentFilters `json:"filters,omitempty"`
}

type SearchRequest struct {
	TemplateURL        string             `json:"template_url"`
	SegmentsDateRanges []SegmentDateRange `json:"segments_date_ranges"`
}

// Validate checks the request shape against the calendar day of now.
func (r *SearchRequest) Validate(now time.Time) error {
	if r.TemplateURL == "" {
		return ErrMissingTemplateURL
	}
	u, err := url.Parse(r.TemplateURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidTemplateURL
	}

	n := len(r.SegmentsDateRanges)
	if n < MinSegments || n > MaxSegments {
		return ValidationError(fmt.Sprintf("segments_date_ranges must contain between %d and %d segments, got %d", MinSegments, MaxSegments, n))
	}

	today := truncateDay(now)
	ranges, err := r.DateRanges()
	if err != nil {
		return err
	}

	total := 1
	for i, dr := range ranges {
		if dr.Start.Before(today) {
			return ValidationError(fmt.Sprintf("segment %d: start date %s is in the past", i+1, dr.Start.Format(DateLayout)))
		}
		if dr.End.Before(dr.Start) {
			return ValidationError(fmt.Sprintf("segment %d: end date must not be before start date", i+1))
		}
		if err := validateFilters(dr.Filters); err != nil {
			return ValidationError(fmt.Sprintf("segment %d: %s", i+1, err.Error()))
		}
		total *= dr.Days()
		if total > MaxCombinations {
			return ValidationError(fmt.Sprintf("too many date combinations: more than %d", MaxCombinations))
		}
	}

	return nil
}

// DateRanges converts the raw segment dates. It does not check calendar rules.
func (r *SearchRequest) DateRanges() ([]DateRange, error) {
	ranges := make([]DateRange, 0, len(r.SegmentsDateRanges))
	for i, s := range r.SegmentsDateRanges {
		start, err := time.Parse(DateLayout, s.Start)
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("segment %d: invalid start date %q", i+1, s.Start))
		}
		end, err := time.Parse(DateLayout, s.End)
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("segment %d: invalid end date %q", i+1, s.End))
		}
		ranges = append(ranges, DateRange{Start: start, End: end, Filters: s.Filters})
	}
	return ranges, nil
}

// SegmentFilters returns the filters of every segment, nil entries included.
func (r *SearchRequest) SegmentFilters() []*SegmentFilters {
	filters := make([]*SegmentFilters, len(r.SegmentsDateRanges))
	for i, s := range r.SegmentsDateRanges {
		filters[i] = s.Filters
	}
	return filters
}

func validateFilters(f *SegmentFilters) error {
	if f == nil {
		return nil
	}
	if f.MaxStops != nil && (*f.MaxStops < 0 || *f.MaxStops > MaxStopsCeiling) {
		return fmt.Errorf("max_stops must be between 0 and %d", MaxStopsCeiling)
	}

	if _, err := boundedDuration("max_duration", f.MaxDuration, MaxDurationMinutes); err != nil {
		return err
	}
	minLay, err := boundedDuration("min_layover_duration", f.MinLayoverDuration, MaxMinLayover)
	if err != nil {
		return err
	}
	maxLay, err := boundedDuration("max_layover_duration", f.MaxLayoverDuration, MaxDurationMinutes)
	if err != nil {
		return err
	}
	if minLay != nil && maxLay != nil && *maxLay <= *minLay {
		return fmt.Errorf("max_layover_duration must be greater than min_layover_duration")
	}
	return nil
}

func boundedDuration(field string, value *string, ceiling int) (*int, error) {
	if value == nil {
		return nil, nil
	}
	m, err := duration.Parse(*value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	if m > ceiling {
		return nil, fmt.Errorf("%s must not exceed %s", field, duration.Format(ceiling))
	}
	return &m, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingTemplateURL ValidationError = "template_url is required"
	ErrInvalidTemplateURL ValidationError = "template_url must be an absolute http(s) URL"
)
