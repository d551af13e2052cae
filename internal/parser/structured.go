package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/flightcrawl/internal/duration"
	"github.com/dharmasatrya/flightcrawl/internal/models"
)

var requiredKeys = []string{"results", "legs", "segments"}

type apiPayload struct {
	Results        []apiResult  `json:"results"`
	Legs           []apiLeg     `json:"legs"`
	Segments       []apiSegment `json:"segments"`
	ItineraryTotal *apiPrice    `json:"itinerary_total"`
}

type apiResult struct {
	ID    string    `json:"id"`
	LegID string    `json:"leg_id"`
	Price *apiPrice `json:"price"`
}

type apiPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type apiLeg struct {
	ID              string   `json:"id"`
	LegIndex        int      `json:"leg_index"`
	SegmentIDs      []string `json:"segment_ids"`
	DurationMinutes *int     `json:"duration_minutes"`
	StopCount       *int     `json:"stop_count"`
}

type apiSegment struct {
	ID        string      `json:"id"`
	Airline   string      `json:"airline"`
	Departure apiEndpoint `json:"departure"`
	Arrival   apiEndpoint `json:"arrival"`
}

type apiEndpoint struct {
	Airport string `json:"airport"`
	Time    string `json:"time"`
}

// APIResponse is one JSON response captured while a page loaded.
type APIResponse struct {
	URL  string
	Body []byte
}

type StructuredParser struct {
	// APIPath selects which captured responses carry flight data.
	APIPath string
	logger  *slog.Logger
}

func NewStructuredParser(apiPath string, logger *slog.Logger) *StructuredParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructuredParser{
		APIPath: apiPath,
		logger:  logger.With("component", "structured_parser"),
	}
}

// Parse reads one payload. Offers come back sorted by ascending price. The
// result total is the payload's itinerary total, or the cheapest result.
func (p *StructuredParser) Parse(payload []byte) (*Result, error) {
	data, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}

	offers, cheapest := p.offers(data)
	sortByPrice(offers)

	res := &Result{Offers: offers}
	switch {
	case data.ItineraryTotal != nil:
		total := data.ItineraryTotal.Amount
		res.TotalPrice = &total
	case cheapest != nil:
		res.TotalPrice = cheapest
	}
	return res, nil
}

// ParseAPIResponses combines the leg responses captured for one itinerary.
// The total is the last itinerary total seen, or the sum of each
// response's cheapest result.
func (p *StructuredParser) ParseAPIResponses(responses []APIResponse) (float64, []models.FlightOffer, error) {
	var (
		offers   []models.FlightOffer
		stated   *float64
		matched  int
		cheapSum float64
	)

	for _, r := range responses {
		if p.APIPath != "" && !strings.Contains(r.URL, p.APIPath) {
			continue
		}
		matched++

		data, err := decodePayload(r.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("response %s: %w", r.URL, err)
		}
		legOffers, cheapest := p.offers(data)
		offers = append(offers, legOffers...)
		if cheapest != nil {
			cheapSum += *cheapest
		}
		if data.ItineraryTotal != nil {
			v := data.ItineraryTotal.Amount
			stated = &v
		}
	}

	if matched == 0 {
		return 0, nil, &ParsingError{}
	}

	sortByPrice(offers)
	if stated != nil {
		return *stated, offers, nil
	}
	return cheapSum, offers, nil
}

func decodePayload(raw []byte) (*apiPayload, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decoding structured payload: %w", err)
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingKey, k)
		}
	}

	var data apiPayload
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding structured payload: %w", err)
	}
	return &data, nil
}

func (p *StructuredParser) offers(data *apiPayload) ([]models.FlightOffer, *float64) {
	legs := make(map[string]apiLeg, len(data.Legs))
	for _, l := range data.Legs {
		legs[l.ID] = l
	}
	segments := make(map[string]apiSegment, len(data.Segments))
	for _, s := range data.Segments {
		segments[s.ID] = s
	}

	var (
		offers   []models.FlightOffer
		cheapest *float64
	)
	for _, r := range data.Results {
		leg, ok := legs[r.LegID]
		if !ok {
			p.logger.Warn("result references unknown leg", "result", r.ID, "leg", r.LegID)
			continue
		}
		legSegments, ok := resolveSegments(leg, segments)
		if !ok {
			p.logger.Warn("leg references unknown segment", "result", r.ID, "leg", leg.ID)
			continue
		}
		if r.Price == nil {
			p.logger.Warn("dropping result without price", "result", r.ID)
			continue
		}

		legOffers := p.legOffers(r, leg, legSegments)
		if len(legOffers) == 0 {
			continue
		}
		offers = append(offers, legOffers...)
		if cheapest == nil || r.Price.Amount < *cheapest {
			v := r.Price.Amount
			cheapest = &v
		}
	}
	return offers, cheapest
}

func resolveSegments(leg apiLeg, segments map[string]apiSegment) ([]apiSegment, bool) {
	if len(leg.SegmentIDs) == 0 {
		return nil, false
	}
	out := make([]apiSegment, 0, len(leg.SegmentIDs))
	for _, id := range leg.SegmentIDs {
		s, ok := segments[id]
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func (p *StructuredParser) legOffers(r apiResult, leg apiLeg, segs []apiSegment) []models.FlightOffer {
	dur := "Unknown"
	if leg.DurationMinutes != nil {
		dur = duration.Format(*leg.DurationMinutes)
	}
	stops := 0
	if leg.StopCount != nil {
		stops = *leg.StopCount
	}
	layovers := layoversBetween(segs)

	offers := make([]models.FlightOffer, 0, len(segs))
	for _, s := range segs {
		if s.Airline == "" || s.Departure.Time == "" || s.Arrival.Time == "" {
			p.logger.Warn("dropping segment with missing airline or times", "result", r.ID, "segment", s.ID)
			continue
		}
		st := stops
		offers = append(offers, models.FlightOffer{
			Price:            r.Price.Amount,
			Currency:         r.Price.Currency,
			Airline:          s.Airline,
			DepartureTime:    s.Departure.Time,
			ArrivalTime:      s.Arrival.Time,
			Duration:         dur,
			Stops:            &st,
			DepartureAirport: optional(s.Departure.Airport),
			ArrivalAirport:   optional(s.Arrival.Airport),
			Layovers:         layovers,
			SegmentIndex:     leg.LegIndex,
		})
	}
	return offers
}

var segmentTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func layoversBetween(segs []apiSegment) []models.Layover {
	layovers := []models.Layover{}
	for i := 0; i+1 < len(segs); i++ {
		arr, ok1 := parseSegmentTime(segs[i].Arrival.Time)
		dep, ok2 := parseSegmentTime(segs[i+1].Departure.Time)
		if !ok1 || !ok2 || dep.Before(arr) {
			continue
		}
		layovers = append(layovers, models.Layover{
			Airport:  segs[i].Arrival.Airport,
			Duration: duration.Format(int(dep.Sub(arr).Minutes())),
		})
	}
	return layovers
}

func parseSegmentTime(s string) (time.Time, bool) {
	for _, layout := range segmentTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sortByPrice(offers []models.FlightOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
