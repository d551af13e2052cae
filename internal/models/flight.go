package models

import "time"

const DateLayout = "2006-01-02"

type DateRange struct {
	Start   time.Time       `json:"-"`
	End     time.Time       `json:"-"`
	Filters *SegmentFilters `json:"-"`
}

// Days is the number of calendar days covered, both ends included.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

type SegmentFilters struct {
	MaxDuration        *string `json:"max_duration,omitempty"`
	MaxStops           *int    `json:"max_stops,omitempty"`
	MinLayoverDuration *string `json:"min_layover_duration,omitempty"`
	MaxLayoverDuration *string `json:"max_layover_duration,omitempty"`
}

func (f *SegmentFilters) IsEmpty() bool {
	return f == nil ||
		(f.MaxDuration == nil && f.MaxStops == nil && f.MinLayoverDuration == nil && f.MaxLayoverDuration == nil)
}

// DateCombination holds one ISO date per itinerary segment, in segment order.
type DateCombination []string

type Layover struct {
	Airport  string `json:"airport"`
	Duration string `json:"duration"`
}

type FlightOffer struct {
	Price            float64   `json:"price"`
	Currency         string    `json:"currency,omitempty"`
	Airline          string    `json:"airline"`
	DepartureTime    string    `json:"departure_time"`
	ArrivalTime      string    `json:"arrival_time"`
	Duration         string    `json:"duration"`
	Stops            *int      `json:"stops"`
	DepartureAirport *string   `json:"departure_airport"`
	ArrivalAirport   *string   `json:"arrival_airport"`
	Layovers         []Layover `json:"layovers"`
	SegmentIndex     int       `json:"segment_index"`
}

type CombinationResult struct {
	DateCombination DateCombination `json:"date_combination"`
	Offers          []FlightOffer   `json:"offers"`
	TotalPrice      float64         `json:"total_price"`
	Currency        string          `json:"currency,omitempty"`
	FormattedTotal  string          `json:"formatted_total,omitempty"`

	// Index is the position of the combination in generation order.
	Index int `json:"-"`
}

// CombinationState tracks one combination through a search.
type CombinationState string

const (
	StatePending  CombinationState = "pending"
	StateCrawling CombinationState = "crawling"
	StateParsing  CombinationState = "parsing"
	StateFiltered CombinationState = "filtered"
	StateKept     CombinationState = "kept"
	StateDropped  CombinationState = "dropped"
	StateFailed   CombinationState = "failed"
)

func (s CombinationState) Terminal() bool {
	return s == StateKept || s == StateDropped || s == StateFailed
}
