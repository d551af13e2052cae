// Package parser turns provider pages and payloads into flight offers.
//
// Two variants exist. HTMLParser reads the accessible description of each
// result row on a rendered results page. StructuredParser reads JSON
// payloads made of results that reference legs that reference segments.
//
// Both tolerate bad records: an offer missing its price, airline or clock
// times is dropped with a warning. Structural problems are errors:
// HTMLParser returns a *ParsingError when no usable rows exist, and
// StructuredParser returns ErrMissingKey when a required top-level key is
// absent.
package parser

import (
	"errors"
	"fmt"

	"github.com/dharmasatrya/flightcrawl/internal/models"
)

// ErrMissingKey marks a structured payload without one of its required keys.
var ErrMissingKey = errors.New("structured payload is missing a required key")

// ParsingError reports a page that yielded no offers.
type ParsingError struct {
	HTMLSize     int
	FlightsFound int
}

func (e *ParsingError) Error() string {
	if e.FlightsFound == 0 {
		return fmt.Sprintf("no flight containers found in %d bytes of html", e.HTMLSize)
	}
	return fmt.Sprintf("none of %d flight containers produced a valid offer (%d bytes of html)", e.FlightsFound, e.HTMLSize)
}

// Result is the parsed content of one crawled page. TotalPrice is set when
// the source states an itinerary-level total.
type Result struct {
	Offers     []models.FlightOffer
	TotalPrice *float64
}
