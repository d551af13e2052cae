package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dharmasatrya/flightcrawl/internal/duration"
	"github.com/dharmasatrya/flightcrawl/internal/models"
)

const (
	DefaultContainerSelector = "li.pIav2d"
	DefaultLabelAttr         = "aria-label"
)

var (
	pricePattern    = regexp.MustCompile(`(?i)(\d{1,3}(?:[ \x{00A0}\x{202F},.]\d{3})+|\d+)(?:[.,](\d{1,2}))?\s*(US dollars|dollars?|euros?|pounds?|rubles?|roubles?|yen|francs?|kronor|zlotys?)\b`)
	airlinePattern  = regexp.MustCompile(`(?i)\bflight with ([^.]+?)\.`)
	clockPattern    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b(?:[\s\x{00A0}\x{202F}]*((?i:am|pm))\b)?`)
	durationPattern = regexp.MustCompile(`(?i)total duration:?\s*(\d+\s*(?:hours?|hrs?|h)(?:\s*\d+\s*min)?|\d+\s*min)`)
	directPattern   = regexp.MustCompile(`(?i)\b(?:nonstop|direct)\b`)
	stopsPattern    = regexp.MustCompile(`(?i)\b(\d+)\s+stops?\b`)
	originPattern   = regexp.MustCompile(`(?i)\bleaves (.+?) at \d{1,2}:\d{2}`)
	destPattern     = regexp.MustCompile(`(?i)\barrives at (.+?) at \d{1,2}:\d{2}`)
	layoverPattern  = regexp.MustCompile(`(?i)layover \(\d+ of \d+\) is an? (\d+\s*(?:hours?|hrs?|h)(?:\s*\d+\s*min)?|\d+\s*min)(?: overnight)? layover at ([^.]+?)(?: in [^.]+)?\.`)

	currencyCodes = map[string]string{
		"us dollars": "USD",
		"dollar":     "USD",
		"dollars":    "USD",
		"euro":       "EUR",
		"euros":      "EUR",
		"pound":      "GBP",
		"pounds":     "GBP",
		"ruble":      "RUB",
		"rubles":     "RUB",
		"rouble":     "RUB",
		"roubles":    "RUB",
		"yen":        "JPY",
		"franc":      "CHF",
		"francs":     "CHF",
		"kronor":     "SEK",
		"zloty":      "PLN",
		"zlotys":     "PLN",
	}
)

type HTMLParser struct {
	ContainerSelector string
	LabelAttr         string
	logger            *slog.Logger
}

func NewHTMLParser(logger *slog.Logger) *HTMLParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLParser{
		ContainerSelector: DefaultContainerSelector,
		LabelAttr:         DefaultLabelAttr,
		logger:            logger.With("component", "html_parser"),
	}
}

// Parse extracts offers in document order.
func (p *HTMLParser) Parse(content string) (*Result, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, &ParsingError{HTMLSize: len(content)}
	}
	doc := goquery.NewDocumentFromNode(root)

	containers := doc.Find(p.ContainerSelector)
	found := containers.Length()
	if found == 0 {
		return nil, &ParsingError{HTMLSize: len(content)}
	}

	offers := make([]models.FlightOffer, 0, found)
	containers.Each(func(i int, s *goquery.Selection) {
		label := p.label(s)
		offer, reason := ParseDescription(label)
		if reason != "" {
			p.logger.Warn("dropping flight record", "index", i, "reason", reason)
			return
		}
		offers = append(offers, offer)
	})

	if len(offers) == 0 {
		return nil, &ParsingError{HTMLSize: len(content), FlightsFound: found}
	}
	p.logger.Info("parsed flight offers", "containers", found, "offers", len(offers))
	return &Result{Offers: offers}, nil
}

// label returns the container's own description or, failing that, the
// longest description among its descendants.
func (p *HTMLParser) label(s *goquery.Selection) string {
	if v, ok := s.Attr(p.LabelAttr); ok && strings.TrimSpace(v) != "" {
		return v
	}
	best := ""
	s.Find("[" + p.LabelAttr + "]").Each(func(_ int, d *goquery.Selection) {
		if v := d.AttrOr(p.LabelAttr, ""); len(v) > len(best) {
			best = v
		}
	})
	return best
}

// ParseDescription reads one result description. A non-empty reason means
// the record lacks a required field.
func ParseDescription(text string) (models.FlightOffer, string) {
	var offer models.FlightOffer
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return offer, "empty description"
	}

	price, currency, ok := extractPrice(text)
	if !ok {
		return offer, "missing price"
	}
	offer.Price = price
	offer.Currency = currency

	m := airlinePattern.FindStringSubmatch(text)
	if m == nil {
		return offer, "missing airline"
	}
	offer.Airline = strings.TrimSpace(m[1])

	times := clockPattern.FindAllStringSubmatch(text, 2)
	if len(times) < 2 {
		return offer, "missing departure or arrival time"
	}
	offer.DepartureTime = clock(times[0])
	offer.ArrivalTime = clock(times[1])

	if m := durationPattern.FindStringSubmatch(text); m != nil {
		if mins, err := duration.ParseHuman(m[1]); err == nil {
			offer.Duration = duration.Format(mins)
		}
	}

	if directPattern.MatchString(text) {
		zero := 0
		offer.Stops = &zero
	} else if m := stopsPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		offer.Stops = &n
	}

	if m := originPattern.FindStringSubmatch(text); m != nil {
		v := strings.TrimSpace(m[1])
		offer.DepartureAirport = &v
	}
	if m := destPattern.FindStringSubmatch(text); m != nil {
		v := strings.TrimSpace(m[1])
		offer.ArrivalAirport = &v
	}

	offer.Layovers = []models.Layover{}
	for _, m := range layoverPattern.FindAllStringSubmatch(text, -1) {
		mins, err := duration.ParseHuman(m[1])
		if err != nil {
			continue
		}
		offer.Layovers = append(offer.Layovers, models.Layover{
			Airport:  strings.TrimSpace(m[2]),
			Duration: duration.Format(mins),
		})
	}

	return offer, ""
}

func extractPrice(text string) (float64, string, bool) {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	digits := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", "", ".", "").Replace(m[1])
	if m[2] != "" {
		digits += "." + m[2]
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, "", false
	}
	return v, currencyCodes[strings.ToLower(m[3])], true
}

// clock renders a clockPattern match as 24-hour HH:MM.
func clock(m []string) string {
	h, _ := strconv.Atoi(m[1])
	switch strings.ToUpper(m[3]) {
	case "PM":
		if h < 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	}
	return strconv.Itoa(h/10) + strconv.Itoa(h%10) + ":" + m[2]
}
