package providers

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dharmasatrya/flightcrawl/internal/crawler"
	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/parser"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildURLPlaceholders(t *testing.T) {
	got, err := BuildURL("https://www.google.com/travel/flights?d1={date1}&d2={date2}", models.DateCombination{"2026-11-01", "2026-11-05"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://www.google.com/travel/flights?d1=2026-11-01&d2=2026-11-05" {
		t.Errorf("got %s", got)
	}
}

func TestBuildURLReplacesISODates(t *testing.T) {
	got, err := BuildURL("https://x.test/search/FRA-MUC/2026-12-01/MUC-FCO/2026-12-09?x=1", models.DateCombination{"2026-11-01", "2026-11-05"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://x.test/search/FRA-MUC/2026-11-01/MUC-FCO/2026-11-05?x=1" {
		t.Errorf("got %s", got)
	}
}

func TestBuildURLMismatch(t *testing.T) {
	tests := []string{
		"https://x.test/search/2026-12-01",
		"https://x.test/search?d={date3}",
	}
	for _, tmpl := range tests {
		if _, err := BuildURL(tmpl, models.DateCombination{"2026-11-01", "2026-11-05"}); !errors.Is(err, ErrDateCountMismatch) {
			t.Errorf("BuildURL(%s) err = %v, want ErrDateCountMismatch", tmpl, err)
		}
	}
	if err := CheckTemplate("https://x.test/{date1}/{date2}", 2); err != nil {
		t.Errorf("CheckTemplate: %v", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewDefaultRegistry(quietLogger())

	p, err := r.Lookup("https://www.google.com/travel/flights?q=x")
	if err != nil || p.Name() != GoogleFlights {
		t.Fatalf("google lookup = %v, %v", p, err)
	}
	p, err = r.Lookup("https://api.flightapi.io/api/multi?d={date1}")
	if err != nil || p.Name() != FlightAPI {
		t.Fatalf("flightapi lookup = %v, %v", p, err)
	}

	p, err = r.Lookup("https://Fly.Example.com/search")
	if err != nil || p.Name() != "fly.example.com" {
		t.Fatalf("fallback lookup = %v, %v", p, err)
	}
	again, _ := r.Lookup("https://fly.example.com/other")
	if again != p {
		t.Error("fallback provider is not reused")
	}

	if _, err := r.Lookup("not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestHTMLProviderWrapsParseError(t *testing.T) {
	p := NewHTMLProvider("site", quietLogger())
	_, err := p.Parse(&crawler.Result{Success: true, HTML: "<html></html>"})

	var perr *ProviderError
	var parseErr *parser.ParsingError
	if !errors.As(err, &perr) || perr.Provider != "site" || !errors.As(err, &parseErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestStructuredProviderUsesNetworkEvents(t *testing.T) {
	p := NewStructuredProvider("api", "/api/", quietLogger())
	body := `{"results": [{"id": "r", "leg_id": "L", "price": {"amount": 42, "currency": "EUR"}}],
		"legs": [{"id": "L", "segment_ids": ["S"]}],
		"segments": [{"id": "S", "airline": "LH", "departure": {"time": "2026-11-01T10:00"}, "arrival": {"time": "2026-11-01T11:00"}}],
		"itinerary_total": {"amount": 99, "currency": "EUR"}}`

	res, err := p.Parse(&crawler.Result{
		Success:       true,
		NetworkEvents: []crawler.NetworkEvent{{URL: "https://api.flightapi.io/api/x", Body: []byte(body)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Offers) != 1 || res.TotalPrice == nil || *res.TotalPrice != 99 {
		t.Errorf("res = %+v", res)
	}

	res, err = p.Parse(&crawler.Result{Success: true, HTML: body})
	if err != nil || len(res.Offers) != 1 {
		t.Errorf("body fallback res=%+v err=%v", res, err)
	}
}
