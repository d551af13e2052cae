package combination

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dharmasatrya/flightcrawl/internal/models"
)

func dateRange(t *testing.T, start, end string) models.DateRange {
	t.Helper()
	s, err := time.Parse(models.DateLayout, start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := time.Parse(models.DateLayout, end)
	if err != nil {
		t.Fatal(err)
	}
	return models.DateRange{Start: s, End: e}
}

func TestGenerateCardinality(t *testing.T) {
	tests := []struct {
		name     string
		segments []models.DateRange
		want     int
	}{
		{"single day each", []models.DateRange{dateRange(t, "2026-11-01", "2026-11-01"), dateRange(t, "2026-11-05", "2026-11-05")}, 1},
		{"7x6", []models.DateRange{dateRange(t, "2026-11-01", "2026-11-07"), dateRange(t, "2026-11-10", "2026-11-15")}, 42},
		{"3x2x4", []models.DateRange{
			dateRange(t, "2026-11-01", "2026-11-03"),
			dateRange(t, "2026-11-10", "2026-11-11"),
			dateRange(t, "2026-11-20", "2026-11-23"),
		}, 24},
		{"month boundary", []models.DateRange{dateRange(t, "2026-11-29", "2026-12-02"), dateRange(t, "2026-12-31", "2027-01-01")}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combos, err := Generate(tt.segments)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(combos) != tt.want {
				t.Fatalf("len = %d, want %d", len(combos), tt.want)
			}
			if Count(tt.segments) != tt.want {
				t.Errorf("Count = %d, want %d", Count(tt.segments), tt.want)
			}
			for _, c := range combos {
				if len(c) != len(tt.segments) {
					t.Fatalf("combination %v has %d dates", c, len(c))
				}
				for i, d := range c {
					day, err := time.Parse(models.DateLayout, d)
					if err != nil {
						t.Fatalf("bad date %q: %v", d, err)
					}
					if day.Before(tt.segments[i].Start) || day.After(tt.segments[i].End) {
						t.Errorf("date %s outside segment %d", d, i)
					}
				}
			}
		})
	}
}

func TestGenerateOrder(t *testing.T) {
	combos, err := Generate([]models.DateRange{
		dateRange(t, "2026-11-01", "2026-11-02"),
		dateRange(t, "2026-11-10", "2026-11-11"),
	})
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"2026-11-01", "2026-11-10"},
		{"2026-11-01", "2026-11-11"},
		{"2026-11-02", "2026-11-10"},
		{"2026-11-02", "2026-11-11"},
	}
	for i, w := range want {
		if combos[i][0] != w[0] || combos[i][1] != w[1] {
			t.Errorf("combos[%d] = %v, want %v", i, combos[i], w)
		}
	}
}

func TestGenerateNoSegments(t *testing.T) {
	if _, err := Generate(nil); !errors.Is(err, ErrNoSegments) {
		t.Fatalf("Generate(nil) error = %v, want ErrNoSegments", err)
	}
}

func TestGenerateDoesNotLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	if _, err := Generate([]models.DateRange{dateRange(t, "2025-11-01", "2025-11-03")}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}
