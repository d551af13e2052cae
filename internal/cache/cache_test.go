package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dharmasatrya/flightcrawl/internal/models"
)

func request(template string) models.SearchRequest {
	return models.SearchRequest{
		TemplateURL: template,
		SegmentsDateRanges: []models.SegmentDateRange{
			{Start: "2026-11-01", End: "2026-11-03"},
			{Start: "2026-11-10", End: "2026-11-12"},
		},
	}
}

func TestKey(t *testing.T) {
	a := Key(request("https://www.google.com/a"))
	if a != Key(request("https://www.google.com/a")) {
		t.Error("key is not deterministic")
	}
	if a == Key(request("https://www.google.com/b")) {
		t.Error("different requests share a key")
	}
	if !strings.HasPrefix(a, "search:") {
		t.Errorf("key %q lacks prefix", a)
	}

	stops := 1
	filtered := request("https://www.google.com/a")
	filtered.SegmentsDateRanges[0].Filters = &models.SegmentFilters{MaxStops: &stops}
	if a == Key(filtered) {
		t.Error("filters do not change the key")
	}
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()
	req := request("https://www.google.com/a")

	if err := c.Set(ctx, req, &models.SearchResponse{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, req); ok {
		t.Error("no-op cache returned a hit")
	}
}

func TestRedisCacheCompression(t *testing.T) {
	c, err := NewRedisCache(nil, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	resp := &models.SearchResponse{
		Results: []models.CombinationResult{{
			DateCombination: models.DateCombination{"2026-11-01", "2026-11-10"},
			TotalPrice:      321.5,
		}},
		SearchStats: models.SearchStats{SearchID: "abc", TotalResults: 1},
	}

	data, err := c.encode(resp)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.SearchStats.SearchID != "abc" || len(got.Results) != 1 || got.Results[0].TotalPrice != 321.5 {
		t.Errorf("decoded %+v", got)
	}

	if _, err := c.decode([]byte("not zstd")); err == nil {
		t.Error("expected error for corrupt payload")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := NewRedisClient(RedisConfig{Addr: addr})
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewRedisCache(client, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	defer c.Close()

	ctx := context.Background()
	req := request("https://www.google.com/redis-test")
	if err := c.Set(ctx, req, &models.SearchResponse{Results: []models.CombinationResult{}}); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, req); !ok {
		t.Error("expected a cache hit")
	}
	client.Del(ctx, Key(req))
}
