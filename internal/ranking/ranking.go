package ranking

import (
	"sort"

	"github.com/dharmasatrya/flightcrawl/internal/models"
)

const DefaultLimit = 10

// Rank orders results by ascending total price and keeps the first limit.
// Equal prices keep generation order, taken from Index rather than from the
// order results finished in. A limit <= 0 means DefaultLimit.
func Rank(results []models.CombinationResult, limit int) []models.CombinationResult {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]models.CombinationResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalPrice != ranked[j].TotalPrice {
			return ranked[i].TotalPrice < ranked[j].TotalPrice
		}
		return ranked[i].Index < ranked[j].Index
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// BestPrice returns the lowest total price, or nil when results is empty.
func BestPrice(results []models.CombinationResult) *float64 {
	if len(results) == 0 {
		return nil
	}
	best := results[0].TotalPrice
	for _, r := range results[1:] {
		if r.TotalPrice < best {
			best = r.TotalPrice
		}
	}
	return &best
}
