package combination

import (
	"errors"

	"github.com/dharmasatrya/flightcrawl/internal/models"
)

var ErrNoSegments = errors.New("at least one segment is required")

// Generate expands every segment into its daily dates and returns the
// cartesian product. The first segment is the outermost loop, so
// combinations sharing the first date are contiguous.
func Generate(segments []models.DateRange) ([]models.DateCombination, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	dates := make([][]string, len(segments))
	for i, seg := range segments {
		dates[i] = expand(seg)
	}

	total := Count(segments)
	combos := make([]models.DateCombination, 0, total)
	current := make([]string, len(segments))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(dates) {
			combo := make(models.DateCombination, len(current))
			copy(combo, current)
			combos = append(combos, combo)
			return
		}
		for _, d := range dates[depth] {
			current[depth] = d
			walk(depth + 1)
		}
	}
	walk(0)

	return combos, nil
}

// Count returns the number of combinations Generate would produce.
func Count(segments []models.DateRange) int {
	if len(segments) == 0 {
		return 0
	}
	total := 1
	for _, seg := range segments {
		total *= seg.Days()
	}
	return total
}

func expand(r models.DateRange) []string {
	var out []string
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(models.DateLayout))
	}
	return out
}
