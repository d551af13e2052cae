package providers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dharmasatrya/flightcrawl/internal/models"
)

var ErrDateCountMismatch = errors.New("template dates do not match the number of segments")

var (
	placeholderPattern = regexp.MustCompile(`\{date(\d+)\}`)
	isoDatePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// BuildURL substitutes the combination's dates into template. Placeholders
// {date1}..{dateN} are preferred; a template without them has its ISO dates
// replaced left to right.
func BuildURL(template string, combo models.DateCombination) (string, error) {
	if placeholderPattern.MatchString(template) {
		var missing error
		out := placeholderPattern.ReplaceAllStringFunc(template, func(ph string) string {
			n, _ := strconv.Atoi(placeholderPattern.FindStringSubmatch(ph)[1])
			if n < 1 || n > len(combo) {
				missing = fmt.Errorf("%w: placeholder %s with %d segments", ErrDateCountMismatch, ph, len(combo))
				return ph
			}
			return combo[n-1]
		})
		if missing != nil {
			return "", missing
		}
		return out, nil
	}

	found := isoDatePattern.FindAllStringIndex(template, -1)
	if len(found) != len(combo) {
		return "", fmt.Errorf("%w: template has %d dates, combination has %d", ErrDateCountMismatch, len(found), len(combo))
	}

	var b strings.Builder
	last := 0
	for i, loc := range found {
		b.WriteString(template[last:loc[0]])
		b.WriteString(combo[i])
		last = loc[1]
	}
	b.WriteString(template[last:])
	return b.String(), nil
}

// CheckTemplate reports whether template can address segments dates.
func CheckTemplate(template string, segments int) error {
	probe := make(models.DateCombination, segments)
	for i := range probe {
		probe[i] = "2000-01-01"
	}
	_, err := BuildURL(template, probe)
	return err
}
