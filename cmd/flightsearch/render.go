package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/pkg/currency"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32")).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

const priceColumn = 2

func renderResults(resp *models.SearchResponse) string {
	stats := resp.SearchStats
	summary := summaryStyle.Render(fmt.Sprintf(
		"%d results from %d combinations (%d kept, %d dropped, %d failed) in %dms",
		stats.TotalResults,
		stats.CombinationsTotal,
		stats.CombinationsSucceeded,
		stats.CombinationsDropped,
		stats.CombinationsFailed,
		stats.SearchTimeMs,
	))

	if len(resp.Results) == 0 {
		return summary + "\n" + noDataStyle.Render("No combination produced an offer.")
	}

	rows := make([][]string, 0, len(resp.Results))
	for i, r := range resp.Results {
		rows = append(rows, resultRow(i+1, r))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == priceColumn:
				return priceStyle
			default:
				return cellStyle
			}
		}).
		Headers("#", "DATES", "TOTAL", "OFFERS", "CHEAPEST OFFER").
		Rows(rows...)

	return t.Render() + "\n" + summary
}

func resultRow(rank int, r models.CombinationResult) []string {
	total := r.FormattedTotal
	if total == "" {
		total = currency.Format(r.TotalPrice, r.Currency)
	}
	return []string{
		strconv.Itoa(rank),
		strings.Join(r.DateCombination, " → "),
		total,
		strconv.Itoa(len(r.Offers)),
		cheapestOffer(r.Offers),
	}
}

func cheapestOffer(offers []models.FlightOffer) string {
	if len(offers) == 0 {
		return "-"
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Price < best.Price {
			best = o
		}
	}

	stops := "?"
	if best.Stops != nil {
		stops = strconv.Itoa(*best.Stops)
	}
	return fmt.Sprintf("%s %s-%s (%s, %s stops)", best.Airline, best.DepartureTime, best.ArrivalTime, best.Duration, stops)
}
