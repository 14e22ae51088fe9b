// Package report assembles aggregate results into the named report tables the
// renderer consumes. Everything here is pure: rows in, rows out, no store
// access and no formatting beyond the domain's own money type.
package report

import (
	"sort"

	"custos/internal/core"
)

const (
	topCostsLimit   = 5
	trendMonthLimit = 6
	// Month totals are spread over a nominal 30-day month for the daily
	// average column.
	nominalMonthDays = 30
)

type (
	// CategoryRow is one line of the category breakdown.
	CategoryRow struct {
		Category    core.Category
		DisplayName string
		Total       core.Money
		Count       int
		Percent     float64
	}

	// CultureRow is one line of the culture breakdown.
	CultureRow struct {
		Culture          string
		Total            core.Money
		Count            int
		AveragePerRecord float64
	}

	// MonthRow is one line of the monthly evolution table.
	MonthRow struct {
		Month        string
		Total        core.Money
		Count        int
		DailyAverage float64
	}

	// SeasonRow is one line of the season comparison.
	SeasonRow struct {
		Season string
		Total  core.Money
		Count  int
	}

	// FinancialSummary is the headline numbers plus the largest entries.
	FinancialSummary struct {
		Total          core.Money
		Count          int
		Average        float64
		CostPerHectare float64
		TopCosts       []core.CostEntry
	}
)

// CategoryBreakdown groups by category and sorts by total descending. Percent
// is each category's share of the overall total.
func CategoryBreakdown(entries []core.CostEntry) []CategoryRow {
	groups := core.SumByCategory(entries)
	total, _ := core.TotalAndCount(entries)

	rows := make([]CategoryRow, 0, len(groups))
	for key, g := range groups {
		cat := core.Category(key)
		row := CategoryRow{
			Category:    cat,
			DisplayName: cat.DisplayName(),
			Total:       g.Total,
			Count:       g.Count,
		}
		if total.Cents > 0 {
			row.Percent = float64(g.Total.Cents) / float64(total.Cents) * 100
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// CultureBreakdown groups by culture and sorts by total descending.
func CultureBreakdown(entries []core.CostEntry) []CultureRow {
	groups := core.SumByCulture(entries)

	rows := make([]CultureRow, 0, len(groups))
	for culture, g := range groups {
		row := CultureRow{Culture: culture, Total: g.Total, Count: g.Count}
		if g.Count > 0 {
			row.AveragePerRecord = g.Total.Reais() / float64(g.Count)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].Culture < rows[j].Culture
	})
	return rows
}

// MonthlyEvolution lists months chronologically with an approximate daily
// average per month.
func MonthlyEvolution(entries []core.CostEntry) []MonthRow {
	groups := core.SumByMonth(entries)

	rows := make([]MonthRow, 0, len(groups))
	for month, g := range groups {
		rows = append(rows, MonthRow{
			Month:        month,
			Total:        g.Total,
			Count:        g.Count,
			DailyAverage: g.Total.Reais() / nominalMonthDays,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows
}

// SeasonComparison lists seasons by label, newest first.
func SeasonComparison(entries []core.CostEntry) []SeasonRow {
	groups := core.SumBySeason(entries)

	rows := make([]SeasonRow, 0, len(groups))
	for season, g := range groups {
		rows = append(rows, SeasonRow{Season: season, Total: g.Total, Count: g.Count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Season > rows[j].Season })
	return rows
}

// Financial builds the headline summary with the five largest entries by
// amount.
func Financial(entries []core.CostEntry, farmSizeHectares float64) FinancialSummary {
	total, count := core.TotalAndCount(entries)
	summary := FinancialSummary{
		Total:          total,
		Count:          count,
		Average:        core.Average(entries),
		CostPerHectare: core.CostPerHectare(total, farmSizeHectares),
	}

	byAmount := core.Sort(entries, core.SortSpec{Field: core.SortByAmount, Descending: true})
	if len(byAmount) > topCostsLimit {
		byAmount = byAmount[:topCostsLimit]
	}
	summary.TopCosts = byAmount
	return summary
}

// Trend classifies the most recent months, up to six, as growth, decline or
// stable against the preceding month.
func Trend(entries []core.CostEntry) []core.TrendPoint {
	groups := core.SumByMonth(entries)

	series := make([]core.MonthStat, 0, len(groups))
	for month, g := range groups {
		series = append(series, core.MonthStat{Month: month, Total: g.Total, Count: g.Count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })

	if len(series) > trendMonthLimit {
		series = series[len(series)-trendMonthLimit:]
	}
	return core.MonthlyTrend(series)
}
