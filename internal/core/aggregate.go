package core

const (
	TrendNone TrendDirection = iota
	TrendGrowth
	TrendDecline
	TrendStable
)

// trendThresholdPct is the month-over-month change in average cost per entry
// below which a month counts as stable.
const trendThresholdPct = 5.0

type (
	// GroupTotal accumulates the sum and record count for one grouping key.
	GroupTotal struct {
		Total Money
		Count int
	}

	// Extrema is the highest and lowest entry by amount.
	Extrema struct {
		Max CostEntry
		Min CostEntry
	}

	// Delta is a period-over-period comparison. When the previous period has
	// no spend there is no baseline to compute a percentage against; callers
	// render a plain directional indicator instead.
	Delta struct {
		Percent     float64
		HasBaseline bool
		Rising      bool
	}

	// TrendDirection classifies one month of a trend series.
	TrendDirection int

	// MonthStat is one month of a chronological series.
	MonthStat struct {
		Month string // "YYYY-MM"
		Total Money
		Count int
	}

	// TrendPoint is a MonthStat classified against its predecessor.
	TrendPoint struct {
		MonthStat
		AveragePerEntry float64
		Direction       TrendDirection
	}
)

func (d TrendDirection) String() string {
	switch d {
	case TrendGrowth:
		return "crescimento"
	case TrendDecline:
		return "reducao"
	case TrendStable:
		return "estavel"
	}
	return "-"
}

// SumBy groups entries by an arbitrary key and sums their amounts.
func SumBy(entries []CostEntry, key func(CostEntry) string) map[string]GroupTotal {
	out := make(map[string]GroupTotal)
	for _, e := range entries {
		k := key(e)
		g := out[k]
		g.Total = g.Total.Add(e.Amount)
		g.Count++
		out[k] = g
	}
	return out
}

// SumByCategory groups by category code.
func SumByCategory(entries []CostEntry) map[string]GroupTotal {
	return SumBy(entries, func(e CostEntry) string { return string(e.Category) })
}

// SumByCulture groups by culture, folding absent cultures into the default.
func SumByCulture(entries []CostEntry) map[string]GroupTotal {
	return SumBy(entries, func(e CostEntry) string { return e.CultureOrDefault() })
}

// SumBySeason groups by harvest-cycle label.
func SumBySeason(entries []CostEntry) map[string]GroupTotal {
	return SumBy(entries, func(e CostEntry) string { return e.Season })
}

// SumByMonth groups by the "YYYY-MM" key of the entry date.
func SumByMonth(entries []CostEntry) map[string]GroupTotal {
	return SumBy(entries, func(e CostEntry) string { return e.Date.MonthKey() })
}

// TotalAndCount sums all amounts and counts the entries.
func TotalAndCount(entries []CostEntry) (Money, int) {
	var total Money
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, len(entries)
}

// Average is the mean amount per entry in reais, zero for an empty sequence.
func Average(entries []CostEntry) float64 {
	total, count := TotalAndCount(entries)
	if count == 0 {
		return 0
	}
	return total.Reais() / float64(count)
}

// AmountExtrema finds the highest and lowest entries by amount. The second
// return is false for an empty sequence.
func AmountExtrema(entries []CostEntry) (Extrema, bool) {
	if len(entries) == 0 {
		return Extrema{}, false
	}
	ext := Extrema{Max: entries[0], Min: entries[0]}
	for _, e := range entries[1:] {
		if e.Amount.Cents > ext.Max.Amount.Cents {
			ext.Max = e
		}
		if e.Amount.Cents < ext.Min.Amount.Cents {
			ext.Min = e
		}
	}
	return ext, true
}

// CostPerHectare spreads a total over the whole property, in reais per
// hectare; zero when the farm size is unknown.
func CostPerHectare(total Money, farmSizeHectares float64) float64 {
	if farmSizeHectares <= 0 {
		return 0
	}
	return total.Reais() / farmSizeHectares
}

// PeriodDelta compares the current period total against the previous one.
// A previous total of zero yields no baseline rather than a division by zero.
func PeriodDelta(current, previous Money) Delta {
	if previous.Cents == 0 {
		return Delta{HasBaseline: false, Rising: current.Cents > 0}
	}
	change := (float64(current.Cents-previous.Cents) / float64(previous.Cents)) * 100
	return Delta{Percent: change, HasBaseline: true, Rising: change > 0}
}

// MonthlyAverage is the mean monthly spend in reais across the months that
// have at least one entry.
func MonthlyAverage(entries []CostEntry) float64 {
	months := SumByMonth(entries)
	if len(months) == 0 {
		return 0
	}
	var total Money
	for _, g := range months {
		total = total.Add(g.Total)
	}
	return total.Reais() / float64(len(months))
}

// MonthlyTrend classifies a chronological monthly series. Each month after
// the first compares its average cost per entry to the previous month's:
// more than +5% is growth, less than -5% decline, in between stable. The
// first month has no predecessor and stays unclassified.
func MonthlyTrend(series []MonthStat) []TrendPoint {
	points := make([]TrendPoint, len(series))
	for i, m := range series {
		p := TrendPoint{MonthStat: m, Direction: TrendNone}
		if m.Count > 0 {
			p.AveragePerEntry = m.Total.Reais() / float64(m.Count)
		}
		if i > 0 && points[i-1].AveragePerEntry > 0 {
			change := ((p.AveragePerEntry - points[i-1].AveragePerEntry) / points[i-1].AveragePerEntry) * 100
			switch {
			case change > trendThresholdPct:
				p.Direction = TrendGrowth
			case change < -trendThresholdPct:
				p.Direction = TrendDecline
			default:
				p.Direction = TrendStable
			}
		}
		points[i] = p
	}
	return points
}
