package core

import "sort"

const (
	SortByDate        SortField = "date"
	SortByDescription SortField = "description"
	SortByCategory    SortField = "category"
	SortByCulture     SortField = "culture"
	SortBySeason      SortField = "season"
	SortByAmount      SortField = "amount"
	SortByArea        SortField = "area"
	SortBySupplier    SortField = "supplier"
)

type (
	// SortField names the entry field a table is ordered by.
	SortField string

	// SortSpec is a field plus direction.
	SortSpec struct {
		Field      SortField
		Descending bool
	}
)

// Valid reports whether f is a sortable field.
func (f SortField) Valid() bool {
	switch f {
	case SortByDate, SortByDescription, SortByCategory, SortByCulture,
		SortBySeason, SortByAmount, SortByArea, SortBySupplier:
		return true
	}
	return false
}

// Sort returns a new slice ordered by the spec. The sort is stable: entries
// with equal keys keep their relative input order, so pagination stays
// deterministic. Numeric fields compare as numbers, the date field as a
// calendar date, everything else as case-sensitive text.
func Sort(entries []CostEntry, spec SortSpec) []CostEntry {
	out := make([]CostEntry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		less := fieldLess(out[i], out[j], spec.Field)
		if spec.Descending {
			return fieldLess(out[j], out[i], spec.Field)
		}
		return less
	})
	return out
}

func fieldLess(a, b CostEntry, field SortField) bool {
	switch field {
	case SortByAmount:
		return a.Amount.Cents < b.Amount.Cents
	case SortByArea:
		return a.AreaHectares < b.AreaHectares
	case SortByDate:
		return a.Date.Before(b.Date.Time)
	case SortByDescription:
		return a.Description < b.Description
	case SortByCategory:
		return a.Category < b.Category
	case SortByCulture:
		return a.Culture < b.Culture
	case SortBySeason:
		return a.Season < b.Season
	case SortBySupplier:
		return a.Supplier < b.Supplier
	}
	return false
}
