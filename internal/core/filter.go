package core

import "strings"

// QuerySpec selects a subset of entries. Every field is optional; a zero
// field means "no constraint", so the zero QuerySpec matches everything.
type QuerySpec struct {
	Search    string
	Category  Category
	Culture   string
	Season    string
	DateFrom  Date
	DateTo    Date
	MinAmount Money
}

// IsZero reports whether no constraint is set.
func (q QuerySpec) IsZero() bool {
	return q.Search == "" && q.Category == "" && q.Culture == "" && q.Season == "" &&
		q.DateFrom.IsZero() && q.DateTo.IsZero() && q.MinAmount.Cents <= 0
}

// Filter returns the entries matching every present constraint of the spec,
// preserving input order. The input slice is never mutated.
func Filter(entries []CostEntry, q QuerySpec) []CostEntry {
	if q.IsZero() {
		return entries
	}
	out := make([]CostEntry, 0, len(entries))
	for _, e := range entries {
		if matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e CostEntry, q QuerySpec) bool {
	if q.Search != "" && !searchHit(e, q.Search) {
		return false
	}
	if q.Category != "" && e.Category != q.Category {
		return false
	}
	if q.Culture != "" && e.Culture != q.Culture {
		return false
	}
	if q.Season != "" && e.Season != q.Season {
		return false
	}
	if !q.DateFrom.IsZero() && !e.Date.OnOrAfter(q.DateFrom) {
		return false
	}
	if !q.DateTo.IsZero() && !e.Date.OnOrBefore(q.DateTo) {
		return false
	}
	if q.MinAmount.Cents > 0 && e.Amount.Cents < q.MinAmount.Cents {
		return false
	}
	return true
}

// searchHit does a case-insensitive substring match against the free-text
// fields of the entry: description, supplier and notes.
func searchHit(e CostEntry, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(e.Description), needle) ||
		strings.Contains(strings.ToLower(e.Supplier), needle) ||
		strings.Contains(strings.ToLower(e.Notes), needle)
}
