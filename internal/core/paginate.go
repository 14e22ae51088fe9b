package core

// PageSizeAll disables windowing: the whole sequence comes back as one page.
const PageSizeAll = 0

// Page is one window of an ordered entry sequence. StartIndex/EndIndex are
// 1-based and inclusive, matching the "showing X-Y of Z" table footer.
type Page struct {
	Items      []CostEntry
	StartIndex int
	EndIndex   int
	TotalItems int
	TotalPages int
}

// TotalPages computes the page count for a sequence length, never less than 1
// so an empty table still renders as page 1 of 1.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= PageSizeAll || totalItems == 0 {
		return 1
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Paginate windows entries to the 1-based pageIndex. The caller is expected
// to clamp the index into [1, TotalPages] first; an index outside that range
// fails with ErrPageOutOfRange.
func Paginate(entries []CostEntry, pageSize, pageIndex int) (Page, error) {
	total := len(entries)
	pages := TotalPages(total, pageSize)

	if pageIndex < 1 || pageIndex > pages {
		return Page{}, ErrPageOutOfRange
	}

	if pageSize <= PageSizeAll {
		return Page{
			Items:      entries,
			StartIndex: min(1, total),
			EndIndex:   total,
			TotalItems: total,
			TotalPages: 1,
		}, nil
	}

	start := (pageIndex - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}

	return Page{
		Items:      entries[start:end],
		StartIndex: min(start+1, total),
		EndIndex:   end,
		TotalItems: total,
		TotalPages: pages,
	}, nil
}

// ClampPageIndex forces a requested index into the valid range for the
// sequence, for boundary components that prefer clamping over failing.
func ClampPageIndex(totalItems, pageSize, pageIndex int) int {
	pages := TotalPages(totalItems, pageSize)
	if pageIndex < 1 {
		return 1
	}
	if pageIndex > pages {
		return pages
	}
	return pageIndex
}
