package core

import (
	"fmt"
	"time"
)

// SeasonFor derives the harvest-cycle label for a date. The cycle crosses the
// calendar year: September through February belongs to the season starting
// that September ("Y/Y+1"), March through August to the one that started the
// previous September ("Y-1/Y").
func SeasonFor(t time.Time) string {
	year := t.Year()
	month := int(t.Month())
	if month >= 9 || month <= 2 {
		return fmt.Sprintf("%d/%d", year, year+1)
	}
	return fmt.Sprintf("%d/%d", year-1, year)
}

// CurrentSeason is the default season assigned to new entries.
func CurrentSeason(now time.Time) string {
	return SeasonFor(now)
}
