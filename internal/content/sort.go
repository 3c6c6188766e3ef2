package content

import (
	"sort"
	"time"
)

// SortUpcoming orders flyers soonest first.
func SortUpcoming(flyers []Flyer) {
	sort.SliceStable(flyers, func(i, j int) bool {
		return flyers[i].StartDate.Before(flyers[j].StartDate)
	})
}

// SortPast orders flyers most recent first.
func SortPast(flyers []Flyer) {
	sort.SliceStable(flyers, func(i, j int) bool {
		return flyers[i].StartDate.After(flyers[j].StartDate)
	})
}

// SplitFlyers separates flyers into upcoming and past at now, each sorted
// for display.
func SplitFlyers(flyers []Flyer, now time.Time) (upcoming, past []Flyer) {
	for _, f := range flyers {
		if f.Upcoming(now) {
			upcoming = append(upcoming, f)
		} else {
			past = append(past, f)
		}
	}
	SortUpcoming(upcoming)
	SortPast(past)
	return upcoming, past
}
