package stats

import "time"

// The raid week rolls over Tuesday 09:00 Pacific, matching the US reset.
const raidWeekResetHour = 9

var pacific = mustLoadLocation("America/Los_Angeles")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// RaidWeek returns the [start, end) window of the raid week containing t:
// the most recent Tuesday 09:00 Pacific through the following Tuesday 09:00.
func RaidWeek(t time.Time) (time.Time, time.Time) {
	local := t.In(pacific)

	day := time.Date(local.Year(), local.Month(), local.Day(), raidWeekResetHour, 0, 0, 0, pacific)
	for day.Weekday() != time.Tuesday || day.After(local) {
		day = day.AddDate(0, 0, -1)
		day = time.Date(day.Year(), day.Month(), day.Day(), raidWeekResetHour, 0, 0, 0, pacific)
	}

	return day, day.AddDate(0, 0, 7)
}
