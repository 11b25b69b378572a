package normalize

import (
	"strconv"
	"strings"
)

// weekdays in stored order: Sunday is day index 0.
var weekdays = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// MapHours flattens a working-hours table keyed by weekday name into
// the stored "dayIndex,hours" form, seven entries joined by ";" in
// Sunday(0) through Saturday(6) order. Provider payloads embed narrow
// no-break spaces (sometimes as a literal "\U202f" escape) between
// times; both forms are normalized to plain spaces. A missing weekday
// yields an empty hours string for that day.
func MapHours(workingHours map[string]string) string {
	entries := make([]string, 0, len(weekdays))
	for i, day := range weekdays {
		entries = append(entries, strconv.Itoa(i)+","+cleanHours(workingHours[day]))
	}
	return strings.Join(entries, ";")
}

func cleanHours(s string) string {
	s = strings.ReplaceAll(s, `\U202f`, " ")
	s = strings.ReplaceAll(s, " ", " ")
	return s
}
