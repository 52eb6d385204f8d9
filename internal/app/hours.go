package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"kingston_guide/internal/domain"
)

// Day names indexed the Google way (0 = Sunday).
var dayNames = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

var validDays = func() map[string]struct{} {
	m := make(map[string]struct{}, len(dayNames))
	for _, d := range dayNames {
		m[d] = struct{}{}
	}
	return m
}()

var (
	weekdayLineRE = regexp.MustCompile(`^(\w+):\s*(.+)$`)
	// Tolerates en dash, hyphen, minus and em dash between the two times.
	timeRangeRE = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:AM|PM)?)\s*[–\-−—]\s*(\d{1,2}(?::\d{2})?\s*(?:AM|PM)?)`)
	timeRE      = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?$`)
)

// ParseHours normalizes external opening hours. The per-weekday text form
// is preferred; the structured periods form is the fallback. Returns nil
// when nothing usable is present.
func ParseHours(oh *domain.GoogleOpeningHours) domain.WeeklyHours {
	if oh == nil {
		return nil
	}
	if len(oh.WeekdayText) > 0 {
		return parseWeekdayText(oh.WeekdayText)
	}
	if len(oh.Periods) > 0 {
		return parsePeriods(oh.Periods)
	}
	return nil
}

// parseWeekdayText handles lines like "Monday: 9:00 AM – 5:00 PM".
// "Closed" days are omitted; "Open 24 hours" becomes 00:00–23:59.
func parseWeekdayText(lines []string) domain.WeeklyHours {
	hours := domain.WeeklyHours{}

	for _, line := range lines {
		m := weekdayLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		day := strings.ToLower(m[1])
		if _, ok := validDays[day]; !ok {
			continue
		}
		spec := strings.TrimSpace(m[2])
		low := strings.ToLower(spec)

		if strings.Contains(low, "closed") {
			continue
		}
		if strings.Contains(low, "open 24 hours") || low == "24 hours" {
			hours[day] = domain.DayHours{Open: "00:00", Close: "23:59"}
			continue
		}

		tm := timeRangeRE.FindStringSubmatch(spec)
		if tm == nil {
			continue
		}
		open, okOpen := parseTimeString(tm[1])
		closeAt, okClose := parseTimeString(tm[2])
		if okOpen && okClose {
			hours[day] = domain.DayHours{Open: open, Close: closeAt}
		}
	}
	return hours
}

// parsePeriods handles the structured day-index/HHMM form.
func parsePeriods(periods []domain.GooglePeriod) domain.WeeklyHours {
	hours := domain.WeeklyHours{}

	for _, p := range periods {
		if p.Open.Day < 0 || p.Open.Day >= len(dayNames) {
			continue
		}
		day := dayNames[p.Open.Day]
		closeAt := "23:59"
		if p.Close != nil {
			closeAt = formatHHMM(p.Close.Time)
		}
		hours[day] = domain.DayHours{Open: formatHHMM(p.Open.Time), Close: closeAt}
	}
	return hours
}

// parseTimeString accepts "9:00 AM", "9 AM", "9:00AM", "09:00", "21:00".
func parseTimeString(s string) (string, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(s))
	m := timeRE.FindStringSubmatch(cleaned)
	if m == nil {
		return "", false
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// formatHHMM converts the wire "HHMM" into "HH:MM".
func formatHHMM(t string) string {
	if len(t) < 4 {
		return "00:00"
	}
	return t[:2] + ":" + t[2:4]
}
