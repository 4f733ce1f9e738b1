// Package deadline extracts deadline dates from free text and maps the
// remaining days to an urgency score.
package deadline

import (
	"regexp"
	"time"
)

// ScanWindow limits extraction to the head of the body, where deadlines
// are overwhelmingly stated.
const ScanWindow = 1000

const monthNames = "Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec|" +
	"January|February|March|April|May|June|July|August|September|October|November|December"

// Patterns are tried in order; the first match wins the right to parse.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{4}-\d{1,2}-\d{1,2})\b`),
	regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2}-\d{1,2}-\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2}\.\d{1,2}\.\d{4})\b`),
	regexp.MustCompile(`\b((?:` + monthNames + `)\s+\d{1,2},\s+\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2}\s+(?:` + monthNames + `)\s+\d{4})\b`),
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"02-01-2006",
	"2-1-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Extract scans only the first ScanWindow characters of text and returns
// the first pattern match that parses under one of the known layouts.
// A match whose literal fails every layout is skipped and scanning
// continues with the remaining patterns.
func Extract(text string) (time.Time, bool) {
	if len(text) > ScanWindow {
		text = text[:ScanWindow]
	}

	for _, pattern := range datePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, layout := range dateLayouts {
			if dt, err := time.Parse(layout, m[1]); err == nil {
				return dt, true
			}
		}
	}
	return time.Time{}, false
}

// DaysLeft counts whole days from now until the deadline, by calendar
// date in UTC. Past deadlines yield negative values.
func DaysLeft(deadline, now time.Time) int {
	d := deadline.UTC().Truncate(24 * time.Hour)
	n := now.UTC().Truncate(24 * time.Hour)
	return int(d.Sub(n).Hours() / 24)
}

// Urgency maps days remaining to a score in [1,6]; more imminent means
// higher. The no-deadline sentinel (999) lands in the lowest bucket.
func Urgency(daysLeft int) int {
	switch {
	case daysLeft <= 0:
		return 6
	case daysLeft <= 1:
		return 5
	case daysLeft <= 3:
		return 4
	case daysLeft <= 7:
		return 3
	case daysLeft <= 14:
		return 2
	default:
		return 1
	}
}
