package daterange

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/models"
)

// Kind tags the pattern family a matcher belongs to.
type Kind string

const (
	KindAbsoluteInterval Kind = "absolute-interval"
	KindRelativeCount    Kind = "relative-count"
	KindNamedPeriod      Kind = "named-period"
)

const day = 24 * time.Hour

// Calendar dates outside this window are rejected.
const (
	minYear = 1900
	maxYear = 2200
)

var unitDurations = map[string]time.Duration{
	"day":   day,
	"week":  7 * day,
	"month": 30 * day,
	"year":  365 * day,
}

// matcher recognizes one pattern family. ok is false when the query does
// not belong to the family; err is set when it does but is malformed.
type matcher interface {
	kind() Kind
	match(query string, now time.Time) (r models.ResolvedRange, ok bool, err error)
}

// --- relative count + unit: "last 7 days", "past 2 weeks" ---

var relativeCountPattern = regexp.MustCompile(`\b(?:last|past|previous)\s+([+-]?[0-9a-z.]+)\s+(day|week|month|year)s?\b`)

type relativeCountMatcher struct{}

func (relativeCountMatcher) kind() Kind { return KindRelativeCount }

func (relativeCountMatcher) match(query string, now time.Time) (models.ResolvedRange, bool, error) {
	m := relativeCountPattern.FindStringSubmatch(query)
	if m == nil {
		return models.ResolvedRange{}, false, nil
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return models.ResolvedRange{}, true, apperrors.InvalidInput("count %q in %q must be a positive integer", m[1], query)
	}

	unit := unitDurations[m[2]]
	if int64(n) > math.MaxInt64/int64(unit) {
		return models.ResolvedRange{}, true, apperrors.InvalidInput("count %q in %q is too large", m[1], query)
	}
	span := time.Duration(n) * unit
	return models.ResolvedRange{Start: now.Add(-span), End: now}, true, nil
}

// --- named period: "past month", "last week" ---

var namedPeriodPattern = regexp.MustCompile(`\b(?:last|past|previous)\s+(day|week|month|year)\b`)

type namedPeriodMatcher struct{}

func (namedPeriodMatcher) kind() Kind { return KindNamedPeriod }

func (namedPeriodMatcher) match(query string, now time.Time) (models.ResolvedRange, bool, error) {
	m := namedPeriodPattern.FindStringSubmatch(query)
	if m == nil {
		return models.ResolvedRange{}, false, nil
	}
	return models.ResolvedRange{Start: now.Add(-unitDurations[m[1]]), End: now}, true, nil
}

// --- absolute interval: "Dec 1 to Dec 15", "2024-12-01 - 2024-12-15" ---

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	isoDatePattern       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	monthNameDatePattern = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	slashDatePattern     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?\b`)
)

type absoluteIntervalMatcher struct{}

func (absoluteIntervalMatcher) kind() Kind { return KindAbsoluteInterval }

type foundDate struct {
	pos     int
	year    int
	hasYear bool
	month   time.Month
	day     int
	raw     string
}

func (absoluteIntervalMatcher) match(query string, now time.Time) (models.ResolvedRange, bool, error) {
	dates := findDates(query, now)
	if len(dates) < 2 {
		return models.ResolvedRange{}, false, nil
	}

	inheritYear(dates[:2])

	loc := now.Location()
	first, err := dates[0].at(loc)
	if err != nil {
		return models.ResolvedRange{}, true, err
	}
	second, err := dates[1].at(loc)
	if err != nil {
		return models.ResolvedRange{}, true, err
	}

	if second.Before(first) {
		if start, end, ok := acrossNewYear(dates[0], dates[1], first, second, now); ok {
			first, second = start, end
		} else {
			// reversed input is normalized here instead of rejected
			first, second = second, first
		}
	}

	return models.ResolvedRange{Start: first, End: second.AddDate(0, 0, 1)}, true, nil
}

// findDates returns every calendar date mentioned in query, in the order
// they appear.
func findDates(query string, now time.Time) []foundDate {
	var dates []foundDate

	for _, m := range isoDatePattern.FindAllStringSubmatchIndex(query, -1) {
		dates = append(dates, foundDate{
			pos:     m[0],
			year:    atoi(query[m[2]:m[3]]),
			hasYear: true,
			month:   time.Month(atoi(query[m[4]:m[5]])),
			day:     atoi(query[m[6]:m[7]]),
			raw:     query[m[0]:m[1]],
		})
	}

	for _, m := range monthNameDatePattern.FindAllStringSubmatchIndex(query, -1) {
		d := foundDate{
			pos:   m[0],
			year:  now.Year(),
			month: months[query[m[2]:m[3]]],
			day:   atoi(query[m[4]:m[5]]),
			raw:   query[m[0]:m[1]],
		}
		if m[6] >= 0 {
			d.year, d.hasYear = atoi(query[m[6]:m[7]]), true
		}
		dates = append(dates, d)
	}

	for _, m := range slashDatePattern.FindAllStringSubmatchIndex(query, -1) {
		d := foundDate{
			pos:   m[0],
			year:  now.Year(),
			month: time.Month(atoi(query[m[2]:m[3]])),
			day:   atoi(query[m[4]:m[5]]),
			raw:   query[m[0]:m[1]],
		}
		if m[6] >= 0 {
			d.year, d.hasYear = atoi(query[m[6]:m[7]]), true
			if d.year < 100 {
				d.year += 2000
			}
		}
		dates = append(dates, d)
	}

	sort.SliceStable(dates, func(i, j int) bool {
		return dates[i].pos < dates[j].pos
	})
	return dates
}

// inheritYear lets "Dec 1 to Dec 15, 2023" apply the one explicit year to
// both ends. Dates without any explicit year keep now's year.
func inheritYear(dates []foundDate) {
	for _, src := range dates {
		if !src.hasYear {
			continue
		}
		for i := range dates {
			if !dates[i].hasYear {
				dates[i].year = src.year
			}
		}
		return
	}
}

// acrossNewYear reads "Dec 28 to Jan 3" as a week spanning the turn of the
// year when neither date names a year and that reading is shorter than the
// reversed one. The interval is anchored so it does not start after now.
func acrossNewYear(a, b foundDate, first, second, now time.Time) (time.Time, time.Time, bool) {
	if a.hasYear || b.hasYear {
		return time.Time{}, time.Time{}, false
	}
	if first.After(now) {
		a.year--
	} else {
		b.year++
	}

	start, err := a.at(now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := b.at(now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if end.Sub(start) >= first.Sub(second) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// at builds the start of the date's day, rejecting dates time.Date would
// silently roll over (Feb 30, month 13).
func (d foundDate) at(loc *time.Location) (time.Time, error) {
	if d.year < minYear || d.year > maxYear {
		return time.Time{}, apperrors.InvalidInput("year %d in %q is outside %d-%d", d.year, strings.TrimSpace(d.raw), minYear, maxYear)
	}
	t := time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
	if d.month < time.January || d.month > time.December || t.Month() != d.month || t.Day() != d.day {
		return time.Time{}, apperrors.InvalidInput("%q is not a calendar date", strings.TrimSpace(d.raw))
	}
	return t, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
