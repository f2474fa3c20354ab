// Package dateparts extracts date/time values from free-form tag text while
// preserving the precision that was actually present. Tags written by
// different tools carry anything from a bare year to a full timestamp with
// offset; nothing is ever invented to pad a partial value out to a full one.
package dateparts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Precision is the granularity of a parsed value.
type Precision int

const (
	PrecisionYear Precision = iota + 1
	PrecisionYearMonth
	PrecisionDate
	PrecisionDateTime
)

// Parts holds the date/time pieces found in tag text. Fields are only
// meaningful up to Precision: Month requires PrecisionYearMonth or finer,
// Day requires PrecisionDate or finer, Hour/Minute require PrecisionDateTime.
// Second and Offset are optional extras on PrecisionDateTime.
type Parts struct {
	Precision Precision
	Year      int
	Month     int
	Day       int
	Hour      int
	Minute    int

	Second    int
	HasSecond bool

	// OffsetSeconds is the UTC offset in seconds east of UTC.
	OffsetSeconds int
	HasOffset     bool
}

// Go's regexp has no lookbehind/lookahead, so the numeric boundary checks are
// consuming non-digit (or anchor) groups. This keeps longer digit runs (for
// example an 8-digit catalogue number with one digit too many) from being
// mis-split into a date.
var (
	dateTimePattern  = regexp.MustCompile(`(?:^|[^0-9])(19\d{2}|20\d{2}|2100)[-/]?(0[1-9]|1[0-2])[-/]?(0[1-9]|[12]\d|3[01])[T\s]+([01]\d|2[0-3]):([0-5]\d)(?::([0-5]\d))?(?:\s*(Z|[+-](?:[01]\d|2[0-3]):?[0-5]\d))?(?:[^0-9]|$)`)
	datePattern      = regexp.MustCompile(`(?:^|[^0-9])(19\d{2}|20\d{2}|2100)[-/]?(0[1-9]|1[0-2])[-/]?(0[1-9]|[12]\d|3[01])(?:[^0-9]|$)`)
	yearMonthPattern = regexp.MustCompile(`(?:^|[^0-9])(19\d{2}|20\d{2}|2100)[-/]?(0[1-9]|1[0-2])(?:[^0-9]|$)`)
	yearPattern      = regexp.MustCompile(`(?:^|[^0-9])(19\d{2}|20\d{2}|2100)(?:[^0-9]|$)`)
)

// Parse extracts the best available precision from raw tag text. Patterns are
// tried strict-to-loose and the first match wins, so a full timestamp is
// preferred over the bare year embedded in it. Scanning tolerates surrounding
// prose ("Recorded on 2020-07-18 14:30"). The ok result is false for blank
// input or text without any recognizable date.
//
// A structurally valid-looking date with an impossible calendar day (for
// example Feb 30) fails its own stage but may still yield a looser match from
// the same text; that fallback is intended.
func Parse(text string) (Parts, bool) {
	value := strings.TrimSpace(text)
	if value == "" {
		return Parts{}, false
	}

	if parts, ok := parseDateTime(value); ok {
		return parts, true
	}
	if parts, ok := parseDate(value); ok {
		return parts, true
	}
	if parts, ok := parseYearMonth(value); ok {
		return parts, true
	}
	return parseYear(value)
}

// HasFullDateTime reports whether the value is precise enough for an RSS
// pubDate: year, month, day, hour and minute all present.
func (p Parts) HasFullDateTime() bool {
	return p.Precision == PrecisionDateTime
}

// IsoPartial renders exactly the precision held: "2020", "2020-07",
// "2020-07-18", "2020-07-18T14:30", optionally with seconds and offset.
// Missing components are never fabricated.
func (p Parts) IsoPartial() string {
	switch p.Precision {
	case PrecisionYear:
		return fmt.Sprintf("%04d", p.Year)
	case PrecisionYearMonth:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	case PrecisionDate:
		return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
	case PrecisionDateTime:
		base := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", p.Year, p.Month, p.Day, p.Hour, p.Minute)
		if p.HasSecond {
			base += fmt.Sprintf(":%02d", p.Second)
		}
		if p.HasOffset {
			base += formatOffset(p.OffsetSeconds)
		}
		return base
	}
	return ""
}

// Instant combines the parts into an absolute point in time. It is only
// meaningful at full date-time precision; the offset defaults to UTC when
// none was parsed and seconds default to zero.
func (p Parts) Instant() (time.Time, bool) {
	if !p.HasFullDateTime() {
		return time.Time{}, false
	}
	loc := time.UTC
	if p.HasOffset {
		loc = time.FixedZone("", p.OffsetSeconds)
	}
	second := 0
	if p.HasSecond {
		second = p.Second
	}
	return time.Date(p.Year, time.Month(p.Month), p.Day, p.Hour, p.Minute, second, 0, loc), true
}

func parseDateTime(value string) (Parts, bool) {
	m := dateTimePattern.FindStringSubmatch(value)
	if m == nil {
		return Parts{}, false
	}

	year := mustInt(m[1])
	month := mustInt(m[2])
	day := mustInt(m[3])
	if !validCalendarDate(year, month, day) {
		return Parts{}, false
	}

	parts := Parts{
		Precision: PrecisionDateTime,
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      mustInt(m[4]),
		Minute:    mustInt(m[5]),
	}
	if m[6] != "" {
		parts.Second = mustInt(m[6])
		parts.HasSecond = true
	}
	if offset, ok := parseOffset(m[7]); ok {
		parts.OffsetSeconds = offset
		parts.HasOffset = true
	}
	return parts, true
}

func parseDate(value string) (Parts, bool) {
	m := datePattern.FindStringSubmatch(value)
	if m == nil {
		return Parts{}, false
	}

	year := mustInt(m[1])
	month := mustInt(m[2])
	day := mustInt(m[3])
	if !validCalendarDate(year, month, day) {
		return Parts{}, false
	}
	return Parts{Precision: PrecisionDate, Year: year, Month: month, Day: day}, true
}

func parseYearMonth(value string) (Parts, bool) {
	m := yearMonthPattern.FindStringSubmatch(value)
	if m == nil {
		return Parts{}, false
	}
	return Parts{Precision: PrecisionYearMonth, Year: mustInt(m[1]), Month: mustInt(m[2])}, true
}

func parseYear(value string) (Parts, bool) {
	m := yearPattern.FindStringSubmatch(value)
	if m == nil {
		return Parts{}, false
	}
	return Parts{Precision: PrecisionYear, Year: mustInt(m[1])}, true
}

// parseOffset normalizes "Z", "+HH:MM" and "+HHMM" forms to seconds east of
// UTC. Anything unparseable is treated as an absent offset, not a failure.
func parseOffset(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	if strings.EqualFold(trimmed, "Z") {
		return 0, true
	}

	sign := 1
	switch trimmed[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}

	digits := strings.Replace(trimmed[1:], ":", "", 1)
	if len(digits) != 4 {
		return 0, false
	}
	hours, err := strconv.Atoi(digits[:2])
	if err != nil || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(digits[2:])
	if err != nil || minutes > 59 {
		return 0, false
	}
	return sign * (hours*3600 + minutes*60), true
}

func formatOffset(seconds int) string {
	if seconds == 0 {
		return "Z"
	}
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// validCalendarDate rejects day-of-month values the calendar does not have
// (Feb 30, Apr 31, ...) by checking that time.Date does not normalize them.
func validCalendarDate(year, month, day int) bool {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// mustInt is only applied to submatches already constrained to digits.
func mustInt(value string) int {
	n, _ := strconv.Atoi(value)
	return n
}
