package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-compactdates/internal/config"
)

// Locale supplies the language-dependent words used by the display formats.
type Locale interface {
	// Weekday returns the capitalized name of the day, e.g. "Monday" or "Lundi".
	Weekday(time.Weekday) string
	// DateCount returns the pluralized count phrase, e.g. "1 date" or "4 dates".
	DateCount(n int) string
	// PartialWarning tells the user that only parsed of total groups were readable.
	PartialWarning(parsed, total int) string
}

// EnglishLocale is the built-in default Locale. It needs no translation bundle.
type EnglishLocale struct{}

func (EnglishLocale) Weekday(w time.Weekday) string { return w.String() }

func (EnglishLocale) DateCount(n int) string {
	if n == 1 {
		return fmt.Sprintf(config.FallbackDateOne, n)
	}
	return fmt.Sprintf(config.FallbackDateCount, n)
}

func (EnglishLocale) PartialWarning(parsed, total int) string {
	return fmt.Sprintf(config.FallbackWarning, parsed, total)
}

// FormatForDisplay renders dates for humans in one of the display styles:
//
//   - count:    "4 dates"
//   - short:    "09.01, 16.01" for up to three dates, else "09.01 - 30.01 (4)"
//   - readable: "Thursday 09.01.2025, Thursday 16.01.2025"
//
// Invalid and duplicate dates are ignored. Unknown styles render as short.
// A nil locale uses English.
func FormatForDisplay(dates []CalendarDate, style string, loc Locale) string {
	if loc == nil {
		loc = EnglishLocale{}
	}
	ds := Normalize(dates)

	switch style {
	case config.StyleCount:
		return loc.DateCount(len(ds))
	case config.StyleReadable:
		parts := make([]string, len(ds))
		for i, d := range ds {
			full := fmt.Sprintf(config.FormatFullDate, d.Day, int(d.Month), d.Year)
			parts[i] = fmt.Sprintf(config.FormatReadable, loc.Weekday(d.Weekday()), full)
		}
		return strings.Join(parts, config.GroupJoin)
	default:
		return formatShort(ds)
	}
}

func formatShort(ds []CalendarDate) string {
	if len(ds) == 0 {
		return ""
	}
	if len(ds) <= config.ShortListLimit {
		parts := make([]string, len(ds))
		for i, d := range ds {
			parts[i] = dayMonth(d)
		}
		return strings.Join(parts, config.GroupJoin)
	}
	return fmt.Sprintf(config.FormatShortSpan, dayMonth(ds[0]), dayMonth(ds[len(ds)-1]), len(ds))
}

func dayMonth(d CalendarDate) string {
	return fmt.Sprintf(config.FormatDayMonth, d.Day, int(d.Month))
}

// FormatWithRanges shortens the display of consecutive bookings: every run of
// at least three consecutive days inside a single month becomes "[DD-DD.MM]".
// Shorter runs and runs crossing a month boundary keep the Encode grouping,
// split per year so that December precedes the following January.
// Pieces appear in chronological order, joined by ", ".
//
// The output is for display only and is not accepted by Decode.
func FormatWithRanges(dates []CalendarDate) string {
	ds := Normalize(dates)
	if len(ds) == 0 {
		return ""
	}

	var (
		parts   []string
		pending []CalendarDate
	)
	flush := func() {
		if len(pending) > 0 {
			parts = append(parts, Encode(pending))
			pending = nil
		}
	}

	for _, run := range consecutiveRuns(ds) {
		first, last := run[0], run[len(run)-1]
		if len(run) >= config.MinRunLength && first.Year == last.Year && first.Month == last.Month {
			flush()
			parts = append(parts, fmt.Sprintf(config.FormatRangeGroup, first.Day, last.Day, int(first.Month)))
			continue
		}
		for _, d := range run {
			if len(pending) > 0 && pending[len(pending)-1].Year != d.Year {
				flush()
			}
			pending = append(pending, d)
		}
	}
	flush()

	return strings.Join(parts, config.GroupJoin)
}

// consecutiveRuns splits sorted, unique dates into maximal runs of days one apart.
func consecutiveRuns(ds []CalendarDate) [][]CalendarDate {
	var runs [][]CalendarDate
	start := 0
	for i := 1; i <= len(ds); i++ {
		if i < len(ds) && ds[i] == ds[i-1].AddDays(1) {
			continue
		}
		runs = append(runs, ds[start:i])
		start = i
	}
	return runs
}
