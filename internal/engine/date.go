package engine

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-compactdates/internal/config"
)

// ErrInvalidDate is returned when a year/month/day triple does not name a real day.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// CalendarDate is a day in the proleptic Gregorian calendar, without time of day.
// The zero value is not a valid date.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate validates the triple and returns the corresponding date.
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	d := CalendarDate{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return CalendarDate{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return d, nil
}

// FromTime truncates t to its calendar date in t's own location.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Valid reports whether the date exists, e.g. 2025-02-29 and 2025-04-31 do not.
func (d CalendarDate) Valid() bool {
	if d.Year < 1 || d.Year > 9999 {
		return false
	}
	if d.Month < time.January || d.Month > time.December {
		return false
	}
	return d.Day >= 1 && d.Day <= daysIn(d.Month, d.Year)
}

// Time returns midnight UTC of the date.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week.
func (d CalendarDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 by (year, month, day).
func (d CalendarDate) Compare(o CalendarDate) int {
	if c := cmp.Compare(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, o.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, o.Day)
}

// Before reports whether d is strictly earlier than o.
func (d CalendarDate) Before(o CalendarDate) bool {
	return d.Compare(o) < 0
}

// String renders the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf(config.FormatISODate, d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler using the ISO layout.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the layouts of ParseDate.
func (d *CalendarDate) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDate converts a loosely formatted date string into a CalendarDate.
// Any time-of-day component is discarded.
func ParseDate(value string) (CalendarDate, error) {
	value = strings.TrimSpace(value)
	layouts := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
		config.DateFormatEuropean,
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return FromTime(t), nil
		}
	}
	return CalendarDate{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}

// ParseDates keeps every value ParseDate accepts and silently drops the rest.
func ParseDates(values []string) []CalendarDate {
	dates := make([]CalendarDate, 0, len(values))
	for _, v := range values {
		d, err := ParseDate(v)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// Normalize filters out invalid dates and returns the rest sorted ascending without duplicates.
// The input slice is not modified.
func Normalize(dates []CalendarDate) []CalendarDate {
	out := make([]CalendarDate, 0, len(dates))
	for _, d := range dates {
		if d.Valid() {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, CalendarDate.Compare)
	return slices.Compact(out)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
