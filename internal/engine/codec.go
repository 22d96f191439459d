package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-compactdates/internal/config"
)

// ErrPartialDecode is reported by TryDecode when at least one group or day token was dropped.
var ErrPartialDecode = errors.New(config.ErrPartialDecode)

// DroppedToken describes a fragment of a compact value that could not be decoded.
type DroppedToken struct {
	// Group is the trimmed comma-separated segment the token came from.
	Group string `json:"group"`
	// Token is the offending fragment: the whole group, its month or a single day.
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

// DecodeResult is the detailed outcome of decoding a compact value.
type DecodeResult struct {
	Dates        []CalendarDate `json:"dates"`
	Dropped      []DroppedToken `json:"dropped"`
	TotalGroups  int            `json:"total_groups"`
	ParsedGroups int            `json:"parsed_groups"`
}

// Encode renders dates in the compact, month-grouped form, e.g. "[09.01, 06/13.02]".
// Invalid dates are ignored. Days are grouped by month regardless of year, so the
// result is only lossless for dates sharing a single year. No valid dates yields "".
func Encode(dates []CalendarDate) string {
	byMonth := make(map[time.Month][]int)
	for _, d := range Normalize(dates) {
		days := byMonth[d.Month]
		if !slices.Contains(days, d.Day) {
			byMonth[d.Month] = append(days, d.Day)
		}
	}
	if len(byMonth) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(config.CompactOpen)
	first := true
	for m := time.January; m <= time.December; m++ {
		days, ok := byMonth[m]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(config.GroupJoin)
		}
		first = false
		writeGroup(&b, m, days)
	}
	b.WriteString(config.CompactClose)
	return b.String()
}

func writeGroup(b *strings.Builder, m time.Month, days []int) {
	slices.Sort(days)
	for i, day := range days {
		if i > 0 {
			b.WriteString(config.DaySeparator)
		}
		fmt.Fprintf(b, config.FormatTwoDigits, day)
	}
	b.WriteString(config.MonthSeparator)
	fmt.Fprintf(b, config.FormatTwoDigits, int(m))
}

// Decode parses a compact value into dates of the given implicit year.
// Malformed groups and impossible days are dropped; the result is sorted and
// de-duplicated and is never nil.
func Decode(s string, year int) []CalendarDate {
	return decode(s, year).Dates
}

// TryDecode decodes like Decode but also reports every dropped fragment.
// The returned error wraps ErrPartialDecode when anything was dropped; the
// result is populated either way.
func TryDecode(s string, year int) (DecodeResult, error) {
	res := decode(s, year)
	if len(res.Dropped) > 0 {
		return res, fmt.Errorf("%w: %d of %d groups parsed, %d tokens dropped",
			ErrPartialDecode, res.ParsedGroups, res.TotalGroups, len(res.Dropped))
	}
	return res, nil
}

func decode(s string, year int) DecodeResult {
	res := DecodeResult{Dates: []CalendarDate{}}

	s = strings.TrimSpace(s)
	if s == "" {
		return res
	}
	s = strings.TrimPrefix(s, config.CompactOpen)
	s = strings.TrimSuffix(s, config.CompactClose)

	for _, piece := range strings.Split(s, config.GroupSeparator) {
		group := strings.TrimSpace(piece)
		if group == "" {
			continue
		}
		res.TotalGroups++

		dates, dropped := decodeGroup(group, year)
		res.Dates = append(res.Dates, dates...)
		res.Dropped = append(res.Dropped, dropped...)
		if len(dropped) == 0 {
			res.ParsedGroups++
		}
	}

	slices.SortFunc(res.Dates, CalendarDate.Compare)
	res.Dates = slices.Compact(res.Dates)
	return res
}

// decodeGroup parses one "DD/DD.MM" segment.
func decodeGroup(group string, year int) ([]CalendarDate, []DroppedToken) {
	drop := func(token, reason string) DroppedToken {
		return DroppedToken{Group: group, Token: token, Reason: reason}
	}

	idx := strings.LastIndex(group, config.MonthSeparator)
	if idx < 0 {
		return nil, []DroppedToken{drop(group, config.ReasonMissingSeparator)}
	}

	monthPart := strings.TrimSpace(group[idx+1:])
	month, err := parseDigits(monthPart)
	if err != nil || month < 1 || month > 12 {
		return nil, []DroppedToken{drop(monthPart, config.ReasonInvalidMonth)}
	}

	var (
		dates   []CalendarDate
		dropped []DroppedToken
	)
	for _, tok := range strings.Split(group[:idx], config.DaySeparator) {
		tok = strings.TrimSpace(tok)
		day, err := parseDigits(tok)
		if err != nil || day < 1 || day > 31 {
			dropped = append(dropped, drop(tok, config.ReasonInvalidDay))
			continue
		}
		d := CalendarDate{Year: year, Month: time.Month(month), Day: day}
		if !d.Valid() {
			dropped = append(dropped, drop(tok, config.ReasonInvalidDate))
			continue
		}
		dates = append(dates, d)
	}
	return dates, dropped
}

// parseDigits is strconv.Atoi restricted to ASCII digits, so signs such as
// "+9" or "-1" are rejected like any other non-numeric token.
func parseDigits(s string) (int, error) {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < '0' || r > '9' }) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

// EncodedDayCount returns how many day tokens Encode writes for dates.
// Valid dates sharing a month and day in different years count once,
// because Encode groups by month regardless of year.
func EncodedDayCount(dates []CalendarDate) int {
	type monthDay struct {
		month time.Month
		day   int
	}
	seen := make(map[monthDay]struct{}, len(dates))
	for _, d := range dates {
		if d.Valid() {
			seen[monthDay{d.Month, d.Day}] = struct{}{}
		}
	}
	return len(seen)
}

// ValidationReport summarizes how much of a hand-edited compact value is usable.
type ValidationReport struct {
	TotalGroups  int            `json:"total_groups"`
	ParsedGroups int            `json:"parsed_groups"`
	Dropped      []DroppedToken `json:"dropped"`
}

// Validate re-runs the decoding grammar and counts fully parsed groups against
// all groups. A group is fully parsed when its month and every day are valid.
func Validate(s string, year int) ValidationReport {
	res := decode(s, year)
	return ValidationReport{
		TotalGroups:  res.TotalGroups,
		ParsedGroups: res.ParsedGroups,
		Dropped:      res.Dropped,
	}
}

// OK reports whether every group was parsed without losses.
func (r ValidationReport) OK() bool {
	return r.ParsedGroups == r.TotalGroups && len(r.Dropped) == 0
}

// Warning returns a non-fatal, user-facing message when groups were lost, or "" otherwise.
// A nil locale uses English.
func (r ValidationReport) Warning(loc Locale) string {
	if r.OK() {
		return ""
	}
	if loc == nil {
		loc = EnglishLocale{}
	}
	return loc.PartialWarning(r.ParsedGroups, r.TotalGroups)
}
