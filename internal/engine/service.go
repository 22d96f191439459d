package engine

import (
	"log/slog"

	"github.com/tartampluch/go-compactdates/internal/config"
)

// Codec binds the compact-value functions to an implicit year and a display locale,
// and logs what the lenient paths silently drop.
type Codec struct {
	// Clock provides the current year when Year is zero.
	Clock Clock
	// Year is the caller-supplied implicit year. Zero means "current year".
	Year int
	// Locale drives display formatting. Nil means English.
	Locale Locale
}

// NewCodec creates a Codec on the real clock. Pass year 0 to follow the current year.
func NewCodec(year int, loc Locale) *Codec {
	return &Codec{
		Clock:  RealClock{},
		Year:   year,
		Locale: loc,
	}
}

// ImplicitYear returns the year used to decode compact values.
func (c *Codec) ImplicitYear() int {
	if c.Year > 0 {
		return c.Year
	}
	if c.Clock == nil {
		return RealClock{}.Now().Year()
	}
	return c.Clock.Now().Year()
}

// Encode renders dates in the compact form. See Encode.
func (c *Codec) Encode(dates []CalendarDate) string {
	for _, d := range dates {
		if !d.Valid() {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, d.String(),
			)
		}
	}

	out := Encode(dates)
	slog.Debug(config.MsgEncoded,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(dates),
		config.LogKeyValue, out,
	)
	return out
}

// Decode parses s in the implicit year, logging each dropped fragment.
func (c *Codec) Decode(s string) []CalendarDate {
	res, _ := c.TryDecode(s)
	return res.Dates
}

// TryDecode is the reporting variant of Decode. See TryDecode.
func (c *Codec) TryDecode(s string) (DecodeResult, error) {
	year := c.ImplicitYear()
	res, err := TryDecode(s, year)

	for _, d := range res.Dropped {
		slog.Debug(config.MsgSkippedToken,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyToken, d.Token,
			config.LogKeyReason, d.Reason,
		)
	}
	slog.Debug(config.MsgDecoded,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyYear, year,
		config.LogKeyGroups, res.TotalGroups,
		config.LogKeyCount, len(res.Dates),
		config.LogKeyDropped, len(res.Dropped),
	)
	return res, err
}

// Validate reports parsed versus total groups for s in the implicit year.
func (c *Codec) Validate(s string) ValidationReport {
	return Validate(s, c.ImplicitYear())
}

// Warning returns the localized warning for r, or "" when nothing was lost.
func (c *Codec) Warning(r ValidationReport) string {
	return r.Warning(c.Locale)
}

// Format renders dates in the given display style using the codec's locale.
func (c *Codec) Format(dates []CalendarDate, style string) string {
	return FormatForDisplay(dates, style, c.Locale)
}

// FormatRanges renders dates with consecutive runs collapsed.
func (c *Codec) FormatRanges(dates []CalendarDate) string {
	return FormatWithRanges(dates)
}
