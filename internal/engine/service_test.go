package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-compactdates/internal/engine"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func TestCodec_ImplicitYear(t *testing.T) {
	clock := MockClock{CurrentTime: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}

	tests := []struct {
		name  string
		codec *engine.Codec
		want  int
	}{
		{"clock year", &engine.Codec{Clock: clock}, 2026},
		{"explicit year wins", &engine.Codec{Clock: clock, Year: 2024}, 2024},
		{"nil clock falls back to real time", &engine.Codec{}, time.Now().Year()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.codec.ImplicitYear())
		})
	}
}

func TestCodec_DecodeUsesImplicitYear(t *testing.T) {
	c := &engine.Codec{Clock: MockClock{CurrentTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}}

	// 2024 is a leap year, so Feb 29 survives.
	got := c.Decode("[29.02, 31.04]")
	assert.Equal(t, []engine.CalendarDate{date(2024, 2, 29)}, got)

	res, err := c.TryDecode("[29.02, 31.04]")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrPartialDecode)
	assert.Len(t, res.Dropped, 1)
}

func TestCodec_RoundTripWithCallerYear(t *testing.T) {
	c := engine.NewCodec(2023, nil)
	in := []engine.CalendarDate{date(2023, 11, 2), date(2023, 1, 9), date(2023, 11, 30)}

	encoded := c.Encode(in)
	assert.Equal(t, "[09.01, 02/30.11]", encoded)
	assert.Equal(t, engine.Normalize(in), c.Decode(encoded))
}

func TestCodec_ValidateAndWarning(t *testing.T) {
	c := engine.NewCodec(2025, nil)

	report := c.Validate("[09/16.01, garbage.13, 05.02]")
	assert.False(t, report.OK())
	assert.Contains(t, c.Warning(report), "2 of 3")

	assert.Empty(t, c.Warning(c.Validate("[09.01]")))
}

func TestCodec_Formatting(t *testing.T) {
	c := engine.NewCodec(2025, engine.EnglishLocale{})
	dates := c.Decode("[06/07/08/09/10.01]")

	assert.Equal(t, "5 dates", c.Format(dates, "count"))
	assert.Equal(t, "06.01 - 10.01 (5)", c.Format(dates, "short"))
	assert.Equal(t, "[06-10.01]", c.FormatRanges(dates))
}
