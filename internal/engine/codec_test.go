package engine_test

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-compactdates/internal/config"
	"github.com/tartampluch/go-compactdates/internal/engine"
)

func date(y int, m time.Month, d int) engine.CalendarDate {
	return engine.CalendarDate{Year: y, Month: m, Day: d}
}

func TestEncode_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		dates []engine.CalendarDate
		want  string
	}{
		{
			name:  "weekly bookings in January",
			dates: []engine.CalendarDate{date(2025, 1, 9), date(2025, 1, 16), date(2025, 1, 23), date(2025, 1, 30)},
			want:  "[09/16/23/30.01]",
		},
		{
			name:  "unsorted input across two months",
			dates: []engine.CalendarDate{date(2025, 2, 6), date(2025, 1, 9), date(2025, 2, 13)},
			want:  "[09.01, 06/13.02]",
		},
		{
			name:  "empty input",
			dates: nil,
			want:  "",
		},
		{
			name:  "only invalid dates",
			dates: []engine.CalendarDate{{}, date(2025, 2, 30), date(2025, 13, 1)},
			want:  "",
		},
		{
			name:  "invalid dates are filtered out",
			dates: []engine.CalendarDate{date(2025, 4, 31), date(2025, 4, 30), {}},
			want:  "[30.04]",
		},
		{
			name:  "months ordered regardless of input order",
			dates: []engine.CalendarDate{date(2025, 12, 1), date(2025, 3, 10), date(2025, 4, 3), date(2025, 3, 3)},
			want:  "[03/10.03, 03.04, 01.12]",
		},
		{
			name:  "same month across years collapses into one group",
			dates: []engine.CalendarDate{date(2026, 1, 9), date(2025, 1, 9), date(2025, 1, 2)},
			want:  "[02/09.01]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Encode(tt.dates))
		})
	}
}

func TestEncode_DeduplicatesDays(t *testing.T) {
	got := engine.Encode([]engine.CalendarDate{date(2025, 1, 9), date(2025, 1, 9), date(2025, 1, 16)})

	assert.Equal(t, "[09/16.01]", got)
	assert.Equal(t, 1, strings.Count(got, "09"), "Duplicate day must appear once in the .01 group")
}

func TestEncode_DoesNotReorderCallerSlice(t *testing.T) {
	in := []engine.CalendarDate{date(2025, 2, 6), date(2025, 1, 9)}
	_ = engine.Encode(in)
	assert.Equal(t, date(2025, 2, 6), in[0])
}

func TestDecode_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		year  int
		want  []engine.CalendarDate
	}{
		{
			name:  "two full months",
			input: "[09/16/23/30.01, 06/13/20/27.02]",
			year:  2025,
			want: []engine.CalendarDate{
				date(2025, 1, 9), date(2025, 1, 16), date(2025, 1, 23), date(2025, 1, 30),
				date(2025, 2, 6), date(2025, 2, 13), date(2025, 2, 20), date(2025, 2, 27),
			},
		},
		{
			name:  "brackets are optional",
			input: "09/16.01",
			year:  2025,
			want:  []engine.CalendarDate{date(2025, 1, 9), date(2025, 1, 16)},
		},
		{
			name:  "whitespace and empty groups are tolerated",
			input: "  [ 03.04 ,, 10 / 11.04 , ]  ",
			year:  2025,
			want:  []engine.CalendarDate{date(2025, 4, 3), date(2025, 4, 10), date(2025, 4, 11)},
		},
		{
			name:  "groups out of order are sorted and merged",
			input: "[05.02, 09/05.01, 05.02]",
			year:  2025,
			want:  []engine.CalendarDate{date(2025, 1, 5), date(2025, 1, 9), date(2025, 2, 5)},
		},
		{
			name:  "partial decode drops invalid month",
			input: "[09/16.01, garbage.13, 05.02]",
			year:  2025,
			want:  []engine.CalendarDate{date(2025, 1, 9), date(2025, 1, 16), date(2025, 2, 5)},
		},
		{
			name:  "February 31 does not exist",
			input: "[31.02]",
			year:  2025,
			want:  []engine.CalendarDate{},
		},
		{
			name:  "leap day accepted in a leap year",
			input: "[29.02]",
			year:  2024,
			want:  []engine.CalendarDate{date(2024, 2, 29)},
		},
		{
			name:  "leap day dropped in a common year",
			input: "[28/29.02]",
			year:  2025,
			want:  []engine.CalendarDate{date(2025, 2, 28)},
		},
		{
			name:  "garbage",
			input: "not a valid string",
			year:  2025,
			want:  []engine.CalendarDate{},
		},
		{
			name:  "empty string",
			input: "",
			year:  2025,
			want:  []engine.CalendarDate{},
		},
		{
			name:  "empty brackets",
			input: "[]",
			year:  2025,
			want:  []engine.CalendarDate{},
		},
		{
			name:  "signed tokens are not digits",
			input: "[+9/-1/10.01, 05.+3]",
			year:  2025,
			want:  []engine.CalendarDate{date(2025, 1, 10)},
		},
		{
			name:  "out of range and non-numeric days",
			input: "[00/32/ab//15.03]",
			year:  2025,
			want:  []engine.CalendarDate{date(2025, 3, 15)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Decode(tt.input, tt.year)
			require.NotNil(t, got, "Decode must never return nil")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTryDecode_ReportsDroppedTokens(t *testing.T) {
	res, err := engine.TryDecode("[09/31.04, garbage.13, nodot, 05.02]", 2025)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrPartialDecode)
	assert.Equal(t, []engine.CalendarDate{date(2025, 2, 5), date(2025, 4, 9)}, res.Dates)
	assert.Equal(t, 4, res.TotalGroups)
	assert.Equal(t, 1, res.ParsedGroups)

	want := []engine.DroppedToken{
		{Group: "09/31.04", Token: "31", Reason: config.ReasonInvalidDate},
		{Group: "garbage.13", Token: "13", Reason: config.ReasonInvalidMonth},
		{Group: "nodot", Token: "nodot", Reason: config.ReasonMissingSeparator},
	}
	if diff := cmp.Diff(want, res.Dropped); diff != "" {
		t.Errorf("dropped tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTryDecode_SignedTokensAreDropped(t *testing.T) {
	res, err := engine.TryDecode("[+9.01, 05.+3]", 2025)

	require.ErrorIs(t, err, engine.ErrPartialDecode)
	assert.Empty(t, res.Dates)
	assert.Zero(t, res.ParsedGroups)

	want := []engine.DroppedToken{
		{Group: "+9.01", Token: "+9", Reason: config.ReasonInvalidDay},
		{Group: "05.+3", Token: "+3", Reason: config.ReasonInvalidMonth},
	}
	if diff := cmp.Diff(want, res.Dropped); diff != "" {
		t.Errorf("dropped tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodedDayCount(t *testing.T) {
	tests := []struct {
		name  string
		dates []engine.CalendarDate
		want  int
	}{
		{"empty", nil, 0},
		{"distinct days", []engine.CalendarDate{date(2025, 1, 9), date(2025, 1, 16)}, 2},
		{"duplicates", []engine.CalendarDate{date(2025, 1, 9), date(2025, 1, 9)}, 1},
		{"same day in two years", []engine.CalendarDate{date(2024, 3, 5), date(2025, 3, 5)}, 1},
		{"invalid dates ignored", []engine.CalendarDate{{Year: 2025, Month: 2, Day: 30}, date(2025, 2, 3)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.EncodedDayCount(tt.dates))
			assert.Len(t, engine.Decode(engine.Encode(tt.dates), 2024), tt.want,
				"Count must match the day tokens written by Encode")
		})
	}
}

func TestTryDecode_CleanInput(t *testing.T) {
	res, err := engine.TryDecode("[09/16.01]", 2025)

	require.NoError(t, err)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, 1, res.TotalGroups)
	assert.Equal(t, 1, res.ParsedGroups)
	assert.Len(t, res.Dates, 2)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTotal  int
		wantParsed int
		wantOK     bool
	}{
		{"canonical value", "[09/16.01, 06.02]", 2, 2, true},
		{"empty value", "", 0, 0, true},
		{"invalid month", "[09/16.01, garbage.13, 05.02]", 3, 2, false},
		{"one bad day spoils its group", "[09/31.04]", 1, 0, false},
		{"no separator", "hello", 1, 0, false},
		{"signed day is not a digit", "[+9.01]", 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := engine.Validate(tt.input, 2025)
			assert.Equal(t, tt.wantTotal, r.TotalGroups)
			assert.Equal(t, tt.wantParsed, r.ParsedGroups)
			assert.Equal(t, tt.wantOK, r.OK())
			if tt.wantOK {
				assert.Empty(t, r.Warning(nil))
			} else {
				assert.NotEmpty(t, r.Warning(nil))
			}
		})
	}
}

func TestValidationReport_WarningText(t *testing.T) {
	r := engine.Validate("[09/16.01, garbage.13, 05.02]", 2025)
	assert.Equal(t, "Only 2 of 3 date groups could be read; the rest were ignored.", r.Warning(engine.EnglishLocale{}))
}

// -----------------------------------------------------------------------------
// Properties
// -----------------------------------------------------------------------------

// randomDates draws up to n dates of one year, duplicates included.
func randomDates(r *rand.Rand, year, n int) []engine.CalendarDate {
	start := date(year, 1, 1)
	days := 365
	if date(year, 2, 29).Valid() {
		days = 366
	}
	out := make([]engine.CalendarDate, r.IntN(n+1))
	for i := range out {
		out[i] = start.AddDays(r.IntN(days))
	}
	return out
}

func TestProperty_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 300; i++ {
		year := 2020 + r.IntN(10)
		in := randomDates(r, year, 40)

		got := engine.Decode(engine.Encode(in), year)
		if diff := cmp.Diff(engine.Normalize(in), got); diff != "" {
			t.Fatalf("round trip failed for %v (-want +got):\n%s", in, diff)
		}
	}
}

func TestProperty_CanonicalReencode(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 300; i++ {
		year := 2020 + r.IntN(10)
		encoded := engine.Encode(randomDates(r, year, 40))
		assert.Equal(t, encoded, engine.Encode(engine.Decode(encoded, year)))
	}
}

func TestProperty_MonthOrdering(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 100; i++ {
		in := randomDates(r, 2025, 60)
		r.Shuffle(len(in), func(a, b int) { in[a], in[b] = in[b], in[a] })

		encoded := engine.Encode(in)
		if encoded == "" {
			continue
		}
		groups := strings.Split(strings.Trim(encoded, "[]"), ", ")
		prev := ""
		for _, g := range groups {
			month := g[strings.LastIndex(g, ".")+1:]
			assert.Greater(t, month, prev, "groups must be in ascending month order: %s", encoded)
			prev = month
		}
	}
}

func TestProperty_EmptyIdentity(t *testing.T) {
	assert.Equal(t, "", engine.Encode([]engine.CalendarDate{}))
	assert.Empty(t, engine.Decode("", 2025))
}
