// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package coerce_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/goodsign/monday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/dynq/internal/coerce"
	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/schema"
)

type mood int

func init() {
	if err := schema.RegisterEnum(reflect.TypeOf(mood(0)), []schema.Member{
		{Name: "Calm", Value: 0}, {Name: "Angry", Value: 1},
	}); err != nil {
		panic(err)
	}
}

var (
	int8Type     = reflect.TypeOf(int8(0))
	int64Type    = reflect.TypeOf(int64(0))
	uint16Type   = reflect.TypeOf(uint16(0))
	float32Type  = reflect.TypeOf(float32(0))
	float64Type  = reflect.TypeOf(float64(0))
	stringType   = reflect.TypeOf("")
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	decimalType  = reflect.TypeOf(apd.Decimal{})
	moodType     = reflect.TypeOf(mood(0))
)

func mustLocale(t *testing.T, tag string) locale.Locale {
	l, err := locale.Parse(tag)
	require.NoError(t, err)
	return l
}

func TestParseScalars(t *testing.T) {
	p := coerce.Parser{Locale: locale.Invariant}
	tests := []struct {
		raw  string
		kind schema.Kind
		t    reflect.Type
		want any
	}{
		{"42", schema.Int, int64Type, int64(42)},
		{"+7", schema.Int, int64Type, int64(7)},
		{"1,000", schema.Int, int64Type, int64(1000)},
		{"-128", schema.Int, int8Type, int64(-128)},
		{"65535", schema.Uint, uint16Type, uint64(65535)},
		{"2.5", schema.Float, float64Type, 2.5},
		{" tRuE ", schema.Bool, nil, true},
		{"False", schema.Bool, nil, false},
		{"xyz", schema.Char, nil, 'x'},
		{"  spaced ", schema.String, stringType, "  spaced "},
		{"angry", schema.Enum, moodType, int64(1)},
		{"0", schema.Enum, moodType, int64(0)},
	}
	for _, tt := range tests {
		got, ok := p.Parse(tt.raw, tt.kind, tt.t)
		require.True(t, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestParseFailures(t *testing.T) {
	p := coerce.Parser{Locale: locale.Invariant}
	tests := []struct {
		raw  string
		kind schema.Kind
		t    reflect.Type
	}{
		{"abc", schema.Int, int64Type},
		{"128", schema.Int, int8Type},
		{"-1", schema.Uint, uint16Type},
		{"70000", schema.Uint, uint16Type},
		{"1e400", schema.Float, float64Type},
		{"yes", schema.Bool, nil},
		{"", schema.Char, nil},
		{"Sad", schema.Enum, moodType},
		{"NaN", schema.Decimal, decimalType},
		{"2021-13-01", schema.Date, timeType},
		{"25:00", schema.Clock, timeType},
		{"soon", schema.Duration, durationType},
	}
	for _, tt := range tests {
		_, ok := p.Parse(tt.raw, tt.kind, tt.t)
		assert.False(t, ok, tt.raw)
	}
}

func TestParseLocalizedNumbers(t *testing.T) {
	p := coerce.Parser{Locale: mustLocale(t, "de-DE")}

	got, ok := p.Parse("1.234,5", schema.Float, float64Type)
	require.True(t, ok)
	assert.Equal(t, 1234.5, got)

	got, ok = p.Parse("1.200,50", schema.Decimal, decimalType)
	require.True(t, ok)
	assert.Equal(t, "1200.50", got.(*apd.Decimal).String())
}

func TestParseFloat32(t *testing.T) {
	p := coerce.Parser{Locale: locale.Invariant}
	got, ok := p.Parse("0.1", schema.Float, float32Type)
	require.True(t, ok)
	assert.Equal(t, float64(float32(0.1)), got)
}

func TestParseDates(t *testing.T) {
	utc := func(y int, m time.Month, d, h, mi int) time.Time {
		return time.Date(y, m, d, h, mi, 0, 0, time.UTC)
	}
	us := coerce.Parser{Locale: mustLocale(t, "en-US")}
	gb := coerce.Parser{Locale: mustLocale(t, "en-GB")}

	got, ok := us.Parse("2021-06-01", schema.Date, timeType)
	require.True(t, ok)
	assert.Equal(t, utc(2021, 6, 1, 0, 0), got)

	got, ok = us.Parse("6/1/2021", schema.Date, timeType)
	require.True(t, ok)
	assert.Equal(t, utc(2021, 6, 1, 0, 0), got)

	got, ok = gb.Parse("6/1/2021", schema.Date, timeType)
	require.True(t, ok)
	assert.Equal(t, utc(2021, 1, 6, 0, 0), got)

	got, ok = us.Parse("2021-06-01T10:30:00Z", schema.Date, timeType)
	assert.False(t, ok, "a date does not accept a time")

	got, ok = gb.Parse("06/01/2021 10:30", schema.DateTime, timeType)
	require.True(t, ok)
	assert.Equal(t, utc(2021, 1, 6, 10, 30), got)

	got, ok = us.Parse("2021-06-01T10:30:00+02:00", schema.DateTimeOffset, timeType)
	require.True(t, ok)
	assert.True(t, utc(2021, 6, 1, 8, 30).Equal(got.(time.Time)))
	_, offset := got.(time.Time).Zone()
	assert.Equal(t, 2*60*60, offset)
}

func TestParseNamedMonthDates(t *testing.T) {
	de := coerce.Parser{Locale: mustLocale(t, "de-DE")}
	want := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	long := monday.Format(want, monday.LongFormatsByLocale[monday.LocaleDeDE], monday.LocaleDeDE)
	got, ok := de.Parse(long, schema.Date, timeType)
	require.True(t, ok, long)
	assert.Equal(t, want, got)

	_, ok = coerce.Parser{Locale: locale.Invariant}.Parse(long, schema.Date, timeType)
	assert.False(t, ok)
}

func TestParseExactLayout(t *testing.T) {
	p := coerce.Parser{Locale: locale.Invariant, Layout: "02 Jan 06"}
	got, ok := p.Parse("14 Mar 90", schema.Date, timeType)
	require.True(t, ok)
	assert.Equal(t, time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC), got)
}

func TestParseOverrideLocation(t *testing.T) {
	loc := time.FixedZone("east", 3*60*60)
	p := coerce.Parser{Locale: locale.Invariant, Override: loc}

	got, ok := p.Parse("2021-06-01 12:00:00", schema.DateTime, timeType)
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 6, 1, 12, 0, 0, 0, loc), got)

	got, ok = p.Parse("2021-06-01 12:00:00", schema.DateTimeOffset, timeType)
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC), got)
}

func TestParseClockAndDuration(t *testing.T) {
	p := coerce.Parser{Locale: locale.Invariant}

	got, ok := p.Parse("09:30", schema.Clock, timeType)
	require.True(t, ok)
	assert.Equal(t, 9*time.Hour+30*time.Minute, got)

	got, ok = p.Parse("2:15 PM", schema.Clock, timeType)
	require.True(t, ok)
	assert.Equal(t, 14*time.Hour+15*time.Minute, got)

	tests := map[string]time.Duration{
		"01:30:00":           90 * time.Minute,
		"30.00:00:00":        720 * time.Hour,
		"-00:00:01.5":        -1500 * time.Millisecond,
		"1.02:03:04.0000001": 26*time.Hour + 3*time.Minute + 4*time.Second + 100,
		"1h30m":              90 * time.Minute,
	}
	for raw, want := range tests {
		got, ok := p.Parse(raw, schema.Duration, durationType)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"24:00:00", "00:60", "1:2:3:4", "00:00.5"} {
		_, ok := p.Parse(raw, schema.Duration, durationType)
		assert.False(t, ok, raw)
	}
}

func TestFormat(t *testing.T) {
	f := coerce.Formatter{Locale: mustLocale(t, "en-GB")}
	d, _, err := apd.NewFromString("1200.50")
	require.NoError(t, err)
	at := time.Date(1990, time.March, 14, 8, 15, 0, 0, time.FixedZone("", 2*60*60))

	tests := []struct {
		v    any
		kind schema.Kind
		t    reflect.Type
		want string
	}{
		{int64(-5), schema.Int, int64Type, "-5"},
		{uint64(5), schema.Uint, uint16Type, "5"},
		{0.1, schema.Float, float64Type, "0.1"},
		{float64(float32(0.1)), schema.Float, float32Type, "0.1"},
		{d, schema.Decimal, decimalType, "1200.50"},
		{true, schema.Bool, nil, "True"},
		{false, schema.Bool, nil, "False"},
		{'g', schema.Char, nil, "g"},
		{int64(1), schema.Enum, moodType, "Angry"},
		{int64(9), schema.Enum, moodType, "9"},
		{coerce.DateOf(at), schema.Date, timeType, "14/03/1990"},
		{at, schema.DateTime, timeType, "14/03/1990 08:15:00"},
		{at, schema.DateTimeOffset, timeType, "14/03/1990 08:15:00 +02:00"},
		{9*time.Hour + 5*time.Minute, schema.Clock, timeType, "09:05"},
		{26 * time.Hour, schema.Duration, durationType, "1.02:00:00"},
		{nil, schema.String, stringType, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Format(tt.v, tt.kind, tt.t))
	}

	de := coerce.Formatter{Locale: mustLocale(t, "de-DE")}
	assert.Equal(t, "2,5", de.Format(2.5, schema.Float, float64Type))
	assert.Equal(t, "14.03.1990", de.Format(coerce.DateOf(at), schema.Date, timeType))

	layout := coerce.Formatter{Locale: locale.Invariant, Layout: "%05d"}
	assert.Equal(t, "00042", layout.Format(int64(42), schema.Int, int64Type))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", coerce.FormatDuration(0))
	assert.Equal(t, "-00:01:30", coerce.FormatDuration(-90*time.Second))
	assert.Equal(t, "00:00:01.5000000", coerce.FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "90.00:00:00", coerce.FormatDuration(2160*time.Hour))
}

func TestCompare(t *testing.T) {
	one, _, _ := apd.NewFromString("1.0")
	two, _, _ := apd.NewFromString("2")
	tests := []struct {
		a, b any
		want int
	}{
		{int64(1), int64(2), -1},
		{uint64(3), uint64(3), 0},
		{2.5, 1.5, 1},
		{'a', 'b', -1},
		{"b", "a", 1},
		{false, true, -1},
		{true, false, 1},
		{time.Hour, time.Minute, 1},
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 1, 0, 0, 0, time.FixedZone("", 3600)), 0},
		{one, two, -1},
	}
	for _, tt := range tests {
		got, err := coerce.Compare(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v %v", tt.a, tt.b)
	}
	_, err := coerce.Compare(int64(1), "1")
	assert.ErrorContains(t, err, "cannot compare int64 with string")
}

type sample struct {
	Small int8
	Mood  mood
	Price apd.Decimal
	When  time.Time
}

func TestNormalize(t *testing.T) {
	price, _, _ := apd.NewFromString("9.99")
	s := sample{Small: -3, Mood: 1, Price: *price, When: time.Date(2020, 5, 6, 7, 8, 9, 10, time.UTC)}
	v := reflect.ValueOf(s)

	got, err := coerce.Normalize(v.Field(0), schema.Int)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), got)

	got, err = coerce.Normalize(v.Field(1), schema.Enum)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = coerce.Normalize(v.Field(2), schema.Decimal)
	require.NoError(t, err)
	assert.Equal(t, "9.99", got.(*apd.Decimal).String())

	got, err = coerce.Normalize(v.Field(3), schema.Date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 5, 6, 0, 0, 0, 0, time.UTC), got)

	got, err = coerce.Normalize(v.Field(3), schema.Clock)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Hour+8*time.Minute+9*time.Second+10, got)

	_, err = coerce.Normalize(v.Field(3), schema.Struct)
	assert.Error(t, err)
}

func TestSentinel(t *testing.T) {
	assert.Equal(t, int64(math.MinInt8), coerce.Sentinel(schema.Int, int8Type, true))
	assert.Equal(t, int64(0), coerce.Sentinel(schema.Int, int8Type, false))
	assert.Equal(t, -float64(math.MaxFloat32), coerce.Sentinel(schema.Float, float32Type, true))
	assert.Equal(t, time.Duration(math.MinInt64), coerce.Sentinel(schema.Duration, durationType, true))
	assert.Equal(t, "-79228162514264337593543950335", coerce.Sentinel(schema.Decimal, decimalType, true).(*apd.Decimal).String())
	assert.Equal(t, "0", coerce.Sentinel(schema.Decimal, decimalType, false).(*apd.Decimal).String())
	assert.Equal(t, time.Time{}, coerce.Sentinel(schema.DateTime, timeType, true))
}
