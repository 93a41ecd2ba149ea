// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/dynq/internal/locale"
)

func TestParseInvariant(t *testing.T) {
	for _, tag := range []string{"", " ", "und", "Invariant"} {
		l, err := locale.Parse(tag)
		require.NoError(t, err)
		assert.Equal(t, locale.Invariant, l)
	}
}

func TestParseError(t *testing.T) {
	_, err := locale.Parse("12-34")
	assert.ErrorContains(t, err, `cannot parse locale "12-34"`)
}

func TestConventions(t *testing.T) {
	tests := []struct {
		tag     string
		decimal rune
		group   rune
		layout  string
		padded  string
	}{
		{"en-US", '.', ',', "1/2/2006", "01/02/2006"},
		{"en-GB", '.', ',', "2/1/2006", "02/01/2006"},
		{"de-DE", ',', '.', "2.1.2006", "02.01.2006"},
		{"ja-JP", '.', ',', "2006/1/2", "2006/01/02"},
		{"nl-NL", ',', '.', "2-1-2006", "02-01-2006"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			l, err := locale.Parse(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, string(tt.decimal), string(l.Decimal))
			assert.Equal(t, string(tt.group), string(l.Group))
			assert.Equal(t, tt.layout, l.DateLayout())
			assert.Equal(t, tt.padded, l.PaddedDateLayout())
			assert.Equal(t, tt.tag, l.String())
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	de, err := locale.Parse("de-DE")
	require.NoError(t, err)
	assert.Equal(t, "1234.5", de.NormalizeNumber(" 1.234,5 "))
	assert.Equal(t, "-12.25", de.NormalizeNumber("-12,25"))

	us, err := locale.Parse("en-US")
	require.NoError(t, err)
	assert.Equal(t, "1234.5", us.NormalizeNumber("1,234.5"))

	assert.Equal(t, "1234.5", locale.Invariant.NormalizeNumber("1,234.5"))
}

func TestNormalizeNumberForeignDecimalPoint(t *testing.T) {
	l := locale.Locale{Decimal: ',', Group: ' '}
	assert.Equal(t, "1x5", l.NormalizeNumber("1.5"))
	assert.Equal(t, "1234.5", l.NormalizeNumber("1 234,5"))
}

func TestLocalizeNumber(t *testing.T) {
	de, err := locale.Parse("de-DE")
	require.NoError(t, err)
	assert.Equal(t, "1234,5", de.LocalizeNumber("1234.5"))
	assert.Equal(t, "1234.5", locale.Invariant.LocalizeNumber("1234.5"))
}
