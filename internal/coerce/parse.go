// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package coerce

import (
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/schema"
)

// Parser parses textual filter values.
type Parser struct {
	Locale locale.Locale

	// Layout, if set, is tried before the locale's free-form layouts for
	// temporal kinds.
	Layout string

	// Override re-stamps the wall clock of parsed DateTime values in this
	// location.
	Override *time.Location
}

// Parse converts raw to the normalized value of kind. The type t is the
// non-pointer property type and bounds integer widths and enum names.
// The boolean result is false if raw cannot be parsed.
func (p Parser) Parse(raw string, kind schema.Kind, t reflect.Type) (any, bool) {
	switch kind {
	case schema.String:
		return raw, true
	case schema.Char:
		r, size := utf8.DecodeRuneInString(raw)
		if size == 0 || r == utf8.RuneError {
			return nil, false
		}
		return r, true
	case schema.Bool:
		switch s := strings.TrimSpace(raw); {
		case strings.EqualFold(s, "true"):
			return true, true
		case strings.EqualFold(s, "false"):
			return false, true
		}
		return nil, false
	case schema.Int:
		v, err := strconv.ParseInt(p.number(raw), 10, t.Bits())
		return v, err == nil
	case schema.Uint:
		v, err := strconv.ParseUint(p.number(raw), 10, t.Bits())
		return v, err == nil
	case schema.Float:
		v, err := strconv.ParseFloat(p.number(raw), t.Bits())
		return v, err == nil
	case schema.Decimal:
		d, _, err := apd.NewFromString(p.number(raw))
		if err != nil || d.Form != apd.Finite {
			return nil, false
		}
		return d, true
	case schema.Enum:
		s := strings.TrimSpace(raw)
		if v, ok := schema.EnumValue(t, s); ok {
			return v, true
		}
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	case schema.Date:
		v, ok := p.parseTime(raw, p.dateLayouts())
		if !ok {
			v, ok = p.parseNamedDate(raw)
		}
		if !ok {
			return nil, false
		}
		return DateOf(v), true
	case schema.DateTime:
		v, ok := p.parseTime(raw, p.dateTimeLayouts())
		if !ok {
			return nil, false
		}
		if p.Override != nil {
			v = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), p.Override)
		}
		return v, true
	case schema.DateTimeOffset:
		v, ok := p.parseTime(raw, p.dateTimeLayouts())
		return v, ok
	case schema.Clock:
		v, ok := p.parseTime(raw, clockLayouts)
		if !ok {
			return nil, false
		}
		return ClockOf(v), true
	case schema.Duration:
		return p.parseDuration(raw)
	}
	return nil, false
}

// number normalizes a localized number for strconv and apd.
func (p Parser) number(raw string) string {
	s := p.Locale.NormalizeNumber(raw)
	return strings.TrimPrefix(s, "+")
}

func (p Parser) parseTime(raw string, layouts []string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if p.Layout != "" {
		if v, err := time.ParseInLocation(p.Layout, s, time.UTC); err == nil {
			return v, true
		}
	}
	for _, layout := range layouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

var isoDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
}

// parseNamedDate parses dates that spell out the month, such as
// "1. Juni 2021", with the long and medium layouts of the locale.
func (p Parser) parseNamedDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range p.Locale.NamedDateLayouts() {
		if v, err := p.Locale.ParseNamedDate(layout, s, time.UTC); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

func (p Parser) dateLayouts() []string {
	return []string{"2006-01-02", p.Locale.DateLayout()}
}

func (p Parser) dateTimeLayouts() []string {
	d := p.Locale.DateLayout()
	layouts := append([]string(nil), isoDateTimeLayouts...)
	layouts = append(layouts, d)
	for _, c := range clockLayouts {
		layouts = append(layouts, d+" "+c, d+" "+c+" Z07:00", d+" "+c+" -07:00")
	}
	return layouts
}

// parseDuration accepts the constant form [-][d.]hh:mm:ss[.fffffff], Go
// duration strings such as "1h30m", and the exact layout if one is set.
func (p Parser) parseDuration(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if p.Layout != "" {
		if v, err := time.ParseInLocation(p.Layout, s, time.UTC); err == nil {
			return v.Sub(time.Date(v.Year(), 1, 1, 0, 0, 0, 0, time.UTC)), true
		}
	}
	if d, ok := parseConstantDuration(s); ok {
		return d, true
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	return nil, false
}

func parseConstantDuration(s string) (time.Duration, bool) {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var days int64
	if head, rest, ok := strings.Cut(s, "."); ok && !strings.Contains(head, ":") {
		d, err := strconv.ParseInt(head, 10, 32)
		if err != nil {
			return 0, false
		}
		days, s = d, rest
	}
	var frac string
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s, frac = s[:i], s[i+1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	limits := []int64{23, 59, 59}
	var fields [3]int64
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 32)
		if err != nil || v < 0 || v > limits[i] {
			return 0, false
		}
		fields[i] = v
	}
	d := time.Duration(days)*24*time.Hour + time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute + time.Duration(fields[2])*time.Second
	if frac != "" {
		if len(frac) > 9 || len(parts) != 3 {
			return 0, false
		}
		n, err := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, false
		}
		d += time.Duration(n)
	}
	if neg {
		d = -d
	}
	return d, true
}
