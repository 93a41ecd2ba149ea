// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package locale derives the number and date conventions used to parse
// and format filter values from a BCP 47 language tag.
package locale

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Order is the order of the day, month and year fields in a short date.
type Order int

const (
	MDY Order = iota
	DMY
	YMD
)

// Locale holds the conventions of one language tag.
type Locale struct {
	Tag language.Tag

	// Decimal is the decimal separator.
	Decimal rune

	// Group is the digit grouping separator.
	Group rune

	// Order is the short date field order.
	Order Order

	// DateSep separates the fields of a short date.
	DateSep string

	// Dates names the monday locale holding the date layouts and the
	// month and day names of the tag, if monday knows the language.
	Dates monday.Locale
}

// Invariant is the culture-neutral locale used when no tag is given.
var Invariant = Locale{
	Tag:     language.Und,
	Decimal: '.',
	Group:   ',',
	Order:   MDY,
	DateSep: "/",
}

var cache sync.Map

// Parse returns the Locale for a BCP 47 tag. An empty tag yields
// Invariant.
func Parse(tag string) (Locale, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, "und") || strings.EqualFold(tag, "invariant") {
		return Invariant, nil
	}
	if l, ok := cache.Load(tag); ok {
		return l.(Locale), nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Locale{}, fmt.Errorf("cannot parse locale %q: %w", tag, err)
	}
	l := derive(t)
	cache.Store(tag, l)
	return l, nil
}

// derive builds the Locale of t. Number separators are read back from a
// formatted sample so they follow the CLDR data in x/text.
func derive(t language.Tag) Locale {
	l := Locale{Tag: t, Decimal: '.', Group: ','}

	p := message.NewPrinter(t)
	sample := p.Sprint(number.Decimal(12345678.5, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
	var seps []rune
	for _, r := range sample {
		if !unicode.IsDigit(r) {
			seps = append(seps, r)
		}
	}
	switch len(seps) {
	case 0:
	case 1:
		l.Decimal = seps[0]
		l.Group = 0
	default:
		l.Group = seps[0]
		l.Decimal = seps[len(seps)-1]
	}
	if l.Group == l.Decimal {
		l.Group = 0
	}

	l.Order, l.DateSep = DMY, "/"
	l.Dates = datesLocale(t)
	if l.Dates != "" {
		if order, sep, ok := convention(monday.ShortFormatsByLocale[l.Dates]); ok {
			l.Order, l.DateSep = order, sep
		}
	}
	return l
}

// datesLocale returns the monday locale for t: its own region first,
// then the most likely region of its language. It is empty when monday
// has no conventions for the language.
func datesLocale(t language.Tag) monday.Locale {
	base, _ := t.Base()
	region, _ := t.Region()
	if l := monday.Locale(base.String() + "_" + region.String()); known(l) {
		return l
	}
	likely, _ := language.Make(base.String()).Region()
	if l := monday.Locale(base.String() + "_" + likely.String()); known(l) {
		return l
	}
	return ""
}

func known(l monday.Locale) bool {
	_, ok := monday.ShortFormatsByLocale[l]
	return ok
}

var fieldTokens = []struct {
	token string
	field byte
}{
	{"2006", 'y'}, {"January", 'm'}, {"Jan", 'm'}, {"01", 'm'}, {"02", 'd'},
	{"_2", 'd'}, {"06", 'y'}, {"1", 'm'}, {"2", 'd'},
}

// convention reads the field order and the separator of a short date
// layout such as "02.01.06". It fails for layouts that do not hold each
// of day, month and year once, or that separate them with letters only.
func convention(layout string) (Order, string, bool) {
	var fields []byte
	sep := ""
next:
	for i := 0; i < len(layout); {
		for _, ft := range fieldTokens {
			if strings.HasPrefix(layout[i:], ft.token) {
				fields = append(fields, ft.field)
				i += len(ft.token)
				continue next
			}
		}
		r, size := utf8.DecodeRuneInString(layout[i:])
		if sep == "" && len(fields) == 1 && !unicode.IsSpace(r) && !unicode.IsLetter(r) {
			sep = string(r)
		}
		i += size
	}
	if sep == "" {
		return 0, "", false
	}
	switch string(fields) {
	case "mdy":
		return MDY, sep, true
	case "dmy":
		return DMY, sep, true
	case "ymd":
		return YMD, sep, true
	}
	return 0, "", false
}

// DateLayout returns the short date layout of l, e.g. "1/2/2006".
func (l Locale) DateLayout() string {
	s := l.DateSep
	switch l.Order {
	case DMY:
		return "2" + s + "1" + s + "2006"
	case YMD:
		return "2006" + s + "1" + s + "2"
	}
	return "1" + s + "2" + s + "2006"
}

// NamedDateLayouts returns the long and medium date layouts of l, which
// spell out month names. They are parsed with ParseNamedDate.
func (l Locale) NamedDateLayouts() []string {
	if l.Dates == "" {
		return nil
	}
	var layouts []string
	for _, formats := range []map[monday.Locale]string{monday.LongFormatsByLocale, monday.MediumFormatsByLocale} {
		if layout, ok := formats[l.Dates]; ok {
			layouts = append(layouts, layout)
		}
	}
	return layouts
}

// ParseNamedDate parses s with a layout from NamedDateLayouts, reading
// month and day names in the language of l.
func (l Locale) ParseNamedDate(layout, s string, loc *time.Location) (time.Time, error) {
	return monday.ParseInLocation(layout, s, loc, l.Dates)
}

// PaddedDateLayout is DateLayout with zero padded day and month, used for
// formatting.
func (l Locale) PaddedDateLayout() string {
	s := l.DateSep
	switch l.Order {
	case DMY:
		return "02" + s + "01" + s + "2006"
	case YMD:
		return "2006" + s + "01" + s + "02"
	}
	return "01" + s + "02" + s + "2006"
}

// NormalizeNumber rewrites a localized number into the form accepted by
// strconv and apd: group separators dropped and the decimal separator
// replaced by '.'.
func (l Locale) NormalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case l.Group != 0 && r == l.Group:
		case l.Group != 0 && unicode.IsSpace(l.Group) && unicode.IsSpace(r):
		case r == l.Decimal:
			b.WriteByte('.')
		case r == '.' && l.Decimal != '.':
			// Not a separator in this locale; keep the number unparsable.
			b.WriteByte('x')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LocalizeNumber rewrites a number formatted by strconv or apd so that it
// uses the decimal separator of l.
func (l Locale) LocalizeNumber(s string) string {
	if l.Decimal == '.' {
		return s
	}
	return strings.Replace(s, ".", string(l.Decimal), 1)
}

func (l Locale) String() string {
	return l.Tag.String()
}
