// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package coerce

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/schema"
)

// Formatter renders normalized values as text.
type Formatter struct {
	Locale locale.Locale

	// Layout is a time layout for temporal kinds or a fmt verb for
	// numeric kinds.
	Layout string
}

// Format renders v, a normalized value of kind, as text. The type t is the
// non-pointer property type.
func (f Formatter) Format(v any, kind schema.Kind, t reflect.Type) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case int64:
		if kind == schema.Enum {
			return schema.EnumName(t, x)
		}
		if f.Layout != "" {
			return fmt.Sprintf(f.Layout, x)
		}
		return strconv.FormatInt(x, 10)
	case uint64:
		if f.Layout != "" {
			return fmt.Sprintf(f.Layout, x)
		}
		return strconv.FormatUint(x, 10)
	case float64:
		if f.Layout != "" {
			return f.Locale.LocalizeNumber(fmt.Sprintf(f.Layout, x))
		}
		bits := 64
		if t != nil && t.Kind() == reflect.Float32 {
			bits = 32
		}
		return f.Locale.LocalizeNumber(strconv.FormatFloat(x, 'f', -1, bits))
	case *apd.Decimal:
		if f.Layout != "" {
			return f.Locale.LocalizeNumber(fmt.Sprintf(f.Layout, x))
		}
		return f.Locale.LocalizeNumber(x.Text('f'))
	case bool:
		if x {
			return "True"
		}
		return "False"
	case rune:
		return string(x)
	case string:
		return x
	case time.Time:
		return f.formatTime(x, kind)
	case time.Duration:
		if kind == schema.Clock {
			layout := f.Layout
			if layout == "" {
				layout = "15:04"
			}
			return time.Time{}.Add(x).Format(layout)
		}
		if f.Layout != "" {
			return time.Time{}.Add(x).Format(f.Layout)
		}
		return FormatDuration(x)
	}
	return fmt.Sprint(v)
}

func (f Formatter) formatTime(t time.Time, kind schema.Kind) string {
	if f.Layout != "" {
		return t.Format(f.Layout)
	}
	layout := f.Locale.PaddedDateLayout()
	switch kind {
	case schema.DateTime:
		layout += " 15:04:05"
	case schema.DateTimeOffset:
		layout += " 15:04:05 -07:00"
	}
	return t.Format(layout)
}

// FormatDuration renders d in the constant form [-][d.]hh:mm:ss[.fffffff].
func FormatDuration(d time.Duration) string {
	var sign string
	u := uint64(d)
	if d < 0 {
		sign = "-"
		u = -u
	}
	ns := u % uint64(time.Second)
	secs := u / uint64(time.Second)
	days := secs / 86400
	secs %= 86400
	s := fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	if days > 0 {
		s = strconv.FormatUint(days, 10) + "." + s
	}
	if ns > 0 {
		s += fmt.Sprintf(".%07d", ns/100)
	}
	return sign + s
}
