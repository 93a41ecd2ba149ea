// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlsource

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/canonical/dynq/internal/coerce"
	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/schema"
)

// decode sets the fields of item from one row of column values. Pointer
// hops are only allocated for non-NULL values, so a nested struct whose
// columns are all NULL stays nil.
func decode(item reflect.Value, columns []*schema.Path, values []any) error {
	for i, col := range columns {
		src := values[i]
		if src == nil {
			continue
		}
		dst := locate(item, col.Hops)
		if err := assign(dst, col, src); err != nil {
			return fmt.Errorf("column %q: %w", col.Column(), err)
		}
	}
	return nil
}

// locate returns the settable leaf field of hops, allocating nil pointers
// to structs on the way.
func locate(v reflect.Value, hops []schema.Field) reflect.Value {
	for _, h := range hops {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(h.Index)
	}
	return v
}

var invariant = coerce.Parser{Locale: locale.Invariant}

// assign converts a driver value into the leaf field dst.
func assign(dst reflect.Value, col *schema.Path, src any) error {
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), col, src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if b, ok := src.([]byte); ok {
		src = string(b)
	}

	switch col.Kind {
	case schema.Int, schema.Enum:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		switch dst.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			dst.SetUint(uint64(n))
		default:
			dst.SetInt(n)
		}
	case schema.Uint:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		dst.SetUint(uint64(n))
	case schema.Float:
		f, err := toFloat64(src)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	case schema.Decimal:
		d := dst.Addr().Interface().(*apd.Decimal)
		if f, ok := src.(float64); ok {
			if _, err := d.SetFloat64(f); err != nil {
				return err
			}
			return nil
		}
		return d.Scan(src)
	case schema.Bool:
		switch v := src.(type) {
		case bool:
			dst.SetBool(v)
		case int64:
			dst.SetBool(v != 0)
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			dst.SetBool(b)
		default:
			return fmt.Errorf("cannot convert %T to bool", src)
		}
	case schema.Char:
		switch v := src.(type) {
		case string:
			r, _ := utf8.DecodeRuneInString(v)
			dst.SetInt(int64(r))
		case int64:
			dst.SetInt(v)
		default:
			return fmt.Errorf("cannot convert %T to rune", src)
		}
	case schema.String:
		switch v := src.(type) {
		case string:
			dst.SetString(v)
		default:
			dst.SetString(fmt.Sprint(v))
		}
	case schema.Date, schema.DateTime, schema.DateTimeOffset, schema.Clock:
		t, err := toTime(src, col.Kind)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
	case schema.Duration:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		dst.SetInt(n)
	default:
		return fmt.Errorf("unsupported property kind %s", col.Kind)
	}
	return nil
}

func toInt64(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", src)
}

func toFloat64(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("cannot convert %T to float", src)
}

func toTime(src any, kind schema.Kind) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		switch kind {
		case schema.Date:
			return coerce.DateOf(v), nil
		case schema.Clock:
			return time.Time{}.Add(coerce.ClockOf(v)), nil
		}
		return v, nil
	case string:
		parsed, ok := invariant.Parse(v, kind, nil)
		if !ok {
			return time.Time{}, fmt.Errorf("cannot parse %q as %s", v, kind)
		}
		if d, ok := parsed.(time.Duration); ok {
			return time.Time{}.Add(d), nil
		}
		return parsed.(time.Time), nil
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to time", src)
}
