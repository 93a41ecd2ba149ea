// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package coerce converts between textual filter values, struct field
// values and the normalized values compared by query expressions.
//
// Normalized values are:
//
//	Int, Enum           int64
//	Uint                uint64
//	Float               float64
//	Decimal             *apd.Decimal
//	Bool                bool
//	Char                rune
//	String              string
//	Date                time.Time at midnight UTC
//	DateTime            time.Time
//	DateTimeOffset      time.Time
//	Clock               time.Duration since midnight
//	Duration            time.Duration
package coerce

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/canonical/dynq/internal/schema"
)

// Normalize converts a non-pointer field value to its normalized form.
func Normalize(v reflect.Value, kind schema.Kind) (any, error) {
	switch kind {
	case schema.Int:
		return v.Int(), nil
	case schema.Enum:
		switch v.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(v.Uint()), nil
		}
		return v.Int(), nil
	case schema.Uint:
		return v.Uint(), nil
	case schema.Float:
		return v.Float(), nil
	case schema.Decimal:
		d := v.Interface().(apd.Decimal)
		return new(apd.Decimal).Set(&d), nil
	case schema.Bool:
		return v.Bool(), nil
	case schema.Char:
		return rune(v.Int()), nil
	case schema.String:
		return v.String(), nil
	case schema.Date:
		return DateOf(v.Interface().(time.Time)), nil
	case schema.DateTime, schema.DateTimeOffset:
		return v.Interface().(time.Time), nil
	case schema.Clock:
		return ClockOf(v.Interface().(time.Time)), nil
	case schema.Duration:
		return time.Duration(v.Int()), nil
	}
	return nil, fmt.Errorf("cannot normalize value of kind %s", kind)
}

// DateOf returns the wall-clock date of t at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockOf returns the wall-clock time of day of t.
func ClockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// Compare orders two normalized values of the same kind.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmpOrdered(x, y), nil
		}
	case uint64:
		if y, ok := b.(uint64); ok {
			return cmpOrdered(x, y), nil
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y), nil
		}
	case rune:
		if y, ok := b.(rune); ok {
			return cmpOrdered(x, y), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return cmpOrdered(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			}
			return 1, nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case *apd.Decimal:
		if y, ok := b.(*apd.Decimal); ok {
			return x.Cmp(y), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func cmpOrdered[T int64 | uint64 | float64 | rune | time.Duration](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// minDecimal is the lowest value of a 96-bit decimal.
var minDecimal, _, _ = apd.NewFromString("-79228162514264337593543950335")

// Sentinel returns the value a nullable member of the given kind is
// coalesced to before it is forced to a string. With minimum set it is the
// lowest value of the type, otherwise the zero value.
func Sentinel(kind schema.Kind, t reflect.Type, minimum bool) any {
	switch kind {
	case schema.Int:
		if minimum {
			return int64(-1) << (t.Bits() - 1)
		}
		return int64(0)
	case schema.Enum:
		return int64(0)
	case schema.Uint:
		return uint64(0)
	case schema.Float:
		if minimum {
			if t.Kind() == reflect.Float32 {
				return -float64(math.MaxFloat32)
			}
			return -math.MaxFloat64
		}
		return float64(0)
	case schema.Decimal:
		if minimum {
			return new(apd.Decimal).Set(minDecimal)
		}
		return new(apd.Decimal)
	case schema.Bool:
		return false
	case schema.Char:
		return rune(0)
	case schema.String:
		return ""
	case schema.Date, schema.DateTime, schema.DateTimeOffset:
		return time.Time{}
	case schema.Clock:
		return time.Duration(0)
	case schema.Duration:
		if minimum {
			return time.Duration(math.MinInt64)
		}
		return time.Duration(0)
	}
	return nil
}
