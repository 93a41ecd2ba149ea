// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package schema

import (
	"reflect"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Kind is the query-level classification of a property type.
type Kind int

const (
	Invalid Kind = iota
	Int
	Uint
	Float
	Decimal
	Bool
	Char
	String
	Enum
	Date
	DateTime
	DateTimeOffset
	Clock
	Duration
	Struct
)

var kindNames = [...]string{
	Invalid:        "invalid",
	Int:            "int",
	Uint:           "uint",
	Float:          "float",
	Decimal:        "decimal",
	Bool:           "bool",
	Char:           "char",
	String:         "string",
	Enum:           "enum",
	Date:           "date",
	DateTime:       "datetime",
	DateTimeOffset: "datetimeoffset",
	Clock:          "clock",
	Duration:       "duration",
	Struct:         "struct",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Ordered reports whether values of the kind have a total order usable by
// the ordering operators and by sorts.
func (k Kind) Ordered() bool {
	switch k {
	case Int, Uint, Float, Decimal, Char, String, Enum, Date, DateTime, DateTimeOffset, Clock, Duration:
		return true
	}
	return false
}

// Numeric reports whether the kind is quantitative.
func (k Kind) Numeric() bool {
	switch k {
	case Int, Uint, Float, Decimal:
		return true
	}
	return false
}

// Temporal reports whether the kind holds a point or span of time.
func (k Kind) Temporal() bool {
	switch k {
	case Date, DateTime, DateTimeOffset, Clock, Duration:
		return true
	}
	return false
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	decimalType  = reflect.TypeOf(apd.Decimal{})
)

// kindOf classifies a non-pointer type. opt is the option of the field's
// query tag.
func kindOf(t reflect.Type, opt string) Kind {
	switch t {
	case timeType:
		switch opt {
		case "date":
			return Date
		case "clock":
			return Clock
		case "offset":
			return DateTimeOffset
		}
		return DateTime
	case durationType:
		return Duration
	case decimalType:
		return Decimal
	}
	if _, ok := enumMembers(t); ok {
		return Enum
	}
	switch t.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	case reflect.Int32:
		if opt == "char" {
			return Char
		}
		return Int
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int64:
		return Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Struct:
		return Struct
	}
	return Invalid
}
