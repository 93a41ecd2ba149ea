// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package dynq

import (
	"fmt"
	"reflect"

	"github.com/canonical/dynq/internal/schema"
)

// Integer is the set of types an enumeration can be declared on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32
}

// RegisterEnum declares members as the complete set of values of the
// enumeration E. Member names are taken from their String method. Fields
// of type E are then filtered by member name or integer value, rendered by
// name for string operators, and ordered by value.
func RegisterEnum[E interface {
	Integer
	fmt.Stringer
}](members ...E) error {
	ms := make([]schema.Member, len(members))
	for i, m := range members {
		ms[i] = schema.Member{Name: m.String(), Value: int64(m)}
	}
	return schema.RegisterEnum(reflect.TypeOf((*E)(nil)).Elem(), ms)
}

// MustRegisterEnum is the same as [RegisterEnum] except that it panics on
// error.
func MustRegisterEnum[E interface {
	Integer
	fmt.Stringer
}](members ...E) {
	if err := RegisterEnum(members...); err != nil {
		panic(err)
	}
}
