// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Member is a declared member of an enumeration.
type Member struct {
	Name  string
	Value int64
}

var enumMutex sync.RWMutex
var enums = make(map[reflect.Type][]Member)

// RegisterEnum declares the members of an integer type so that it is
// treated as an enumeration. Registering a type again replaces its members.
func RegisterEnum(t reflect.Type, members []Member) error {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
	default:
		return fmt.Errorf("cannot register %s as an enum: underlying type must be an integer", t)
	}
	if len(members) == 0 {
		return fmt.Errorf("cannot register %s as an enum: no members", t)
	}
	seen := make(map[string]bool, len(members))
	ms := make([]Member, 0, len(members))
	for _, m := range members {
		if m.Name == "" {
			return fmt.Errorf("cannot register %s as an enum: member with value %d has no name", t, m.Value)
		}
		key := strings.ToLower(m.Name)
		if seen[key] {
			return fmt.Errorf("cannot register %s as an enum: duplicate member %q", t, m.Name)
		}
		seen[key] = true
		ms = append(ms, m)
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Value < ms[j].Value })

	enumMutex.Lock()
	enums[t] = ms
	enumMutex.Unlock()
	return nil
}

func enumMembers(t reflect.Type) ([]Member, bool) {
	enumMutex.RLock()
	ms, ok := enums[t]
	enumMutex.RUnlock()
	return ms, ok
}

// EnumMembers returns the registered members of t ordered by value.
func EnumMembers(t reflect.Type) ([]Member, bool) {
	return enumMembers(t)
}

// EnumValue looks up a member by case-insensitive name.
func EnumValue(t reflect.Type, name string) (int64, bool) {
	ms, _ := enumMembers(t)
	for _, m := range ms {
		if strings.EqualFold(m.Name, name) {
			return m.Value, true
		}
	}
	return 0, false
}

// EnumName returns the name of the first member with value v. Values
// without a member are rendered as decimal integers.
func EnumName(t reflect.Type, v int64) string {
	ms, _ := enumMembers(t)
	for _, m := range ms {
		if m.Value == v {
			return m.Name
		}
	}
	return fmt.Sprint(v)
}
