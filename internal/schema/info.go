// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
)

// Field represents a single queryable field of a struct type.
type Field struct {
	// Name is the name of the struct field.
	Name string

	// Index of this field in the structure.
	Index int

	// Type is the declared type of the field.
	Type reflect.Type

	// Elem is Type with one level of pointer removed.
	Elem reflect.Type

	// Nullable is true when the field is a pointer.
	Nullable bool

	// Alias is the name given in the "query" tag, if any.
	Alias string

	// Option is the option given in the "query" tag, e.g. "date".
	Option string

	// Column is the column name segment from the "db" tag, or the snake
	// cased field name.
	Column string

	// Key is the document key from the "bson" tag, or the lower cased field
	// name.
	Key string

	// JSON is the name from the "json" tag, if any.
	JSON string
}

// Info represents reflected information about a struct type.
type Info struct {
	Type   reflect.Type
	Fields []Field
}

var cacheMutex sync.RWMutex
var cache = make(map[reflect.Type]*Info)

// TypeInfo returns the Info of a struct type, generating and caching as
// required. Pointers to structs are dereferenced.
func TypeInfo(t reflect.Type) (*Info, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot reflect nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cacheMutex.RLock()
	info, found := cache[t]
	cacheMutex.RUnlock()
	if found {
		return info, nil
	}

	info, err := generate(t)
	if err != nil {
		return nil, err
	}

	cacheMutex.Lock()
	cache[t] = info
	cacheMutex.Unlock()

	return info, nil
}

// generate produces reflection information for the struct type t.
func generate(t reflect.Type) (*Info, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("can only reflect struct type, got %s", t.Kind())
	}

	info := &Info{Type: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("query")
		if tag == "-" {
			continue
		}
		alias, opt, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("field %q of %s: %w", sf.Name, t, err)
		}
		f := Field{
			Name:   sf.Name,
			Index:  i,
			Type:   sf.Type,
			Elem:   sf.Type,
			Alias:  alias,
			Option: opt,
			Column: tagName(sf.Tag.Get("db")),
			Key:    tagName(sf.Tag.Get("bson")),
			JSON:   tagName(sf.Tag.Get("json")),
		}
		if f.Elem.Kind() == reflect.Pointer {
			f.Elem = f.Elem.Elem()
			f.Nullable = true
		}
		if f.Column == "" {
			f.Column = snakeCase(sf.Name)
		}
		if f.Key == "" {
			f.Key = strings.ToLower(sf.Name)
		}
		info.Fields = append(info.Fields, f)
	}
	return info, nil
}

// lookup finds the field matching name. Aliases and field names are
// always candidates; json and db names only when matchTags is set.
func (info *Info) lookup(name string, matchCase, matchTags bool) (Field, bool) {
	eq := strings.EqualFold
	if matchCase {
		eq = func(a, b string) bool { return a == b }
	}
	for _, f := range info.Fields {
		if eq(f.Name, name) || (f.Alias != "" && eq(f.Alias, name)) {
			return f, true
		}
	}
	if matchTags {
		for _, f := range info.Fields {
			if (f.JSON != "" && eq(f.JSON, name)) || eq(f.Column, name) {
				return f, true
			}
		}
	}
	return Field{}, false
}

var validAliasRx = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*$`)

var tagOptions = map[string]bool{
	"char":   true,
	"date":   true,
	"clock":  true,
	"offset": true,
}

// parseTag parses a "query" tag of the form "alias,option". Both parts are
// optional.
func parseTag(tag string) (string, string, error) {
	if tag == "" {
		return "", "", nil
	}
	options := strings.Split(tag, ",")
	if len(options) > 2 {
		return "", "", fmt.Errorf("too many options in 'query' tag")
	}
	alias := options[0]
	if alias != "" && !validAliasRx.MatchString(alias) {
		return "", "", fmt.Errorf("invalid name %q in 'query' tag", alias)
	}
	var opt string
	if len(options) == 2 {
		opt = strings.ToLower(options[1])
		if !tagOptions[opt] {
			return "", "", fmt.Errorf("unexpected tag option %q", options[1])
		}
	}
	return alias, opt, nil
}

// tagName returns the name part of a conventional struct tag.
func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

func snakeCase(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := rs[i-1] >= 'a' && rs[i-1] <= 'z' || rs[i-1] >= '0' && rs[i-1] <= '9'
			nextLower := i+1 < len(rs) && rs[i+1] >= 'a' && rs[i+1] <= 'z'
			if prevLower || (nextLower && rs[i-1] >= 'A' && rs[i-1] <= 'Z') {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
