// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package schema

import (
	"reflect"
	"strings"

	"github.com/canonical/dynq/internal/qerr"
)

// Path is a resolved property path from a root struct type to a leaf
// field.
type Path struct {
	// Root is the struct type the path starts from.
	Root reflect.Type

	// Hops holds one field per path segment. The last hop is the leaf.
	Hops []Field

	// Kind is the classification of the leaf type.
	Kind Kind
}

// Leaf returns the last field of the path.
func (p *Path) Leaf() Field {
	return p.Hops[len(p.Hops)-1]
}

// Type is the leaf type with one level of pointer removed.
func (p *Path) Type() reflect.Type {
	return p.Leaf().Elem
}

// Nullable reports whether the leaf itself may be nil.
func (p *Path) Nullable() bool {
	return p.Leaf().Nullable
}

// AncestorNullable reports whether any hop before the leaf may be nil.
func (p *Path) AncestorNullable() bool {
	return len(p.Guards()) > 0
}

// Guards returns the positions of the nullable hops before the leaf.
func (p *Path) Guards() []int {
	var gs []int
	for i, h := range p.Hops[:len(p.Hops)-1] {
		if h.Nullable {
			gs = append(gs, i)
		}
	}
	return gs
}

// Prefix returns the path of the first n hops.
func (p *Path) Prefix(n int) *Path {
	hops := p.Hops[:n]
	last := hops[len(hops)-1]
	return &Path{Root: p.Root, Hops: hops, Kind: kindOf(last.Elem, last.Option)}
}

// String returns the canonical dotted path of Go field names.
func (p *Path) String() string {
	return p.join(func(f Field) string { return f.Name }, ".")
}

// Column returns the flattened column name of the path.
func (p *Path) Column() string {
	return p.join(func(f Field) string { return f.Column }, "_")
}

// Key returns the dotted document key of the path.
func (p *Path) Key() string {
	return p.join(func(f Field) string { return f.Key }, ".")
}

// TypeName names the leaf type for error messages.
func (p *Path) TypeName() string {
	name := p.Type().String()
	if p.Nullable() {
		return "*" + name
	}
	return name
}

func (p *Path) join(part func(Field) string, sep string) string {
	parts := make([]string, len(p.Hops))
	for i, h := range p.Hops {
		parts[i] = part(h)
	}
	return strings.Join(parts, sep)
}

// Resolve walks a dotted property path from the struct type root. Each
// segment is matched against the fields of the current struct; pointers
// to structs are followed. An unknown segment, or a segment following a
// non-struct hop, fails with a MissingProperty error.
func Resolve(root reflect.Type, property string, matchCase, matchTags bool) (*Path, error) {
	if property == "" {
		return nil, qerr.Missing(property)
	}
	segments := strings.Split(property, ".")
	p := &Path{Root: root}
	current := root
	for i, seg := range segments {
		info, err := TypeInfo(current)
		if err != nil {
			return nil, qerr.Missing(property)
		}
		f, ok := info.lookup(strings.TrimSpace(seg), matchCase, matchTags)
		if !ok {
			return nil, qerr.Missing(property)
		}
		p.Hops = append(p.Hops, f)
		kind := kindOf(f.Elem, f.Option)
		if i < len(segments)-1 && kind != Struct {
			return nil, qerr.Missing(property)
		}
		p.Kind = kind
		current = f.Elem
	}
	return p, nil
}

// Leaves returns a path for every non-struct field reachable from root,
// in field order. Struct fields are expanded recursively; recursive types
// are cut at their first repetition.
func Leaves(root reflect.Type) ([]*Path, error) {
	var out []*Path
	var walk func(t reflect.Type, prefix []Field, seen map[reflect.Type]bool) error
	walk = func(t reflect.Type, prefix []Field, seen map[reflect.Type]bool) error {
		info, err := TypeInfo(t)
		if err != nil {
			return err
		}
		seen[info.Type] = true
		defer delete(seen, info.Type)
		for _, f := range info.Fields {
			hops := append(append([]Field(nil), prefix...), f)
			kind := kindOf(f.Elem, f.Option)
			switch kind {
			case Invalid:
				continue
			case Struct:
				if seen[f.Elem] {
					continue
				}
				if err := walk(f.Elem, hops, seen); err != nil {
					return err
				}
			default:
				out = append(out, &Path{Root: root, Hops: hops, Kind: kind})
			}
		}
		return nil
	}
	if err := walk(root, nil, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}
	return out, nil
}
