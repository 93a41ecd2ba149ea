// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canonical/dynq/internal/coerce"
	"github.com/canonical/dynq/internal/locale"
)

// Print renders n in a compact, human readable form used in error
// messages and by the explain command.
func Print(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("true")
	case *Member:
		b.WriteString(n.Path.String())
	case *NilHop:
		fmt.Fprintf(b, "(%s == nil)", n.Path.Prefix(n.Hop+1).String())
	case *Const:
		b.WriteString(PrintConst(n))
	case *Compare:
		b.WriteByte('(')
		write(b, n.Left)
		fmt.Fprintf(b, " %s ", n.Op)
		write(b, n.Right)
		b.WriteByte(')')
	case *IsNull:
		b.WriteByte('(')
		write(b, n.X)
		b.WriteString(" == nil)")
	case *And:
		b.WriteByte('(')
		write(b, n.Left)
		b.WriteString(" && ")
		write(b, n.Right)
		b.WriteByte(')')
	case *Or:
		b.WriteByte('(')
		write(b, n.Left)
		b.WriteString(" || ")
		write(b, n.Right)
		b.WriteByte(')')
	case *Not:
		b.WriteByte('!')
		write(b, n.X)
	case *Match:
		write(b, n.X)
		fmt.Fprintf(b, ".%s(", n.Op)
		write(b, n.Pattern)
		if n.Mode != Native {
			fmt.Fprintf(b, ", %s", n.Mode)
		}
		b.WriteByte(')')
	case *Blank:
		b.WriteString("IsBlank(")
		write(b, n.X)
		b.WriteByte(')')
	case *Regex:
		b.WriteString("Regex(")
		write(b, n.X)
		fmt.Fprintf(b, ", %s)", strconv.Quote(n.Pattern))
	case *Format:
		write(b, n.X)
		b.WriteString(".ToString(")
		if !n.Native {
			b.WriteString(n.Locale.String())
			if n.Layout != "" {
				fmt.Fprintf(b, ", %s", strconv.Quote(n.Layout))
			}
		}
		b.WriteByte(')')
	case *Coalesce:
		b.WriteByte('(')
		write(b, n.X)
		b.WriteString(" ?? ")
		write(b, n.Fallback)
		b.WriteByte(')')
	case *Cond:
		b.WriteByte('(')
		write(b, n.If)
		b.WriteString(" ? ")
		write(b, n.Then)
		b.WriteString(" : ")
		write(b, n.Else)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}

// PrintConst renders a constant with the invariant locale.
func PrintConst(c *Const) string {
	if c.Value == nil {
		return "nil"
	}
	f := coerce.Formatter{Locale: locale.Invariant}
	s := f.Format(c.Value, c.Of, c.Type)
	if _, ok := c.Value.(string); ok {
		return strconv.Quote(s)
	}
	return s
}
