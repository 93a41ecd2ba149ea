// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlgen

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/schema"
)

// sqlBuilder is used to generate SQL piece by piece. Arguments are
// collected in placeholder order.
type sqlBuilder struct {
	buf     bytes.Buffer
	dialect *Dialect
	args    []any
}

// write writes SQL to the builder.
func (b *sqlBuilder) write(sql string) {
	b.buf.WriteString(sql)
}

// writeArg writes a placeholder for v and records the argument.
func (b *sqlBuilder) writeArg(v any) {
	b.args = append(b.args, v)
	b.buf.WriteString(b.dialect.placeholder(len(b.args)))
}

// writeCommaSeparatedList writes out the provided list using the writer to
// write each element into the SQL.
func (b *sqlBuilder) writeCommaSeparatedList(list []string, writer func(i int, s string) string) {
	for i, s := range list {
		if i != 0 {
			b.buf.WriteString(", ")
		}
		b.buf.WriteString(writer(i, s))
	}
}

// getSQL returns the generated SQL string.
func (b *sqlBuilder) getSQL() string {
	return b.buf.String()
}

// sub renders n into a separate buffer sharing the argument list, so the
// result can be embedded in a larger fragment.
func (b *sqlBuilder) sub(n expr.Node) (string, error) {
	inner := &sqlBuilder{dialect: b.dialect, args: b.args}
	if err := inner.writeNode(n); err != nil {
		return "", err
	}
	b.args = inner.args
	return inner.getSQL(), nil
}

// writePredicate writes a predicate that may yield NULL wrapped so that it
// yields FALSE instead. This keeps NOT consistent with the in-process
// evaluator.
func (b *sqlBuilder) writePredicate(nullable bool, body func() error) error {
	if !nullable {
		return body()
	}
	b.write("COALESCE(")
	if err := body(); err != nil {
		return err
	}
	b.write(", FALSE)")
	return nil
}

var compareOps = [...]string{expr.Eq: "=", expr.Ne: "<>", expr.Gt: ">", expr.Ge: ">=", expr.Lt: "<", expr.Le: "<="}

func (b *sqlBuilder) writeNode(n expr.Node) error {
	switch n := n.(type) {
	case *expr.Member:
		b.write(Quote(n.Path.Column()))
	case *expr.NilHop:
		// Nested structs are stored flattened; a nil hop leaves the leaf
		// column NULL.
		b.write("(" + Quote(n.Path.Column()) + " IS NULL)")
	case *expr.Const:
		if n.Value == nil {
			b.write("NULL")
			return nil
		}
		v, err := b.arg(n)
		if err != nil {
			return err
		}
		b.writeArg(v)
	case *expr.Compare:
		l, err := b.sub(n.Left)
		if err != nil {
			return err
		}
		r, err := b.sub(n.Right)
		if err != nil {
			return err
		}
		nullable := n.Left.Nullable() || n.Right.Nullable()
		switch {
		case nullable && n.Op == expr.Eq:
			b.write("(" + l + " " + b.dialect.eq + " " + r + ")")
		case nullable && n.Op == expr.Ne:
			b.write("(" + l + " " + b.dialect.ne + " " + r + ")")
		default:
			return b.writePredicate(nullable, func() error {
				b.write("(" + l + " " + compareOps[n.Op] + " " + r + ")")
				return nil
			})
		}
	case *expr.IsNull:
		x, err := b.sub(n.X)
		if err != nil {
			return err
		}
		b.write("(" + x + " IS NULL)")
	case *expr.And:
		return b.writeBinary(n.Left, " AND ", n.Right)
	case *expr.Or:
		return b.writeBinary(n.Left, " OR ", n.Right)
	case *expr.Not:
		x, err := b.sub(n.X)
		if err != nil {
			return err
		}
		b.write("(NOT " + x + ")")
	case *expr.Match:
		return b.writeMatch(n)
	case *expr.Blank:
		// The operand is rendered twice so that positional placeholders
		// stay in step with the arguments.
		x, err := b.sub(n.X)
		if err != nil {
			return err
		}
		y, err := b.sub(n.X)
		if err != nil {
			return err
		}
		b.write("(" + x + " IS NULL OR TRIM(" + y + ") = '')")
	case *expr.Regex:
		if b.dialect.regex == nil {
			return fmt.Errorf("regular expressions are not supported by %s", b.dialect.Name)
		}
		x, err := b.sub(n.X)
		if err != nil {
			return err
		}
		return b.writePredicate(n.X.Nullable(), func() error {
			b.args = append(b.args, n.Pattern)
			b.write("(" + b.dialect.regex(x, b.dialect.placeholder(len(b.args))) + ")")
			return nil
		})
	case *expr.Format:
		if !n.Native {
			return fmt.Errorf("locale-aware formatting is not supported by %s", b.dialect.Name)
		}
		x, err := b.sub(n.X)
		if err != nil {
			return err
		}
		b.write("CAST(" + x + " AS " + b.dialect.text + ")")
	case *expr.Coalesce:
		x, err := b.sub(n.X)
		if err != nil {
			return err
		}
		fb, err := b.sub(n.Fallback)
		if err != nil {
			return err
		}
		b.write("COALESCE(" + x + ", " + fb + ")")
	case *expr.Cond:
		c, err := b.sub(n.If)
		if err != nil {
			return err
		}
		t, err := b.sub(n.Then)
		if err != nil {
			return err
		}
		e, err := b.sub(n.Else)
		if err != nil {
			return err
		}
		b.write("CASE WHEN " + c + " THEN " + t + " ELSE " + e + " END")
	default:
		return fmt.Errorf("internal error: unknown node %T", n)
	}
	return nil
}

func (b *sqlBuilder) writeBinary(left expr.Node, op string, right expr.Node) error {
	l, err := b.sub(left)
	if err != nil {
		return err
	}
	r, err := b.sub(right)
	if err != nil {
		return err
	}
	b.write("(" + l + op + r + ")")
	return nil
}

func (b *sqlBuilder) writeMatch(n *expr.Match) error {
	if n.Mode != expr.Native && n.Mode != expr.Ordinal {
		return fmt.Errorf("%s string comparison is not supported by %s", n.Mode, b.dialect.Name)
	}
	x, err := b.sub(n.X)
	if err != nil {
		return err
	}
	if n.Op == expr.Equal {
		p, err := b.sub(n.Pattern)
		if err != nil {
			return err
		}
		return b.writePredicate(n.X.Nullable(), func() error {
			b.write("(" + x + " = " + p + ")")
			return nil
		})
	}

	c, ok := n.Pattern.(*expr.Const)
	if !ok {
		return fmt.Errorf("internal error: match pattern must be a constant")
	}
	s, ok := c.Value.(string)
	if !ok {
		return fmt.Errorf("internal error: match pattern must be a string")
	}
	return b.writePredicate(n.X.Nullable(), func() error {
		if b.dialect.glob {
			b.args = append(b.args, wildcard(n.Op, escapeGlob(s), "*"))
			b.write("(" + x + " GLOB " + b.dialect.placeholder(len(b.args)) + ")")
			return nil
		}
		b.args = append(b.args, wildcard(n.Op, escapeLike(s), "%"))
		b.write("(" + x + " LIKE " + b.dialect.placeholder(len(b.args)) + ` ESCAPE '\')`)
		return nil
	})
}

func wildcard(op expr.MatchOp, s, wild string) string {
	switch op {
	case expr.Prefix:
		return s + wild
	case expr.Suffix:
		return wild + s
	}
	return wild + s + wild
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var globEscaper = strings.NewReplacer(`*`, `[*]`, `?`, `[?]`, `[`, `[[]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

// arg converts a normalized constant into a driver argument following the
// storage conventions of the dialect.
func (b *sqlBuilder) arg(c *expr.Const) (any, error) {
	switch v := c.Value.(type) {
	case *apd.Decimal:
		if b.dialect == SQLite {
			return v.Float64()
		}
		return v.String(), nil
	case rune:
		return string(v), nil
	case time.Time:
		if c.Of == schema.Date {
			if b.dialect == SQLite {
				return v.Format(time.DateOnly), nil
			}
			return v, nil
		}
		return v, nil
	case time.Duration:
		if c.Of == schema.Clock {
			return time.Time{}.Add(v).Format("15:04:05.999999999"), nil
		}
		return int64(v), nil
	}
	return c.Value, nil
}
