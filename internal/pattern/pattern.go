// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package pattern parses filter combination patterns such as
// "(0 && 1) || !2" and combines indexed filter nodes accordingly.
package pattern

import (
	"strconv"
	"strings"

	"github.com/canonical/dynq/internal/qerr"
)

// Combiner builds the combined node.
type Combiner[N any] interface {
	And(left, right N) N
	Or(left, right N) N
	Not(n N) N
}

// Combine combines nodes according to pattern.
//
// A single node is returned unchanged whatever the pattern. An empty
// pattern, "&&" or "||" folds all nodes left to right with that operator
// (empty meaning &&). Otherwise every character other than digits and
// "()!&|" is dropped and the remainder is parsed: digit runs index into
// nodes, "&&" and "||" set the operator joining the next operand to the
// running result, "!" negates the next operand and brackets group.
// Operators associate strictly left to right without precedence.
func Combine[N any](pattern string, nodes []N, c Combiner[N]) (N, error) {
	var zero N
	switch len(nodes) {
	case 0:
		return zero, nil
	case 1:
		return nodes[0], nil
	}

	switch strings.TrimSpace(pattern) {
	case "", "&&":
		return fold(nodes, c.And), nil
	case "||":
		return fold(nodes, c.Or), nil
	}

	trimmed := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || strings.ContainsRune("()!&|", r) {
			return r
		}
		return -1
	}, pattern)
	if !balanced(trimmed) {
		return zero, qerr.Malformed(pattern)
	}

	p := &parser[N]{pattern: pattern, tokens: tokenize(trimmed), nodes: nodes, c: c}
	n, next, err := p.sequence(0, 0, state[N]{})
	if err != nil {
		return zero, err
	}
	if next != len(p.tokens) {
		return zero, qerr.Malformed(pattern)
	}
	return n, nil
}

func fold[N any](nodes []N, op func(N, N) N) N {
	out := nodes[0]
	for _, n := range nodes[1:] {
		out = op(out, n)
	}
	return out
}

// balanced checks the bracket counts and that '&' and '|' only appear as
// the doubled operators "&&" and "||".
func balanced(s string) bool {
	if strings.Count(s, "(") != strings.Count(s, ")") {
		return false
	}
	if strings.Count(s, "&") != 2*strings.Count(s, "&&") {
		return false
	}
	if strings.Count(s, "|") != 2*strings.Count(s, "||") {
		return false
	}
	return true
}

// tokenize splits a trimmed pattern into digit runs, "&&", "||", "(", ")"
// and "!".
func tokenize(s string) []string {
	var tokens []string
	for i := 0; i < len(s); {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		case strings.HasPrefix(s[i:], "&&"), strings.HasPrefix(s[i:], "||"):
			tokens = append(tokens, s[i:i+2])
			i += 2
		default:
			tokens = append(tokens, s[i:i+1])
			i++
		}
	}
	return tokens
}

type combinator int

const (
	none combinator = iota
	and
	or
)

type parser[N any] struct {
	pattern string
	tokens  []string
	nodes   []N
	c       Combiner[N]
}

// state is the pending part of a sequence: the running result, the
// operator joining the next operand and whether that operand is negated.
type state[N any] struct {
	acc    N
	have   bool
	op     combinator
	negate bool
}

// sequence parses tokens from pos up to the closing bracket of the
// current group, or to the end of input at depth 0. It returns the
// combined node and the position after the group. Each token is consumed
// by one recursive step that receives the pending state as an argument.
func (p *parser[N]) sequence(pos, depth int, st state[N]) (N, int, error) {
	var zero N
	if pos == len(p.tokens) {
		if depth > 0 || !st.have {
			return zero, 0, qerr.Malformed(p.pattern)
		}
		return st.acc, pos, nil
	}

	switch tok := p.tokens[pos]; tok {
	case "(":
		sub, next, err := p.sequence(pos+1, depth+1, state[N]{})
		if err != nil {
			return zero, 0, err
		}
		return p.sequence(next, depth, p.join(st, sub))
	case ")":
		if depth == 0 || !st.have {
			return zero, 0, qerr.Malformed(p.pattern)
		}
		return st.acc, pos + 1, nil
	case "&&":
		st.op = and
		return p.sequence(pos+1, depth, st)
	case "||":
		st.op = or
		return p.sequence(pos+1, depth, st)
	case "!":
		st.negate = true
		return p.sequence(pos+1, depth, st)
	default:
		i, err := strconv.Atoi(tok)
		if err != nil {
			// Digit runs too long for an int are out of range too.
			return zero, 0, qerr.Index(-1)
		}
		if i >= len(p.nodes) {
			return zero, 0, qerr.Index(i)
		}
		return p.sequence(pos+1, depth, p.join(st, p.nodes[i]))
	}
}

// join applies a pending negation to n and combines it with the running
// result using the pending operator. Without a running result or an
// operator, n replaces the running result.
func (p *parser[N]) join(st state[N], n N) state[N] {
	if st.negate {
		n = p.c.Not(n)
	}
	out := state[N]{acc: n, have: true, op: st.op}
	if !st.have {
		return out
	}
	switch st.op {
	case and:
		out.acc = p.c.And(st.acc, n)
	case or:
		out.acc = p.c.Or(st.acc, n)
	}
	return out
}
