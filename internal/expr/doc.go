// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package expr defines the expression trees that compiled queries are made of.

A tree is built from property members, constants and a small closed set of
operations over them. Trees are evaluated in memory by Eval and rendered
for databases by the sqlgen and bsongen packages.

Null is lifted: a member whose path crosses a nil pointer yields null,
comparisons treat two nulls as equal, and ordering comparisons with a null
operand are false.
*/
package expr
