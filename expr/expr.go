// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package expr evaluates boolean expressions over sets of tags.
package expr

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"
	"strings"
)

// Expr holds a compiled boolean expression that matches some combination of tags.
//
// Expressions are supplied as strings consisting of the following tokens:
//
//   - Tags, either as bare Go identifiers or as double-quoted strings
//     (in which '*' characters are interpreted as wildcards)
//   - Binary operators: && (and), || (or)
//   - Unary operator: ! (not)
//   - Grouping: (, )
//
// The syntax is a subset of Go's expression syntax, so Go's parser does the
// heavy lifting: the expression is parsed into a binary expression tree,
// validated, and later evaluated against a tag set.
type Expr struct {
	root ast.Expr
}

// New compiles and validates boolean expression s, returning an Expr that can
// be asked whether it is satisfied by different tag sets.
func New(s string) (*Expr, error) {
	root, err := parser.ParseExpr(s)
	if err != nil {
		return nil, err
	}
	if err := validate(root); err != nil {
		return nil, err
	}
	return &Expr{root}, nil
}

// validate rejects any node that cannot appear in a boolean tag expression.
func validate(n ast.Expr) error {
	switch v := n.(type) {
	case *ast.BinaryExpr:
		if v.Op != token.LAND && v.Op != token.LOR {
			return fmt.Errorf("invalid binary operator %q", v.Op)
		}
		if err := validate(v.X); err != nil {
			return err
		}
		return validate(v.Y)
	case *ast.ParenExpr:
		return validate(v.X)
	case *ast.UnaryExpr:
		if v.Op != token.NOT {
			return fmt.Errorf("invalid unary operator %q", v.Op)
		}
		return validate(v.X)
	case *ast.Ident:
		return nil
	case *ast.BasicLit:
		if v.Kind != token.STRING {
			return fmt.Errorf("non-string literal %q", v.Value)
		}
		return nil
	default:
		return fmt.Errorf("invalid node of type %T", v)
	}
}

// Matches returns true if the expression is satisfied by tags.
func (e *Expr) Matches(tags []string) bool {
	ts := make(tagSet, len(tags))
	for _, tag := range tags {
		ts[tag] = struct{}{}
	}
	return eval(e.root, ts)
}

// tagSet indexes a test's tags for evaluation.
type tagSet map[string]struct{}

// eval evaluates a validated expression tree against tags. Operators outside
// the validated subset cannot appear here, so the unary case is always NOT.
func eval(n ast.Expr, tags tagSet) bool {
	switch v := n.(type) {
	case *ast.BinaryExpr:
		if v.Op == token.LAND {
			return eval(v.X, tags) && eval(v.Y, tags)
		}
		return eval(v.X, tags) || eval(v.Y, tags)
	case *ast.ParenExpr:
		return eval(v.X, tags)
	case *ast.UnaryExpr:
		return !eval(v.X, tags)
	case *ast.Ident:
		return tags.has(v.Name)
	case *ast.BasicLit:
		s, err := strconv.Unquote(v.Value)
		if err != nil {
			return false
		}
		return tags.has(s)
	}
	return false
}

// has reports whether pattern, which may contain '*' wildcards, matches a tag
// in the set.
func (ts tagSet) has(pattern string) bool {
	if !strings.Contains(pattern, "*") {
		_, ok := ts[pattern]
		return ok
	}

	// Each literal segment between wildcards is escaped separately, then the
	// segments are stitched back together around ".*".
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return false
	}
	for tag := range ts {
		if re.MatchString(tag) {
			return true
		}
	}
	return false
}
