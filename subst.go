package gosymint

import (
	"cmp"
	"slices"
	"strconv"

	set "github.com/hashicorp/go-set/v3"
	"golang.org/x/exp/maps"
)

// ============================================================
// Substitution
// ============================================================

// Replace substitutes with for every syntactic occurrence of target.
func Replace(e, target, with Expr) Expr {
	if e.Equal(target) {
		return with
	}
	switch v := e.(type) {
	case *BinOp:
		return &BinOp{op: v.op, left: Replace(v.left, target, with), right: Replace(v.right, target, with)}
	case *Func:
		return Fn(v.kind, Replace(v.arg, target, with))
	case *Operator:
		if !v.hasLimits() {
			return v.withParts(Replace(v.body, target, with), nil, nil)
		}
		return v.withParts(Replace(v.body, target, with), Replace(v.lower, target, with), Replace(v.upper, target, with))
	}
	return e
}

// Transform rebuilds e bottom-up, passing every rebuilt node to fn.
func Transform(e Expr, fn func(Expr) (Expr, error)) (Expr, error) {
	switch v := e.(type) {
	case *BinOp:
		l, err := Transform(v.left, fn)
		if err != nil {
			return nil, err
		}
		r, err := Transform(v.right, fn)
		if err != nil {
			return nil, err
		}
		e = &BinOp{op: v.op, left: l, right: r}
	case *Func:
		arg, err := Transform(v.arg, fn)
		if err != nil {
			return nil, err
		}
		e = Fn(v.kind, arg)
	case *Operator:
		body, err := Transform(v.body, fn)
		if err != nil {
			return nil, err
		}
		if !v.hasLimits() {
			e = v.withParts(body, nil, nil)
			break
		}
		lo, err := Transform(v.lower, fn)
		if err != nil {
			return nil, err
		}
		hi, err := Transform(v.upper, fn)
		if err != nil {
			return nil, err
		}
		e = v.withParts(body, lo, hi)
	}
	return fn(e)
}

// SubAll applies the substitutions in sorted name order.
func SubAll(e Expr, values map[string]Expr) Expr {
	for _, name := range sortedKeys(values) {
		e = e.Sub(name, values[name])
	}
	return e
}

// FreeSymbols returns the free variable names of exprs in sorted order.
func FreeSymbols(exprs ...Expr) []string {
	names := set.NewTreeSet[string](cmp.Compare[string])
	for _, e := range exprs {
		collectSymbols(e, names)
	}
	return names.Slice()
}

func collectSymbols(e Expr, names *set.TreeSet[string]) {
	switch v := e.(type) {
	case *Sym:
		names.Insert(v.name)
	case *BinOp:
		collectSymbols(v.left, names)
		collectSymbols(v.right, names)
	case *Func:
		collectSymbols(v.arg, names)
	case *Operator:
		inner := set.NewTreeSet[string](cmp.Compare[string])
		collectSymbols(v.body, inner)
		for _, n := range inner.Slice() {
			if n != v.index || v.kind == OperatorIntegral {
				names.Insert(n)
			}
		}
		if v.hasLimits() {
			collectSymbols(v.lower, names)
			collectSymbols(v.upper, names)
		}
	}
}

// FreshVar returns a variable name starting with prefix that occurs in
// none of exprs.
func FreshVar(prefix string, exprs ...Expr) string {
	used := set.From(FreeSymbols(exprs...))
	if !used.Contains(prefix) {
		return prefix
	}
	for i := 1; ; i++ {
		name := prefix + "_" + strconv.Itoa(i)
		if !used.Contains(name) {
			return name
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	k := maps.Keys(m)
	slices.Sort(k)
	return k
}
