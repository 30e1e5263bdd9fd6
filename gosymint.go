// Package gosymint provides a deterministic symbolic expression kernel for Go
// and the substrate used by the Risch integrator in package risch.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), no floating point evaluation
//   - Immutable expression trees with a closed set of node kinds
//   - Deterministic simplification under explicit, named rule sets
//   - AI/LLM friendly: JSON, LaTeX, and tool-call ready APIs
package gosymint

import (
	"github.com/pkg/errors"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression node. The set of implementations is
// closed: *Num, *Sym, *BinOp, *Func and *Operator.
type Expr interface {
	String() string
	LaTeX() string
	// Sub replaces the free variable varName by value.
	Sub(varName string, value Expr) Expr
	// Diff differentiates structurally; the result is not simplified.
	Diff(varName string) Expr
	// Eval evaluates exactly; it fails for anything not a rational number.
	Eval() (*Num, bool)
	Equal(other Expr) bool
	// Contains reports whether varName occurs free.
	Contains(varName string) bool
	exprType() string
	toJSON() map[string]any
}

var (
	// ErrUndefined is returned when simplification meets an undefined value
	// such as a division by zero or ln(0).
	ErrUndefined = errors.New("undefined expression")
	// ErrNotPolynomial is returned when coefficient extraction meets a
	// non-polynomial expression.
	ErrNotPolynomial = errors.New("expression is not a polynomial")
	// ErrNotSolvable is returned when an equation has no closed-form
	// solution supported by the solver.
	ErrNotSolvable = errors.New("equation not solvable in closed form")
)

// ============================================================
// Top-level helpers
// ============================================================

func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value)
}

// Diff returns the derivative of expr simplified under RulesBasic. When the
// simplifier rejects the result the structural derivative is returned.
func Diff(expr Expr, varName string) Expr {
	d := expr.Diff(varName)
	if s, err := Simplify(d, RulesBasic); err == nil {
		return s
	}
	return d
}

// DiffN returns the n-th derivative.
func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// IsConstant reports whether e does not depend on varName.
func IsConstant(e Expr, varName string) bool { return !e.Contains(varName) }
