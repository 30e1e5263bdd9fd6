package field

import (
	"fmt"

	"github.com/njchilds90/gosymint"
	"github.com/pkg/errors"
)

type Kind int

const (
	// Constant variables have derivative zero.
	Constant Kind = iota
	// Base is the integration variable, with derivative one.
	Base
	// Exp is t = exp(u) with t' = u' t.
	Exp
	// Log is t = ln(u) with t' = u'/u.
	Log
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Base:
		return "base"
	case Exp:
		return "exp"
	case Log:
		return "log"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Var is one level of the tower.
type Var struct {
	Kind Kind
	// Expr is the expression the variable stands for: a constant, the
	// integration variable, exp(u) or ln(u).
	Expr gosymint.Expr
	// Arg is u for Exp and Log variables.
	Arg Elem
	// ArgExpr is u as an expression.
	ArgExpr gosymint.Expr
	// dt is the derivative of the variable as a polynomial in itself.
	dt Poly
}

// Generator describes an exponential or logarithmic extension.
type Generator struct {
	Kind Kind
	Arg  gosymint.Expr
}

func (g Generator) Expr() gosymint.Expr {
	if g.Kind == Exp {
		return gosymint.ExpOf(g.Arg)
	}
	return gosymint.LnOf(g.Arg)
}

func (g Generator) String() string { return g.Expr().String() }

// Tower is the ordered variable table of a differential field. Levels
// start at 1: constants first, then the integration variable, then the
// generators in order.
type Tower struct {
	x    string
	vars []Var
	base int
}

// ErrNotRational is returned when an expression is not a rational
// function of the tower variables.
var ErrNotRational = errors.New("expression is not rational over the tower")

// UnknownConstantError reports a constant sub-expression that has no
// variable in the tower.
type UnknownConstantError struct {
	Expr gosymint.Expr
}

func (e *UnknownConstantError) Error() string {
	return fmt.Sprintf("unknown constant %s", e.Expr)
}

// New builds the tower over x with the given constants and generators.
// Generator arguments must be rational over the constants, x and the
// generators before them.
func New(x string, constants []gosymint.Expr, gens []Generator) (*Tower, error) {
	t := &Tower{x: x, vars: []Var{{}}}
	for _, c := range constants {
		t.vars = append(t.vars, Var{Kind: Constant, Expr: c})
	}
	t.base = len(t.vars)
	t.vars = append(t.vars, Var{Kind: Base, Expr: gosymint.S(x), dt: Poly{One()}})
	for _, g := range gens {
		if g.Kind != Exp && g.Kind != Log {
			return nil, errors.Errorf("generator %s: kind %s is not an extension", g, g.Kind)
		}
		arg, err := t.FromExpr(g.Arg)
		if err != nil {
			return nil, err
		}
		if arg.Level() < t.base {
			return nil, errors.Wrapf(ErrNotRational, "generator %s is constant", g)
		}
		darg := t.Deriv(arg)
		v := Var{Kind: g.Kind, Expr: g.Expr(), Arg: arg, ArgExpr: g.Arg}
		if g.Kind == Exp {
			v.dt = Poly{Zero(), darg}
		} else {
			v.dt = Poly{darg.MustQuo(arg)}
		}
		t.vars = append(t.vars, v)
	}
	return t, nil
}

// Resolve builds the tower over x with gens, adding every constant met
// while converting the generators and exprs. It returns the tower and the
// converted expressions.
func Resolve(x string, gens []Generator, exprs ...gosymint.Expr) (*Tower, []Elem, error) {
	var constants []gosymint.Expr
	for range maxConstants {
		t, elems, err := tryResolve(x, constants, gens, exprs)
		var unknown *UnknownConstantError
		if errors.As(err, &unknown) {
			constants = append(constants, unknown.Expr)
			continue
		}
		return t, elems, err
	}
	return nil, nil, errors.Errorf("more than %d constants", maxConstants)
}

const maxConstants = 64

func tryResolve(x string, constants []gosymint.Expr, gens []Generator, exprs []gosymint.Expr) (*Tower, []Elem, error) {
	t, err := New(x, constants, gens)
	if err != nil {
		return nil, nil, err
	}
	elems := make([]Elem, len(exprs))
	for i, e := range exprs {
		if elems[i], err = t.FromExpr(e); err != nil {
			return nil, nil, err
		}
	}
	return t, elems, nil
}

func (t *Tower) X() string { return t.x }

// BaseLevel is the level of the integration variable.
func (t *Tower) BaseLevel() int { return t.base }

// Top is the highest level.
func (t *Tower) Top() int { return len(t.vars) - 1 }

// Var returns the variable at level.
func (t *Tower) Var(level int) Var { return t.vars[level] }

// Kind returns the kind of the variable at level.
func (t *Tower) Kind(level int) Kind { return t.vars[level].Kind }

// Generators returns the extensions above the integration variable.
func (t *Tower) Generators() []Generator {
	var out []Generator
	for _, v := range t.vars[t.base+1:] {
		out = append(out, Generator{Kind: v.Kind, Arg: v.ArgExpr})
	}
	return out
}

// Constants returns the constant expressions in level order.
func (t *Tower) Constants() []gosymint.Expr {
	var out []gosymint.Expr
	for _, v := range t.vars[1:t.base] {
		out = append(out, v.Expr)
	}
	return out
}

// IsConstant reports whether e has derivative zero by construction.
func (t *Tower) IsConstant(e Elem) bool { return e.Level() < t.base }

// T returns the variable at level as a field element.
func (t *Tower) T(level int) Elem { return variable(level) }

// Dt returns the derivative of the variable at level as a polynomial in
// that variable.
func (t *Tower) Dt(level int) Poly { return t.vars[level].dt }

// ============================================================
// Derivation
// ============================================================

// Deriv is the derivation of the field.
func (t *Tower) Deriv(e Elem) Elem {
	if e.Level() == 0 || t.vars[e.Level()].Kind == Constant {
		return Zero()
	}
	level := e.Level()
	dn := t.PolyDeriv(e.num, level)
	dd := t.PolyDeriv(e.den, level)
	num := dn.Mul(e.den).Sub(e.num.Mul(dd))
	return mustFrac(level, num, e.den.Mul(e.den))
}

// PolyDeriv applies the derivation to a polynomial in the variable at
// level: sum D(c_i) t^i + i c_i t^(i-1) D(t).
func (t *Tower) PolyDeriv(p Poly, level int) Poly {
	out := Poly{}
	for i, c := range p {
		if !c.IsZero() {
			out = out.Add(Monomial(t.Deriv(c), i))
		}
	}
	return out.Add(p.DerivT().Mul(t.vars[level].dt))
}

// DerivArg returns u' for an Exp or Log variable.
func (t *Tower) DerivArg(level int) Elem { return t.Deriv(t.vars[level].Arg) }
