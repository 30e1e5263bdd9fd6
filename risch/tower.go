package risch

import (
	"fmt"
	"math/big"

	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/internal/field"
	"github.com/pkg/errors"
)

// ExtensionKind is the kind of a transcendental extension.
type ExtensionKind int

const (
	ExtensionExp ExtensionKind = iota + 1
	ExtensionLog
)

func (k ExtensionKind) String() string {
	switch k {
	case ExtensionExp:
		return "exp"
	case ExtensionLog:
		return "ln"
	}
	return fmt.Sprintf("ExtensionKind(%d)", int(k))
}

// Extension is one generator of the differential field: exp(Arg) or
// ln(Arg).
type Extension struct {
	Kind ExtensionKind
	Arg  gosymint.Expr
}

// Exp returns the extension exp(arg).
func Exp(arg gosymint.Expr) Extension { return Extension{Kind: ExtensionExp, Arg: arg} }

// Log returns the extension ln(arg).
func Log(arg gosymint.Expr) Extension { return Extension{Kind: ExtensionLog, Arg: arg} }

// Expr returns the generator as an expression.
func (e Extension) Expr() gosymint.Expr {
	if e.Kind == ExtensionExp {
		return gosymint.ExpOf(e.Arg)
	}
	return gosymint.LnOf(e.Arg)
}

func (e Extension) String() string { return e.Expr().String() }

func (e Extension) generator() field.Generator {
	if e.Kind == ExtensionExp {
		return field.Generator{Kind: field.Exp, Arg: e.Arg}
	}
	return field.Generator{Kind: field.Log, Arg: e.Arg}
}

func generators(exts []Extension) []field.Generator {
	out := make([]field.Generator, len(exts))
	for i, e := range exts {
		out[i] = e.generator()
	}
	return out
}

// IsRational reports whether f is a rational function of x and the
// extensions, with constant coefficients.
func IsRational(f gosymint.Expr, x string, exts []Extension) bool {
	_, _, err := field.Resolve(x, generators(exts), f)
	return err == nil
}

// ============================================================
// Tower construction
// ============================================================

// maxTowerPasses bounds the rescans of the expressions; every pass but
// the last changes the tower.
const maxTowerPasses = 256

// BuildTower scans exprs for exponentials and logarithms of x, innermost
// first, and returns a minimal list of extensions over which they are
// rational where possible. Exponential arguments carry no constant
// summand and logarithm arguments no constant factor; exponentials whose
// arguments are rational multiples of each other share one generator,
// and so do logarithms of arguments related by a^q = r*v^p.
//
// Sub-terms that cannot be expressed (other functions, algebraic powers,
// logarithms whose relation to an existing one is unclear) are left out;
// IsRational reports them.
func BuildTower(x string, exprs ...gosymint.Expr) ([]Extension, error) {
	b := &towerBuilder{x: x}
	for range maxTowerPasses {
		changed := false
		for _, e := range exprs {
			c, err := b.walk(e)
			if err != nil {
				return nil, err
			}
			if c {
				changed = true
				break
			}
		}
		if !changed {
			return b.exts, nil
		}
	}
	return nil, &ArithmeticError{Op: "tower", Err: errors.Errorf("no fixed point after %d passes", maxTowerPasses)}
}

type towerBuilder struct {
	x    string
	exts []Extension
}

// walk visits e depth first and stops at the first change to the tower.
func (b *towerBuilder) walk(e gosymint.Expr) (bool, error) {
	if !e.Contains(b.x) {
		return false, nil
	}
	switch v := e.(type) {
	case *gosymint.BinOp:
		if c, err := b.walk(v.Left()); c || err != nil {
			return c, err
		}
		return b.walk(v.Right())
	case *gosymint.Func:
		if c, err := b.walk(v.Arg()); c || err != nil {
			return c, err
		}
		switch v.Kind() {
		case gosymint.FuncExp:
			return b.addExp(v.Arg())
		case gosymint.FuncLn:
			return b.addLog(v.Arg())
		}
	}
	return false, nil
}

func (b *towerBuilder) resolve(e gosymint.Expr) (*field.Tower, field.Elem, bool) {
	t, elems, err := field.Resolve(b.x, generators(b.exts), e)
	if err != nil {
		return nil, field.Elem{}, false
	}
	return t, elems[0], true
}

func (b *towerBuilder) level(t *field.Tower, i int) int { return t.BaseLevel() + 1 + i }

func (b *towerBuilder) addExp(g gosymint.Expr) (bool, error) {
	plus, minus := gosymint.Summands(g)
	arg, err := gosymint.Simplify(gosymint.SumOf(b.varying(plus), b.varying(minus)), gosymint.RulesOutput)
	if err != nil {
		return false, arithmetic("tower", err)
	}
	t, u, ok := b.resolve(arg)
	if !ok || algebraicExp(t, u) {
		return false, nil
	}
	for i, ext := range b.exts {
		if ext.Kind != ExtensionExp {
			continue
		}
		ratio, err := u.Quo(t.Var(b.level(t, i)).Arg)
		if err != nil {
			continue
		}
		r, ok := ratio.Rational()
		if !ok {
			continue
		}
		if r.IsInt() {
			return false, nil
		}
		// exp(u) and exp(g) are both integer powers of exp(u/q).
		merged, err := gosymint.Simplify(gosymint.DivOf(ext.Arg, gosymint.NRat(new(big.Rat).SetInt(r.Denom()))), gosymint.RulesOutput)
		if err != nil {
			return false, arithmetic("tower", err)
		}
		b.exts[i].Arg = merged
		return true, nil
	}
	b.exts = append(b.exts, Exp(arg))
	return true, nil
}

func (b *towerBuilder) addLog(g gosymint.Expr) (bool, error) {
	num, den := gosymint.Factors(g)
	arg, err := gosymint.Simplify(gosymint.ProductOf(b.varying(num), b.varying(den)), gosymint.RulesOutput)
	if err != nil {
		return false, arithmetic("tower", err)
	}
	t, a, ok := b.resolve(arg)
	if !ok {
		return false, nil
	}
	for i, ext := range b.exts {
		if ext.Kind != ExtensionLog {
			continue
		}
		if _, _, ok := t.LogRelation(a, t.Var(b.level(t, i)).Arg); ok {
			return false, nil
		}
	}
	for _, ext := range b.exts {
		if ext.Kind == ExtensionLog && summandCount(arg)*summandCount(ext.Arg) > 1 {
			// ln(arg) may still be a combination of the existing
			// logarithms; leave it unrepresented.
			return false, nil
		}
	}
	b.exts = append(b.exts, Log(arg))
	return true, nil
}

// algebraicExp reports u = k*ln(v) + c with k rational, where exp(u) is
// the radical v^k times a constant.
func algebraicExp(t *field.Tower, u field.Elem) bool {
	level := u.Level()
	if level <= t.BaseLevel() || t.Kind(level) != field.Log || !u.IsPoly(level) {
		return false
	}
	num, _, _ := u.Parts(level)
	if num.Deg() != 1 {
		return false
	}
	_, ok := num.Coeff(1).Rational()
	return ok && t.IsConstant(num.Coeff(0))
}

// varying keeps the entries of c that depend on x.
func (b *towerBuilder) varying(c *gosymint.Collection) *gosymint.Collection {
	out := gosymint.NewCollection(0)
	for _, e := range c.All() {
		if e.Contains(b.x) {
			out.Append(e)
		}
	}
	return out
}

func summandCount(e gosymint.Expr) int {
	plus, minus := gosymint.Summands(e)
	return plus.Len() + minus.Len()
}
