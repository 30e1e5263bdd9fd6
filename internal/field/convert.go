package field

import (
	"math/big"

	"github.com/njchilds90/gosymint"
	"github.com/pkg/errors"
)

// FromExpr converts e into a field element. Sub-expressions free of the
// integration variable are looked up among the constants; a missing one
// is reported as *UnknownConstantError.
func (t *Tower) FromExpr(e gosymint.Expr) (Elem, error) {
	if level, ok := t.lookup(e); ok {
		return variable(level), nil
	}
	switch v := e.(type) {
	case *gosymint.Num:
		return Rat(v.Rat()), nil
	case *gosymint.Sym:
		return t.constant(e)
	case *gosymint.BinOp:
		return t.fromBinOp(v)
	case *gosymint.Func:
		if !v.Contains(t.x) {
			return t.constant(e)
		}
		switch v.Kind() {
		case gosymint.FuncExp:
			return t.fromExp(v)
		case gosymint.FuncLn:
			return t.fromLog(v)
		}
	case *gosymint.Operator:
		if !v.Contains(t.x) {
			return t.constant(e)
		}
	}
	return Elem{}, errors.Wrapf(ErrNotRational, "%s", e)
}

func (t *Tower) lookup(e gosymint.Expr) (int, bool) {
	for i := len(t.vars) - 1; i >= 1; i-- {
		if t.vars[i].Expr.Equal(e) {
			return i, true
		}
	}
	return 0, false
}

func (t *Tower) constant(e gosymint.Expr) (Elem, error) {
	if e.Contains(t.x) {
		return Elem{}, errors.Wrapf(ErrNotRational, "%s", e)
	}
	if level, ok := t.lookup(e); ok {
		return variable(level), nil
	}
	return Elem{}, &UnknownConstantError{Expr: e}
}

func (t *Tower) fromBinOp(v *gosymint.BinOp) (Elem, error) {
	if v.Op() == gosymint.OpPower {
		n, ok := v.Right().(*gosymint.Num)
		if !ok || !n.IsInteger() {
			if !v.Contains(t.x) {
				return t.constant(v)
			}
			return Elem{}, errors.Wrapf(ErrNotRational, "non-integer power %s", v)
		}
		k, ok := n.Int64()
		if !ok {
			return Elem{}, errors.Wrapf(ErrNotRational, "exponent too large in %s", v)
		}
		base, err := t.FromExpr(v.Left())
		if err != nil {
			return Elem{}, err
		}
		return base.Pow(int(k))
	}
	l, err := t.FromExpr(v.Left())
	if err != nil {
		return Elem{}, err
	}
	r, err := t.FromExpr(v.Right())
	if err != nil {
		return Elem{}, err
	}
	switch v.Op() {
	case gosymint.OpSum:
		return l.Add(r), nil
	case gosymint.OpDifference:
		return l.Sub(r), nil
	case gosymint.OpProduct:
		return l.Mul(r), nil
	}
	return l.Quo(r)
}

// fromExp matches exp(g) against the exponential generators: constant
// summands of g become the constant exp(c), and the rest must be an
// integer multiple n of a generator argument, giving t^n.
func (t *Tower) fromExp(f *gosymint.Func) (Elem, error) {
	plus, minus := gosymint.Summands(f.Arg())
	varying, fixed := gosymint.NewCollection(0), gosymint.NewCollection(0)
	varyingMinus, fixedMinus := gosymint.NewCollection(0), gosymint.NewCollection(0)
	for _, s := range plus.All() {
		if s.Contains(t.x) {
			varying.Append(s)
		} else {
			fixed.Append(s)
		}
	}
	for _, s := range minus.All() {
		if s.Contains(t.x) {
			varyingMinus.Append(s)
		} else {
			fixedMinus.Append(s)
		}
	}
	g, err := t.FromExpr(gosymint.SumOf(varying, varyingMinus))
	if err != nil {
		return Elem{}, err
	}
	result := Elem{}
	found := false
	for i := len(t.vars) - 1; i > t.base; i-- {
		v := t.vars[i]
		if v.Kind != Exp {
			continue
		}
		ratio, err := g.Quo(v.Arg)
		if err != nil {
			continue
		}
		if n, ok := ratio.Integer(); ok {
			if result, err = variable(i).Pow(int(n)); err != nil {
				return Elem{}, err
			}
			found = true
			break
		}
	}
	if !found {
		return Elem{}, errors.Wrapf(ErrNotRational, "%s matches no exponential", f)
	}
	if fixed.IsEmpty() && fixedMinus.IsEmpty() {
		return result, nil
	}
	c, err := gosymint.Simplify(gosymint.SumOf(fixed, fixedMinus), gosymint.RulesOutput)
	if err != nil {
		return Elem{}, err
	}
	if n, ok := c.(*gosymint.Num); ok && n.IsZero() {
		return result, nil
	}
	k, err := t.constant(gosymint.ExpOf(c))
	if err != nil {
		return Elem{}, err
	}
	return result.Mul(k), nil
}

// fromLog matches ln(a) against the logarithmic generators: when
// a^q = r*u^p with r constant, ln(a) = (p/q)*t + ln(r)/q.
func (t *Tower) fromLog(f *gosymint.Func) (Elem, error) {
	a, err := t.FromExpr(f.Arg())
	if err != nil {
		return Elem{}, err
	}
	for i := len(t.vars) - 1; i > t.base; i-- {
		v := t.vars[i]
		if v.Kind != Log {
			continue
		}
		k, ratio, ok := t.LogRelation(a, v.Arg)
		if !ok {
			continue
		}
		result := variable(i).Scale(k)
		if ratio.IsOne() {
			return result, nil
		}
		c, err := gosymint.Simplify(gosymint.LnOf(t.ToExpr(ratio)), gosymint.RulesOutput)
		if err != nil {
			return Elem{}, err
		}
		lr, err := t.FromExpr(c)
		if err != nil {
			return Elem{}, err
		}
		return result.Add(lr.Scale(new(big.Rat).SetFrac(big.NewInt(1), k.Denom()))), nil
	}
	return Elem{}, errors.Wrapf(ErrNotRational, "%s matches no logarithm", f)
}

// maxLogPower bounds p and q in LogRelation.
const maxLogPower = 64

// LogRelation reports whether ln(a) = k*ln(v) + ln(r)/q for a rational
// k = p/q and a constant r = a^q / v^p, and returns k and r.
func (t *Tower) LogRelation(a, v Elem) (*big.Rat, Elem, bool) {
	if a.IsZero() || v.IsZero() {
		return nil, Elem{}, false
	}
	da, err := t.Deriv(a).Quo(a)
	if err != nil {
		return nil, Elem{}, false
	}
	dv, err := t.Deriv(v).Quo(v)
	if err != nil || dv.IsZero() {
		return nil, Elem{}, false
	}
	ratio, err := da.Quo(dv)
	if err != nil {
		return nil, Elem{}, false
	}
	k, ok := ratio.Rational()
	if !ok || k.Sign() == 0 || !k.Num().IsInt64() || !k.Denom().IsInt64() {
		return nil, Elem{}, false
	}
	p, q := k.Num().Int64(), k.Denom().Int64()
	if p > maxLogPower || p < -maxLogPower || q > maxLogPower {
		return nil, Elem{}, false
	}
	aq, err := a.Pow(int(q))
	if err != nil {
		return nil, Elem{}, false
	}
	vp, err := v.Pow(int(p))
	if err != nil {
		return nil, Elem{}, false
	}
	r, err := aq.Quo(vp)
	if err != nil || !t.IsConstant(r) {
		return nil, Elem{}, false
	}
	return k, r, true
}

// ToExpr converts a field element back into an expression.
func (t *Tower) ToExpr(e Elem) gosymint.Expr {
	if e.Level() == 0 {
		return gosymint.NRat(e.rat())
	}
	num := t.PolyExpr(e.num, e.Level())
	if e.den.Deg() == 0 {
		return num
	}
	return gosymint.DivOf(num, t.PolyExpr(e.den, e.Level()))
}

// PolyExpr converts a polynomial in the variable at level.
func (t *Tower) PolyExpr(p Poly, level int) gosymint.Expr {
	return t.polyExprIn(p, t.vars[level].Expr)
}

// PolyExprIn converts a polynomial with the variable rendered as v.
func (t *Tower) PolyExprIn(p Poly, v gosymint.Expr) gosymint.Expr {
	return t.polyExprIn(p, v)
}

func (t *Tower) polyExprIn(p Poly, v gosymint.Expr) gosymint.Expr {
	var terms []gosymint.Expr
	for i := len(p) - 1; i >= 0; i-- {
		c := p[i]
		if c.IsZero() {
			continue
		}
		terms = append(terms, gosymint.MulOf(t.ToExpr(c), gosymint.PowOf(v, gosymint.N(int64(i)))))
	}
	return gosymint.AddOf(terms...)
}
