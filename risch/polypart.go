package risch

import (
	"math/big"

	"github.com/njchilds90/gosymint/internal/field"
)

// term is coeff*t^deg; deg may be negative for exponential variables.
type term struct {
	deg   int
	coeff field.Elem
}

func polyTerms(p field.Poly) []term {
	var out []term
	for i := 0; i <= p.Deg(); i++ {
		if c := p.Coeff(i); !c.IsZero() {
			out = append(out, term{deg: i, coeff: c})
		}
	}
	return out
}

// polyPartBase integrates a polynomial in x with constant coefficients.
func (e *engine) polyPartBase(level int, terms []term) antiderivative {
	x := e.t.T(level)
	result := field.Zero()
	for _, tm := range terms {
		xn, _ := x.Pow(tm.deg + 1)
		result = result.Add(tm.coeff.Mul(xn).Scale(big.NewRat(1, int64(tm.deg+1))))
	}
	return rationalPart(result)
}

// polyPartExp integrates sum h_i t^i with t = exp(u). The constant term
// is integrated in the field below; every other term needs y with
// y' + i u' y = h_i there, giving y t^i.
func (e *engine) polyPartExp(level int, terms []term) (antiderivative, error) {
	u := e.t.Var(level).Arg
	du := e.t.DerivArg(level)
	t := e.t.T(level)
	var out antiderivative
	for _, tm := range terms {
		if tm.deg == 0 {
			a, err := e.integrate(tm.coeff)
			if err != nil {
				return antiderivative{}, err
			}
			out = out.add(a)
			continue
		}
		n := int64(tm.deg)
		y, err := e.solveRDE(du.ScaleInt(n), tm.coeff, rationalPart(u.ScaleInt(n)), level-1)
		if err != nil {
			return antiderivative{}, err
		}
		tn, err := t.Pow(tm.deg)
		if err != nil {
			return antiderivative{}, arithmetic("exp polynomial part", err)
		}
		out = out.add(rationalPart(y.Mul(tn)))
	}
	return out, nil
}

// polyPartLog integrates sum h_i t^i with t = ln(u), from the top
// coefficient down. Each coefficient q_i of the antiderivative is fixed
// up to a constant, which the ln(u) part of the next integral determines.
func (e *engine) polyPartLog(level int, h field.Poly) (antiderivative, error) {
	n := h.Deg()
	if n < 0 {
		return antiderivative{}, nil
	}
	u := e.t.Var(level).Arg
	dt := e.t.Dt(level).Coeff(0)
	q := make([]field.Elem, n+2)
	var logs []logTerm
	for i := n; i >= 0; i-- {
		g := h.Coeff(i).Sub(q[i+1].ScaleInt(int64(i + 1)).Mul(dt))
		a, err := e.integrate(g)
		if err != nil {
			return antiderivative{}, err
		}
		s, rest := splitLogOf(e.t, a.logs, u)
		if i > 0 && len(rest) > 0 {
			return antiderivative{}, notIntegrable("coefficient %s of %s needs new logarithms", g, e.t.Var(level).Expr)
		}
		q[i+1] = q[i+1].Add(s.Scale(big.NewRat(1, int64(i+1))))
		q[i] = a.rational
		if i == 0 {
			logs = rest
		}
	}
	p := make(field.Poly, len(q))
	copy(p, q)
	return antiderivative{rational: field.FromPoly(level, p), logs: logs}, nil
}
