package risch

import (
	"github.com/njchilds90/gosymint/internal/field"
)

// degreeBound bounds deg q for polynomial solutions of a*q' + b*q = c in
// the variable at level. A bound that is too large only costs time; the
// solution is verified afterwards.
func (e *engine) degreeBound(a, b, c field.Poly, level int) int {
	var n int
	switch e.t.Kind(level) {
	case field.Exp:
		n = e.expBound(a, b, c, level)
	case field.Log:
		n = e.logBound(a, b, c, level)
	default:
		n = baseBound(a, b, c)
	}
	e.trace(level).Debugf("degree bound %d", n)
	return n
}

// baseBound: D lowers degrees by one, so the leading terms of a*q' and
// b*q cancel only when deg a = deg b + 1 and deg q = -lc(b)/lc(a).
func baseBound(a, b, c field.Poly) int {
	da, db, dc := a.Deg(), b.Deg(), c.Deg()
	switch {
	case b.IsZero() || da > db+1:
		return dc - da + 1
	case da < db+1:
		return dc - db
	}
	n := dc - db
	alpha, err := b.Lead().Neg().Quo(a.Lead())
	if err != nil {
		return n
	}
	if m, ok := alpha.Integer(); ok && m > int64(n) {
		n = int(m)
	}
	return n
}

// expBound: D keeps degrees, so cancellation needs deg a = deg b and
// -lc(b)/lc(a) = m*u' + D(v)/v, allowing degree m.
func (e *engine) expBound(a, b, c field.Poly, level int) int {
	da, db, dc := a.Deg(), b.Deg(), c.Deg()
	switch {
	case b.IsZero() || da > db:
		return dc - da
	case da < db:
		return dc - db
	}
	n := dc - db
	alpha, err := b.Lead().Neg().Quo(a.Lead())
	if err != nil {
		return n
	}
	ia, err := e.integrate(alpha)
	if err != nil {
		return n
	}
	if _, ok := logProduct(ia.logs); !ok {
		return n
	}
	ratio, err := e.t.Deriv(ia.rational).Quo(e.t.DerivArg(level))
	if err != nil {
		return n
	}
	if m, ok := ratio.Integer(); ok && m > int64(n) {
		n = int(m)
	}
	return n
}

// logBound: D lowers degrees by at most one. With deg a = deg b + 1 the
// leading terms cancel when -lc(b)/lc(a) = D(z) + m*t'; with
// deg a = deg b the next coefficients decide in the same way.
func (e *engine) logBound(a, b, c field.Poly, level int) int {
	da, db, dc := a.Deg(), b.Deg(), c.Deg()
	switch {
	case b.IsZero() || da > db+1:
		return dc - da + 1
	case da < db:
		return dc - db
	case da == db+1:
		n := dc - da + 1
		alpha, err := b.Lead().Neg().Quo(a.Lead())
		if err != nil {
			return n
		}
		return max(n, e.logMultiple(alpha, level))
	}
	n := dc - db
	la := a.Lead()
	beta, err := b.Lead().Mul(a.Coeff(da - 1)).Sub(la.Mul(b.Coeff(db - 1))).Quo(la.Mul(la))
	if err != nil || beta.IsZero() {
		return n
	}
	return max(n, e.logMultiple(beta, level))
}

// logMultiple returns m when int f = z + m*t with z below t and m a
// non-negative integer, and -1 otherwise.
func (e *engine) logMultiple(f field.Elem, level int) int {
	a, err := e.integrate(f)
	if err != nil {
		return -1
	}
	s, rest := splitLogOf(e.t, a.logs, e.t.Var(level).Arg)
	if len(rest) > 0 {
		return -1
	}
	m, ok := s.Integer()
	if !ok || m < 0 {
		return -1
	}
	return int(m)
}
