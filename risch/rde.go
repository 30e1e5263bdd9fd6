package risch

import (
	"github.com/njchilds90/gosymint/internal/field"
	"github.com/pkg/errors"
)

// solveRDE finds y at or below level with D(y) + f*y = g. intF is a known
// antiderivative of f, possibly partial, used for weak normalization.
func (e *engine) solveRDE(f, g field.Elem, intF antiderivative, level int) (field.Elem, error) {
	if err := e.enter("rde"); err != nil {
		return field.Elem{}, err
	}
	defer e.leave()

	if g.IsZero() {
		return field.Zero(), nil
	}
	if level < e.t.BaseLevel() {
		if f.IsZero() {
			return field.Elem{}, notIntegrable("constant y with y' = %s", g)
		}
		y, err := g.Quo(f)
		return y, arithmetic("rde", err)
	}
	if f.IsZero() {
		a, err := e.integrate(g)
		if err != nil {
			return field.Elem{}, err
		}
		if len(a.logs) > 0 {
			return field.Elem{}, notIntegrable("integral of %s needs logarithms", g)
		}
		return a.rational, nil
	}
	e.trace(level).Debugf("rde y' + (%s) y = %s", f, g)

	p := e.normalizer(intF, level)
	dp, err := e.t.Deriv(p).Quo(p)
	if err != nil {
		return field.Elem{}, arithmetic("rde", err)
	}
	ff := f.Sub(dp)
	gg := g.Mul(p)

	nF, dF, ok := ff.Parts(level)
	nG, dG, ok2 := gg.Parts(level)
	if !ok || !ok2 {
		return field.Elem{}, &ArithmeticError{Op: "rde", Err: errors.Errorf("coefficients above level %d", level)}
	}
	denom, err := e.denominator(dF, dG, level)
	if err != nil {
		return field.Elem{}, err
	}
	// y = q/T turns the equation into a*q' + b*q = c.
	a := dF.Mul(denom)
	b := nF.Mul(denom).Sub(dF.Mul(e.t.PolyDeriv(denom, level)))
	c, err := field.PolyExactQuo(nG.Mul(dF).Mul(denom.Mul(denom)), dG)
	if err != nil {
		return field.Elem{}, notIntegrable("denominator %s of %s admits no solution", dG, g)
	}
	n := e.degreeBound(a, b, c, level)
	q, err := e.spde(a, b, c, n, level)
	if err != nil {
		return field.Elem{}, err
	}
	y, err := field.FromPoly(level, q).Quo(field.FromPoly(level, denom).Mul(p))
	if err != nil {
		return field.Elem{}, arithmetic("rde", err)
	}
	if !e.t.Deriv(y).Add(f.Mul(y)).Equal(g) {
		return field.Elem{}, notIntegrable("no solution of y' + (%s) y = %s", f, g)
	}
	return y, nil
}

// normalizer returns p = exp of the part of intF that lies in the field:
// logarithms with positive integer coefficients and an integer multiple
// of a logarithmic variable in the rational part. Replacing y by z/p
// removes the matching poles of f.
func (e *engine) normalizer(intF antiderivative, level int) field.Elem {
	p := field.One()
	for _, l := range intF.logs {
		n, ok := l.coeff.Integer()
		if !ok || n <= 0 || l.arg.Level() > level {
			continue
		}
		if w, err := l.arg.Pow(int(n)); err == nil {
			p = p.Mul(w)
		}
	}
	r := intF.rational
	lv := r.Level()
	if lv <= e.t.BaseLevel() || lv > level || e.t.Kind(lv) != field.Log {
		return p
	}
	num, den, _ := r.Parts(lv)
	if den.Deg() != 0 || num.Deg() != 1 {
		return p
	}
	if n, ok := num.Coeff(1).Integer(); ok && n > 0 {
		if w, err := e.t.Var(lv).Arg.Pow(int(n)); err == nil && w.Level() <= level {
			p = p.Mul(w)
		}
	}
	return p
}

// denominator bounds the denominator of a solution:
// T = gcd(dG, dG')/gcd(g0, g0') with g0 = gcd(dF, dG), over the part of
// dG prime to t, times t^ord(dG) for an exponential variable.
func (e *engine) denominator(dF, dG field.Poly, level int) (field.Poly, error) {
	ord := 0
	if e.t.Kind(level) == field.Exp {
		ord = dG.Order()
		dG = field.Poly(dG[ord:])
		dF = field.Poly(dF[dF.Order():])
	}
	g0 := field.PolyGCD(dF, dG)
	hi := field.PolyGCD(dG, dG.DerivT())
	lo := field.PolyGCD(g0, g0.DerivT())
	t, err := field.PolyExactQuo(hi, lo)
	if err != nil {
		return nil, arithmetic("rde denominator", err)
	}
	return t.Shift(ord), nil
}

// spde reduces a*q' + b*q = c with deg q <= n to the case of constant a.
// With b*r + a*z = c and deg r < deg a, q = a*h + r where
// a*h' + (b + a')*h = z - r' and deg h <= n - deg a.
func (e *engine) spde(a, b, c field.Poly, n, level int) (field.Poly, error) {
	if err := e.enter("spde"); err != nil {
		return nil, err
	}
	defer e.leave()

	if c.IsZero() {
		return field.Poly{}, nil
	}
	if n < 0 {
		return nil, notIntegrable("degree bound exhausted")
	}
	if g := field.PolyGCD(a, b); g.Deg() > 0 {
		var err error
		if c, err = field.PolyExactQuo(c, g); err != nil {
			return nil, notIntegrable("gcd %s does not divide %s", g, c)
		}
		a, _ = field.PolyExactQuo(a, g)
		b, _ = field.PolyExactQuo(b, g)
	}
	if a.Deg() == 0 {
		inv, err := a.Lead().Inv()
		if err != nil {
			return nil, arithmetic("spde", err)
		}
		return e.noCancel(b.Scale(inv), c.Scale(inv), n, level)
	}
	z, r, err := field.Bezout(a, b, c)
	if err != nil {
		return nil, notIntegrable("spde: %v", err)
	}
	h, err := e.spde(a, b.Add(e.t.PolyDeriv(a, level)), z.Sub(e.t.PolyDeriv(r, level)), n-a.Deg(), level)
	if err != nil {
		return nil, err
	}
	return a.Mul(h).Add(r), nil
}

// noCancel solves q' + b*q = c with deg q <= n.
func (e *engine) noCancel(b, c field.Poly, n, level int) (field.Poly, error) {
	kind := e.t.Kind(level)
	switch {
	case b.IsZero():
		a, err := e.integrate(field.FromPoly(level, c))
		if err != nil {
			return nil, err
		}
		if len(a.logs) > 0 || !a.rational.IsPoly(level) {
			return nil, notIntegrable("integral of %s is not a polynomial", c)
		}
		q, _, _ := a.rational.Parts(level)
		if q.Deg() > n {
			return nil, notIntegrable("integral of %s exceeds degree %d", c, n)
		}
		return q, nil
	case kind == field.Base || b.Deg() > 0:
		return e.noCancelLeading(b, c, n, level)
	case kind == field.Exp:
		return e.cancelExp(b.Coeff(0), c, n, level)
	case kind == field.Log:
		return e.cancelLog(b.Coeff(0), c, n, level)
	}
	return nil, &ArithmeticError{Op: "rde", Err: errors.Errorf("no cancellation rule for %s", kind)}
}

// noCancelLeading peels q off from the top when deg(b*q) exceeds deg(q').
func (e *engine) noCancelLeading(b, c field.Poly, n, level int) (field.Poly, error) {
	q := field.Poly{}
	lb, err := b.Lead().Inv()
	if err != nil {
		return nil, arithmetic("rde", err)
	}
	for !c.IsZero() {
		if err := e.ctx.Err(); err != nil {
			return nil, err
		}
		m := c.Deg() - b.Deg()
		if m < 0 || m > n {
			return nil, notIntegrable("no polynomial solution of degree %d", n)
		}
		s := field.Monomial(c.Lead().Mul(lb), m)
		q = q.Add(s)
		c = c.Sub(e.t.PolyDeriv(s, level).Add(s.Mul(b)))
		n = m - 1
	}
	return q, nil
}

// cancelExp solves q' + b*q = c for t = exp(u) with b below t. When
// exp(int b) is in the field, (p*q)' = p*c gives q directly; otherwise
// each coefficient solves q_m' + (b + m u') q_m = c_m.
func (e *engine) cancelExp(b field.Elem, c field.Poly, n, level int) (field.Poly, error) {
	intB, err := e.integrate(b)
	if err != nil && isContextErr(err) {
		return nil, err
	}
	known := err == nil
	if known {
		if p, ok := e.expIntegral(intB, level); ok {
			return e.cancelClosed(p, c, n, level)
		}
	}
	if c.Deg() > n {
		return nil, notIntegrable("no polynomial solution of degree %d", n)
	}
	u := e.t.Var(level).Arg
	du := e.t.DerivArg(level)
	q := field.Poly{}
	for m := 0; m <= c.Deg(); m++ {
		cm := c.Coeff(m)
		if cm.IsZero() {
			continue
		}
		var intF antiderivative
		if known {
			intF = intB.add(rationalPart(u.ScaleInt(int64(m))))
		}
		s, err := e.solveRDE(b.Add(du.ScaleInt(int64(m))), cm, intF, level-1)
		if err != nil {
			return nil, err
		}
		q = q.Add(field.Monomial(s, m))
	}
	return q, nil
}

// cancelLog solves q' + b*q = c for t = ln(u) with b below t, one
// leading coefficient at a time: q_m' + b*q_m = lc(c).
func (e *engine) cancelLog(b field.Elem, c field.Poly, n, level int) (field.Poly, error) {
	intB, err := e.integrate(b)
	if err != nil && isContextErr(err) {
		return nil, err
	}
	known := err == nil
	if known {
		if p, ok := e.expIntegral(intB, level); ok {
			return e.cancelClosed(p, c, n, level)
		}
	}
	var intF antiderivative
	if known {
		intF = intB
	}
	q := field.Poly{}
	for !c.IsZero() {
		m := c.Deg()
		if m > n {
			return nil, notIntegrable("no polynomial solution of degree %d", n)
		}
		s, err := e.solveRDE(b, c.Lead(), intF, level-1)
		if err != nil {
			return nil, err
		}
		tm := field.Monomial(s, m)
		q = q.Add(tm)
		c = c.Sub(e.t.PolyDeriv(tm, level).Add(tm.Scale(b)))
		n = m - 1
	}
	return q, nil
}

// cancelClosed solves q' + b*q = c when p = exp(int b) is in the field.
func (e *engine) cancelClosed(p field.Elem, c field.Poly, n, level int) (field.Poly, error) {
	a, err := e.integrate(p.Mul(field.FromPoly(level, c)))
	if err != nil {
		return nil, err
	}
	if len(a.logs) > 0 {
		return nil, notIntegrable("integral of %s needs logarithms", c)
	}
	y, err := a.rational.Quo(p)
	if err != nil {
		return nil, arithmetic("rde", err)
	}
	if !y.IsPoly(level) {
		return nil, notIntegrable("solution %s is not a polynomial", y)
	}
	q, _, _ := y.Parts(level)
	if q.Deg() > n {
		return nil, notIntegrable("solution %s exceeds degree %d", y, n)
	}
	return q, nil
}

// expIntegral returns exp(a) when it lies in the field: the logarithms
// need integer coefficients and the rational part must be constant or,
// over t = exp(u), an integer multiple of u plus a constant.
func (e *engine) expIntegral(a antiderivative, level int) (field.Elem, bool) {
	p, ok := logProduct(a.logs)
	if !ok {
		return field.Elem{}, false
	}
	dr := e.t.Deriv(a.rational)
	if dr.IsZero() {
		return p, true
	}
	if e.t.Kind(level) != field.Exp {
		return field.Elem{}, false
	}
	ratio, err := dr.Quo(e.t.DerivArg(level))
	if err != nil {
		return field.Elem{}, false
	}
	m, ok := ratio.Integer()
	if !ok {
		return field.Elem{}, false
	}
	tm, err := e.t.T(level).Pow(int(m))
	if err != nil {
		return field.Elem{}, false
	}
	return p.Mul(tm), true
}
