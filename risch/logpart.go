package risch

import (
	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/internal/field"
)

// logPart integrates a/d with d square-free and monic by the
// Rothstein-Trager method: the residues are the roots z of
// R(z) = res_t(d, a - z*D(d)), each contributing z*ln(gcd(a - z*D(d), d)).
// The residues must be constants.
func (e *engine) logPart(level int, a, d field.Poly) (antiderivative, error) {
	if a.IsZero() {
		return antiderivative{}, nil
	}
	dd := e.t.PolyDeriv(d, level)
	res := field.ResultantInZ(d, a, dd)
	if res.IsZero() {
		return antiderivative{}, notIntegrable("vanishing resultant for %s", d)
	}
	r, err := squareFreePart(res)
	if err != nil {
		return antiderivative{}, arithmetic("log part", err)
	}
	if r.Deg() < 1 {
		return antiderivative{}, notIntegrable("no residues for %s", d)
	}
	for i := 0; i <= r.Deg(); i++ {
		if !e.t.IsConstant(r.Coeff(i)) {
			return antiderivative{}, notIntegrable("residues of %s are not constant", d)
		}
	}
	roots, err := e.residues(r)
	if err != nil {
		return antiderivative{}, err
	}
	e.trace(level).Debugf("residues %v", roots)

	var out antiderivative
	for _, z := range roots {
		theta := field.PolyGCD(a.Sub(dd.Scale(z)), d)
		if theta.Deg() < 1 {
			return antiderivative{}, &ArithmeticError{Op: "log part", Err: field.ErrInexact}
		}
		out = out.addLog(z, field.FromPoly(level, theta))
		if e.t.Kind(level) == field.Exp {
			// D(theta)/theta has the polynomial part deg(theta)*u'.
			u := e.t.Var(level).Arg
			out.rational = out.rational.Sub(z.ScaleInt(int64(theta.Deg())).Mul(u))
		}
	}
	return out, nil
}

func squareFreePart(p field.Poly) (field.Poly, error) {
	g := field.PolyGCD(p, p.DerivT())
	q, err := field.PolyExactQuo(p, g)
	if err != nil {
		return nil, err
	}
	q, _ = q.Monic()
	return q, nil
}

// residues returns the roots of the monic square-free r, which must all
// lie in the constant field.
func (e *engine) residues(r field.Poly) ([]field.Elem, error) {
	if r.Deg() == 1 {
		return []field.Elem{r.Coeff(0).Neg()}, nil
	}
	names := append(e.t.Constants(), gosymint.S(e.t.X()))
	z := gosymint.FreshVar("z", names...)
	poly := e.t.PolyExprIn(r, gosymint.S(z))
	sols, err := gosymint.SolvePolynomial(poly, z)
	if err != nil {
		return nil, notIntegrable("residues of %s: %v", poly, err)
	}
	if len(sols) != r.Deg() {
		return nil, notIntegrable("found %d of %d residues of %s", len(sols), r.Deg(), poly)
	}
	out := make([]field.Elem, len(sols))
	for i, s := range sols {
		c, err := e.t.FromExpr(s)
		if err != nil || !e.t.IsConstant(c) {
			return nil, notIntegrable("residue %s is not in the constant field", s)
		}
		out[i] = c
	}
	return out, nil
}
