package risch

import (
	"github.com/njchilds90/gosymint/internal/field"
)

// fractionalPart integrates a proper fraction a/d with d monic and, for an
// exponential variable, not divisible by t.
func (e *engine) fractionalPart(level int, a, d field.Poly) (antiderivative, error) {
	g, a, d, err := e.hermite(level, a, d)
	if err != nil {
		return antiderivative{}, err
	}
	logs, err := e.logPart(level, a, d)
	if err != nil {
		return antiderivative{}, err
	}
	return rationalPart(g).add(logs), nil
}

// hermite reduces a/d to g' + b/s with s square-free. Each step takes the
// factor v of highest multiplicity m in d = u*v^m and solves
// B*u*D(v) + C*v = a/(1-m), so that
//
//	a/d = (B/v^(m-1))' + ((1-m)*C - u*D(B)) / (u*v^(m-1)).
func (e *engine) hermite(level int, a, d field.Poly) (field.Elem, field.Poly, field.Poly, error) {
	g := field.Zero()
	for !a.IsZero() {
		sq := field.SquareFree(d)
		m := len(sq)
		if m <= 1 {
			break
		}
		v := sq[m-1]
		u, err := field.PolyExactQuo(d, v.Pow(m))
		if err != nil {
			return field.Elem{}, nil, nil, arithmetic("hermite", err)
		}
		udv := u.Mul(e.t.PolyDeriv(v, level))
		if field.PolyGCD(udv, v).Deg() > 0 {
			return field.Elem{}, nil, nil, notIntegrable("special factor %s in denominator", v)
		}
		k := field.Int(int64(1 - m))
		cc, b, err := field.Bezout(v, udv, a.Scale(field.Frac64(1, int64(1-m))))
		if err != nil {
			return field.Elem{}, nil, nil, arithmetic("hermite", err)
		}
		vm1 := v.Pow(m - 1)
		step, err := field.Frac(level, b, vm1)
		if err != nil {
			return field.Elem{}, nil, nil, arithmetic("hermite", err)
		}
		g = g.Add(step)
		a = cc.Scale(k).Sub(u.Mul(e.t.PolyDeriv(b, level)))
		d = u.Mul(vm1)
		if a, d, err = reduce(a, d); err != nil {
			return field.Elem{}, nil, nil, arithmetic("hermite", err)
		}
	}
	return g, a, d, nil
}

// reduce cancels the gcd of a/d and makes d monic.
func reduce(a, d field.Poly) (field.Poly, field.Poly, error) {
	if a.IsZero() {
		return field.Poly{}, field.Const(field.One()), nil
	}
	if g := field.PolyGCD(a, d); g.Deg() > 0 {
		var err error
		if a, err = field.PolyExactQuo(a, g); err != nil {
			return nil, nil, err
		}
		if d, err = field.PolyExactQuo(d, g); err != nil {
			return nil, nil, err
		}
	}
	d, lc := d.Monic()
	inv, err := lc.Inv()
	if err != nil {
		return nil, nil, err
	}
	return a.Scale(inv), d, nil
}
