// Package field implements exact arithmetic in a differential field
// Q(c1..ck)(x)(t1)...(tn) of rational functions over a tower of
// variables: symbolic constants, the integration variable and
// exponential or logarithmic generators.
//
// Elements are kept in canonical form, so Equal decides equality and in
// particular zero.
package field

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInexact is returned when a division that must be exact leaves a
	// remainder.
	ErrInexact = errors.New("inexact polynomial division")
)

// Elem is an element of the field. Level 0 is a rational number;
// otherwise the element is num/den with num, den polynomials in the
// variable at that level, gcd(num, den) = 1, den monic, and at least one
// of them of positive degree. The zero value is the rational 0.
type Elem struct {
	v        int
	r        *big.Rat
	num, den Poly
}

func Rat(r *big.Rat) Elem { return Elem{r: new(big.Rat).Set(r)} }
func Int(n int64) Elem    { return Elem{r: new(big.Rat).SetInt64(n)} }

func Frac64(p, q int64) Elem {
	return Elem{r: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func Zero() Elem { return Elem{} }
func One() Elem  { return Int(1) }

// variable returns the element t_level.
func variable(level int) Elem {
	return Elem{v: level, num: Poly{Zero(), One()}, den: Poly{One()}}
}

func (e Elem) rat() *big.Rat {
	if e.r == nil {
		return new(big.Rat)
	}
	return e.r
}

// Level is the index of the highest variable e depends on.
func (e Elem) Level() int { return e.v }

func (e Elem) IsZero() bool { return e.v == 0 && e.rat().Sign() == 0 }
func (e Elem) IsOne() bool  { return e.v == 0 && e.rat().Cmp(big.NewRat(1, 1)) == 0 }

// Rational returns the value of a level 0 element.
func (e Elem) Rational() (*big.Rat, bool) {
	if e.v != 0 {
		return nil, false
	}
	return new(big.Rat).Set(e.rat()), true
}

// Integer returns the value of an integral level 0 element.
func (e Elem) Integer() (int64, bool) {
	r, ok := e.Rational()
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// Parts returns numerator and denominator as polynomials in the variable
// at level. It fails when e depends on a higher variable.
func (e Elem) Parts(level int) (num, den Poly, ok bool) {
	switch {
	case e.v > level:
		return nil, nil, false
	case e.v < level:
		if e.IsZero() {
			return Poly{}, Poly{One()}, true
		}
		return Poly{e}, Poly{One()}, true
	}
	return e.num.clone(), e.den.clone(), true
}

// IsPoly reports whether e is a polynomial in the variable at level.
func (e Elem) IsPoly(level int) bool {
	_, den, ok := e.Parts(level)
	return ok && den.Deg() == 0
}

func (e Elem) Equal(o Elem) bool {
	if e.v != o.v {
		return false
	}
	if e.v == 0 {
		return e.rat().Cmp(o.rat()) == 0
	}
	return e.num.Equal(o.num) && e.den.Equal(o.den)
}

func (e Elem) String() string {
	if e.v == 0 {
		return e.rat().RatString()
	}
	if e.den.Deg() == 0 {
		return e.num.format(e.v)
	}
	return "(" + e.num.format(e.v) + ")/(" + e.den.format(e.v) + ")"
}

// ============================================================
// Arithmetic
// ============================================================

// Frac builds num/den in the variable at level and normalizes it.
func Frac(level int, num, den Poly) (Elem, error) {
	num, den = num.trim(), den.trim()
	if den.IsZero() {
		return Elem{}, ErrDivisionByZero
	}
	if num.IsZero() {
		return Zero(), nil
	}
	if g := PolyGCD(num, den); g.Deg() > 0 {
		var err error
		if num, err = PolyExactQuo(num, g); err != nil {
			return Elem{}, err
		}
		if den, err = PolyExactQuo(den, g); err != nil {
			return Elem{}, err
		}
	}
	lc := den.Lead()
	if !lc.IsOne() {
		inv, err := lc.Inv()
		if err != nil {
			return Elem{}, err
		}
		num, den = num.Scale(inv), den.Scale(inv)
	}
	if num.Deg() == 0 && den.Deg() == 0 {
		return num[0], nil
	}
	return Elem{v: level, num: num, den: den}, nil
}

// FromPoly lifts a polynomial in the variable at level into the field.
func FromPoly(level int, p Poly) Elem {
	p = p.trim()
	switch p.Deg() {
	case -1:
		return Zero()
	case 0:
		return p[0]
	}
	return Elem{v: level, num: p, den: Poly{One()}}
}

func mustFrac(level int, num, den Poly) Elem {
	e, err := Frac(level, num, den)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Elem) Add(o Elem) Elem {
	switch {
	case e.v == 0 && o.v == 0:
		return Elem{r: new(big.Rat).Add(e.rat(), o.rat())}
	case e.IsZero():
		return o
	case o.IsZero():
		return e
	case e.v < o.v:
		return o.Add(e)
	case e.v > o.v:
		return mustFrac(e.v, e.num.Add(e.den.Scale(o)), e.den)
	}
	if e.den.Equal(o.den) {
		return mustFrac(e.v, e.num.Add(o.num), e.den)
	}
	num := e.num.Mul(o.den).Add(o.num.Mul(e.den))
	return mustFrac(e.v, num, e.den.Mul(o.den))
}

func (e Elem) Neg() Elem {
	if e.v == 0 {
		return Elem{r: new(big.Rat).Neg(e.rat())}
	}
	return Elem{v: e.v, num: e.num.Neg(), den: e.den}
}

func (e Elem) Sub(o Elem) Elem { return e.Add(o.Neg()) }

func (e Elem) Mul(o Elem) Elem {
	switch {
	case e.v == 0 && o.v == 0:
		return Elem{r: new(big.Rat).Mul(e.rat(), o.rat())}
	case e.IsZero() || o.IsZero():
		return Zero()
	case e.IsOne():
		return o
	case o.IsOne():
		return e
	case e.v < o.v:
		return o.Mul(e)
	case e.v > o.v:
		// o is a unit of the coefficient field.
		return Elem{v: e.v, num: e.num.Scale(o), den: e.den}
	}
	return mustFrac(e.v, e.num.Mul(o.num), e.den.Mul(o.den))
}

func (e Elem) Inv() (Elem, error) {
	if e.IsZero() {
		return Elem{}, ErrDivisionByZero
	}
	if e.v == 0 {
		return Elem{r: new(big.Rat).Inv(e.rat())}, nil
	}
	num, den := e.den, e.num
	lc := den.Lead()
	inv, err := lc.Inv()
	if err != nil {
		return Elem{}, err
	}
	num, den = num.Scale(inv), den.Scale(inv)
	if num.Deg() == 0 && den.Deg() == 0 {
		return num[0], nil
	}
	return Elem{v: e.v, num: num, den: den}, nil
}

func (e Elem) Quo(o Elem) (Elem, error) {
	inv, err := o.Inv()
	if err != nil {
		return Elem{}, err
	}
	return e.Mul(inv), nil
}

// MustQuo divides by an element known to be non-zero.
func (e Elem) MustQuo(o Elem) Elem {
	q, err := e.Quo(o)
	if err != nil {
		panic(err)
	}
	return q
}

func (e Elem) Pow(n int) (Elem, error) {
	if n < 0 {
		inv, err := e.Inv()
		if err != nil {
			return Elem{}, err
		}
		return inv.Pow(-n)
	}
	result, base := One(), e
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result, nil
}

// Scale multiplies by a rational number.
func (e Elem) Scale(r *big.Rat) Elem { return e.Mul(Rat(r)) }

// ScaleInt multiplies by an integer.
func (e Elem) ScaleInt(n int64) Elem { return e.Mul(Int(n)) }
