package field

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Poly is a polynomial with coefficients in the field below its variable,
// stored by ascending degree without trailing zeros.
type Poly []Elem

// Monomial returns c*t^n.
func Monomial(c Elem, n int) Poly {
	if c.IsZero() {
		return Poly{}
	}
	p := make(Poly, n+1)
	p[n] = c
	return p
}

// Const returns the constant polynomial c.
func Const(c Elem) Poly { return Monomial(c, 0) }

func (p Poly) trim() Poly {
	i := len(p)
	for i > 0 && p[i-1].IsZero() {
		i--
	}
	return p[:i]
}

func (p Poly) clone() Poly {
	out := make(Poly, len(p))
	copy(out, p)
	return out
}

// Deg is the degree; the zero polynomial has degree -1.
func (p Poly) Deg() int { return len(p.trim()) - 1 }

func (p Poly) IsZero() bool { return p.Deg() < 0 }

// Lead returns the leading coefficient, zero for the zero polynomial.
func (p Poly) Lead() Elem {
	p = p.trim()
	if len(p) == 0 {
		return Zero()
	}
	return p[len(p)-1]
}

// Coeff returns the coefficient of t^i.
func (p Poly) Coeff(i int) Elem {
	if i < 0 || i >= len(p) {
		return Zero()
	}
	return p[i]
}

// Order is the largest n with t^n dividing p; -1 for zero.
func (p Poly) Order() int {
	for i, c := range p {
		if !c.IsZero() {
			return i
		}
	}
	return -1
}

func (p Poly) Equal(o Poly) bool {
	p, o = p.trim(), o.trim()
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (p Poly) Add(o Poly) Poly {
	n := max(len(p), len(o))
	out := make(Poly, n)
	for i := range n {
		out[i] = p.Coeff(i).Add(o.Coeff(i))
	}
	return out.trim()
}

func (p Poly) Neg() Poly {
	out := make(Poly, len(p))
	for i, c := range p {
		out[i] = c.Neg()
	}
	return out
}

func (p Poly) Sub(o Poly) Poly { return p.Add(o.Neg()) }

func (p Poly) Mul(o Poly) Poly {
	p, o = p.trim(), o.trim()
	if len(p) == 0 || len(o) == 0 {
		return Poly{}
	}
	out := make(Poly, len(p)+len(o)-1)
	for i, a := range p {
		if a.IsZero() {
			continue
		}
		for j, b := range o {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return out.trim()
}

func (p Poly) Scale(c Elem) Poly {
	if c.IsZero() {
		return Poly{}
	}
	out := make(Poly, len(p))
	for i, a := range p {
		out[i] = a.Mul(c)
	}
	return out.trim()
}

// Shift multiplies by t^n.
func (p Poly) Shift(n int) Poly {
	if p.IsZero() {
		return Poly{}
	}
	out := make(Poly, n, n+len(p))
	return append(out, p.trim()...)
}

func (p Poly) Pow(n int) Poly {
	result := Poly{One()}
	for range n {
		result = result.Mul(p)
	}
	return result
}

// Monic divides by the leading coefficient and returns it.
func (p Poly) Monic() (Poly, Elem) {
	lc := p.Lead()
	if lc.IsZero() || lc.IsOne() {
		return p.trim(), lc
	}
	return p.Scale(lc.mustInv()), lc
}

func (e Elem) mustInv() Elem {
	inv, err := e.Inv()
	if err != nil {
		panic(err)
	}
	return inv
}

// DerivT is the formal derivative with respect to the polynomial variable.
func (p Poly) DerivT() Poly {
	if len(p) <= 1 {
		return Poly{}
	}
	out := make(Poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = p[i].ScaleInt(int64(i))
	}
	return out.trim()
}

func (p Poly) format(level int) string {
	p = p.trim()
	if len(p) == 0 {
		return "0"
	}
	name := "t" + strconv.Itoa(level)
	var parts []string
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].IsZero() {
			continue
		}
		c := p[i].String()
		if p[i].Level() > 0 {
			c = "(" + c + ")"
		}
		switch i {
		case 0:
			parts = append(parts, c)
		case 1:
			parts = append(parts, c+"*"+name)
		default:
			parts = append(parts, c+"*"+name+"^"+strconv.Itoa(i))
		}
	}
	return strings.Join(parts, " + ")
}

func (p Poly) String() string { return p.format(0) }

// ============================================================
// Division and gcd
// ============================================================

// PolyDivMod returns q, r with a = q*b + r and deg r < deg b.
func PolyDivMod(a, b Poly) (q, r Poly, err error) {
	b = b.trim()
	if len(b) == 0 {
		return nil, nil, ErrDivisionByZero
	}
	r = a.trim().clone()
	db := len(b) - 1
	if len(r)-1 < db {
		return Poly{}, r, nil
	}
	q = make(Poly, len(r)-db)
	inv := b[db].mustInv()
	for len(r)-1 >= db {
		dr := len(r) - 1
		c := r[dr].Mul(inv)
		q[dr-db] = c
		for i := 0; i <= db; i++ {
			r[dr-db+i] = r[dr-db+i].Sub(c.Mul(b[i]))
		}
		r = r[:dr].trim()
	}
	return q.trim(), r, nil
}

// PolyExactQuo divides a by b and fails with ErrInexact on a remainder.
func PolyExactQuo(a, b Poly) (Poly, error) {
	q, r, err := PolyDivMod(a, b)
	if err != nil {
		return nil, err
	}
	if !r.IsZero() {
		return nil, errors.Wrapf(ErrInexact, "%s / %s", a, b)
	}
	return q, nil
}

// PolyRem returns a mod b.
func PolyRem(a, b Poly) Poly {
	_, r, err := PolyDivMod(a, b)
	if err != nil {
		panic(err)
	}
	return r
}

// PolyGCD returns the monic greatest common divisor; gcd(0, 0) = 0.
func PolyGCD(a, b Poly) Poly {
	a, b = a.trim(), b.trim()
	for !b.IsZero() {
		a, b = b, PolyRem(a, b)
	}
	g, _ := a.Monic()
	return g
}

// PolyExtGCD returns g, s, t with s*a + t*b = g = gcd(a, b), g monic.
func PolyExtGCD(a, b Poly) (g, s, t Poly) {
	r0, r1 := a.trim(), b.trim()
	s0, s1 := Poly{One()}, Poly{}
	t0, t1 := Poly{}, Poly{One()}
	for !r1.IsZero() {
		q, r, _ := PolyDivMod(r0, r1)
		r0, r1 = r1, r
		s0, s1 = s1, s0.Sub(q.Mul(s1))
		t0, t1 = t1, t0.Sub(q.Mul(t1))
	}
	lc := r0.Lead()
	if lc.IsZero() {
		return Poly{}, Poly{}, Poly{}
	}
	inv := lc.mustInv()
	return r0.Scale(inv), s0.Scale(inv), t0.Scale(inv)
}

// ErrNoSolution is returned by Bezout when gcd(a, b) does not divide c.
var ErrNoSolution = errors.New("no polynomial solution")

// Bezout solves s*a + t*b = c with deg t < deg a (t = 0 when a is
// constant).
func Bezout(a, b, c Poly) (s, t Poly, err error) {
	g, _, tau := PolyExtGCD(a, b)
	if g.IsZero() {
		return nil, nil, errors.Wrap(ErrNoSolution, "bezout: a and b are zero")
	}
	q, r, err := PolyDivMod(c, g)
	if err != nil {
		return nil, nil, err
	}
	if !r.IsZero() {
		return nil, nil, errors.Wrapf(ErrNoSolution, "bezout: gcd %s does not divide %s", g, c)
	}
	t = tau.Mul(q)
	if a.Deg() >= 0 {
		t = PolyRem(t, a)
	}
	s, err = PolyExactQuo(c.Sub(t.Mul(b)), a)
	if err != nil {
		return nil, nil, err
	}
	return s, t, nil
}

// SquareFree returns monic square-free, pairwise coprime factors with
// p = lc(p) * prod factors[i]^(i+1).
func SquareFree(p Poly) []Poly {
	p, _ = p.Monic()
	if p.Deg() <= 0 {
		return nil
	}
	c := PolyGCD(p, p.DerivT())
	w, _ := PolyExactQuo(p, c)
	var out []Poly
	for w.Deg() > 0 {
		y := PolyGCD(w, c)
		z, _ := PolyExactQuo(w, y)
		out = append(out, z)
		w = y
		c, _ = PolyExactQuo(c, y)
	}
	for len(out) > 0 && out[len(out)-1].Deg() == 0 {
		out = out[:len(out)-1]
	}
	return out
}

// ============================================================
// Resultants
// ============================================================

// Resultant returns res(a, b) over the coefficient field.
func Resultant(a, b Poly) Elem {
	a, b = a.trim(), b.trim()
	if a.IsZero() || b.IsZero() {
		return Zero()
	}
	m, n := a.Deg(), b.Deg()
	if n == 0 {
		r, _ := b[0].Pow(m)
		return r
	}
	if m == 0 {
		r, _ := a[0].Pow(n)
		return r
	}
	rem := PolyRem(a, b)
	if rem.IsZero() {
		return Zero()
	}
	lc, _ := b.Lead().Pow(m - rem.Deg())
	res := lc.Mul(Resultant(b, rem))
	if (m*n)%2 == 1 {
		res = res.Neg()
	}
	return res
}

// ResultantInZ returns res_t(d, n - z*dp) as a polynomial in z, by
// evaluation at z = 0..deg d and interpolation. d must be monic.
func ResultantInZ(d, n, dp Poly) Poly {
	deg := d.Deg()
	values := make([]Elem, deg+1)
	for j := 0; j <= deg; j++ {
		values[j] = Resultant(d, n.Sub(dp.Scale(Int(int64(j)))))
	}
	return interpolate(values)
}

// interpolate returns the polynomial of degree < len(values) taking
// values[j] at z = j.
func interpolate(values []Elem) Poly {
	n := len(values)
	result := Poly{}
	for j := 0; j < n; j++ {
		if values[j].IsZero() {
			continue
		}
		basis := []*big.Rat{big.NewRat(1, 1)}
		denom := big.NewRat(1, 1)
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			// basis *= (z - k)
			next := make([]*big.Rat, len(basis)+1)
			for i := range next {
				next[i] = new(big.Rat)
			}
			for i, c := range basis {
				next[i+1].Add(next[i+1], c)
				next[i].Sub(next[i], new(big.Rat).Mul(c, big.NewRat(int64(k), 1)))
			}
			basis = next
			denom.Mul(denom, big.NewRat(int64(j-k), 1))
		}
		term := make(Poly, len(basis))
		for i, c := range basis {
			term[i] = values[j].Scale(new(big.Rat).Quo(c, denom))
		}
		result = result.Add(term)
	}
	return result
}
