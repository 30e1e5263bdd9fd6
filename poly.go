package gosymint

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"
)

// ============================================================
// Polynomial coefficients
// ============================================================

// PolyCoeffs returns the coefficients of e as a polynomial in varName,
// indexed by degree. The last entry is non-zero; the zero polynomial has
// no entries.
func PolyCoeffs(e Expr, varName string) (*Collection, error) {
	ex, err := Simplify(e, RulesOutput|RuleExpand)
	if err != nil {
		return nil, err
	}
	acc := NewCollection(0)
	plus, minus := Summands(ex)
	add := func(t Expr, negated bool) error {
		deg, coeff, err := monomial(t, varName)
		if err != nil {
			return err
		}
		if negated {
			coeff = Neg(coeff)
		}
		if prev := acc.Get(deg); prev != nil {
			coeff = Add(prev, coeff)
		}
		acc.Put(deg, coeff)
		return nil
	}
	for _, t := range plus.All() {
		if err := add(t, false); err != nil {
			return nil, err
		}
	}
	for _, t := range minus.All() {
		if err := add(t, true); err != nil {
			return nil, err
		}
	}
	for i, c := range acc.All() {
		s, err := Simplify(c, RulesOutput)
		if err != nil {
			return nil, err
		}
		if n, ok := s.(*Num); ok && n.IsZero() {
			acc.Remove(i)
			continue
		}
		acc.Put(i, s)
	}
	top := -1
	for i := range acc.All() {
		top = i
	}
	out := NewCollection(top + 1)
	for i := 0; i <= top; i++ {
		if c := acc.Get(i); c != nil {
			out.Put(i, c)
		} else {
			out.Put(i, N(0))
		}
	}
	return out, nil
}

// monomial splits t into coefficient * varName^deg.
func monomial(t Expr, varName string) (int, Expr, error) {
	num, den := Factors(t)
	deg := 0
	coeff, coeffDen := NewCollection(0), NewCollection(0)
	for _, f := range num.All() {
		if !f.Contains(varName) {
			coeff.Append(f)
			continue
		}
		if s, ok := f.(*Sym); ok && s.name == varName {
			deg++
			continue
		}
		if p, ok := f.(*BinOp); ok && p.op == OpPower {
			if s, ok := p.left.(*Sym); ok && s.name == varName {
				if n, ok := p.right.(*Num); ok && n.IsInteger() && !n.IsNegative() {
					if k, ok := n.Int64(); ok {
						deg += int(k)
						continue
					}
				}
			}
		}
		return 0, nil, errors.Wrapf(ErrNotPolynomial, "factor %s in %s", f, varName)
	}
	for _, f := range den.All() {
		if f.Contains(varName) {
			return 0, nil, errors.Wrapf(ErrNotPolynomial, "denominator %s in %s", f, varName)
		}
		coeffDen.Append(f)
	}
	return deg, ProductOf(coeff, coeffDen), nil
}

// Degree returns the degree of e in varName, or -1 for the zero
// polynomial and for expressions that are not polynomials.
func Degree(e Expr, varName string) int {
	c, err := PolyCoeffs(e, varName)
	if err != nil {
		return -1
	}
	return c.Bound() - 1
}

// ============================================================
// Equation solving (exact)
// ============================================================

type SolveResult struct {
	Solutions []Expr
	ExactForm bool
	Error     string
}

// SolveLinear solves a*x + b = 0.
func SolveLinear(a, b Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	if aok && bok {
		if an.IsZero() {
			if bn.IsZero() {
				return SolveResult{Error: "identity (0 = 0): infinite solutions"}
			}
			return SolveResult{Error: "no solution (inconsistent)"}
		}
		q, _ := numQuo(numNeg(bn), an)
		return SolveResult{Solutions: []Expr{q}, ExactForm: true}
	}
	x, err := Simplify(Div(Neg(b), a), RulesOutput)
	if err != nil {
		return SolveResult{Error: err.Error()}
	}
	return SolveResult{Solutions: []Expr{x}, ExactForm: true}
}

// SolveQuadraticExact solves a*x^2 + b*x + c = 0. Rational coefficients
// give roots in ascending order; irrational roots are returned as sqrt
// forms and complex roots are rejected.
func SolveQuadraticExact(a, b, c Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	cn, cok := c.Eval()
	if !aok || !bok || !cok {
		disc := Subtract(Pow(b, N(2)), Mul(Mul(N(4), a), c))
		denom := Mul(N(2), a)
		x1, err1 := Simplify(Div(Subtract(Neg(b), SqrtOf(disc)), denom), RulesOutput)
		x2, err2 := Simplify(Div(Add(Neg(b), SqrtOf(disc)), denom), RulesOutput)
		if err1 != nil || err2 != nil {
			return SolveResult{Error: "quadratic has undefined coefficients"}
		}
		return SolveResult{Solutions: []Expr{x1, x2}, ExactForm: true}
	}
	if an.IsZero() {
		return SolveLinear(b, c)
	}
	disc := numSub(numMul(bn, bn), numMul(N(4), numMul(an, cn)))
	if disc.IsNegative() {
		return SolveResult{Error: "complex roots: discriminant " + disc.String() + " < 0"}
	}
	twoA := numMul(N(2), an)
	if root, ok := numRoot(disc, 2); ok {
		x1, _ := numQuo(numSub(numNeg(bn), root), twoA)
		x2, _ := numQuo(numAdd(numNeg(bn), root), twoA)
		if numCmp(x1, x2) > 0 {
			x1, x2 = x2, x1
		}
		if numCmp(x1, x2) == 0 {
			return SolveResult{Solutions: []Expr{x1}, ExactForm: true}
		}
		return SolveResult{Solutions: []Expr{x1, x2}, ExactForm: true}
	}
	sq := SqrtOf(disc)
	lo, err1 := Simplify(Div(Subtract(numNeg(bn), sq), twoA), RulesOutput)
	hi, err2 := Simplify(Div(Add(numNeg(bn), sq), twoA), RulesOutput)
	if err1 != nil || err2 != nil {
		return SolveResult{Error: "quadratic has undefined coefficients"}
	}
	if twoA.IsNegative() {
		lo, hi = hi, lo
	}
	return SolveResult{Solutions: []Expr{lo, hi}, ExactForm: true}
}

// maxRootSearch bounds the integers whose divisors are enumerated by the
// rational root search.
var maxRootSearch = big.NewInt(1_000_000_000_000)

// SolvePolynomial returns the distinct roots of the polynomial equation
// e = 0 in varName. Rational roots come first in ascending order. Linear
// and quadratic equations may have symbolic coefficients; a quadratic
// then needs a discriminant that is a perfect square. Higher degrees
// need rational coefficients, and every root must be found, else
// ErrNotSolvable.
func SolvePolynomial(e Expr, varName string) ([]Expr, error) {
	coeffs, err := PolyCoeffs(e, varName)
	if err != nil {
		return nil, err
	}
	deg := coeffs.Bound() - 1
	if deg < 1 {
		return nil, errors.Wrapf(ErrNotSolvable, "%s = 0 has no roots in %s", e, varName)
	}
	if deg == 1 {
		r := SolveLinear(coeffs.Get(1), coeffs.Get(0))
		if r.Error != "" {
			return nil, errors.Wrap(ErrNotSolvable, r.Error)
		}
		return r.Solutions, nil
	}
	rats := make([]*big.Rat, deg+1)
	for i := 0; i <= deg; i++ {
		n, ok := coeffs.Get(i).Eval()
		if !ok && deg == 2 {
			return solveQuadraticSymbolic(coeffs.Get(2), coeffs.Get(1), coeffs.Get(0))
		}
		if !ok {
			return nil, errors.Wrapf(ErrNotSolvable, "coefficient %s is not rational", coeffs.Get(i))
		}
		rats[i] = n.Rat()
	}
	roots, rest := rationalRoots(rats)
	out := make([]Expr, 0, deg)
	for _, r := range roots {
		out = append(out, NRat(r))
	}
	switch len(rest) - 1 {
	case 0:
		return out, nil
	case 2:
		r := SolveQuadraticExact(NRat(rest[2]), NRat(rest[1]), NRat(rest[0]))
		if r.Error != "" {
			return nil, errors.Wrap(ErrNotSolvable, r.Error)
		}
		return append(out, r.Solutions...), nil
	}
	return nil, errors.Wrapf(ErrNotSolvable, "factor of degree %d left after rational roots", len(rest)-1)
}

// solveQuadraticSymbolic returns (-b -+ s)/(2a) where s^2 is the
// discriminant, so that roots stay free of square roots.
func solveQuadraticSymbolic(a, b, c Expr) ([]Expr, error) {
	disc, err := Simplify(SubOf(PowOf(b, N(2)), MulOf(N(4), a, c)), RulesOutput|RuleExpand|RuleCommonDenominator)
	if err != nil {
		return nil, errors.Wrap(ErrNotSolvable, err.Error())
	}
	root, ok := squareRoot(disc)
	if !ok {
		return nil, errors.Wrapf(ErrNotSolvable, "discriminant %s is not a square", disc)
	}
	out := make([]Expr, 0, 2)
	for _, r := range []Expr{SubOf(Neg(b), root), AddOf(Neg(b), root)} {
		x, err := Simplify(DivOf(r, MulOf(N(2), a)), RulesOutput|RuleExpand|RuleCommonDenominator)
		if err != nil {
			return nil, errors.Wrap(ErrNotSolvable, err.Error())
		}
		if len(out) > 0 && out[0].Equal(x) {
			break
		}
		out = append(out, x)
	}
	return out, nil
}

// squareRoot returns s with s^2 = e when e is a product of rational
// squares, even powers and perfect square trinomials.
func squareRoot(e Expr) (Expr, bool) {
	num, den := Factors(e)
	top, bottom := NewCollection(0), NewCollection(0)
	for _, f := range num.All() {
		r, ok := factorRoot(f)
		if !ok {
			return nil, false
		}
		top.Append(r)
	}
	for _, f := range den.All() {
		r, ok := factorRoot(f)
		if !ok {
			return nil, false
		}
		bottom.Append(r)
	}
	s, err := Simplify(ProductOf(top, bottom), RulesOutput)
	if err != nil {
		return nil, false
	}
	return s, true
}

func factorRoot(f Expr) (Expr, bool) {
	switch v := f.(type) {
	case *Num:
		if r, ok := numRoot(v, 2); ok {
			return r, true
		}
	case *BinOp:
		if v.op == OpPower {
			if k, ok := v.right.(*Num); ok && k.IsInteger() {
				half := numMul(k, F(1, 2))
				if half.IsInteger() {
					return powerOf(v.left, half), true
				}
			}
			return nil, false
		}
		if isSum(v) {
			return trinomialRoot(v)
		}
	}
	return nil, false
}

// trinomialRoot recognizes p*y^2 + q*y + r with q^2 = 4*p*r, which is
// p*(y + q/(2p))^2, in the first free symbol y of e.
func trinomialRoot(e Expr) (Expr, bool) {
	names := FreeSymbols(e)
	if len(names) == 0 {
		return nil, false
	}
	y := names[0]
	coeffs, err := PolyCoeffs(e, y)
	if err != nil || coeffs.Bound() != 3 {
		return nil, false
	}
	p, q, r := coeffs.Get(2), coeffs.Get(1), coeffs.Get(0)
	zero, err := Simplify(SubOf(PowOf(q, N(2)), MulOf(N(4), p, r)), RulesOutput|RuleExpand|RuleCommonDenominator)
	if err != nil {
		return nil, false
	}
	if n, ok := zero.(*Num); !ok || !n.IsZero() {
		return nil, false
	}
	sp, ok := squareRoot(p)
	if !ok {
		return nil, false
	}
	s, err := Simplify(MulOf(sp, AddOf(S(y), DivOf(q, MulOf(N(2), p)))), RulesOutput|RuleExpand)
	if err != nil {
		return nil, false
	}
	return s, true
}

// rationalRoots finds the distinct rational roots of the polynomial with
// ascending coefficients c and returns them sorted with the deflated
// remainder.
func rationalRoots(c []*big.Rat) ([]*big.Rat, []*big.Rat) {
	poly := make([]*big.Rat, len(c))
	for i, r := range c {
		poly[i] = new(big.Rat).Set(r)
	}
	var roots []*big.Rat
	if poly[0].Sign() == 0 {
		roots = append(roots, new(big.Rat))
		for len(poly) > 1 && poly[0].Sign() == 0 {
			poly = poly[1:]
		}
	}
	if len(poly) > 1 {
		ints := clearDenominators(poly)
		a0 := new(big.Int).Abs(ints[0])
		an := new(big.Int).Abs(ints[len(ints)-1])
		if a0.Cmp(maxRootSearch) <= 0 && an.Cmp(maxRootSearch) <= 0 {
			for _, cand := range rootCandidates(a0, an) {
				found := false
				for len(poly) > 1 && hornerRat(poly, cand).Sign() == 0 {
					poly = deflate(poly, cand)
					found = true
				}
				if found {
					roots = append(roots, cand)
				}
			}
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots, poly
}

func clearDenominators(p []*big.Rat) []*big.Int {
	lcm := big.NewInt(1)
	for _, r := range p {
		d := r.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(p))
	for i, r := range p {
		v := new(big.Rat).Mul(r, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

// rootCandidates lists ±p/q for p | a0 and q | an in ascending order.
func rootCandidates(a0, an *big.Int) []*big.Rat {
	seen := map[string]bool{}
	var out []*big.Rat
	for _, p := range divisors(a0) {
		for _, q := range divisors(an) {
			for _, sign := range []int64{-1, 1} {
				r := new(big.Rat).SetFrac(new(big.Int).Mul(p, big.NewInt(sign)), q)
				if k := r.RatString(); !seen[k] {
					seen[k] = true
					out = append(out, r)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

func divisors(n *big.Int) []*big.Int {
	if n.Sign() == 0 {
		return nil
	}
	var small, large []*big.Int
	d := big.NewInt(1)
	one := big.NewInt(1)
	sq := new(big.Int)
	rem := new(big.Int)
	q := new(big.Int)
	for {
		sq.Mul(d, d)
		if sq.Cmp(n) > 0 {
			break
		}
		q.QuoRem(n, d, rem)
		if rem.Sign() == 0 {
			small = append(small, new(big.Int).Set(d))
			if q.Cmp(d) != 0 {
				large = append(large, new(big.Int).Set(q))
			}
		}
		d.Add(d, one)
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

func hornerRat(p []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p[i])
	}
	return acc
}

// deflate divides p by (x - r) for a root r.
func deflate(p []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(p) - 1
	out := make([]*big.Rat, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		carry = new(big.Rat).Add(p[i], new(big.Rat).Mul(carry, r))
		out[i-1] = carry
	}
	return out
}
