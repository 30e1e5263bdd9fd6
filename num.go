package gosymint

import (
	"fmt"
	"math/big"
)

// ============================================================
// Num: exact rational constant
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("gosymint: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NRat wraps a copy of r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Sub(string, Expr) Expr   { return n }
func (n *Num) Diff(string) Expr        { return N(0) }
func (n *Num) Eval() (*Num, bool)      { return n, true }
func (n *Num) Equal(other Expr) bool   { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Contains(string) bool    { return false }
func (n *Num) exprType() string        { return "num" }
func (n *Num) IsZero() bool            { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool             { return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == 1 }
func (n *Num) IsNegOne() bool          { return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == -1 }
func (n *Num) IsInteger() bool         { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat           { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool        { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool        { return n.val.Sign() < 0 }
func (n *Num) Sign() int               { return n.val.Sign() }
func (n *Num) Int64() (int64, bool)    { return n.val.Num().Int64(), n.val.IsInt() && n.val.Num().IsInt64() }
func (n *Num) toJSON() map[string]any  { return map[string]any{"type": "num", "value": n.String()} }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numAbs(a *Num) *Num    { return &Num{val: new(big.Rat).Abs(a.val)} }
func numCmp(a, b *Num) int  { return a.val.Cmp(b.val) }

// numQuo divides exactly; ok is false for a zero divisor.
func numQuo(a, b *Num) (*Num, bool) {
	if b.IsZero() {
		return nil, false
	}
	return &Num{val: new(big.Rat).Quo(a.val, b.val)}, true
}

// numPow raises a to an integer power; ok is false for 0^negative.
func numPow(a *Num, e int64) (*Num, bool) {
	if e < 0 {
		if a.IsZero() {
			return nil, false
		}
		p, _ := numPow(a, -e)
		return &Num{val: new(big.Rat).Inv(p.val)}, true
	}
	num := new(big.Int).Exp(a.val.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(a.val.Denom(), big.NewInt(e), nil)
	return &Num{val: new(big.Rat).SetFrac(num, den)}, true
}

// numRoot returns the exact k-th root of a when it is rational.
func numRoot(a *Num, k int64) (*Num, bool) {
	if k <= 0 || (a.IsNegative() && k%2 == 0) {
		return nil, false
	}
	neg := a.IsNegative()
	abs := numAbs(a)
	p, ok1 := intRoot(abs.val.Num(), k)
	q, ok2 := intRoot(abs.val.Denom(), k)
	if !ok1 || !ok2 {
		return nil, false
	}
	r := new(big.Rat).SetFrac(p, q)
	if neg {
		r.Neg(r)
	}
	return &Num{val: r}, true
}

func intRoot(n *big.Int, k int64) (*big.Int, bool) {
	if n.Sign() == 0 {
		return new(big.Int), true
	}
	if k == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	// Newton iteration on integers for k > 2.
	kk := big.NewInt(k)
	km1 := big.NewInt(k - 1)
	x := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/int(k)+1))
	for {
		// y = ((k-1)x + n / x^(k-1)) / k
		xk1 := new(big.Int).Exp(x, km1, nil)
		y := new(big.Int).Mul(km1, x)
		y.Add(y, new(big.Int).Quo(n, xk1))
		y.Quo(y, kk)
		if y.Cmp(x) >= 0 {
			break
		}
		x = y
	}
	return x, new(big.Int).Exp(x, kk, nil).Cmp(n) == 0
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym                 { return &Sym{name: name} }
func (s *Sym) String() string            { return s.name }
func (s *Sym) LaTeX() string             { return s.name }
func (s *Sym) Eval() (*Num, bool)        { return nil, false }
func (s *Sym) Equal(other Expr) bool     { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) Contains(varName string) bool { return s.name == varName }
func (s *Sym) exprType() string          { return "sym" }
func (s *Sym) Name() string              { return s.name }
func (s *Sym) toJSON() map[string]any    { return map[string]any{"type": "sym", "name": s.name} }

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}
