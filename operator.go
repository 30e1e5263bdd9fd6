package gosymint

import (
	"math/big"
)

// ============================================================
// Operator: sum, product and indefinite integral over a bound variable
// ============================================================

type OperatorKind string

const (
	OperatorSum      OperatorKind = "sum"
	OperatorProduct  OperatorKind = "product"
	OperatorIntegral OperatorKind = "integral"
)

// maxOperatorTerms bounds the number of terms Eval expands.
const maxOperatorTerms = 10000

type Operator struct {
	kind         OperatorKind
	body         Expr
	index        string
	lower, upper Expr
}

func SumOp(body Expr, index string, lower, upper Expr) *Operator {
	return &Operator{kind: OperatorSum, body: body, index: index, lower: lower, upper: upper}
}

func ProductOp(body Expr, index string, lower, upper Expr) *Operator {
	return &Operator{kind: OperatorProduct, body: body, index: index, lower: lower, upper: upper}
}

// IntegralOp is the unevaluated indefinite integral of body in varName.
func IntegralOp(body Expr, varName string) *Operator {
	return &Operator{kind: OperatorIntegral, body: body, index: varName}
}

func (o *Operator) Kind() OperatorKind { return o.kind }
func (o *Operator) Body() Expr         { return o.body }
func (o *Operator) Index() string      { return o.index }
func (o *Operator) Lower() Expr        { return o.lower }
func (o *Operator) Upper() Expr        { return o.upper }

func (o *Operator) String() string {
	switch o.kind {
	case OperatorIntegral:
		return "int(" + o.body.String() + ", " + o.index + ")"
	case OperatorProduct:
		return "prod(" + o.body.String() + ", " + o.index + ", " + o.lower.String() + ", " + o.upper.String() + ")"
	}
	return "sum(" + o.body.String() + ", " + o.index + ", " + o.lower.String() + ", " + o.upper.String() + ")"
}

func (o *Operator) LaTeX() string {
	switch o.kind {
	case OperatorIntegral:
		return "\\int " + o.body.LaTeX() + " \\, d" + o.index
	case OperatorProduct:
		return "\\prod_{" + o.index + "=" + o.lower.LaTeX() + "}^{" + o.upper.LaTeX() + "} " + o.body.LaTeX()
	}
	return "\\sum_{" + o.index + "=" + o.lower.LaTeX() + "}^{" + o.upper.LaTeX() + "} " + o.body.LaTeX()
}

func (o *Operator) withParts(body, lower, upper Expr) *Operator {
	return &Operator{kind: o.kind, body: body, index: o.index, lower: lower, upper: upper}
}

func (o *Operator) hasLimits() bool { return o.kind != OperatorIntegral }

// Sub leaves the bound variable untouched inside the body.
func (o *Operator) Sub(varName string, value Expr) Expr {
	body := o.body
	if varName != o.index {
		body = body.Sub(varName, value)
	}
	if !o.hasLimits() {
		return o.withParts(body, nil, nil)
	}
	return o.withParts(body, o.lower.Sub(varName, value), o.upper.Sub(varName, value))
}

// Diff treats summation limits as constants. The derivative of an
// integral in its own variable is the integrand.
func (o *Operator) Diff(varName string) Expr {
	if !o.Contains(varName) {
		return N(0)
	}
	switch o.kind {
	case OperatorIntegral:
		if varName == o.index {
			return o.body
		}
		return IntegralOp(o.body.Diff(varName), o.index)
	case OperatorProduct:
		return MulOf(o, o.withParts(DivOf(o.body.Diff(varName), o.body), o.lower, o.upper))
	}
	return o.withParts(o.body.Diff(varName), o.lower, o.upper)
}

// Eval expands sums and products with integer limits; integrals never
// evaluate.
func (o *Operator) Eval() (*Num, bool) {
	if !o.hasLimits() {
		return nil, false
	}
	lo, ok1 := o.lower.Eval()
	hi, ok2 := o.upper.Eval()
	if !ok1 || !ok2 || !lo.IsInteger() || !hi.IsInteger() {
		return nil, false
	}
	a, okA := lo.Int64()
	b, okB := hi.Int64()
	if !okA || !okB || b-a >= maxOperatorTerms {
		return nil, false
	}
	acc := N(0)
	if o.kind == OperatorProduct {
		acc = N(1)
	}
	for k := a; k <= b; k++ {
		v, ok := o.body.Sub(o.index, NRat(new(big.Rat).SetInt64(k))).Eval()
		if !ok {
			return nil, false
		}
		if o.kind == OperatorProduct {
			acc = numMul(acc, v)
		} else {
			acc = numAdd(acc, v)
		}
	}
	return acc, true
}

func (o *Operator) Equal(other Expr) bool {
	p, ok := other.(*Operator)
	if !ok || o.kind != p.kind || o.index != p.index || !o.body.Equal(p.body) {
		return false
	}
	if !o.hasLimits() {
		return true
	}
	return o.lower.Equal(p.lower) && o.upper.Equal(p.upper)
}

func (o *Operator) Contains(varName string) bool {
	if o.hasLimits() && (o.lower.Contains(varName) || o.upper.Contains(varName)) {
		return true
	}
	if o.kind == OperatorIntegral {
		// An indefinite integral is a function of its own variable.
		return o.body.Contains(varName) || varName == o.index
	}
	return varName != o.index && o.body.Contains(varName)
}

func (o *Operator) exprType() string { return "operator" }
func (o *Operator) toJSON() map[string]any {
	m := map[string]any{"type": "operator", "kind": string(o.kind), "body": o.body.toJSON(), "index": o.index}
	if o.hasLimits() {
		m["lower"] = o.lower.toJSON()
		m["upper"] = o.upper.toJSON()
	}
	return m
}

// ============================================================
// Operator rules
// ============================================================

// maxFaulhaberPower bounds the powers of the index summed in closed form.
const maxFaulhaberPower = 16

// operator applies RuleOperators to o, whose parts are already simplified.
// Sums and products are split over their bodies, factors free of the
// index move out, and sums of powers of the index are closed. Integrals
// are only split; evaluating them is left to the integrator.
func (s *simplifier) operator(o *Operator) (Expr, error) {
	if v, ok := o.Eval(); ok {
		return v, nil
	}
	var out Expr
	switch o.kind {
	case OperatorSum:
		out = o.sumRule()
	case OperatorProduct:
		out = o.productRule()
	case OperatorIntegral:
		out = o.integralRule()
	}
	if out == nil {
		return o, nil
	}
	return s.pass(out)
}

func (o *Operator) count() Expr {
	return AddOf(SubOf(o.upper, o.lower), N(1))
}

func (o *Operator) over(body Expr) Expr {
	return o.withParts(body, o.lower, o.upper)
}

// split maps the summands of the body to operators of the same kind.
func (o *Operator) split() Expr {
	plus, minus := Summands(o.body)
	if plus.Len()+minus.Len() < 2 {
		return nil
	}
	p, m := NewCollection(0), NewCollection(0)
	for _, t := range plus.All() {
		p.Append(o.over(t))
	}
	for _, t := range minus.All() {
		m.Append(o.over(t))
	}
	return SumOf(p, m)
}

// pullOut returns free * op(rest) when some factors of the body do not
// contain the index.
func (o *Operator) pullOut() Expr {
	num, den := Factors(o.body)
	fn, fd := NewCollection(0), NewCollection(0)
	rn, rd := NewCollection(0), NewCollection(0)
	for _, f := range num.All() {
		if n, ok := f.(*Num); ok && n.IsOne() {
			continue
		}
		if f.Contains(o.index) {
			rn.Append(f)
		} else {
			fn.Append(f)
		}
	}
	for _, f := range den.All() {
		if n, ok := f.(*Num); ok && n.IsOne() {
			continue
		}
		if f.Contains(o.index) {
			rd.Append(f)
		} else {
			fd.Append(f)
		}
	}
	if fn.IsEmpty() && fd.IsEmpty() {
		return nil
	}
	return Mul(ProductOf(fn, fd), o.over(ProductOf(rn, rd)))
}

func (o *Operator) sumRule() Expr {
	if !o.body.Contains(o.index) {
		return MulOf(o.body, o.count())
	}
	if out := o.split(); out != nil {
		return out
	}
	if out := o.pullOut(); out != nil {
		return out
	}
	if IsFunc(o.body, FuncLn) {
		return LnOf(ProductOp(o.body.(*Func).arg, o.index, o.lower, o.upper))
	}
	if p, ok := o.indexPower(); ok {
		return SubOf(faulhaber(p, o.upper), faulhaber(p, SubOf(o.lower, N(1))))
	}
	return nil
}

func (o *Operator) productRule() Expr {
	if !o.body.Contains(o.index) {
		return PowOf(o.body, o.count())
	}
	num, den := Factors(o.body)
	if num.Len()+den.Len() > 1 {
		top, bottom := NewCollection(0), NewCollection(0)
		for _, f := range num.All() {
			top.Append(o.over(f))
		}
		for _, f := range den.All() {
			bottom.Append(o.over(f))
		}
		return ProductOf(top, bottom)
	}
	if p, ok := o.body.(*BinOp); ok && p.op == OpPower {
		if !p.right.Contains(o.index) {
			return Pow(o.over(p.left), p.right)
		}
		if !p.left.Contains(o.index) {
			return Pow(p.left, SumOp(p.right, o.index, o.lower, o.upper))
		}
	}
	if IsFunc(o.body, FuncExp) {
		return ExpOf(SumOp(o.body.(*Func).arg, o.index, o.lower, o.upper))
	}
	return nil
}

func (o *Operator) integralRule() Expr {
	if !o.body.Contains(o.index) {
		return MulOf(o.body, S(o.index))
	}
	if out := o.split(); out != nil {
		return out
	}
	return o.pullOut()
}

// indexPower matches index^p for a positive integer p.
func (o *Operator) indexPower() (int, bool) {
	base, exp := o.body, Expr(N(1))
	if b, ok := o.body.(*BinOp); ok && b.op == OpPower {
		base, exp = b.left, b.right
	}
	if sym, ok := base.(*Sym); !ok || sym.name != o.index {
		return 0, false
	}
	n, ok := exp.(*Num)
	if !ok || !n.IsInteger() || !n.IsPositive() {
		return 0, false
	}
	p, ok := n.Int64()
	if !ok || p > maxFaulhaberPower {
		return 0, false
	}
	return int(p), true
}

// faulhaber returns 1^p + 2^p + ... + n^p as a polynomial in n.
func faulhaber(p int, n Expr) Expr {
	b := bernoulli(p)
	terms := make([]Expr, 0, p+1)
	for j := 0; j <= p; j++ {
		if b[j].Sign() == 0 {
			continue
		}
		c := new(big.Rat).SetInt(new(big.Int).Binomial(int64(p+1), int64(j)))
		c.Mul(c, b[j])
		if j%2 == 1 {
			c.Neg(c)
		}
		c.Quo(c, big.NewRat(int64(p+1), 1))
		terms = append(terms, MulOf(NRat(c), PowOf(n, N(int64(p+1-j)))))
	}
	return AddOf(terms...)
}

// bernoulli returns B_0..B_n with B_1 = -1/2.
func bernoulli(n int) []*big.Rat {
	b := make([]*big.Rat, n+1)
	b[0] = big.NewRat(1, 1)
	for m := 1; m <= n; m++ {
		acc := new(big.Rat)
		for k := 0; k < m; k++ {
			c := new(big.Rat).SetInt(new(big.Int).Binomial(int64(m+1), int64(k)))
			acc.Add(acc, c.Mul(c, b[k]))
		}
		b[m] = acc.Neg(acc.Quo(acc, big.NewRat(int64(m+1), 1)))
	}
	return b
}
