package gosymint

import (
	"fmt"
)

// ============================================================
// BinOp: binary operation
// ============================================================

// Op names the operation of a BinOp.
type Op int

const (
	OpSum Op = iota
	OpDifference
	OpProduct
	OpQuotient
	OpPower
)

var opNames = [...]string{"sum", "difference", "product", "quotient", "power"}
var opSymbols = [...]string{" + ", " - ", "*", "/", "^"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func opFromName(name string) (Op, bool) {
	for i, n := range opNames {
		if n == name {
			return Op(i), true
		}
	}
	return 0, false
}

// BinOp is a binary operation. Difference and quotient are kept as such;
// they are never rewritten into a sum with a negated operand.
type BinOp struct {
	op          Op
	left, right Expr
}

func Add(a, b Expr) *BinOp      { return &BinOp{op: OpSum, left: a, right: b} }
func Subtract(a, b Expr) *BinOp { return &BinOp{op: OpDifference, left: a, right: b} }
func Mul(a, b Expr) *BinOp      { return &BinOp{op: OpProduct, left: a, right: b} }
func Div(a, b Expr) *BinOp      { return &BinOp{op: OpQuotient, left: a, right: b} }
func Pow(a, b Expr) *BinOp      { return &BinOp{op: OpPower, left: a, right: b} }

// Neg returns -e, folding numbers.
func Neg(e Expr) Expr {
	if n, ok := e.(*Num); ok {
		return numNeg(n)
	}
	return Mul(N(-1), e)
}

func (b *BinOp) Op() Op      { return b.op }
func (b *BinOp) Left() Expr  { return b.left }
func (b *BinOp) Right() Expr { return b.right }

func (b *BinOp) Is(op Op) bool { return b.op == op }

// ============================================================
// Light smart constructors
// ============================================================

// AddOf sums terms, folding numbers and dropping zeros. It does not
// collect like terms; use Simplify for that.
func AddOf(terms ...Expr) Expr {
	acc := N(0)
	var rest []Expr
	for _, t := range terms {
		if n, ok := t.(*Num); ok {
			acc = numAdd(acc, n)
			continue
		}
		rest = append(rest, t)
	}
	if !acc.IsZero() {
		rest = append(rest, acc)
	}
	if len(rest) == 0 {
		return N(0)
	}
	result := rest[0]
	for _, t := range rest[1:] {
		result = Add(result, t)
	}
	return result
}

// MulOf multiplies factors, folding numbers into a leading coefficient.
func MulOf(factors ...Expr) Expr {
	coeff := N(1)
	var rest []Expr
	for _, f := range factors {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		rest = append(rest, f)
	}
	if coeff.IsZero() || len(rest) == 0 {
		return coeff
	}
	result := rest[0]
	if !coeff.IsOne() {
		result = Mul(coeff, result)
	}
	for _, f := range rest[1:] {
		result = Mul(result, f)
	}
	return result
}

func SubOf(a, b Expr) Expr {
	an, aok := a.(*Num)
	bn, bok := b.(*Num)
	switch {
	case aok && bok:
		return numSub(an, bn)
	case bok && bn.IsZero():
		return a
	case aok && an.IsZero():
		return Neg(b)
	}
	return Subtract(a, b)
}

// DivOf keeps a literal division by zero so that Simplify can report it.
func DivOf(a, b Expr) Expr {
	bn, bok := b.(*Num)
	if bok && bn.IsZero() {
		return Div(a, b)
	}
	if bok && bn.IsOne() {
		return a
	}
	if an, ok := a.(*Num); ok {
		if an.IsZero() {
			return N(0)
		}
		if bok {
			q, _ := numQuo(an, bn)
			return q
		}
	}
	return Div(a, b)
}

func PowOf(base, exp Expr) Expr {
	en, eok := exp.(*Num)
	if eok && en.IsZero() {
		return N(1)
	}
	if eok && en.IsOne() {
		return base
	}
	if bn, ok := base.(*Num); ok && eok {
		if k, isInt := en.Int64(); isInt && k > -maxFoldExponent && k < maxFoldExponent {
			if p, ok := numPow(bn, k); ok {
				return p
			}
		}
	}
	return Pow(base, exp)
}

// maxFoldExponent bounds exponents folded into a single rational.
const maxFoldExponent = 1024

// ============================================================
// Printing
// ============================================================

const (
	precSum = iota + 1
	precProduct
	precPower
	precAtom
)

func precedence(e Expr) int {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return precSum
		}
		if !v.IsInteger() {
			return precProduct
		}
	case *BinOp:
		switch v.op {
		case OpSum, OpDifference:
			return precSum
		case OpProduct, OpQuotient:
			if leadingNegative(v) {
				return precSum
			}
			return precProduct
		default:
			return precPower
		}
	}
	return precAtom
}

// leadingNegative reports whether e prints with a leading minus sign.
func leadingNegative(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *BinOp:
		if v.op == OpProduct || v.op == OpQuotient {
			return leadingNegative(v.left)
		}
	}
	return false
}

func isNegOneNum(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsNegOne()
}

func (b *BinOp) String() string {
	op := b.op
	if op == OpPower {
		return wrap(b.left, precedence(b.left) < precAtom) + "^" + wrap(b.right, precedence(b.right) < precAtom)
	}
	own := precSum
	if op == OpProduct || op == OpQuotient {
		own = precProduct
	}
	if op == OpProduct && isNegOneNum(b.left) {
		return "-" + wrap(b.right, precedence(b.right) <= precProduct)
	}
	left := wrap(b.left, precedence(b.left) < own && !leadingNegative(b.left))
	return left + opSymbols[op] + wrap(b.right, precedence(b.right) <= own)
}

func wrap(e Expr, paren bool) string {
	if paren {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func wrapLaTeX(e Expr, paren bool) string {
	if paren {
		return "\\left(" + e.LaTeX() + "\\right)"
	}
	return e.LaTeX()
}

func (b *BinOp) LaTeX() string {
	switch b.op {
	case OpSum:
		return b.left.LaTeX() + " + " + wrapLaTeX(b.right, precedence(b.right) <= precSum)
	case OpDifference:
		return b.left.LaTeX() + " - " + wrapLaTeX(b.right, precedence(b.right) <= precSum)
	case OpProduct:
		if isNegOneNum(b.left) {
			return "-" + wrapLaTeX(b.right, precedence(b.right) <= precProduct)
		}
		left := wrapLaTeX(b.left, precedence(b.left) < precProduct && !leadingNegative(b.left))
		return left + " \\cdot " + wrapLaTeX(b.right, precedence(b.right) <= precSum)
	case OpQuotient:
		return "\\frac{" + b.left.LaTeX() + "}{" + b.right.LaTeX() + "}"
	}
	return "{" + wrapLaTeX(b.left, precedence(b.left) < precAtom) + "}^{" + b.right.LaTeX() + "}"
}

// ============================================================
// Expr behaviour
// ============================================================

func (b *BinOp) Sub(varName string, value Expr) Expr {
	return &BinOp{op: b.op, left: b.left.Sub(varName, value), right: b.right.Sub(varName, value)}
}

func (b *BinOp) Diff(varName string) Expr {
	if !b.Contains(varName) {
		return N(0)
	}
	u, v := b.left, b.right
	du, dv := u.Diff(varName), v.Diff(varName)
	switch b.op {
	case OpSum:
		return AddOf(du, dv)
	case OpDifference:
		return SubOf(du, dv)
	case OpProduct:
		return AddOf(MulOf(du, v), MulOf(u, dv))
	case OpQuotient:
		return DivOf(SubOf(MulOf(du, v), MulOf(u, dv)), PowOf(v, N(2)))
	}
	switch {
	case !v.Contains(varName):
		return MulOf(v, PowOf(u, SubOf(v, N(1))), du)
	case !u.Contains(varName):
		return MulOf(b, LnOf(u), dv)
	}
	return MulOf(b, AddOf(MulOf(dv, LnOf(u)), DivOf(MulOf(v, du), u)))
}

func (b *BinOp) Eval() (*Num, bool) {
	l, ok := b.left.Eval()
	if !ok {
		return nil, false
	}
	r, ok := b.right.Eval()
	if !ok {
		return nil, false
	}
	switch b.op {
	case OpSum:
		return numAdd(l, r), true
	case OpDifference:
		return numSub(l, r), true
	case OpProduct:
		return numMul(l, r), true
	case OpQuotient:
		return numQuo(l, r)
	}
	return ratPow(l, r)
}

// ratPow evaluates l^r when the result is rational.
func ratPow(l, r *Num) (*Num, bool) {
	if r.IsInteger() {
		k, ok := r.Int64()
		if !ok || k <= -maxFoldExponent || k >= maxFoldExponent {
			return nil, false
		}
		return numPow(l, k)
	}
	q := r.val.Denom()
	if !q.IsInt64() || q.Int64() > maxFoldExponent {
		return nil, false
	}
	root, ok := numRoot(l, q.Int64())
	if !ok {
		return nil, false
	}
	p := r.val.Num()
	if !p.IsInt64() || p.Int64() <= -maxFoldExponent || p.Int64() >= maxFoldExponent {
		return nil, false
	}
	return numPow(root, p.Int64())
}

func (b *BinOp) Equal(other Expr) bool {
	o, ok := other.(*BinOp)
	return ok && b.op == o.op && b.left.Equal(o.left) && b.right.Equal(o.right)
}

func (b *BinOp) Contains(varName string) bool {
	return b.left.Contains(varName) || b.right.Contains(varName)
}

func (b *BinOp) exprType() string { return "binop" }
func (b *BinOp) toJSON() map[string]any {
	return map[string]any{"type": "binop", "op": b.op.String(), "left": b.left.toJSON(), "right": b.right.toJSON()}
}
