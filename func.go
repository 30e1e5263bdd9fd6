package gosymint

import (
	"math/big"
)

// ============================================================
// Func: named function application
// ============================================================

type FuncKind string

const (
	FuncExp    FuncKind = "exp"
	FuncLn     FuncKind = "ln"
	FuncLg     FuncKind = "lg"
	FuncSin    FuncKind = "sin"
	FuncCos    FuncKind = "cos"
	FuncTan    FuncKind = "tan"
	FuncCot    FuncKind = "cot"
	FuncSec    FuncKind = "sec"
	FuncCosec  FuncKind = "cosec"
	FuncArcsin FuncKind = "arcsin"
	FuncArccos FuncKind = "arccos"
	FuncArctan FuncKind = "arctan"
	FuncArccot FuncKind = "arccot"
	FuncSinh   FuncKind = "sinh"
	FuncCosh   FuncKind = "cosh"
	FuncTanh   FuncKind = "tanh"
	FuncCoth   FuncKind = "coth"
	FuncArsinh FuncKind = "arsinh"
	FuncArcosh FuncKind = "arcosh"
	FuncArtanh FuncKind = "artanh"
	FuncAbs    FuncKind = "abs"
	FuncSgn    FuncKind = "sgn"
	FuncID     FuncKind = "id"
	FuncSqrt   FuncKind = "sqrt"
)

var funcKinds = []FuncKind{
	FuncExp, FuncLn, FuncLg, FuncSin, FuncCos, FuncTan, FuncCot, FuncSec, FuncCosec,
	FuncArcsin, FuncArccos, FuncArctan, FuncArccot, FuncSinh, FuncCosh, FuncTanh, FuncCoth,
	FuncArsinh, FuncArcosh, FuncArtanh, FuncAbs, FuncSgn, FuncID, FuncSqrt,
}

// LookupFunc resolves a function name.
func LookupFunc(name string) (FuncKind, bool) {
	for _, k := range funcKinds {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

type Func struct {
	kind FuncKind
	arg  Expr
}

func Fn(kind FuncKind, arg Expr) *Func { return &Func{kind: kind, arg: arg} }

func ExpOf(arg Expr) *Func  { return Fn(FuncExp, arg) }
func LnOf(arg Expr) *Func   { return Fn(FuncLn, arg) }
func LgOf(arg Expr) *Func   { return Fn(FuncLg, arg) }
func SqrtOf(arg Expr) *Func { return Fn(FuncSqrt, arg) }
func SinOf(arg Expr) *Func  { return Fn(FuncSin, arg) }
func CosOf(arg Expr) *Func  { return Fn(FuncCos, arg) }
func TanOf(arg Expr) *Func  { return Fn(FuncTan, arg) }
func AbsOf(arg Expr) *Func  { return Fn(FuncAbs, arg) }

func (f *Func) Kind() FuncKind { return f.kind }
func (f *Func) Arg() Expr      { return f.arg }

// IsFunc reports whether e applies a function of the given kind.
func IsFunc(e Expr, kind FuncKind) bool {
	f, ok := e.(*Func)
	return ok && f.kind == kind
}

func (f *Func) String() string { return string(f.kind) + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	a := f.arg.LaTeX()
	switch f.kind {
	case FuncSin, FuncCos, FuncTan, FuncCot, FuncSec, FuncExp, FuncLn, FuncLg,
		FuncSinh, FuncCosh, FuncTanh, FuncCoth, FuncArcsin, FuncArccos, FuncArctan:
		return "\\" + string(f.kind) + "\\left(" + a + "\\right)"
	case FuncCosec:
		return "\\csc\\left(" + a + "\\right)"
	case FuncSqrt:
		return "\\sqrt{" + a + "}"
	case FuncAbs:
		return "\\left|" + a + "\\right|"
	case FuncID:
		return a
	}
	return "\\operatorname{" + string(f.kind) + "}\\left(" + a + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return Fn(f.kind, f.arg.Sub(varName, value))
}

func (f *Func) Diff(varName string) Expr {
	if !f.arg.Contains(varName) {
		return N(0)
	}
	u := f.arg
	du := u.Diff(varName)
	one := N(1)
	sq := PowOf(u, N(2))
	var outer Expr
	switch f.kind {
	case FuncExp:
		outer = f
	case FuncLn:
		outer = DivOf(one, u)
	case FuncLg:
		outer = DivOf(one, MulOf(u, LnOf(N(10))))
	case FuncSqrt:
		outer = DivOf(one, MulOf(N(2), f))
	case FuncSin:
		outer = CosOf(u)
	case FuncCos:
		outer = Neg(SinOf(u))
	case FuncTan:
		outer = AddOf(one, PowOf(f, N(2)))
	case FuncCot:
		outer = Neg(AddOf(one, PowOf(f, N(2))))
	case FuncSec:
		outer = MulOf(f, TanOf(u))
	case FuncCosec:
		outer = Neg(MulOf(f, Fn(FuncCot, u)))
	case FuncArcsin:
		outer = DivOf(one, SqrtOf(SubOf(one, sq)))
	case FuncArccos:
		outer = Neg(DivOf(one, SqrtOf(SubOf(one, sq))))
	case FuncArctan:
		outer = DivOf(one, AddOf(one, sq))
	case FuncArccot:
		outer = Neg(DivOf(one, AddOf(one, sq)))
	case FuncSinh:
		outer = Fn(FuncCosh, u)
	case FuncCosh:
		outer = Fn(FuncSinh, u)
	case FuncTanh:
		outer = SubOf(one, PowOf(f, N(2)))
	case FuncCoth:
		outer = SubOf(one, PowOf(f, N(2)))
	case FuncArsinh:
		outer = DivOf(one, SqrtOf(AddOf(sq, one)))
	case FuncArcosh:
		outer = DivOf(one, SqrtOf(SubOf(sq, one)))
	case FuncArtanh:
		outer = DivOf(one, SubOf(one, sq))
	case FuncAbs:
		outer = Fn(FuncSgn, u)
	case FuncSgn:
		return N(0)
	case FuncID:
		return du
	}
	return MulOf(outer, du)
}

// Eval returns exact values only: exp(0), ln(1), lg(10^k), perfect square
// roots, abs, sgn, id and the trigonometric family at zero.
func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	switch f.kind {
	case FuncID:
		return n, true
	case FuncAbs:
		return numAbs(n), true
	case FuncSgn:
		return N(int64(n.Sign())), true
	case FuncSqrt:
		return numRoot(n, 2)
	case FuncLn:
		if n.IsOne() {
			return N(0), true
		}
		return nil, false
	case FuncLg:
		return log10Exact(n)
	case FuncExp, FuncCos, FuncCosh, FuncSec:
		if n.IsZero() {
			return N(1), true
		}
		return nil, false
	case FuncSin, FuncTan, FuncArcsin, FuncArctan, FuncSinh, FuncTanh, FuncArsinh, FuncArtanh:
		if n.IsZero() {
			return N(0), true
		}
	}
	return nil, false
}

// log10Exact returns k when n = 10^k for an integer k.
func log10Exact(n *Num) (*Num, bool) {
	if !n.IsPositive() {
		return nil, false
	}
	num, den := n.val.Num(), n.val.Denom()
	if num.Cmp(big.NewInt(1)) != 0 && den.Cmp(big.NewInt(1)) != 0 {
		return nil, false
	}
	sign := int64(1)
	v := new(big.Int).Set(num)
	if num.Cmp(big.NewInt(1)) == 0 {
		sign = -1
		v.Set(den)
	}
	ten := big.NewInt(10)
	var k int64
	rem := new(big.Int)
	for v.Cmp(big.NewInt(1)) > 0 {
		v.QuoRem(v, ten, rem)
		if rem.Sign() != 0 {
			return nil, false
		}
		k++
	}
	return N(sign * k), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.kind == o.kind && f.arg.Equal(o.arg)
}

func (f *Func) Contains(varName string) bool { return f.arg.Contains(varName) }

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]any {
	return map[string]any{"type": "func", "name": string(f.kind), "arg": f.arg.toJSON()}
}
