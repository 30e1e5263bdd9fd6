package field_test

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/internal/field"
	"github.com/pkg/errors"
)

func tower(t *testing.T, gens ...field.Generator) *field.Tower {
	t.Helper()
	tw, err := field.New("x", nil, gens)
	if err != nil {
		t.Fatal(err)
	}
	return tw
}

func elem(t *testing.T, tw *field.Tower, src string) field.Elem {
	t.Helper()
	e, err := tw.FromExpr(gosymint.MustParse(src))
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return e
}

func ints(cs ...int64) field.Poly {
	p := make(field.Poly, len(cs))
	for i, c := range cs {
		p[i] = field.Int(c)
	}
	return p
}

var (
	expX = field.Generator{Kind: field.Exp, Arg: gosymint.S("x")}
	lnX  = field.Generator{Kind: field.Log, Arg: gosymint.S("x")}
)

// ============================================================
// Elements
// ============================================================

func TestFrac_Canonical(t *testing.T) {
	tw := tower(t)
	got := elem(t, tw, "(x^2 - 1)/(2*x + 2)")
	want := elem(t, tw, "x/2 - 1/2")
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
	if got.Level() != tw.BaseLevel() {
		t.Errorf("want level %d, got %d", tw.BaseLevel(), got.Level())
	}
}

func TestFrac_CollapsesToRational(t *testing.T) {
	tw := tower(t)
	got := elem(t, tw, "(2*x + 2)/(x + 1)")
	n, ok := got.Integer()
	if !ok || n != 2 {
		t.Errorf("want 2, got %s", got)
	}
}

func TestElem_Inv(t *testing.T) {
	tw := tower(t)
	inv, err := elem(t, tw, "x/(x + 1)").Inv()
	if err != nil {
		t.Fatal(err)
	}
	if want := elem(t, tw, "1 + 1/x"); !inv.Equal(want) {
		t.Errorf("want %s, got %s", want, inv)
	}
	if _, err := field.Zero().Inv(); !errors.Is(err, field.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
}

func TestElem_MixedLevels(t *testing.T) {
	tw := tower(t, expX)
	sum := elem(t, tw, "exp(x)").Add(elem(t, tw, "x"))
	if want := elem(t, tw, "x + exp(x)"); !sum.Equal(want) {
		t.Errorf("want %s, got %s", want, sum)
	}
	if sum.Sub(elem(t, tw, "exp(x)")).Level() != tw.BaseLevel() {
		t.Error("difference should drop back to the base level")
	}
}

// ============================================================
// Derivation
// ============================================================

func TestDeriv_Exp(t *testing.T) {
	tw := tower(t, expX)
	got := tw.Deriv(elem(t, tw, "x*exp(x)"))
	if want := elem(t, tw, "(x + 1)*exp(x)"); !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestDeriv_Log(t *testing.T) {
	tw := tower(t, lnX)
	got := tw.Deriv(elem(t, tw, "x*ln(x)"))
	if want := elem(t, tw, "ln(x) + 1"); !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestDeriv_Constant(t *testing.T) {
	tw, elems, err := field.Resolve("x", nil, gosymint.MustParse("a*x"))
	if err != nil {
		t.Fatal(err)
	}
	a := elems[0].MustQuo(tw.T(tw.BaseLevel()))
	if d := tw.Deriv(a); !d.IsZero() {
		t.Errorf("constant a has derivative %s", d)
	}
}

// ============================================================
// Polynomials
// ============================================================

func TestBezout(t *testing.T) {
	a, b, c := ints(1, 0, 1), ints(0, 1), ints(1)
	s, r, err := field.Bezout(a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Mul(a).Add(r.Mul(b)); !got.Equal(c) {
		t.Errorf("s*a + t*b = %s, want %s", got, c)
	}
	if r.Deg() >= a.Deg() {
		t.Errorf("deg t = %d, want < %d", r.Deg(), a.Deg())
	}
}

func TestBezout_NoSolution(t *testing.T) {
	_, _, err := field.Bezout(ints(0, 1), ints(0, 0, 1), ints(1))
	if !errors.Is(err, field.ErrNoSolution) {
		t.Errorf("want ErrNoSolution, got %v", err)
	}
}

func TestSquareFree(t *testing.T) {
	// (x - 1)^2 * (x + 2) = x^3 - 3x + 2
	factors := field.SquareFree(ints(2, -3, 0, 1))
	if len(factors) != 2 {
		t.Fatalf("want 2 factors, got %v", factors)
	}
	if !factors[0].Equal(ints(2, 1)) {
		t.Errorf("want x + 2, got %s", factors[0])
	}
	if !factors[1].Equal(ints(-1, 1)) {
		t.Errorf("want x - 1, got %s", factors[1])
	}
}

func TestPolyGCD(t *testing.T) {
	g := field.PolyGCD(ints(-1, 0, 1), ints(2, 2))
	if !g.Equal(ints(1, 1)) {
		t.Errorf("want x + 1, got %s", g)
	}
}

func TestResultant(t *testing.T) {
	// res(x^2 + 1, 2x) = (2i)(-2i) = 4
	r := field.Resultant(ints(1, 0, 1), ints(0, 2))
	if n, ok := r.Integer(); !ok || n != 4 {
		t.Errorf("want 4, got %s", r)
	}
}

func TestResultantInZ(t *testing.T) {
	d, n := ints(1, 0, 1), ints(0, 2)
	got := field.ResultantInZ(d, n, d.DerivT())
	// 4*(1 - z)^2
	if want := ints(4, -8, 4); !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

// ============================================================
// Conversion
// ============================================================

func TestResolve_Constants(t *testing.T) {
	tw, _, err := field.Resolve("x", []field.Generator{expX}, gosymint.MustParse("a*exp(x + 1) + b"))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range tw.Constants() {
		got = append(got, c.String())
	}
	want := []string{"a", "exp(1)", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
}

func TestFromExpr_ExpPower(t *testing.T) {
	tw := tower(t, expX)
	got := elem(t, tw, "exp(3*x)")
	num, den, ok := got.Parts(tw.Top())
	if !ok || den.Deg() != 0 || num.Deg() != 3 {
		t.Errorf("want exp(x)^3, got %s", got)
	}
	inv := elem(t, tw, "exp(-x)")
	if !inv.Mul(elem(t, tw, "exp(x)")).IsOne() {
		t.Errorf("exp(-x)*exp(x) = %s", inv.Mul(elem(t, tw, "exp(x)")))
	}
}

func TestFromExpr_LogRelation(t *testing.T) {
	tw := tower(t, lnX)
	got := elem(t, tw, "ln(x^2)")
	if want := elem(t, tw, "2*ln(x)"); !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
	k, r, ok := tw.LogRelation(elem(t, tw, "1/x"), elem(t, tw, "x"))
	if !ok || k.Cmp(big.NewRat(-1, 1)) != 0 || !r.IsOne() {
		t.Errorf("want k = -1, r = 1, got %v %s %v", k, r, ok)
	}
}

func TestFromExpr_NotRational(t *testing.T) {
	tw := tower(t)
	for _, src := range []string{"sin(x)", "exp(x)", "x^(1/2)", "ln(x)"} {
		if _, err := tw.FromExpr(gosymint.MustParse(src)); !errors.Is(err, field.ErrNotRational) {
			t.Errorf("%s: want ErrNotRational, got %v", src, err)
		}
	}
}

func TestToExpr_RoundTrip(t *testing.T) {
	tw := tower(t, expX, lnX)
	for _, src := range []string{
		"x^2/(x + 1)",
		"exp(x)/(1 + x*exp(x))",
		"ln(x)^2 - exp(x)*ln(x) + 1/x",
	} {
		e := elem(t, tw, src)
		back, err := tw.FromExpr(tw.ToExpr(e))
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if !back.Equal(e) {
			t.Errorf("%s: round trip gave %s", src, back)
		}
	}
}

func TestNew_ConstantGenerator(t *testing.T) {
	_, err := field.New("x", nil, []field.Generator{{Kind: field.Exp, Arg: gosymint.N(2)}})
	if !errors.Is(err, field.ErrNotRational) {
		t.Errorf("want ErrNotRational, got %v", err)
	}
}
