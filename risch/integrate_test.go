package risch

import (
	"context"
	"testing"

	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/internal/field"
	"github.com/pkg/errors"
)

// equivalent decides a = b exactly by mapping both into one field.
func equivalent(t *testing.T, x string, a, b gosymint.Expr) bool {
	t.Helper()
	fa, err := gosymint.SimplifyFor(a, x, gosymint.RulesFieldExtension)
	if err != nil {
		t.Fatalf("simplify %s: %v", a, err)
	}
	fb, err := gosymint.SimplifyFor(b, x, gosymint.RulesFieldExtension)
	if err != nil {
		t.Fatalf("simplify %s: %v", b, err)
	}
	exts, err := BuildTower(x, fa, fb)
	if err != nil {
		t.Fatalf("tower for %s, %s: %v", fa, fb, err)
	}
	_, elems, err := field.Resolve(x, generators(exts), fa, fb)
	if err != nil {
		t.Fatalf("resolve %s, %s: %v", fa, fb, err)
	}
	return elems[0].Equal(elems[1])
}

func assertAntiderivative(t *testing.T, f gosymint.Expr, got gosymint.Expr) {
	t.Helper()
	d := gosymint.Diff(got, "x")
	if !equivalent(t, "x", d, f) {
		t.Errorf("d/dx(%s) = %s, want %s", got, d, f)
	}
}

func mustIntegrate(t *testing.T, src string) gosymint.Expr {
	t.Helper()
	f := gosymint.MustParse(src)
	got, err := Integrate(f, "x")
	if err != nil {
		t.Fatalf("integrate %s: %v", src, err)
	}
	assertAntiderivative(t, f, got)
	return got
}

// ============================================================
// Integrate
// ============================================================

func TestIntegrate_Exp(t *testing.T) {
	got := mustIntegrate(t, "exp(x)")
	if got.String() != "exp(x)" {
		t.Errorf("want exp(x), got %s", got)
	}
}

func TestIntegrate_LogOfLog(t *testing.T) {
	got := mustIntegrate(t, "1/(x*ln(x))")
	if got.String() != "ln(ln(x))" {
		t.Errorf("want ln(ln(x)), got %s", got)
	}
}

func TestIntegrate_ExpOfSquare(t *testing.T) {
	got := mustIntegrate(t, "x*exp(x^2)")
	want := gosymint.MustParse("exp(x^2)/2")
	if !equivalent(t, "x", got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestIntegrate_RationalLog(t *testing.T) {
	got := mustIntegrate(t, "2*x/(x^2 + 1)")
	if got.String() != "ln(x^2 + 1)" {
		t.Errorf("want ln(x^2 + 1), got %s", got)
	}
}

func TestIntegrate_Table(t *testing.T) {
	cases := []string{
		"ln(x)",
		"ln(x)/x",
		"1/x",
		"(2*x + 1)*exp(x^2 + x)",
		"exp(x)/(exp(x) + 1)",
		"x^3 - 2*x + 5",
		"1/(x^2 - 1)",
		"1/(x + 1)^2",
		"x*ln(x)",
		"exp(2*x) + exp(3*x)",
		"exp(-x)",
		"a*exp(x)",
		"1/(x + a)",
		"1/(x^2 - a^2)",
		"ln(x)^2",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			mustIntegrate(t, src)
		})
	}
}

func TestIntegrate_NotElementary(t *testing.T) {
	cases := []string{
		"exp(x^2)",
		"1/ln(x)",
		"exp(x)/x",
		"exp(x)*ln(x)",
		"1/(x^2 + 1)",
		"sin(x)",
		"x^(1/2)",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			_, err := Integrate(gosymint.MustParse(src), "x")
			if !errors.Is(err, ErrNotAlgebraicallyIntegrable) {
				t.Fatalf("want not integrable, got %v", err)
			}
			if o := Classify(err); o != OutcomeNotIntegrable {
				t.Errorf("want %s, got %s", OutcomeNotIntegrable, o)
			}
		})
	}
}

func TestIntegrateOver_ForeignTower(t *testing.T) {
	it := New(DefaultOptions())
	_, err := it.IntegrateOver(context.Background(), gosymint.MustParse("exp(x)"), "x", []Extension{Log(gosymint.S("x"))})
	if !errors.Is(err, ErrNotAlgebraicallyIntegrable) {
		t.Fatalf("want not integrable, got %v", err)
	}
}

func TestIntegrateOver_GivenTower(t *testing.T) {
	it := New(DefaultOptions())
	f := gosymint.MustParse("ln(x)/x")
	got, err := it.IntegrateOver(context.Background(), f, "x", []Extension{Log(gosymint.S("x"))})
	if err != nil {
		t.Fatal(err)
	}
	assertAntiderivative(t, f, got)
}

func TestIntegrateTranscendental_RejectsRational(t *testing.T) {
	it := New(DefaultOptions())
	_, err := it.IntegrateTranscendental(context.Background(), gosymint.MustParse("1/x"), "x")
	if !errors.Is(err, ErrNotAlgebraicallyIntegrable) {
		t.Fatalf("want not integrable, got %v", err)
	}
	if _, err := it.IntegrateTranscendental(context.Background(), gosymint.MustParse("exp(x)"), "x"); err != nil {
		t.Fatal(err)
	}
}

func TestIntegrate_Constant(t *testing.T) {
	got := mustIntegrate(t, "3")
	if got.String() != "3*x" {
		t.Errorf("want 3*x, got %s", got)
	}
}

func TestIntegrate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultOptions()).IntegrateContext(ctx, gosymint.MustParse("ln(x)"), "x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if o := Classify(err); o != OutcomeCanceled {
		t.Errorf("want %s, got %s", OutcomeCanceled, o)
	}
}

func TestIntegrate_DepthGuard(t *testing.T) {
	_, err := New(Options{MaxDepth: 1, Verify: true}).Integrate(gosymint.MustParse("ln(x)"), "x")
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("want depth exceeded, got %v", err)
	}
	if !errors.Is(err, ErrNotAlgebraicallyIntegrable) {
		t.Errorf("depth failure should count as not integrable: %v", err)
	}
}

func TestIntegrate_UndefinedIntegrand(t *testing.T) {
	_, err := Integrate(gosymint.MustParse("x/0"), "x")
	var ae *ArithmeticError
	if !errors.As(err, &ae) {
		t.Fatalf("want *ArithmeticError, got %v", err)
	}
	if !errors.Is(err, ErrNotAlgebraicallyIntegrable) {
		t.Errorf("arithmetic failure should count as not integrable")
	}
}

// ============================================================
// Properties
// ============================================================

func TestIntegrate_RoundTrip(t *testing.T) {
	primitives := []string{
		"x^2*exp(x)",
		"ln(x^2 + 1)",
		"exp(x)/x",
		"x*ln(x) - x",
		"ln(ln(x))",
		"1/(exp(x) + 1)",
		"exp(x^2)*(x + 1)",
	}
	for _, src := range primitives {
		t.Run(src, func(t *testing.T) {
			g := gosymint.MustParse(src)
			f := gosymint.Diff(g, "x")
			got, err := Integrate(f, "x")
			if err != nil {
				t.Fatalf("integrate d/dx(%s) = %s: %v", src, f, err)
			}
			assertAntiderivative(t, f, got)
		})
	}
}

func TestIntegrate_Deterministic(t *testing.T) {
	f := gosymint.MustParse("(2*x + 1)*exp(x^2 + x) + 1/(x*ln(x))")
	first, err := Integrate(f, "x")
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := Integrate(f, "x")
		if err != nil {
			t.Fatal(err)
		}
		if again.String() != first.String() {
			t.Fatalf("want %s, got %s", first, again)
		}
	}
}

// ============================================================
// Risch differential equation
// ============================================================

func testEngine(t *testing.T, exts ...Extension) (*engine, *field.Tower) {
	t.Helper()
	tw, err := field.New("x", nil, generators(exts))
	if err != nil {
		t.Fatal(err)
	}
	e := &engine{ctx: context.Background(), t: tw, log: New(Options{}).opts.Logger, maxDepth: DefaultMaxDepth}
	return e, tw
}

func elem(t *testing.T, tw *field.Tower, src string) field.Elem {
	t.Helper()
	v, err := tw.FromExpr(gosymint.MustParse(src))
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return v
}

func TestSolveRDE_Polynomial(t *testing.T) {
	e, tw := testEngine(t)
	f, g := elem(t, tw, "x"), elem(t, tw, "x^3 + 2*x")
	y, err := e.solveRDE(f, g, rationalPart(elem(t, tw, "x^2/2")), tw.BaseLevel())
	if err != nil {
		t.Fatal(err)
	}
	if want := elem(t, tw, "x^2"); !y.Equal(want) {
		t.Errorf("want %s, got %s", want, y)
	}
}

func TestSolveRDE_NoSolution(t *testing.T) {
	e, tw := testEngine(t)
	_, err := e.solveRDE(elem(t, tw, "2*x"), elem(t, tw, "1"), rationalPart(elem(t, tw, "x^2")), tw.BaseLevel())
	if !errors.Is(err, ErrNotAlgebraicallyIntegrable) {
		t.Fatalf("want not integrable, got %v", err)
	}
}

func TestSolveRDE_OverLog(t *testing.T) {
	e, tw := testEngine(t, Log(gosymint.S("x")))
	top := tw.Top()
	// y' + y = ln(x) + 1/x has y = ln(x).
	y, err := e.solveRDE(field.One(), elem(t, tw, "ln(x) + 1/x"), rationalPart(elem(t, tw, "x")), top)
	if err != nil {
		t.Fatal(err)
	}
	if want := elem(t, tw, "ln(x)"); !y.Equal(want) {
		t.Errorf("want %s, got %s", want, y)
	}
}
