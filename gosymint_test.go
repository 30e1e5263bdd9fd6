package gosymint_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/njchilds90/gosymint"
	"github.com/pkg/errors"
)

func simplify(t *testing.T, src string, rules gosymint.RuleSet) string {
	t.Helper()
	e, err := gosymint.Simplify(gosymint.MustParse(src), rules)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return gosymint.String(e)
}

func strs(exprs []gosymint.Expr) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = gosymint.String(e)
	}
	return out
}

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := gosymint.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := gosymint.F(2, 6)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := gosymint.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := gosymint.N(5).Diff("x")
	if gosymint.String(result) != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", gosymint.String(result))
	}
}

func TestNum_Eval(t *testing.T) {
	n, ok := gosymint.MustParse("1/3 + 1/6").Eval()
	if !ok || n.String() != "1/2" {
		t.Errorf("want 1/2, got %v", n)
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := gosymint.S("x").Sub("x", gosymint.N(3))
	if gosymint.String(result) != "3" {
		t.Errorf("want 3, got %s", gosymint.String(result))
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := gosymint.S("y").Sub("x", gosymint.N(3))
	if gosymint.String(result) != "y" {
		t.Errorf("want y, got %s", gosymint.String(result))
	}
}

func TestSym_Diff(t *testing.T) {
	if d := gosymint.S("x").Diff("x"); gosymint.String(d) != "1" {
		t.Errorf("d/dx(x) want 1, got %s", d)
	}
	if d := gosymint.S("y").Diff("x"); gosymint.String(d) != "0" {
		t.Errorf("d/dx(y) want 0, got %s", d)
	}
}

// ============================================================
// Smart constructors
// ============================================================

func TestAddOf_FoldsNumbers(t *testing.T) {
	x := gosymint.S("x")
	if got := gosymint.String(gosymint.AddOf(gosymint.N(1), x, gosymint.N(2))); got != "x + 3" {
		t.Errorf("want x + 3, got %s", got)
	}
	if got := gosymint.String(gosymint.AddOf(gosymint.N(0))); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestMulOf(t *testing.T) {
	x := gosymint.S("x")
	if got := gosymint.String(gosymint.MulOf(gosymint.N(0), x)); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
	if got := gosymint.String(gosymint.MulOf(gosymint.N(1), x)); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

func TestPowOf(t *testing.T) {
	x := gosymint.S("x")
	if got := gosymint.String(gosymint.PowOf(x, gosymint.N(0))); got != "1" {
		t.Errorf("x^0 want 1, got %s", got)
	}
	if got := gosymint.String(gosymint.PowOf(x, gosymint.N(1))); got != "x" {
		t.Errorf("x^1 want x, got %s", got)
	}
	if got := gosymint.String(gosymint.PowOf(gosymint.N(2), gosymint.N(10))); got != "1024" {
		t.Errorf("2^10 want 1024, got %s", got)
	}
}

func TestDivOf_KeepsDivisionByZero(t *testing.T) {
	e := gosymint.DivOf(gosymint.S("x"), gosymint.N(0))
	if _, err := gosymint.Simplify(e, gosymint.RulesOutput); !errors.Is(err, gosymint.ErrUndefined) {
		t.Errorf("want ErrUndefined, got %v", err)
	}
}

// ============================================================
// Simplification
// ============================================================

func TestSimplify_LikeTerms(t *testing.T) {
	if got := simplify(t, "x + x + x + 2", gosymint.RulesOutput); got != "3*x + 2" {
		t.Errorf("want 3*x + 2, got %s", got)
	}
}

func TestSimplify_CollapseToZero(t *testing.T) {
	if got := simplify(t, "x - x", gosymint.RulesOutput); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestSimplify_Rational(t *testing.T) {
	if got := simplify(t, "x/3 + 5*x/6", gosymint.RulesOutput); got != "7*x/6" {
		t.Errorf("want 7*x/6, got %s", got)
	}
}

func TestParseRuleSet(t *testing.T) {
	r, err := gosymint.ParseRuleSet("output")
	if err != nil || r != gosymint.RulesOutput {
		t.Errorf("want RulesOutput, got %s (%v)", r, err)
	}
	r, err = gosymint.ParseRuleSet("basic|order")
	if err != nil || r != gosymint.RuleBasic|gosymint.RuleOrder {
		t.Errorf("want basic|order, got %s (%v)", r, err)
	}
	if r.String() != "order|basic" {
		t.Errorf("want order|basic, got %s", r.String())
	}
	if _, err := gosymint.ParseRuleSet("bogus"); err == nil {
		t.Error("expected an error for an unknown rule")
	}
}

func TestDeterminism(t *testing.T) {
	src := "ln(x)*exp(x) + 2*x*exp(x) - x + exp(x)*ln(x)"
	first := simplify(t, src, gosymint.RulesOutput)
	for i := 0; i < 10; i++ {
		if got := simplify(t, src, gosymint.RulesOutput); got != first {
			t.Fatalf("run %d: %s != %s", i, got, first)
		}
	}
}

// ============================================================
// Collections
// ============================================================

func TestSummands(t *testing.T) {
	plus, minus := gosymint.Summands(gosymint.MustParse("a - b + c"))
	if plus.String() != "[a, c]" || minus.String() != "[b]" {
		t.Errorf("want [a, c] and [b], got %s and %s", plus, minus)
	}
}

func TestFactors(t *testing.T) {
	num, den := gosymint.Factors(gosymint.MustParse("a*b/c"))
	if num.String() != "[a, b]" || den.String() != "[c]" {
		t.Errorf("want [a, b] and [c], got %s and %s", num, den)
	}
}

// ============================================================
// Calculus
// ============================================================

func TestDiff_PowerRule(t *testing.T) {
	d := gosymint.Diff(gosymint.MustParse("x^3"), "x")
	if gosymint.String(d) != "3*x^2" {
		t.Errorf("want 3*x^2, got %s", gosymint.String(d))
	}
}

func TestDiffN(t *testing.T) {
	d, err := gosymint.Simplify(gosymint.DiffN(gosymint.MustParse("x^3"), "x", 3), gosymint.RulesOutput)
	if err != nil {
		t.Fatal(err)
	}
	if gosymint.String(d) != "6" {
		t.Errorf("want 6, got %s", gosymint.String(d))
	}
}

// ============================================================
// Polynomials
// ============================================================

func TestDegree(t *testing.T) {
	if d := gosymint.Degree(gosymint.MustParse("x^4 + x"), "x"); d != 4 {
		t.Errorf("want 4, got %d", d)
	}
}

func TestPolyCoeffs(t *testing.T) {
	coeffs, err := gosymint.PolyCoeffs(gosymint.MustParse("x^2 - 3*x + 2"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"2", "-3", "1"}, strs(coeffs.Values())); diff != "" {
		t.Errorf("coefficients mismatch (-want +got):\n%s", diff)
	}
}

func TestPolyCoeffs_NotPolynomial(t *testing.T) {
	if _, err := gosymint.PolyCoeffs(gosymint.MustParse("exp(x) + 1"), "x"); !errors.Is(err, gosymint.ErrNotPolynomial) {
		t.Errorf("want ErrNotPolynomial, got %v", err)
	}
}

func TestSolvePolynomial(t *testing.T) {
	roots, err := gosymint.SolvePolynomial(gosymint.MustParse("x^3 - x"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"-1", "0", "1"}, strs(roots)); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

// isRoot reports whether substituting root for varName makes e vanish.
func isRoot(t *testing.T, e gosymint.Expr, varName string, root gosymint.Expr) bool {
	t.Helper()
	v, err := gosymint.Simplify(e.Sub(varName, root), gosymint.RulesRisch)
	if err != nil {
		t.Fatalf("%s at %s: %v", e, root, err)
	}
	n, ok := v.(*gosymint.Num)
	return ok && n.IsZero()
}

func TestSolvePolynomial_SymbolicQuadratic(t *testing.T) {
	for _, src := range []string{
		"z^2 - 1/(4*a^2)",
		"z^2 - (a + b)*z + a*b",
		"a*z^2 - 2*z + 1/a",
	} {
		t.Run(src, func(t *testing.T) {
			e := gosymint.MustParse(src)
			roots, err := gosymint.SolvePolynomial(e, "z")
			if err != nil {
				t.Fatal(err)
			}
			if src == "a*z^2 - 2*z + 1/a" {
				if len(roots) != 1 {
					t.Fatalf("want one double root, got %v", strs(roots))
				}
			} else if len(roots) != 2 {
				t.Fatalf("want two roots, got %v", strs(roots))
			}
			for _, r := range roots {
				if !isRoot(t, e, "z", r) {
					t.Errorf("%s is not a root", r)
				}
			}
		})
	}
}

func TestSolvePolynomial_NotSquare(t *testing.T) {
	_, err := gosymint.SolvePolynomial(gosymint.MustParse("z^2 - a"), "z")
	if !errors.Is(err, gosymint.ErrNotSolvable) {
		t.Errorf("want ErrNotSolvable, got %v", err)
	}
}

// ============================================================
// Operators
// ============================================================

// closedForm simplifies src, checks that no sum or product is left and
// evaluates the result at values.
func closedForm(t *testing.T, src string, values map[string]gosymint.Expr) string {
	t.Helper()
	got := simplify(t, src, gosymint.RulesOutput)
	if strings.Contains(got, "sum(") || strings.Contains(got, "prod(") {
		t.Fatalf("%s: operator left in %s", src, got)
	}
	n, ok := gosymint.SubAll(gosymint.MustParse(got), values).Eval()
	if !ok {
		t.Fatalf("%s: %s does not evaluate", src, got)
	}
	return n.String()
}

func TestOperators_Faulhaber(t *testing.T) {
	cases := []struct {
		src  string
		n    int64
		want string
	}{
		{"sum(k, k, 1, n)", 10, "55"},
		{"sum(k^2, k, 1, n)", 4, "30"},
		{"sum(k^3, k, 3, n)", 5, "216"},
		{"sum(k + 1, k, 1, n)", 3, "9"},
		{"sum(2*k/3, k, 0, n)", 3, "4"},
		{"sum(5, k, 1, n)", 7, "35"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			got := closedForm(t, tc.src, map[string]gosymint.Expr{"n": gosymint.N(tc.n)})
			if got != tc.want {
				t.Errorf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestOperators_ConstantsOut(t *testing.T) {
	got := closedForm(t, "sum(c*k, k, 1, n)", map[string]gosymint.Expr{"c": gosymint.N(2), "n": gosymint.N(3)})
	if got != "12" {
		t.Errorf("want 12, got %s", got)
	}
	prod := simplify(t, "prod(c*k, k, 1, n)", gosymint.RulesOutput)
	if !strings.Contains(prod, "c^n") || !strings.Contains(prod, "prod(k, k, 1, n)") {
		t.Errorf("want c^n*prod(k, k, 1, n), got %s", prod)
	}
}

func TestOperators_ExpAndLog(t *testing.T) {
	if got := simplify(t, "prod(exp(k), k, 1, n)", gosymint.RulesOutput); !strings.HasPrefix(got, "exp(") || strings.Contains(got, "sum(") {
		t.Errorf("want exp of a closed sum, got %s", got)
	}
	if got := closedForm(t, "prod(2^k, k, 1, n)", map[string]gosymint.Expr{"n": gosymint.N(3)}); got != "64" {
		t.Errorf("want 64, got %s", got)
	}
	if got := simplify(t, "sum(ln(k), k, 1, n)", gosymint.RulesOutput); got != "ln(prod(k, k, 1, n))" {
		t.Errorf("want ln(prod(k, k, 1, n)), got %s", got)
	}
}

func TestOperators_IntegralLinearity(t *testing.T) {
	got := simplify(t, "int(3*exp(x) + 2, x)", gosymint.RulesOutput)
	if !strings.Contains(got, "3*int(exp(x), x)") || !strings.Contains(got, "2*x") {
		t.Errorf("want 3*int(exp(x), x) + 2*x, got %s", got)
	}
	if got := simplify(t, "int(1/(x*ln(x)), x)", gosymint.RulesOutput); !strings.HasPrefix(got, "int(") {
		t.Errorf("want the integral kept, got %s", got)
	}
	if got := simplify(t, "int(exp(x), x)", gosymint.RuleBasic); got != "int(exp(x), x)" {
		t.Errorf("integral should stay without the operators rule, got %s", got)
	}
}

func TestOperators_NumericLimits(t *testing.T) {
	if got := simplify(t, "sum(k^2, k, 1, 4)", gosymint.RulesOutput); got != "30" {
		t.Errorf("want 30, got %s", got)
	}
}

// ============================================================
// Substitution
// ============================================================

func TestSubAll_SortedOrder(t *testing.T) {
	e := gosymint.SubAll(gosymint.MustParse("x*y + z"), map[string]gosymint.Expr{
		"z": gosymint.S("y"),
		"x": gosymint.N(2),
		"y": gosymint.N(3),
	})
	// z is replaced last, so the y it introduces survives.
	if got := simplify(t, e.String(), gosymint.RulesOutput); got != "y + 6" {
		t.Errorf("want y + 6, got %s", got)
	}
}

// ============================================================
// Parsing and JSON
// ============================================================

func TestParse_Error(t *testing.T) {
	_, err := gosymint.Parse("x +")
	var perr *gosymint.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("want *ParseError, got %v", err)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	e := gosymint.MustParse("x*exp(x^2) - ln(x)/3")
	js, err := gosymint.ToJSON(e)
	if err != nil {
		t.Fatal(err)
	}
	back, err := gosymint.FromJSONString(js)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(e) {
		t.Errorf("round trip gave %s", back)
	}
}

// ============================================================
// Symbols
// ============================================================

func TestFreeSymbols(t *testing.T) {
	got := gosymint.FreeSymbols(gosymint.MustParse("y*x + a"), gosymint.MustParse("b"))
	if diff := cmp.Diff([]string{"a", "b", "x", "y"}, got); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
}

func TestFreshVar(t *testing.T) {
	if got := gosymint.FreshVar("z", gosymint.MustParse("x + z")); got != "z_1" {
		t.Errorf("want z_1, got %s", got)
	}
	if got := gosymint.FreshVar("z", gosymint.MustParse("x")); got != "z" {
		t.Errorf("want z, got %s", got)
	}
}

func TestEqual(t *testing.T) {
	if !gosymint.N(1).Equal(gosymint.F(2, 2)) {
		t.Error("1 should equal 2/2")
	}
	if gosymint.N(1).Equal(gosymint.S("x")) {
		t.Error("a number should not equal a symbol")
	}
}
