package risch

import (
	"testing"

	"github.com/njchilds90/gosymint/internal/field"
)

func ints(cs ...int64) field.Poly {
	p := make(field.Poly, len(cs))
	for i, c := range cs {
		p[i] = field.Int(c)
	}
	return p
}

func TestBaseBound(t *testing.T) {
	cases := []struct {
		name    string
		a, b, c field.Poly
		want    int
	}{
		// q' + x*q = x^3 + 2*x has q = x^2.
		{"b dominates", ints(1), ints(0, 1), ints(0, 2, 0, 1), 2},
		// q' = 3*x^2 has q = x^3.
		{"b zero", ints(1), ints(), ints(0, 0, 3), 3},
		// x*q' - q = x^3 has q = x^3/2.
		{"cancellation", ints(0, 1), ints(-1), ints(0, 0, 0, 1), 3},
		// x*q' - 5*q = x has q = -x/4 + k*x^5.
		{"integer ratio", ints(0, 1), ints(-5), ints(0, 1), 5},
		// x^2*q' + q = x^4.
		{"a dominates", ints(0, 0, 1), ints(1), ints(0, 0, 0, 0, 1), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := baseBound(tc.a, tc.b, tc.c); got != tc.want {
				t.Errorf("want %d, got %d", tc.want, got)
			}
		})
	}
}

// The solution must satisfy the equation within the bound. When the
// bound comes from deg c alone it is reached exactly.
func TestSPDE_Bounds(t *testing.T) {
	cases := []struct {
		name    string
		a, b, c field.Poly
		exact   bool
	}{
		{"b dominates", ints(1), ints(0, 1), ints(0, 2, 0, 1), true},
		{"b zero", ints(1), ints(), ints(0, 0, 3), true},
		{"integer ratio", ints(0, 1), ints(-5), ints(0, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, tw := testEngine(t)
			base := tw.BaseLevel()
			n := baseBound(tc.a, tc.b, tc.c)
			q, err := e.spde(tc.a, tc.b, tc.c, n, base)
			if err != nil {
				t.Fatal(err)
			}
			lhs := tc.a.Mul(tw.PolyDeriv(q, base)).Add(tc.b.Mul(q))
			if !lhs.Equal(tc.c) {
				t.Errorf("q = %s gives %s, want %s", q, lhs, tc.c)
			}
			if q.Deg() > n {
				t.Errorf("deg %s exceeds bound %d", q, n)
			}
			if tc.exact && q.Deg() != n {
				t.Errorf("want degree %d, got %d", n, q.Deg())
			}
		})
	}
}

func TestSPDE_Cancellation(t *testing.T) {
	e, tw := testEngine(t)
	base := tw.BaseLevel()
	a, b, c := ints(0, 1), ints(-1), ints(0, 0, 0, 1)
	q, err := e.spde(a, b, c, baseBound(a, b, c), base)
	if err != nil {
		t.Fatal(err)
	}
	if want := field.Monomial(field.Frac64(1, 2), 3); !q.Equal(want) {
		t.Errorf("want %s, got %s", want, q)
	}
}
