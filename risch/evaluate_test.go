package risch

import (
	"context"
	"strings"
	"testing"

	"github.com/njchilds90/gosymint"
)

func TestEvaluateIntegrals(t *testing.T) {
	it := New(DefaultOptions())
	cases := []struct {
		src, want string
	}{
		{"int(exp(x), x)", "exp(x)"},
		{"1 + int(1/x, x)", "ln(x) + 1"},
		{"int(exp(x^2), x)", "int(exp(x^2), x)"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			out, err := it.EvaluateIntegrals(context.Background(), gosymint.MustParse(tc.src))
			if err != nil {
				t.Fatal(err)
			}
			got := gosymint.MustSimplify(out, gosymint.RulesOutput)
			if got.String() != tc.want {
				t.Errorf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEvaluateIntegrals_Nested(t *testing.T) {
	it := New(DefaultOptions())
	out, err := it.EvaluateIntegrals(context.Background(), gosymint.MustParse("int(int(1/x, x), x)"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "int(") {
		t.Fatalf("integral left in %s", out)
	}
	assertAntiderivative(t, gosymint.MustParse("ln(x)"), out)
}
