package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/mcp"
	"github.com/njchilds90/gosymint/risch"
)

func handler() *mcp.Handler {
	return mcp.NewHandler(risch.New(risch.DefaultOptions()), nil)
}

func call(t *testing.T, tool string, params map[string]any) mcp.ToolResponse {
	t.Helper()
	return handler().Handle(context.Background(), mcp.ToolRequest{Tool: tool, Params: params})
}

// ============================================================
// Integration tools
// ============================================================

func TestTool_Integrate(t *testing.T) {
	resp := call(t, "integrate", map[string]any{"expr": "exp(x)", "var": "x"})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if resp.String != "exp(x)" {
		t.Errorf("want exp(x), got %s", resp.String)
	}
	if resp.Outcome != "ok" {
		t.Errorf("want outcome ok, got %s", resp.Outcome)
	}
}

func TestTool_Integrate_JSONExpr(t *testing.T) {
	expr := gosymint.ToJSONValue(gosymint.Div(gosymint.N(1), gosymint.S("x")))
	resp := call(t, "integrate", map[string]any{"expr": expr, "var": "x"})
	if resp.String != "ln(x)" {
		t.Errorf("want ln(x), got %s (%s)", resp.String, resp.Error)
	}
}

func TestTool_Integrate_NotIntegrable(t *testing.T) {
	resp := call(t, "integrate", map[string]any{"expr": "exp(x^2)", "var": "x"})
	if resp.Error == "" {
		t.Fatal("expected an error")
	}
	if resp.Outcome != risch.OutcomeNotIntegrable.String() {
		t.Errorf("want %s, got %s", risch.OutcomeNotIntegrable, resp.Outcome)
	}
}

func TestTool_Integrate_ForcedTower(t *testing.T) {
	resp := call(t, "integrate", map[string]any{
		"expr":  "exp(x)",
		"var":   "x",
		"tower": []any{map[string]any{"kind": "ln", "arg": "x"}},
	})
	if resp.Outcome != risch.OutcomeNotIntegrable.String() {
		t.Errorf("want %s, got %s (%s)", risch.OutcomeNotIntegrable, resp.Outcome, resp.String)
	}
}

func TestTool_Integrate_Strict(t *testing.T) {
	resp := call(t, "integrate", map[string]any{"expr": "1/x", "var": "x", "strict": true})
	if resp.Error == "" {
		t.Error("strict mode should reject a rational integrand")
	}
}

func TestTool_Tower(t *testing.T) {
	resp := call(t, "tower", map[string]any{"expr": "x*exp(x^2) + ln(x)", "var": "x"})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	got, ok := resp.Result.([]string)
	if !ok {
		t.Fatalf("want []string, got %T", resp.Result)
	}
	if len(got) != 2 {
		t.Errorf("want 2 extensions, got %v", got)
	}
}

// ============================================================
// Kernel tools
// ============================================================

func TestTool_Diff(t *testing.T) {
	resp := call(t, "diff", map[string]any{"expr": "x^3", "var": "x"})
	if resp.String != "3*x^2" {
		t.Errorf("want 3*x^2, got %s", resp.String)
	}
}

func TestTool_SolvePolynomial(t *testing.T) {
	resp := call(t, "solve_polynomial", map[string]any{"expr": "x^2 - 3*x + 2", "var": "x"})
	if diff := cmp.Diff([]string{"1", "2"}, resp.Result); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestTool_Degree(t *testing.T) {
	resp := call(t, "degree", map[string]any{"expr": "x^4 + x", "var": "x"})
	if resp.String != "4" {
		t.Errorf("want 4, got %s", resp.String)
	}
}

func TestTool_FreeSymbols(t *testing.T) {
	resp := call(t, "free_symbols", map[string]any{"exprs": []any{"a*x + b", "y"}})
	if diff := cmp.Diff([]string{"a", "b", "x", "y"}, resp.Result); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
}

func TestTool_Simplify_UnknownRule(t *testing.T) {
	resp := call(t, "simplify", map[string]any{"expr": "x + x", "rules": "bogus"})
	if !strings.Contains(resp.Error, "bogus") {
		t.Errorf("want unknown rule error, got %q", resp.Error)
	}
}

func TestTool_Simplify(t *testing.T) {
	resp := call(t, "simplify", map[string]any{"expr": "x + x"})
	if resp.String != "2*x" {
		t.Errorf("want 2*x, got %s", resp.String)
	}
}

func TestTool_Simplify_Operators(t *testing.T) {
	resp := call(t, "simplify", map[string]any{"expr": "2*int(exp(x), x) + sum(1, k, 1, n)"})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if resp.String != "2*exp(x) + n" {
		t.Errorf("want 2*exp(x) + n, got %s", resp.String)
	}
	resp = call(t, "simplify", map[string]any{"expr": "int(exp(x), x)", "rules": "basic"})
	if resp.String != "int(exp(x), x)" {
		t.Errorf("integral should stay without the operators rule, got %s", resp.String)
	}
}

func TestTool_MissingParam(t *testing.T) {
	resp := call(t, "diff", map[string]any{"expr": "x"})
	if resp.Error != "missing param: var" {
		t.Errorf("want missing param error, got %q", resp.Error)
	}
}

func TestTool_Unknown(t *testing.T) {
	resp := call(t, "nope", nil)
	if !strings.Contains(resp.Error, "unknown tool") {
		t.Errorf("want unknown tool error, got %q", resp.Error)
	}
}

func TestToolSpec_Valid(t *testing.T) {
	var schema struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(mcp.ToolSpec()), &schema); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range schema.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"integrate", "tower", "diff", "mcp_spec"} {
		if !names[want] {
			t.Errorf("tool %s missing from schema", want)
		}
	}
}
