// Package mcp exposes the integrator and the expression kernel as JSON
// tool calls for agent frameworks.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/risch"
	"github.com/sirupsen/logrus"
)

// ============================================================
// Requests and responses
// ============================================================

type ToolRequest struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

type ToolResponse struct {
	Result  any    `json:"result,omitempty"`
	LaTeX   string `json:"latex,omitempty"`
	String  string `json:"string,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler answers tool calls.
type Handler struct {
	integrator *risch.Integrator
	log        logrus.FieldLogger
}

func NewHandler(integrator *risch.Integrator, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{integrator: integrator, log: log}
}

type params map[string]any

func (p params) expr(key string) (gosymint.Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	return exprOf(key, v)
}

// exprOf accepts an expression object or infix source text.
func exprOf(key string, v any) (gosymint.Expr, error) {
	switch val := v.(type) {
	case map[string]any:
		return gosymint.FromJSON(val)
	case string:
		return gosymint.Parse(val)
	}
	return nil, fmt.Errorf("invalid type for param %s", key)
}

func (p params) string(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

func (p params) optString(key, def string) (string, error) {
	if _, ok := p[key]; !ok {
		return def, nil
	}
	return p.string(key)
}

func (p params) bool(key string) (bool, error) {
	v, ok := p[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("param %s must be a boolean", key)
	}
	return b, nil
}

func (p params) exprs(key string) ([]gosymint.Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	out := make([]gosymint.Expr, len(raw))
	for i, r := range raw {
		e, err := exprOf(fmt.Sprintf("%s[%d]", key, i), r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// extensions reads [{"kind": "exp"|"ln", "arg": expr}, ...].
func (p params) extensions(key string) ([]risch.Extension, bool, error) {
	v, ok := p[key]
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, false, fmt.Errorf("param %s must be array", key)
	}
	out := make([]risch.Extension, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("param %s[%d] must be an object", key, i)
		}
		arg, err := exprOf("arg", m["arg"])
		if err != nil {
			return nil, false, err
		}
		switch m["kind"] {
		case "exp":
			out[i] = risch.Exp(arg)
		case "ln", "log":
			out[i] = risch.Log(arg)
		default:
			return nil, false, fmt.Errorf("param %s[%d].kind must be exp or ln", key, i)
		}
	}
	return out, true, nil
}

func respond(e gosymint.Expr) ToolResponse {
	return ToolResponse{Result: gosymint.ToJSONValue(e), LaTeX: gosymint.LaTeX(e), String: gosymint.String(e)}
}

func fail(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

// ============================================================
// Dispatch
// ============================================================

// Handle runs one tool call. Errors are reported in the response.
func (h *Handler) Handle(ctx context.Context, req ToolRequest) ToolResponse {
	p := params(req.Params)
	log := h.log.WithField("tool", req.Tool)
	log.Debug("tool call")

	switch req.Tool {
	case "integrate":
		return h.integrate(ctx, p)

	case "tower":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := p.string("var")
		if err != nil {
			return fail(err)
		}
		g, err := gosymint.SimplifyFor(f, x, gosymint.RulesFieldExtension)
		if err != nil {
			return fail(err)
		}
		exts, err := risch.BuildTower(x, g)
		if err != nil {
			return fail(err)
		}
		strs := make([]string, len(exts))
		for i, e := range exts {
			strs[i] = e.String()
		}
		resp := ToolResponse{Result: strs, String: strings.Join(strs, ", ")}
		if !risch.IsRational(g, x, exts) {
			resp.Outcome = risch.OutcomeNotIntegrable.String()
		}
		return resp

	case "simplify", "expand":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		def := "output"
		if req.Tool == "expand" {
			def = "output,expand"
		}
		names, err := p.optString("rules", def)
		if err != nil {
			return fail(err)
		}
		rules, err := gosymint.ParseRuleSet(names)
		if err != nil {
			return fail(err)
		}
		x, err := p.optString("var", "")
		if err != nil {
			return fail(err)
		}
		out, err := gosymint.SimplifyFor(f, x, rules)
		if err != nil {
			return fail(err)
		}
		if rules.Has(gosymint.RuleOperators) {
			if out, err = h.integrator.EvaluateIntegrals(ctx, out); err != nil {
				return fail(err)
			}
			if out, err = gosymint.SimplifyFor(out, x, rules); err != nil {
				return fail(err)
			}
		}
		return respond(out)

	case "diff":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := p.string("var")
		if err != nil {
			return fail(err)
		}
		return respond(gosymint.Diff(f, x))

	case "substitute":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := p.string("var")
		if err != nil {
			return fail(err)
		}
		v, err := p.expr("value")
		if err != nil {
			return fail(err)
		}
		return respond(gosymint.Sub(f, x, v))

	case "degree":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := p.string("var")
		if err != nil {
			return fail(err)
		}
		d := gosymint.Degree(f, x)
		return ToolResponse{Result: d, String: fmt.Sprintf("%d", d)}

	case "poly_coeffs":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := p.string("var")
		if err != nil {
			return fail(err)
		}
		coeffs, err := gosymint.PolyCoeffs(f, x)
		if err != nil {
			return fail(err)
		}
		out := map[string]string{}
		for i, c := range coeffs.All() {
			out[fmt.Sprintf("%d", i)] = gosymint.String(c)
		}
		return ToolResponse{Result: out, String: coeffs.String()}

	case "solve_polynomial":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := p.string("var")
		if err != nil {
			return fail(err)
		}
		roots, err := gosymint.SolvePolynomial(f, x)
		if err != nil {
			return fail(err)
		}
		strs := make([]string, len(roots))
		for i, r := range roots {
			strs[i] = gosymint.String(r)
		}
		return ToolResponse{Result: strs, String: strings.Join(strs, ", ")}

	case "to_latex":
		f, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: gosymint.LaTeX(f), LaTeX: gosymint.LaTeX(f), String: gosymint.String(f)}

	case "free_symbols":
		exprs, err := p.exprs("exprs")
		if err != nil {
			return fail(err)
		}
		names := gosymint.FreeSymbols(exprs...)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "parse":
		src, err := p.string("source")
		if err != nil {
			return fail(err)
		}
		e, err := gosymint.Parse(src)
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "mcp_spec":
		return ToolResponse{Result: ToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func (h *Handler) integrate(ctx context.Context, p params) ToolResponse {
	f, err := p.expr("expr")
	if err != nil {
		return fail(err)
	}
	x, err := p.string("var")
	if err != nil {
		return fail(err)
	}
	exts, over, err := p.extensions("tower")
	if err != nil {
		return fail(err)
	}
	strict, err := p.bool("strict")
	if err != nil {
		return fail(err)
	}
	var out gosymint.Expr
	switch {
	case over:
		out, err = h.integrator.IntegrateOver(ctx, f, x, exts)
	case strict:
		out, err = h.integrator.IntegrateTranscendental(ctx, f, x)
	default:
		out, err = h.integrator.IntegrateContext(ctx, f, x)
	}
	outcome := risch.Classify(err)
	if err != nil {
		h.log.WithError(err).WithField("outcome", outcome).Debug("integration failed")
		return ToolResponse{Error: err.Error(), Outcome: outcome.String()}
	}
	resp := respond(out)
	resp.Outcome = outcome.String()
	return resp
}

// ============================================================
// Tool schema
// ============================================================

// ToolSpec returns the JSON schema of every tool. Expression parameters
// take an expression object or infix text.
func ToolSpec() string {
	tools := []map[string]any{
		ts("integrate", "Risch integration over exp/ln towers. Optional tower ([{kind, arg}]) and strict (bool)", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "tower": "array", "strict": "boolean"}),
		ts("tower", "Differential field tower of an integrand", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("simplify", "Simplify under a rule set (default output)", []string{"expr"}, map[string]string{"expr": "object", "rules": "string", "var": "string"}),
		ts("expand", "Multiply out products and powers of sums", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("diff", "First derivative d/dx", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("degree", "Polynomial degree in variable", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("poly_coeffs", "Extract polynomial coefficients by degree", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("solve_polynomial", "Exact roots of a polynomial with rational coefficients", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("free_symbols", "Return free symbol names", []string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("parse", "Parse infix source into an expression object", []string{"source"}, map[string]string{"source": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	b, _ := json.MarshalIndent(map[string]any{"tools": tools}, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]any {
	properties := map[string]any{}
	for k, typ := range props {
		properties[k] = map[string]any{"type": typ}
	}
	return map[string]any{
		"name":        name,
		"description": description,
		"inputSchema": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
