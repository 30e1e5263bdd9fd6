package gosymint

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
)

// ============================================================
// JSON
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToJSONValue returns the JSON object form of e without encoding it.
func ToJSONValue(e Expr) map[string]any { return e.toJSON() }

// FromJSONString decodes the output of ToJSON.
func FromJSONString(s string) (Expr, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, errors.Wrap(err, "decoding expression")
	}
	return FromJSON(data)
}

func FromJSON(data map[string]any) (Expr, error) {
	if data == nil {
		return nil, errors.New("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, errors.New("field 'type' must be a non-empty string")
	}

	subExpr := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", typ, field)
		}
		return e, nil
	}

	subString := func(field string) (string, error) {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return "", errors.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, errors.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "binop":
		name, err := subString("op")
		if err != nil {
			return nil, err
		}
		op, ok := opFromName(name)
		if !ok {
			return nil, errors.Errorf("binop: unknown op %q", name)
		}
		left, err := subExpr("left")
		if err != nil {
			return nil, err
		}
		right, err := subExpr("right")
		if err != nil {
			return nil, err
		}
		return &BinOp{op: op, left: left, right: right}, nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		kind, ok := LookupFunc(name)
		if !ok {
			return nil, errors.Errorf("func: unknown function %q", name)
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return Fn(kind, arg), nil

	case "operator":
		kind, err := subString("kind")
		if err != nil {
			return nil, err
		}
		index, err := subString("index")
		if err != nil {
			return nil, err
		}
		body, err := subExpr("body")
		if err != nil {
			return nil, err
		}
		switch OperatorKind(kind) {
		case OperatorIntegral:
			return IntegralOp(body, index), nil
		case OperatorSum, OperatorProduct:
			lower, err := subExpr("lower")
			if err != nil {
				return nil, err
			}
			upper, err := subExpr("upper")
			if err != nil {
				return nil, err
			}
			if OperatorKind(kind) == OperatorSum {
				return SumOp(body, index, lower, upper), nil
			}
			return ProductOp(body, index, lower, upper), nil
		}
		return nil, errors.Errorf("operator: unknown kind %q", kind)
	}
	return nil, errors.Errorf("unknown expression type %q", typ)
}
