package gosymint

import (
	"fmt"
	"math/big"
	"strings"
	"text/scanner"
)

// ============================================================
// Parser
// ============================================================

// ParseError reports the offset of the first offending token.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads an infix expression:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = "-" unary | power
//	power  = atom [ "^" unary ]
//	atom   = number | name | name "(" args ")" | "(" expr ")"
//
// Function names are the FuncKind values. sum(body, k, lo, hi),
// prod(body, k, lo, hi) and int(body, x) build operators. A quotient of
// two integer literals is read as a rational constant.
func Parse(src string) (Expr, error) {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = &ParseError{Offset: s.Pos().Offset, Msg: msg}
		}
	}
	p.next()
	e := p.expr()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail("unexpected %q", p.text)
	}
	if p.err != nil {
		return nil, p.err
	}
	return e, nil
}

// MustParse panics on error. Intended for tests and examples.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	s    scanner.Scanner
	tok  rune
	text string
	pos  int
	err  error
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
	p.pos = p.s.Position.Offset
}

func (p *parser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
	}
}

func (p *parser) expect(tok rune) {
	if p.tok != tok {
		p.fail("expected %q, found %q", string(tok), p.text)
		return
	}
	p.next()
}

func (p *parser) expr() Expr {
	left := p.term()
	for p.err == nil && (p.tok == '+' || p.tok == '-') {
		op := p.tok
		p.next()
		right := p.term()
		if op == '+' {
			left = Add(left, right)
		} else {
			left = Subtract(left, right)
		}
	}
	return left
}

func (p *parser) term() Expr {
	left := p.unary()
	for p.err == nil && (p.tok == '*' || p.tok == '/') {
		op := p.tok
		p.next()
		right := p.unary()
		if op == '*' {
			left = Mul(left, right)
			continue
		}
		ln, lok := left.(*Num)
		rn, rok := right.(*Num)
		if lok && rok && ln.IsInteger() && rn.IsInteger() && !rn.IsZero() {
			left, _ = numQuo(ln, rn)
			continue
		}
		left = Div(left, right)
	}
	return left
}

func (p *parser) unary() Expr {
	if p.tok == '-' {
		p.next()
		return Neg(p.unary())
	}
	return p.power()
}

func (p *parser) power() Expr {
	base := p.atom()
	if p.err == nil && p.tok == '^' {
		p.next()
		return Pow(base, p.unary())
	}
	return base
}

func (p *parser) atom() Expr {
	if p.err != nil {
		return N(0)
	}
	switch p.tok {
	case scanner.Int, scanner.Float:
		r, ok := new(big.Rat).SetString(p.text)
		if !ok {
			p.fail("bad number %q", p.text)
			return N(0)
		}
		p.next()
		return &Num{val: r}
	case scanner.Ident:
		name := p.text
		p.next()
		if p.tok != '(' {
			return S(name)
		}
		p.next()
		args := p.args()
		p.expect(')')
		return p.call(name, args)
	case '(':
		p.next()
		e := p.expr()
		p.expect(')')
		return e
	case scanner.EOF:
		p.fail("unexpected end of input")
	default:
		p.fail("unexpected %q", p.text)
	}
	return N(0)
}

func (p *parser) args() []Expr {
	var out []Expr
	if p.tok == ')' {
		return out
	}
	out = append(out, p.expr())
	for p.err == nil && p.tok == ',' {
		p.next()
		out = append(out, p.expr())
	}
	return out
}

func (p *parser) call(name string, args []Expr) Expr {
	if p.err != nil {
		return N(0)
	}
	switch name {
	case "sum", "prod":
		if len(args) != 4 {
			p.fail("%s takes 4 arguments, got %d", name, len(args))
			return N(0)
		}
		idx, ok := args[1].(*Sym)
		if !ok {
			p.fail("%s index must be a name", name)
			return N(0)
		}
		if name == "sum" {
			return SumOp(args[0], idx.name, args[2], args[3])
		}
		return ProductOp(args[0], idx.name, args[2], args[3])
	case "int":
		if len(args) != 2 {
			p.fail("int takes 2 arguments, got %d", len(args))
			return N(0)
		}
		v, ok := args[1].(*Sym)
		if !ok {
			p.fail("int variable must be a name")
			return N(0)
		}
		return IntegralOp(args[0], v.name)
	}
	kind, ok := LookupFunc(name)
	if !ok {
		p.fail("unknown function %q", name)
		return N(0)
	}
	if len(args) != 1 {
		p.fail("%s takes 1 argument, got %d", name, len(args))
		return N(0)
	}
	return Fn(kind, args[0])
}
