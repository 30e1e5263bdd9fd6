package gosymint

import (
	"math/big"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================
// Rule sets
// ============================================================

// RuleSet is a set of simplification rules.
type RuleSet uint32

const (
	// RuleOrder sorts summands and factors into a canonical order.
	RuleOrder RuleSet = 1 << iota
	// RuleBasic folds constants and removes neutral elements.
	RuleBasic
	// RuleCollect merges like summands and like factors.
	RuleCollect
	// RuleExpand distributes products over sums and expands small integer
	// powers of sums.
	RuleExpand
	// RuleCommonDenominator brings a sum of quotients over one denominator.
	RuleCommonDenominator
	// RuleExpandLog splits logarithms of products, quotients and powers.
	RuleExpandLog
	// RuleSplitExp splits exponentials of sums and rewrites a^g as
	// exp(g*ln(a)) when g depends on the variable.
	RuleSplitExp
	// RuleFuncValues evaluates functions at points with exact values.
	RuleFuncValues
	// RuleOperators splits sums, products and integrals over their
	// bodies, moves factors free of the bound variable out and closes
	// sums of integer powers of the index.
	RuleOperators
)

const (
	RulesBasic                = RuleBasic | RuleFuncValues
	RulesOutput               = RuleBasic | RuleCollect | RuleOrder | RuleFuncValues | RuleOperators
	RulesFieldExtension       = RulesOutput | RuleExpandLog | RuleSplitExp
	RulesRisch                = RulesFieldExtension | RuleExpand | RuleCommonDenominator
	RulesDifferentialEquation = RuleBasic | RuleCollect | RuleOrder | RuleCommonDenominator
)

var ruleNames = []struct {
	rule RuleSet
	name string
}{
	{RuleOrder, "order"},
	{RuleBasic, "basic"},
	{RuleCollect, "collect"},
	{RuleExpand, "expand"},
	{RuleCommonDenominator, "common-denominator"},
	{RuleExpandLog, "expand-log"},
	{RuleSplitExp, "split-exp"},
	{RuleFuncValues, "func-values"},
	{RuleOperators, "operators"},
}

func (r RuleSet) Has(rule RuleSet) bool { return r&rule == rule }

func (r RuleSet) String() string {
	var parts []string
	for _, rn := range ruleNames {
		if r.Has(rn.rule) {
			parts = append(parts, rn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ruleSetNames are the named combinations accepted by ParseRuleSet.
var ruleSetNames = map[string]RuleSet{
	"output":                RulesOutput,
	"field-extension":       RulesFieldExtension,
	"risch":                 RulesRisch,
	"differential-equation": RulesDifferentialEquation,
	"all":                   RulesRisch,
}

// ParseRuleSet reads a "|" or "," separated list of rule names and named
// rule sets.
func ParseRuleSet(s string) (RuleSet, error) {
	var r RuleSet
	for _, field := range strings.FieldsFunc(s, func(c rune) bool { return c == '|' || c == ',' }) {
		name := strings.TrimSpace(field)
		if set, ok := ruleSetNames[name]; ok {
			r |= set
			continue
		}
		found := false
		for _, rn := range ruleNames {
			if rn.name == name {
				r |= rn.rule
				found = true
			}
		}
		if !found {
			return 0, errors.Errorf("unknown rule %q", name)
		}
	}
	return r, nil
}

const (
	maxSimplifyPasses = 20
	maxExpandPower    = 8
	maxExpandTerms    = 4096
)

// ============================================================
// Entry points
// ============================================================

// Simplify rewrites e under rules until nothing changes.
func Simplify(e Expr, rules RuleSet) (Expr, error) {
	return SimplifyFor(e, "", rules)
}

// SimplifyFor is Simplify for rules that depend on the variable of
// interest (RuleSplitExp rewrites a^g only when g contains varName).
func SimplifyFor(e Expr, varName string, rules RuleSet) (Expr, error) {
	s := &simplifier{rules: rules, x: varName}
	for i := 0; i < maxSimplifyPasses; i++ {
		next, err := s.pass(e)
		if err != nil {
			return nil, err
		}
		if next.Equal(e) {
			return next, nil
		}
		e = next
	}
	return e, nil
}

// Expand multiplies out products and powers of sums.
func Expand(e Expr) (Expr, error) {
	return Simplify(e, RulesOutput|RuleExpand)
}

// MustSimplify panics on error. Intended for tests and examples.
func MustSimplify(e Expr, rules RuleSet) Expr {
	s, err := Simplify(e, rules)
	if err != nil {
		panic(err)
	}
	return s
}

type simplifier struct {
	rules RuleSet
	x     string
}

func (s *simplifier) has(r RuleSet) bool { return s.rules.Has(r) }

func (s *simplifier) pass(e Expr) (Expr, error) {
	switch v := e.(type) {
	case *Func:
		arg, err := s.pass(v.arg)
		if err != nil {
			return nil, err
		}
		return s.function(v.kind, arg)
	case *Operator:
		body, err := s.pass(v.body)
		if err != nil {
			return nil, err
		}
		o := v.withParts(body, nil, nil)
		if v.hasLimits() {
			lo, err := s.pass(v.lower)
			if err != nil {
				return nil, err
			}
			hi, err := s.pass(v.upper)
			if err != nil {
				return nil, err
			}
			o = v.withParts(body, lo, hi)
		}
		if s.has(RuleOperators) {
			return s.operator(o)
		}
		return o, nil
	case *BinOp:
		switch v.op {
		case OpSum, OpDifference:
			return s.sum(v)
		case OpProduct, OpQuotient:
			return s.product(v)
		}
		base, err := s.pass(v.left)
		if err != nil {
			return nil, err
		}
		exp, err := s.pass(v.right)
		if err != nil {
			return nil, err
		}
		return s.power(base, exp)
	}
	return e, nil
}

// ============================================================
// Sums
// ============================================================

// term is coeff * (num factors) / (den factors).
type term struct {
	coeff    *Num
	num, den []Expr
	key      string
}

func (s *simplifier) newTerm(x Expr, negated bool) *term {
	t := &term{coeff: N(1)}
	if negated {
		t.coeff = N(-1)
	}
	if !s.has(RuleBasic) && !s.has(RuleCollect) {
		t.num = []Expr{x}
		t.key = x.String()
		return t
	}
	num, den := Factors(x)
	for _, f := range num.All() {
		if n, ok := f.(*Num); ok {
			t.coeff = numMul(t.coeff, n)
			continue
		}
		t.num = append(t.num, f)
	}
	for _, f := range den.All() {
		if n, ok := f.(*Num); ok && !n.IsZero() {
			t.coeff, _ = numQuo(t.coeff, n)
			continue
		}
		t.den = append(t.den, f)
	}
	if len(t.num)+len(t.den) > 0 {
		t.key = ProductOf(CollectionOf(t.num...), CollectionOf(t.den...)).String()
	}
	return t
}

func (t *term) build(c *Num) Expr {
	if len(t.num) == 0 && len(t.den) == 0 {
		return c
	}
	num, den := NewCollection(0), NewCollection(0)
	p := NRat(new(big.Rat).SetInt(c.val.Num()))
	q := NRat(new(big.Rat).SetInt(c.val.Denom()))
	if !p.IsOne() || len(t.num) == 0 {
		num.Append(p)
	}
	for _, f := range t.num {
		num.Append(f)
	}
	if !q.IsOne() {
		den.Append(q)
	}
	for _, f := range t.den {
		den.Append(f)
	}
	return ProductOf(num, den)
}

func (s *simplifier) sum(e Expr) (Expr, error) {
	plus, minus := Summands(e)
	var terms []*term
	add := func(x Expr, negated bool) error {
		x, err := s.pass(x)
		if err != nil {
			return err
		}
		p, m := Summands(x)
		for _, y := range p.All() {
			terms = append(terms, s.newTerm(y, negated))
		}
		for _, y := range m.All() {
			terms = append(terms, s.newTerm(y, !negated))
		}
		return nil
	}
	for _, x := range plus.All() {
		if err := add(x, false); err != nil {
			return nil, err
		}
	}
	for _, x := range minus.All() {
		if err := add(x, true); err != nil {
			return nil, err
		}
	}

	if s.has(RuleBasic) {
		constant := N(0)
		kept := terms[:0]
		for _, t := range terms {
			if t.key == "" {
				constant = numAdd(constant, t.coeff)
				continue
			}
			kept = append(kept, t)
		}
		terms = kept
		if !constant.IsZero() {
			terms = append(terms, &term{coeff: constant})
		}
	}
	if s.has(RuleCollect) {
		index := map[string]int{}
		merged := make([]*term, 0, len(terms))
		for _, t := range terms {
			if i, ok := index[t.key]; ok {
				merged[i] = &term{coeff: numAdd(merged[i].coeff, t.coeff), num: merged[i].num, den: merged[i].den, key: t.key}
				continue
			}
			index[t.key] = len(merged)
			merged = append(merged, t)
		}
		terms = merged
	}
	if s.has(RuleBasic) || s.has(RuleCollect) {
		kept := terms[:0]
		for _, t := range terms {
			if !t.coeff.IsZero() {
				kept = append(kept, t)
			}
		}
		terms = kept
	}
	if s.has(RuleCommonDenominator) {
		for _, t := range terms {
			if len(t.den) > 0 && len(terms) > 1 {
				return commonDenominator(terms), nil
			}
		}
	}
	if s.has(RuleOrder) {
		sort.SliceStable(terms, func(i, j int) bool { return termLess(terms[i].key, terms[j].key) })
	}

	pos, neg := NewCollection(0), NewCollection(0)
	for _, t := range terms {
		switch {
		case !t.coeff.IsNegative():
			pos.Append(t.build(t.coeff))
		case pos.IsEmpty() && neg.IsEmpty():
			pos.Append(t.build(t.coeff))
		default:
			neg.Append(t.build(numNeg(t.coeff)))
		}
	}
	return SumOf(pos, neg), nil
}

// termLess orders by key with the constant term last.
func termLess(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return a < b
}

// commonDenominator returns (sum of numerators) / (product of the distinct
// denominators). The result is simplified by the next pass.
func commonDenominator(terms []*term) Expr {
	type denominator struct {
		key  string
		expr Expr
	}
	var dens []denominator
	seen := map[string]bool{}
	termDen := make([]string, len(terms))
	for i, t := range terms {
		if len(t.den) == 0 {
			continue
		}
		d := ProductOf(CollectionOf(t.den...), NewCollection(0))
		k := d.String()
		termDen[i] = k
		if !seen[k] {
			seen[k] = true
			dens = append(dens, denominator{key: k, expr: d})
		}
	}
	plus := NewCollection(0)
	for i, t := range terms {
		factors := []Expr{t.coeff}
		factors = append(factors, t.num...)
		for _, d := range dens {
			if d.key != termDen[i] {
				factors = append(factors, d.expr)
			}
		}
		plus.Append(ProductOf(CollectionOf(factors...), NewCollection(0)))
	}
	den := NewCollection(0)
	for _, d := range dens {
		den.Append(d.expr)
	}
	return Div(SumOf(plus, NewCollection(0)), ProductOf(den, NewCollection(0)))
}

// ============================================================
// Products
// ============================================================

type factor struct {
	base, exp Expr
	key       string
}

func (s *simplifier) product(e Expr) (Expr, error) {
	num, den := Factors(e)
	coeff := N(1)
	var factors []*factor
	basic := s.has(RuleBasic) || s.has(RuleCollect)

	addFactor := func(x Expr, inverted bool) error {
		if n, ok := x.(*Num); ok && basic {
			if !inverted {
				coeff = numMul(coeff, n)
				return nil
			}
			q, ok := numQuo(coeff, n)
			if !ok {
				return errors.Wrapf(ErrUndefined, "division by zero in %s", e)
			}
			coeff = q
			return nil
		}
		base, exp := x, Expr(N(1))
		if p, ok := x.(*BinOp); ok && p.op == OpPower && basic {
			base, exp = p.left, p.right
		}
		if inverted {
			exp = Neg(exp)
		}
		factors = append(factors, &factor{base: base, exp: exp, key: base.String()})
		return nil
	}
	add := func(x Expr, inverted bool) error {
		x, err := s.pass(x)
		if err != nil {
			return err
		}
		n, d := Factors(x)
		for _, y := range n.All() {
			if err := addFactor(y, inverted); err != nil {
				return err
			}
		}
		for _, y := range d.All() {
			if err := addFactor(y, !inverted); err != nil {
				return err
			}
		}
		return nil
	}
	for _, x := range num.All() {
		if err := add(x, false); err != nil {
			return nil, err
		}
	}
	for _, x := range den.All() {
		if err := add(x, true); err != nil {
			return nil, err
		}
	}

	if s.has(RuleCollect) {
		index := map[string]int{}
		merged := make([]*factor, 0, len(factors))
		for _, f := range factors {
			if i, ok := index[f.key]; ok {
				merged[i] = &factor{base: merged[i].base, exp: AddOf(merged[i].exp, f.exp), key: f.key}
				continue
			}
			index[f.key] = len(merged)
			merged = append(merged, f)
		}
		factors = merged
	}
	if basic {
		kept := factors[:0]
		for _, f := range factors {
			exp := f.exp
			if _, ok := exp.(*Num); !ok {
				var err error
				if exp, err = s.pass(exp); err != nil {
					return nil, err
				}
			}
			en, eNum := exp.(*Num)
			if eNum && en.IsZero() {
				continue
			}
			if bn, ok := f.base.(*Num); ok && eNum {
				if bn.IsZero() && en.IsNegative() {
					return nil, errors.Wrapf(ErrUndefined, "division by zero in %s", e)
				}
				if v, ok := ratPow(bn, en); ok {
					coeff = numMul(coeff, v)
					continue
				}
			}
			kept = append(kept, &factor{base: f.base, exp: exp, key: f.key})
		}
		factors = kept
		if coeff.IsZero() {
			return N(0), nil
		}
		if len(factors) == 0 {
			return coeff, nil
		}
	}
	if s.has(RuleOrder) {
		sort.SliceStable(factors, func(i, j int) bool { return factors[i].key < factors[j].key })
	}

	top, bottom := NewCollection(0), NewCollection(0)
	p := NRat(new(big.Rat).SetInt(coeff.val.Num()))
	q := NRat(new(big.Rat).SetInt(coeff.val.Denom()))
	if !p.IsOne() {
		top.Append(p)
	}
	if !q.IsOne() {
		bottom.Append(q)
	}
	for _, f := range factors {
		if en, ok := f.exp.(*Num); ok && en.IsNegative() {
			bottom.Append(powerOf(f.base, numNeg(en)))
			continue
		}
		top.Append(powerOf(f.base, f.exp))
	}
	if s.has(RuleExpand) {
		if expanded, ok := expandProduct(top); ok {
			return ProductOf(CollectionOf(expanded), bottom), nil
		}
	}
	if top.IsEmpty() && bottom.IsEmpty() {
		return p, nil
	}
	return ProductOf(top, bottom), nil
}

func powerOf(base, exp Expr) Expr {
	if n, ok := exp.(*Num); ok && n.IsOne() {
		return base
	}
	return Pow(base, exp)
}

// expandProduct distributes the factors in top over the sums among them.
// It reports false when there is nothing to distribute.
func expandProduct(top *Collection) (Expr, bool) {
	type signed struct {
		neg     bool
		factors []Expr
	}
	var sums []Expr
	var rest []Expr
	for _, f := range top.All() {
		if isSum(f) {
			sums = append(sums, f)
			continue
		}
		if p, ok := f.(*BinOp); ok && p.op == OpPower && isSum(p.left) {
			if k, ok := p.right.(*Num); ok && k.IsInteger() && k.IsPositive() {
				if n, _ := k.Int64(); n <= maxExpandPower {
					for i := int64(0); i < n; i++ {
						sums = append(sums, p.left)
					}
					continue
				}
			}
		}
		rest = append(rest, f)
	}
	if len(sums) == 0 || (len(sums) == 1 && len(rest) == 0) {
		return nil, false
	}
	acc := []signed{{factors: rest}}
	for _, sum := range sums {
		plus, minus := Summands(sum)
		if len(acc)*(plus.Len()+minus.Len()) > maxExpandTerms {
			return nil, false
		}
		next := make([]signed, 0, len(acc)*(plus.Len()+minus.Len()))
		for _, a := range acc {
			for _, t := range plus.All() {
				next = append(next, signed{neg: a.neg, factors: append(append([]Expr{}, a.factors...), t)})
			}
			for _, t := range minus.All() {
				next = append(next, signed{neg: !a.neg, factors: append(append([]Expr{}, a.factors...), t)})
			}
		}
		acc = next
	}
	pos, neg := NewCollection(0), NewCollection(0)
	for _, a := range acc {
		x := ProductOf(CollectionOf(a.factors...), NewCollection(0))
		if a.neg {
			neg.Append(x)
		} else {
			pos.Append(x)
		}
	}
	return SumOf(pos, neg), true
}

func isSum(e Expr) bool {
	b, ok := e.(*BinOp)
	return ok && (b.op == OpSum || b.op == OpDifference)
}

// ============================================================
// Powers
// ============================================================

func (s *simplifier) power(base, exp Expr) (Expr, error) {
	bn, bNum := base.(*Num)
	en, eNum := exp.(*Num)
	if s.has(RuleBasic) {
		switch {
		case eNum && en.IsZero():
			if bNum && bn.IsZero() {
				return nil, errors.Wrap(ErrUndefined, "0^0")
			}
			return N(1), nil
		case eNum && en.IsOne():
			return base, nil
		case bNum && bn.IsZero() && eNum:
			if en.IsNegative() {
				return nil, errors.Wrapf(ErrUndefined, "0^%s", en)
			}
			return N(0), nil
		case bNum && bn.IsOne():
			return N(1), nil
		}
		if bNum && eNum {
			if v, ok := ratPow(bn, en); ok {
				return v, nil
			}
		}
		if inner, ok := base.(*BinOp); ok && inner.op == OpPower && eNum && en.IsInteger() {
			exp, err := s.pass(Mul(inner.right, en))
			if err != nil {
				return nil, err
			}
			return s.power(inner.left, exp)
		}
		if eNum && en.IsNegative() && en.IsInteger() {
			return s.product(Div(N(1), Pow(base, numNeg(en))))
		}
	}
	if s.has(RuleCollect) && eNum && en.IsInteger() {
		if b, ok := base.(*BinOp); ok && (b.op == OpProduct || b.op == OpQuotient) {
			num, den := Factors(b)
			top, bottom := NewCollection(0), NewCollection(0)
			for _, f := range num.All() {
				top.Append(Pow(f, en))
			}
			for _, f := range den.All() {
				bottom.Append(Pow(f, en))
			}
			return s.product(ProductOf(top, bottom))
		}
	}
	if s.has(RuleExpand) && eNum && isSum(base) && en.IsInteger() && en.IsPositive() {
		if n, _ := en.Int64(); n <= maxExpandPower {
			top := NewCollection(0)
			for i := int64(0); i < n; i++ {
				top.Append(base)
			}
			return s.product(ProductOf(top, NewCollection(0)))
		}
	}
	if s.has(RuleSplitExp) && s.x != "" && exp.Contains(s.x) {
		arg, err := s.pass(Mul(exp, LnOf(base)))
		if err != nil {
			return nil, err
		}
		return s.function(FuncExp, arg)
	}
	return Pow(base, exp), nil
}

// ============================================================
// Functions
// ============================================================

func (s *simplifier) function(kind FuncKind, arg Expr) (Expr, error) {
	if kind == FuncID && s.has(RuleBasic) {
		return arg, nil
	}
	if (kind == FuncLn || kind == FuncLg) && (s.has(RuleBasic) || s.has(RuleFuncValues)) {
		if n, ok := arg.(*Num); ok && n.IsZero() {
			return nil, errors.Wrapf(ErrUndefined, "%s(0)", kind)
		}
	}
	f := Fn(kind, arg)
	if s.has(RuleFuncValues) {
		if v, ok := f.Eval(); ok {
			return v, nil
		}
		if kind == FuncExp && IsFunc(arg, FuncLn) {
			return arg.(*Func).arg, nil
		}
		if kind == FuncLn && IsFunc(arg, FuncExp) {
			return arg.(*Func).arg, nil
		}
	}
	if s.has(RuleExpandLog) {
		switch kind {
		case FuncLn:
			return s.expandLog(arg)
		case FuncLg:
			ln, err := s.expandLog(arg)
			if err != nil {
				return nil, err
			}
			return s.product(Div(ln, LnOf(N(10))))
		}
	}
	if s.has(RuleSplitExp) && kind == FuncExp {
		return s.splitExp(arg)
	}
	return f, nil
}

func (s *simplifier) expandLog(arg Expr) (Expr, error) {
	switch v := arg.(type) {
	case *Func:
		switch v.kind {
		case FuncExp:
			return v.arg, nil
		case FuncSqrt:
			inner, err := s.expandLog(v.arg)
			if err != nil {
				return nil, err
			}
			return s.product(Mul(F(1, 2), inner))
		}
	case *BinOp:
		switch v.op {
		case OpPower:
			inner, err := s.expandLog(v.left)
			if err != nil {
				return nil, err
			}
			return s.product(Mul(v.right, inner))
		case OpProduct, OpQuotient:
			num, den := Factors(v)
			plus, minus := NewCollection(0), NewCollection(0)
			for _, f := range num.All() {
				l, err := s.expandLog(f)
				if err != nil {
					return nil, err
				}
				plus.Append(l)
			}
			for _, f := range den.All() {
				l, err := s.expandLog(f)
				if err != nil {
					return nil, err
				}
				minus.Append(l)
			}
			return s.sum(SumOf(plus, minus))
		}
	case *Num:
		if v.IsZero() {
			return nil, errors.Wrap(ErrUndefined, "ln(0)")
		}
		if v.IsOne() {
			return N(0), nil
		}
	}
	return LnOf(arg), nil
}

func (s *simplifier) splitExp(arg Expr) (Expr, error) {
	if IsFunc(arg, FuncLn) {
		return arg.(*Func).arg, nil
	}
	plus, minus := Summands(arg)
	if plus.Len()+minus.Len() > 1 {
		top, bottom := NewCollection(0), NewCollection(0)
		for _, a := range plus.All() {
			top.Append(ExpOf(a))
		}
		for _, a := range minus.All() {
			bottom.Append(ExpOf(a))
		}
		return s.product(ProductOf(top, bottom))
	}
	num, den := Factors(arg)
	if den.IsEmpty() {
		coeff := N(1)
		var rest []Expr
		for _, f := range num.All() {
			if n, ok := f.(*Num); ok {
				coeff = numMul(coeff, n)
				continue
			}
			rest = append(rest, f)
		}
		if len(rest) == 1 && IsFunc(rest[0], FuncLn) && coeff.IsInteger() {
			return s.power(rest[0].(*Func).arg, coeff)
		}
	}
	return ExpOf(arg), nil
}
