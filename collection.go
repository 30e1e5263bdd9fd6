package gosymint

import (
	"iter"
	"strings"
)

// ============================================================
// Collection: sparse ordered list of expressions
// ============================================================

// Collection is an index-addressable list whose removed slots stay empty
// so that the positions of the other entries do not move. Polynomial
// coefficient lists and the summand/factor passes of the simplifier are
// built on it.
type Collection struct {
	slots []Expr
}

func NewCollection(bound int) *Collection {
	return &Collection{slots: make([]Expr, bound)}
}

func CollectionOf(exprs ...Expr) *Collection {
	c := &Collection{slots: make([]Expr, len(exprs))}
	copy(c.slots, exprs)
	return c
}

// Bound is the number of slots, including empty ones.
func (c *Collection) Bound() int { return len(c.slots) }

// Len is the number of live entries.
func (c *Collection) Len() int {
	n := 0
	for _, e := range c.slots {
		if e != nil {
			n++
		}
	}
	return n
}

func (c *Collection) IsEmpty() bool { return c.Len() == 0 }

// Get returns nil for an empty or out-of-range slot.
func (c *Collection) Get(i int) Expr {
	if i < 0 || i >= len(c.slots) {
		return nil
	}
	return c.slots[i]
}

// Put stores e at i, growing the collection when i is past the bound.
func (c *Collection) Put(i int, e Expr) {
	if i < 0 {
		return
	}
	for i >= len(c.slots) {
		c.slots = append(c.slots, nil)
	}
	c.slots[i] = e
}

func (c *Collection) Remove(i int) {
	if i >= 0 && i < len(c.slots) {
		c.slots[i] = nil
	}
}

func (c *Collection) Append(e Expr) { c.slots = append(c.slots, e) }

// All iterates over live entries in index order.
func (c *Collection) All() iter.Seq2[int, Expr] {
	return func(yield func(int, Expr) bool) {
		for i, e := range c.slots {
			if e == nil {
				continue
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

// Values returns the live entries in index order.
func (c *Collection) Values() []Expr {
	out := make([]Expr, 0, len(c.slots))
	for _, e := range c.All() {
		out = append(out, e)
	}
	return out
}

// Compact returns a copy without empty slots.
func (c *Collection) Compact() *Collection {
	return CollectionOf(c.Values()...)
}

func (c *Collection) Copy() *Collection {
	return CollectionOf(c.slots...)
}

func (c *Collection) String() string {
	parts := make([]string, len(c.slots))
	for i, e := range c.slots {
		if e == nil {
			parts[i] = "_"
			continue
		}
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ============================================================
// Summands and factors
// ============================================================

// Summands flattens nested sums and differences of e into the terms that
// are added and the terms that are subtracted.
func Summands(e Expr) (plus, minus *Collection) {
	plus, minus = NewCollection(0), NewCollection(0)
	collectSummands(e, false, plus, minus)
	return plus, minus
}

func collectSummands(e Expr, negated bool, plus, minus *Collection) {
	if b, ok := e.(*BinOp); ok && (b.op == OpSum || b.op == OpDifference) {
		collectSummands(b.left, negated, plus, minus)
		collectSummands(b.right, negated != (b.op == OpDifference), plus, minus)
		return
	}
	if negated {
		minus.Append(e)
	} else {
		plus.Append(e)
	}
}

// Factors flattens nested products and quotients of e into numerator and
// denominator factors.
func Factors(e Expr) (num, den *Collection) {
	num, den = NewCollection(0), NewCollection(0)
	collectFactors(e, false, num, den)
	return num, den
}

func collectFactors(e Expr, inverted bool, num, den *Collection) {
	if b, ok := e.(*BinOp); ok && (b.op == OpProduct || b.op == OpQuotient) {
		collectFactors(b.left, inverted, num, den)
		collectFactors(b.right, inverted != (b.op == OpQuotient), num, den)
		return
	}
	if inverted {
		den.Append(e)
	} else {
		num.Append(e)
	}
}

// SumOf rebuilds (p1 + p2 + ...) - m1 - m2 - ... from summand collections.
func SumOf(plus, minus *Collection) Expr {
	var result Expr
	for _, e := range plus.All() {
		if result == nil {
			result = e
			continue
		}
		result = Add(result, e)
	}
	for _, e := range minus.All() {
		if result == nil {
			result = Neg(e)
			continue
		}
		result = Subtract(result, e)
	}
	if result == nil {
		return N(0)
	}
	return result
}

// ProductOf rebuilds (n1 * n2 * ...) / (d1 * d2 * ...) from factor
// collections.
func ProductOf(num, den *Collection) Expr {
	var top, bottom Expr
	for _, e := range num.All() {
		if top == nil {
			top = e
			continue
		}
		top = Mul(top, e)
	}
	for _, e := range den.All() {
		if bottom == nil {
			bottom = e
			continue
		}
		bottom = Mul(bottom, e)
	}
	if top == nil {
		top = N(1)
	}
	if bottom == nil {
		return top
	}
	return Div(top, bottom)
}
