package risch

import (
	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/internal/field"
)

// logTerm is c*ln(arg) with c constant.
type logTerm struct {
	coeff field.Elem
	arg   field.Elem
}

// antiderivative is a rational part plus a sum of logarithms.
type antiderivative struct {
	rational field.Elem
	logs     []logTerm
}

func rationalPart(r field.Elem) antiderivative { return antiderivative{rational: r} }

func (a antiderivative) add(b antiderivative) antiderivative {
	out := antiderivative{rational: a.rational.Add(b.rational)}
	out.logs = append(out.logs, a.logs...)
	for _, l := range b.logs {
		out = out.addLog(l.coeff, l.arg)
	}
	return out
}

func (a antiderivative) addLog(c, arg field.Elem) antiderivative {
	if c.IsZero() {
		return a
	}
	logs := make([]logTerm, 0, len(a.logs)+1)
	merged := false
	for _, l := range a.logs {
		if !merged && l.arg.Equal(arg) {
			merged = true
			if sum := l.coeff.Add(c); !sum.IsZero() {
				logs = append(logs, logTerm{coeff: sum, arg: arg})
			}
			continue
		}
		logs = append(logs, l)
	}
	if !merged {
		logs = append(logs, logTerm{coeff: c, arg: arg})
	}
	return antiderivative{rational: a.rational, logs: logs}
}

// deriv returns D(rational) + sum c*D(arg)/arg.
func (a antiderivative) deriv(t *field.Tower) (field.Elem, error) {
	d := t.Deriv(a.rational)
	for _, l := range a.logs {
		q, err := t.Deriv(l.arg).Quo(l.arg)
		if err != nil {
			return field.Elem{}, err
		}
		d = d.Add(l.coeff.Mul(q))
	}
	return d, nil
}

func (a antiderivative) expr(t *field.Tower) gosymint.Expr {
	terms := []gosymint.Expr{}
	if !a.rational.IsZero() {
		terms = append(terms, t.ToExpr(a.rational))
	}
	for _, l := range a.logs {
		terms = append(terms, gosymint.MulOf(t.ToExpr(l.coeff), gosymint.LnOf(t.ToExpr(l.arg))))
	}
	return gosymint.AddOf(terms...)
}

// splitLogOf separates the log terms that are integer multiples of ln(v)
// up to a constant, returning the total coefficient s of ln(v) and the
// remaining terms.
func splitLogOf(t *field.Tower, logs []logTerm, v field.Elem) (field.Elem, []logTerm) {
	s := field.Zero()
	var rest []logTerm
	dv, err := t.Deriv(v).Quo(v)
	if err != nil || dv.IsZero() {
		return s, logs
	}
	for _, l := range logs {
		dw, err := t.Deriv(l.arg).Quo(l.arg)
		if err == nil {
			if ratio, err := dw.Quo(dv); err == nil {
				if _, ok := ratio.Integer(); ok {
					s = s.Add(l.coeff.Mul(ratio))
					continue
				}
			}
		}
		rest = append(rest, l)
	}
	return s, rest
}

// logProduct returns prod arg^c when every coefficient is an integer.
func logProduct(logs []logTerm) (field.Elem, bool) {
	p := field.One()
	for _, l := range logs {
		n, ok := l.coeff.Integer()
		if !ok {
			return field.Elem{}, false
		}
		w, err := l.arg.Pow(int(n))
		if err != nil {
			return field.Elem{}, false
		}
		p = p.Mul(w)
	}
	return p, true
}
