// Package risch integrates elementary functions built from rational
// functions, exponentials and logarithms with the transcendental Risch
// algorithm. It either returns an antiderivative that is elementary over
// the same differential field, up to new logarithms, or reports that none
// exists there.
package risch

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/internal/field"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDepth is the default recursion guard.
const DefaultMaxDepth = 256

// Options configure an Integrator.
type Options struct {
	// MaxDepth bounds the nesting of integrations and differential
	// equations solved for one integrand.
	MaxDepth int
	// Verify differentiates every antiderivative and compares it with the
	// integrand before returning it.
	Verify bool
	// Logger receives debug traces of the recursion. Nil discards them.
	Logger logrus.FieldLogger
}

func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, Verify: true}
}

// Integrator runs the Risch procedure with fixed options. It holds no
// state between calls and is safe for concurrent use.
type Integrator struct {
	opts Options
}

func New(opts Options) *Integrator {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	return &Integrator{opts: opts}
}

// Integrate returns an antiderivative of f with respect to x using the
// default options.
func Integrate(f gosymint.Expr, x string) (gosymint.Expr, error) {
	return New(DefaultOptions()).Integrate(f, x)
}

func (it *Integrator) Integrate(f gosymint.Expr, x string) (gosymint.Expr, error) {
	return it.IntegrateContext(context.Background(), f, x)
}

// IntegrateContext integrates f over the tower built from f itself. A
// rational function of x needs no extension.
func (it *Integrator) IntegrateContext(ctx context.Context, f gosymint.Expr, x string) (gosymint.Expr, error) {
	g, exts, err := it.prepare(f, x)
	if err != nil {
		return nil, err
	}
	return it.integrate(ctx, g, x, exts)
}

// IntegrateTranscendental is IntegrateContext restricted to integrands
// that need at least one extension.
func (it *Integrator) IntegrateTranscendental(ctx context.Context, f gosymint.Expr, x string) (gosymint.Expr, error) {
	g, exts, err := it.prepare(f, x)
	if err != nil {
		return nil, err
	}
	if len(exts) == 0 {
		return nil, notIntegrable("%s has no exponential or logarithmic extension", g)
	}
	return it.integrate(ctx, g, x, exts)
}

// IntegrateOver integrates f over the given extensions instead of the
// tower built from f. f must be rational over them.
func (it *Integrator) IntegrateOver(ctx context.Context, f gosymint.Expr, x string, exts []Extension) (gosymint.Expr, error) {
	g, err := gosymint.SimplifyFor(f, x, gosymint.RulesFieldExtension)
	if err != nil {
		return nil, &ArithmeticError{Op: "simplify", Err: err}
	}
	return it.integrate(ctx, g, x, exts)
}

func (it *Integrator) prepare(f gosymint.Expr, x string) (gosymint.Expr, []Extension, error) {
	g, err := gosymint.SimplifyFor(f, x, gosymint.RulesFieldExtension)
	if err != nil {
		return nil, nil, &ArithmeticError{Op: "simplify", Err: err}
	}
	exts, err := BuildTower(x, g)
	if err != nil {
		return nil, nil, err
	}
	return g, exts, nil
}

func (it *Integrator) integrate(ctx context.Context, f gosymint.Expr, x string, exts []Extension) (gosymint.Expr, error) {
	log := it.opts.Logger.WithFields(logrus.Fields{
		"integration": uuid.NewString(),
		"var":         x,
	})
	t, elems, err := field.Resolve(x, generators(exts), f)
	switch {
	case errors.Is(err, field.ErrNotRational):
		return nil, notIntegrable("%s is not rational over %v: %v", f, exts, err)
	case err != nil:
		return nil, arithmetic("tower", err)
	}
	log.WithField("tower", exts).Debugf("integrating %s", f)

	e := &engine{ctx: ctx, t: t, log: log, maxDepth: it.opts.MaxDepth}
	ad, err := e.integrate(elems[0])
	if err != nil {
		log.WithError(err).Debug("no antiderivative")
		return nil, err
	}
	if it.opts.Verify {
		d, err := ad.deriv(t)
		if err != nil {
			return nil, arithmetic("verify", err)
		}
		if !d.Equal(elems[0]) {
			return nil, &ArithmeticError{Op: "verify", Err: errors.Errorf("derivative %s differs from integrand %s", d, elems[0])}
		}
	}
	out, err := gosymint.SimplifyFor(ad.expr(t), x, gosymint.RulesOutput)
	if err != nil {
		return nil, &ArithmeticError{Op: "simplify", Err: err}
	}
	log.Debugf("antiderivative %s", out)
	return out, nil
}

// ============================================================
// Engine
// ============================================================

// engine carries the tower and the recursion guard through one
// integration.
type engine struct {
	ctx      context.Context
	t        *field.Tower
	log      logrus.FieldLogger
	depth    int
	maxDepth int
}

func (e *engine) enter(op string) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	if e.depth >= e.maxDepth {
		return &ArithmeticError{Op: op, Err: ErrDepthExceeded}
	}
	e.depth++
	return nil
}

func (e *engine) leave() { e.depth-- }

func (e *engine) trace(level int) logrus.FieldLogger {
	return e.log.WithFields(logrus.Fields{
		"level": level,
		"kind":  e.t.Kind(level),
		"depth": e.depth,
	})
}

// integrate returns an antiderivative of f in the field, plus logarithms.
func (e *engine) integrate(f field.Elem) (antiderivative, error) {
	if err := e.enter("integrate"); err != nil {
		return antiderivative{}, err
	}
	defer e.leave()

	if f.IsZero() {
		return antiderivative{}, nil
	}
	if e.t.IsConstant(f) {
		return rationalPart(f.Mul(e.t.T(e.t.BaseLevel()))), nil
	}
	level := f.Level()
	kind := e.t.Kind(level)
	e.trace(level).Debugf("integrate %s", f)

	num, den, _ := f.Parts(level)
	q, r, err := field.PolyDivMod(num, den)
	if err != nil {
		return antiderivative{}, arithmetic("integrate", err)
	}
	terms := polyTerms(q)
	if kind == field.Exp {
		// Split t^k off the denominator: r/(t^k d) = s/d + w/t^k.
		if k := den.Order(); k > 0 {
			d := field.Poly(den[k:])
			s, w, err := field.Bezout(field.Monomial(field.One(), k), d, r)
			if err != nil {
				return antiderivative{}, arithmetic("laurent", err)
			}
			for j := 0; j < k; j++ {
				if c := w.Coeff(j); !c.IsZero() {
					terms = append(terms, term{deg: j - k, coeff: c})
				}
			}
			r, den = s, d
		}
	}

	var result antiderivative
	switch kind {
	case field.Base:
		result = e.polyPartBase(level, terms)
	case field.Exp:
		result, err = e.polyPartExp(level, terms)
	case field.Log:
		result, err = e.polyPartLog(level, q)
	}
	if err != nil {
		return antiderivative{}, err
	}
	if r.IsZero() {
		return result, nil
	}
	frac, err := e.fractionalPart(level, r, den)
	if err != nil {
		return antiderivative{}, err
	}
	return result.add(frac), nil
}
