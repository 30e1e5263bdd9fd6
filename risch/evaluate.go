package risch

import (
	"context"

	"github.com/njchilds90/gosymint"
)

// EvaluateIntegrals replaces every integral operator in e, innermost
// first, by an antiderivative of its body. Integrals without an
// elementary antiderivative are kept unevaluated.
func (it *Integrator) EvaluateIntegrals(ctx context.Context, e gosymint.Expr) (gosymint.Expr, error) {
	return gosymint.Transform(e, func(n gosymint.Expr) (gosymint.Expr, error) {
		o, ok := n.(*gosymint.Operator)
		if !ok || o.Kind() != gosymint.OperatorIntegral {
			return n, nil
		}
		out, err := it.IntegrateContext(ctx, o.Body(), o.Index())
		switch Classify(err) {
		case OutcomeOK:
			return out, nil
		case OutcomeCanceled:
			return nil, err
		}
		it.opts.Logger.WithError(err).Debugf("keeping %s", o)
		return o, nil
	})
}
