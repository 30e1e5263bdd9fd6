package main

import (
	"strings"

	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/risch"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newIntegrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrate [flags] expr",
		Short: "integrate an expression with respect to --var.",
		Long: `Integrate an exp/ln expression. Prints the antiderivative, or the
reason no elementary antiderivative exists.`,
		Args: cobra.ExactArgs(1),
		RunE: runIntegrateCmd,
	}
	cmd.Flags().Bool("strict", false, "reject integrands that need no extension")
	cmd.Flags().StringSlice("tower", nil, "extensions to integrate over, e.g. exp(x),ln(x)")
	return cmd
}

func runIntegrateCmd(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	f, err := parseArg(args)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")
	tower, _ := cmd.Flags().GetStringSlice("tower")

	it := e.integrator()
	var out gosymint.Expr
	switch {
	case len(tower) > 0:
		var exts []risch.Extension
		if exts, err = parseTower(tower); err != nil {
			return err
		}
		out, err = it.IntegrateOver(cmd.Context(), f, e.x, exts)
	case strict:
		out, err = it.IntegrateTranscendental(cmd.Context(), f, e.x)
	default:
		out, err = it.IntegrateContext(cmd.Context(), f, e.x)
	}
	outcome := risch.Classify(err)
	if err != nil {
		if perr := e.print(result{Input: args[0], Outcome: outcome.String(), Error: err.Error()}); perr != nil {
			return perr
		}
		return err
	}
	r := exprResult(args[0], out)
	r.Outcome = outcome.String()
	return e.print(r)
}

// parseTower reads generators written as exp(u) or ln(u).
func parseTower(srcs []string) ([]risch.Extension, error) {
	exts := make([]risch.Extension, len(srcs))
	for i, src := range srcs {
		g, err := gosymint.Parse(src)
		if err != nil {
			return nil, errors.Wrapf(err, "tower entry %q", src)
		}
		fn, ok := g.(*gosymint.Func)
		switch {
		case ok && fn.Kind() == gosymint.FuncExp:
			exts[i] = risch.Exp(fn.Arg())
		case ok && fn.Kind() == gosymint.FuncLn:
			exts[i] = risch.Log(fn.Arg())
		default:
			return nil, errors.Errorf("tower entry %q is not exp(...) or ln(...)", src)
		}
	}
	return exts, nil
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [flags] expr",
		Short: "differentiate an expression with respect to --var.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			f, err := parseArg(args)
			if err != nil {
				return err
			}
			d, err := gosymint.Simplify(gosymint.Diff(f, e.x), gosymint.RulesOutput)
			if err != nil {
				return err
			}
			return e.print(exprResult(args[0], d))
		},
	}
}

func newSimplifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplify [flags] expr",
		Short: "simplify an expression under a rule set.",
		Long: `Simplify an expression. Rules are a comma separated list of rule or
rule set names: output, field-extension, risch, differential-equation,
order, basic, collect, expand, common-denominator, expand-log, split-exp,
func-values, operators. With operators, int(f, x) is integrated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			f, err := parseArg(args)
			if err != nil {
				return err
			}
			names, _ := cmd.Flags().GetString("rules")
			rules, err := gosymint.ParseRuleSet(names)
			if err != nil {
				return err
			}
			out, err := gosymint.SimplifyFor(f, e.x, rules)
			if err != nil {
				return err
			}
			if rules.Has(gosymint.RuleOperators) {
				if out, err = e.integrator().EvaluateIntegrals(cmd.Context(), out); err != nil {
					return err
				}
				if out, err = gosymint.SimplifyFor(out, e.x, rules); err != nil {
					return err
				}
			}
			return e.print(exprResult(args[0], out))
		},
	}
	cmd.Flags().String("rules", "output", "rules to apply")
	return cmd
}

func newTowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tower [flags] expr",
		Short: "print the differential field tower of an expression.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			f, err := parseArg(args)
			if err != nil {
				return err
			}
			g, err := gosymint.SimplifyFor(f, e.x, gosymint.RulesFieldExtension)
			if err != nil {
				return err
			}
			exts, err := risch.BuildTower(e.x, g)
			if err != nil {
				return err
			}
			strs := make([]string, len(exts))
			for i, ext := range exts {
				strs[i] = ext.String()
			}
			r := result{Input: args[0], Result: strs, String: strings.Join(strs, ", ")}
			if !risch.IsRational(g, e.x, exts) {
				r.Outcome = risch.OutcomeNotIntegrable.String()
			}
			return e.print(r)
		},
	}
}
