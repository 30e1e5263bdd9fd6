package main

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/risch"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Problem is one integrand of a batch file.
type Problem struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
	Var  string `yaml:"var"`
	// Want, when set, must be the simplified antiderivative or the
	// outcome name of the failure.
	Want string `yaml:"want"`
}

// Batch is the document read by the batch command.
type Batch struct {
	Problems []Problem `yaml:"problems"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [flags] file.yaml",
		Short: "integrate every problem listed in a YAML file.",
		Long: `Integrate every problem of a YAML file concurrently. Problems with a
"want" entry are checked against it; the command fails if any check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			batch, err := readBatch(args[0])
			if err != nil {
				return err
			}
			jobs, _ := cmd.Flags().GetInt("jobs")
			results, err := runBatch(cmd.Context(), e.integrator(), batch, e.x, jobs)
			for _, r := range results {
				if perr := e.print(r); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "problems integrated in parallel")
	return cmd
}

func readBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return &b, nil
}

// runBatch integrates the problems on at most jobs workers. Results keep
// the order of the file; the error combines every failed check.
func runBatch(ctx context.Context, it *risch.Integrator, b *Batch, x string, jobs int) ([]result, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]result, len(b.Problems))
	errs := make([]error, len(b.Problems))

	var wg sync.WaitGroup
	sem := make(chan struct{}, jobs)
	for i, p := range b.Problems {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			results[i], errs[i] = solve(ctx, it, p, x)
		}()
	}
	wg.Wait()
	return results, multierr.Combine(errs...)
}

func solve(ctx context.Context, it *risch.Integrator, p Problem, x string) (result, error) {
	name := p.Name
	if name == "" {
		name = p.Expr
	}
	if p.Var != "" {
		x = p.Var
	}
	f, err := gosymint.Parse(p.Expr)
	if err != nil {
		return result{Input: name, Error: err.Error()}, errors.Wrap(err, name)
	}
	out, err := it.IntegrateContext(ctx, f, x)
	outcome := risch.Classify(err)
	var r result
	if err != nil {
		r = result{Input: name, Outcome: outcome.String(), Error: err.Error()}
	} else {
		r = exprResult(name, out)
		r.Outcome = outcome.String()
	}

	switch {
	case p.Want == "":
		return r, nil
	case err != nil && p.Want == outcome.String():
		return r, nil
	case err == nil && p.Want == r.String:
		return r, nil
	}
	got := r.String
	if err != nil {
		got = outcome.String()
	}
	return r, errors.Errorf("%s: want %s, got %s", name, p.Want, got)
}
