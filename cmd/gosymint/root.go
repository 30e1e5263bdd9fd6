package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/njchilds90/gosymint"
	"github.com/njchilds90/gosymint/internal/config"
	"github.com/njchilds90/gosymint/risch"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gosymint",
		Short:        "Symbolic integration of elementary functions.",
		Long:         "Decide and compute elementary antiderivatives over towers of exponentials and logarithms.",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log the integration recursion")
	root.PersistentFlags().String("config", "", "config file (default ./gosymint.yaml)")
	root.PersistentFlags().StringP("output", "o", "auto", "output format: text, json or auto")
	root.PersistentFlags().StringP("var", "x", "x", "integration variable")

	root.AddCommand(newIntegrateCmd(), newDiffCmd(), newSimplifyCmd(), newTowerCmd(), newBatchCmd())
	return root
}

// env is the configuration every subcommand runs with.
type env struct {
	cfg  *config.Config
	log  *log.Logger
	out  io.Writer
	json bool
	x    string
}

func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(config.New(), path)
	if err != nil {
		return nil, err
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	logger.SetOutput(cmd.ErrOrStderr())

	format, _ := flags.GetString("output")
	asJSON, err := jsonOutput(format, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	x, _ := flags.GetString("var")
	return &env{cfg: cfg, log: logger, out: cmd.OutOrStdout(), json: asJSON, x: x}, nil
}

// jsonOutput resolves the output format; auto prints text on a terminal
// and JSON otherwise.
func jsonOutput(format string, w io.Writer) (bool, error) {
	switch format {
	case "text":
		return false, nil
	case "json":
		return true, nil
	case "auto":
		f, ok := w.(*os.File)
		return !ok || !term.IsTerminal(int(f.Fd())), nil
	}
	return false, errors.Errorf("unknown output format %q", format)
}

func (e *env) integrator() *risch.Integrator {
	return risch.New(e.cfg.Options(e.log))
}

// result is the JSON form of one answer.
type result struct {
	Input   string `json:"input,omitempty"`
	Result  any    `json:"result,omitempty"`
	String  string `json:"string,omitempty"`
	LaTeX   string `json:"latex,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

func exprResult(input string, e gosymint.Expr) result {
	return result{Input: input, Result: gosymint.ToJSONValue(e), String: gosymint.String(e), LaTeX: gosymint.LaTeX(e)}
}

func (e *env) print(r result) error {
	if e.json {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	if r.Error != "" {
		_, err := fmt.Fprintf(e.out, "%s: %s\n", r.Outcome, r.Error)
		return err
	}
	_, err := fmt.Fprintln(e.out, r.String)
	return err
}

func parseArg(args []string) (gosymint.Expr, error) {
	f, err := gosymint.Parse(args[0])
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", args[0])
	}
	return f, nil
}
