package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-jsvm/internal/errors"
	"github.com/cwbudde/go-jsvm/pkg/jsvm"
)

var (
	runEvalExpr string
	runAsync    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a JavaScript file or expression",
	Long: `Execute a JavaScript program from a file or inline expression, driving
the event loop (microtasks, then one macrotask, repeat) to completion
before reporting the top-level result.

Examples:
  jsvm run script.js
  jsvm run -e "console.log(1 + 2)"
  jsvm run --async script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline source instead of reading from file")
	runCmd.Flags().BoolVar(&runAsync, "async", false, "await the top-level expression's settlement if it is a Promise")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(runEvalExpr, args)
	if err != nil {
		return err
	}

	engine, err := jsvm.New()
	if err != nil {
		return err
	}
	defer engine.Close()

	var result jsvm.Value
	if runAsync {
		result, err = engine.EvaluateScriptAsync(input, filename)
	} else {
		result, err = engine.EvaluateScript(input, filename)
	}
	if err != nil {
		return formatEngineError(err)
	}
	if result != nil {
		fmt.Println(engine.String(result))
	}
	return nil
}

func formatEngineError(err error) error {
	switch e := err.(type) {
	case *errors.CompilerError:
		return fmt.Errorf("%s", e.Format(useColor))
	case *errors.RuntimeError:
		return fmt.Errorf("%s", e.Format(useColor))
	default:
		return err
	}
}
