package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-jsvm/internal/errors"
	"github.com/cwbudde/go-jsvm/pkg/jsvm"
)

var parseEvalExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a JavaScript file or expression and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline source instead of reading from file")
}

func parseScript(_ *cobra.Command, args []string) error {
	input, _, err := readSource(parseEvalExpr, args)
	if err != nil {
		return err
	}

	prog, err := jsvm.ParseStatements(input)
	if err != nil {
		if ce, ok := err.(*errors.CompilerError); ok {
			return fmt.Errorf("%s", ce.Format(useColor))
		}
		return err
	}
	fmt.Println(prog.String())
	return nil
}
