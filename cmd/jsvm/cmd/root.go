package cmd

import (
	"fmt"

	"github.com/juju/loggo"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var useColor bool

var rootCmd = &cobra.Command{
	Use:   "jsvm",
	Short: "A small embeddable JavaScript engine",
	Long: `jsvm is a Go implementation of a JavaScript execution engine covering
the core ECMAScript behaviors exercised by its test corpus: lexing,
parsing, an object model with prototype chains and classes, and an
evaluator with generators, Promises, and a cooperative event loop.

This CLI is a thin wrapper around the pkg/jsvm embedding API; it is not
part of the engine's stable host contract.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&useColor, "color", true, "colorize diagnostic output")

	cobra.OnInitialize(func() {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		level := loggo.WARNING
		if verbose {
			level = loggo.DEBUG
		}
		loggo.GetLogger("jsvm").SetLogLevel(level)
	})
}
