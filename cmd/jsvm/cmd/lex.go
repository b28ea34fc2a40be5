package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cwbudde/go-jsvm/internal/lexer"
	"github.com/cwbudde/go-jsvm/pkg/jsvm"
)

var (
	lexEvalExpr string
	showPos     bool
	showType    bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a JavaScript file or expression",
	Long: `Tokenize (lex) a JavaScript program and print the resulting tokens,
resolving the regex/division ambiguity the same way the parser does.

Examples:
  jsvm lex script.js
  jsvm lex -e "const x = /ab+c/.test(s);"`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline source instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", true, "show token type names")
}

func lexScript(_ *cobra.Command, args []string) error {
	input, _, err := readSource(lexEvalExpr, args)
	if err != nil {
		return err
	}

	tokens, err := jsvm.Tokenize(input)
	for _, tok := range tokens {
		printToken(tok)
	}
	if err != nil {
		return err
	}
	return nil
}

func printToken(tok lexer.Token) {
	var out string
	if showType {
		out = fmt.Sprintf("[%-16s]", tok.Type)
	}
	switch tok.Type {
	case lexer.EOF:
		out += " EOF"
	case lexer.ILLEGAL:
		msg := fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
		if useColor {
			msg = color.RedString(msg)
		}
		out += msg
	default:
		if tok.Literal == "" {
			out += fmt.Sprintf(" %s", tok.Type)
		} else {
			out += fmt.Sprintf(" %q", tok.Literal)
		}
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}

func readSource(evalExpr string, args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", args[0], fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline source")
}
