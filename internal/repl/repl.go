// Package repl implements the interactive `>> ` loop described in
// SPEC_FULL §6: blank-line-terminated multi-line input, one evaluation
// per logical input, and the same printing conventions used by the
// non-interactive file-eval path in cmd/app.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fexl/internal/evaluator"
	"fexl/internal/lexer"
	"fexl/internal/parser"
	"fexl/internal/util"
)

const Prompt = ">> "

// Start runs the read-eval-print loop against ev's global environment
// until in is exhausted. A logical input is one or more non-blank lines;
// a blank line (or EOF with pending text) submits the buffered text for
// parsing and evaluation.
func Start(in io.Reader, out io.Writer, ev *evaluator.Evaluator) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder

	fmt.Fprint(out, Prompt)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			submit(out, ev, buf.String())
			buf.Reset()
			fmt.Fprint(out, Prompt)
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if buf.Len() > 0 {
		submit(out, ev, buf.String())
	}
}

func submit(out io.Writer, ev *evaluator.Evaluator, src string) {
	if strings.TrimSpace(src) == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(out, "error: %v\n", r)
		}
	}()

	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		printParserErrors(out, src, errs)
		return
	}

	result, err := ev.Eval(program, ev.Global)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if result != nil {
		fmt.Fprintln(out, result.Inspect())
	}
}

func printParserErrors(out io.Writer, src string, errs []error) {
	for _, e := range errs {
		pe, ok := e.(*parser.ParseError)
		if !ok {
			fmt.Fprintf(out, "parse error: %v\n", e)
			continue
		}
		line, col := util.GetLineAndColumn(src, pe.Pos)
		fmt.Fprintf(out, "parse error: %v\n%s\n", pe, util.GetContextLines(src, line, col, pe.Pos))
	}
}
