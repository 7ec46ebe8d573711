package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompt is printed before every line.
const Prompt = "supsim> "

// Executor runs one command line and returns the text to print.
type Executor func(ctx context.Context, line string) (string, error)

// REPL represents the read-eval-print loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	completer *Completer
	history   *History
}

// New creates a REPL. history may be nil to disable persistence.
func New(in io.Reader, out io.Writer, exec Executor, history *History) *REPL {
	if history == nil {
		history = NewHistory("")
	}
	return &REPL{
		input:     in,
		output:    out,
		exec:      exec,
		completer: NewCompleter(),
		history:   history,
	}
}

// Run reads lines until EOF, "exit", "quit" or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history not loaded: %v\n", err)
	}
	defer r.history.Save()

	scanner := bufio.NewScanner(r.input)
	for {
		fmt.Fprint(r.output, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.output)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case strings.HasPrefix(line, "?"):
			for _, s := range r.completer.Complete(strings.TrimSpace(line[1:])) {
				fmt.Fprintln(r.output, s)
			}
			continue
		}

		r.history.Add(line)
		out, err := r.exec(ctx, line)
		if err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintln(r.output, strings.TrimRight(out, "\n"))
		}
	}
}
