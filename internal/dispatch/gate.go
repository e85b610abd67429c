package dispatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Asker obtains a clarification answer from a human.
type Asker interface {
	Ask(ctx context.Context, questions []string) (string, error)
}

// TerminalAsker reads answers line by line from In and writes prompts to Out.
type TerminalAsker struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func NewTerminalAsker(in io.Reader, out io.Writer) *TerminalAsker {
	return &TerminalAsker{In: in, Out: out}
}

// Ask prints the questions and blocks until a non-empty answer is entered
// or ctx is cancelled.
func (a *TerminalAsker) Ask(ctx context.Context, questions []string) (string, error) {
	fmt.Fprintf(a.Out, "\n  More detail is needed:\n")
	for i, q := range questions {
		fmt.Fprintf(a.Out, "    %d. %s\n", i+1, q)
	}
	for {
		answer, err := a.Prompt(ctx, "\n  Your answer: ")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// Prompt prints label and returns the next trimmed input line. A final line
// without a newline is returned; EOF with no input is io.EOF.
func (a *TerminalAsker) Prompt(ctx context.Context, label string) (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	fmt.Fprint(a.Out, label)

	type readResult struct {
		input string
		err   error
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := a.reader.ReadString('\n')
		ch <- readResult{input: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(a.Out)
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if r.err == io.EOF && r.input != "" {
				return r.input, nil
			}
			return "", r.err
		}
		return r.input, nil
	}
}
