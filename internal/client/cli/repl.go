package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errUnknownCommand = errors.New("unknown command")

// execIface is the command surface the REPL needs. *App satisfies it; tests
// can provide a lightweight stub.
type execIface interface {
	helpText() string
	exec(ctx context.Context, cmd string, args []string) error
}

// runREPL reads a line at a time from reader, takes the first token as the
// command and dispatches it to a. It returns on EOF, on "exit" or "quit",
// or when ctx is cancelled.
//
// Command handlers report their own failures; only unknown commands are
// handled here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "langcrowd (%s)> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := strings.ToLower(parts[0]); cmd {
		case "help", "?":
			fmt.Fprintln(w, a.helpText())
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			if err := a.exec(ctx, cmd, parts[1:]); errors.Is(err, errUnknownCommand) {
				fmt.Fprintln(w, "Unknown command:", cmd)
			}
		}
	}
}
