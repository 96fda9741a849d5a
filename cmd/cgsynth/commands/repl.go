package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/resolution"
)

const replHelp = `commands:
  method <type> <name> [parenless]   compiler-generated method on a type
  binop <lhs> <op> <rhs>             compiler-generated operator, e.g. binop Color : type int
  field <type> <field>               generated field accessor
  advance                            start a new query generation
  stats                              resolver counters
  help                               this text
  quit                               leave`

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl <program>",
		Short: "Query the resolver interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			return runRepl(cmd.Context(), s, a.cfg.Repl.History, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runRepl(ctx context.Context, s *session, histPath string, out, errOut io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		var c []string
		for _, w := range []string{"method ", "binop ", "field ", "advance", "stats", "help", "quit"} {
			if strings.HasPrefix(w, line) {
				c = append(c, w)
			}
		}
		return c
	})

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(out, "cgsynth: %s (type help for commands)\n", s.path)
	for {
		line, err := ln.Prompt("cgsynth> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return errors.Wrap(err, "failed to read input")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		quit, err := s.eval(ctx, line, out)
		if err != nil {
			reportError(errOut, err)
		}
		if quit {
			return nil
		}
	}
}

// eval runs one REPL command.
func (s *session) eval(ctx context.Context, line string, out io.Writer) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, rest := fields[0], fields[1:]
	var sig *resolution.TypedFnSignature
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(out, replHelp)
		return false, nil
	case "advance":
		gen := s.qc.Advance()
		fmt.Fprintf(out, "generation %d (%s)\n", gen.Seq, gen.ID)
		return false, nil
	case "stats":
		st := s.res.Stats()
		fmt.Fprintf(out, "method builds: %d  binary op builds: %d  accessor builds: %d  signatures: %d\n",
			st.MethodBuilds, st.BinaryOpBuilds, st.AccessorBuilds, st.Signatures)
		return false, nil
	case "method":
		parenless := false
		if n := len(rest); n > 0 && rest[n-1] == "parenless" {
			parenless = true
			rest = rest[:n-1]
		}
		if len(rest) < 2 {
			return false, errors.New("usage: method <type> <name> [parenless]")
		}
		sig, err = s.method(ctx, strings.Join(rest[:len(rest)-1], " "), rest[len(rest)-1], parenless)
	case "binop":
		lhs, op, rhs, ok := splitBinop(rest)
		if !ok {
			return false, errors.WithHint(errors.New("usage: binop <lhs> <op> <rhs>"),
				"separate the operator with spaces, e.g. binop Color : type int")
		}
		sig, err = s.binop(ctx, lhs, rhs, op)
	case "field":
		if len(rest) < 2 {
			return false, errors.New("usage: field <type> <field>")
		}
		sig, err = s.field(ctx, strings.Join(rest[:len(rest)-1], " "), rest[len(rest)-1])
	default:
		return false, errors.WithHint(errors.Newf("unknown command %q", cmd), "type help for commands")
	}
	if err != nil {
		return false, err
	}
	printSignature(out, sig)
	return false, nil
}

// splitBinop splits `lhs op rhs` at the first word made only of operator
// characters.
func splitBinop(words []string) (lhs, op, rhs string, ok bool) {
	for i, w := range words {
		if i == 0 || i == len(words)-1 || !isOperator(w) {
			continue
		}
		return strings.Join(words[:i], " "), w, strings.Join(words[i+1:], " "), true
	}
	return "", "", "", false
}

func isOperator(w string) bool {
	return strings.Trim(w, ":=+-*/%<>!&|^~") == ""
}
