package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const shellHelp = `Commands: login, register, logout, refresh, profile, progress, achievements,
levels, lessons <level>, complete <lesson>, games, play <game>, plans, subscription,
transactions, subscribe <plan>, tutor, grammar [text], talk, watch, cache, help, exit`

type execFunc func(ctx context.Context, args []string) error

// runREPL reads commands line by line and hands the split line to exec.
// The loop exits on EOF or when the user types "exit" or "quit". Command
// errors are printed and do not end the loop.
func runREPL(ctx context.Context, exec execFunc, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "lingua %s> ", statusFn())
		line, err := readLine(in)
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		case "help":
			fmt.Fprintln(out, shellHelp)
		case "shell":
			fmt.Fprintln(out, "Already in the shell.")
		default:
			if err := exec(ctx, parts); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (r *runner) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			// Commands share this reader so their prompts see the lines
			// that follow them.
			in := inputOf(cmd)
			out := cmd.OutOrStdout()

			exec := func(ctx context.Context, args []string) error {
				t := r.tree()
				t.SetArgs(args)
				t.SetIn(in)
				t.SetOut(out)
				t.SetErr(cmd.ErrOrStderr())
				err := t.ExecuteContext(ctx)
				if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
					return errors.New("unknown command " + args[0] + ", type 'help'")
				}
				return err
			}

			status := func() string {
				ok, err := r.app.auth.LoggedIn(ctx)
				if err != nil || !ok {
					return "(signed out)"
				}
				return "(signed in)"
			}

			fmt.Fprintln(out, "Welcome to Lingua (type 'help' for commands)")
			runREPL(ctx, exec, status, in, out)
			return nil
		}),
	}
}
