package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lingua/internal/client/conversation"
	"github.com/dmitrijs2005/lingua/internal/client/format"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/realtime"
)

const quitCommand = "/quit"

func (r *runner) tutorCommand() *cobra.Command {
	var (
		topic string
		list  bool
	)
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "Chat with the AI tutor",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "conversation topic")
	cmd.Flags().BoolVar(&list, "list", false, "list past conversations and exit")
	cmd.RunE = r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		if list {
			convs := r.app.tutor.Conversations(ctx)
			if len(convs) == 0 {
				fmt.Fprintln(out, "No conversations yet.")
			}
			for _, c := range convs {
				fmt.Fprintf(out, "%s  %s  %s\n", format.Date(c.CreatedAt), c.ID, orDash(c.Topic))
			}
			return nil
		}

		conv, err := r.app.tutor.StartConversation(ctx, topic)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Tutor is ready. Type %s to leave.\n", quitCommand)

		return readLines(inputOf(cmd), out, "you> ", func(line string) error {
			reply, err := r.app.tutor.Send(ctx, conv.ID, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				return nil
			}
			printReply(out, reply)
			return nil
		})
	})
	return cmd
}

func printReply(w io.Writer, reply *models.TutorReply) {
	fmt.Fprintf(w, "tutor> %s\n", reply.Message.Content)
	for _, c := range reply.Corrections {
		fmt.Fprintf(w, "  * %s -> %s", c.Original, c.Corrected)
		if c.Explanation != "" {
			fmt.Fprintf(w, " (%s)", c.Explanation)
		}
		fmt.Fprintln(w)
	}
	if reply.XPEarned > 0 {
		fmt.Fprintf(w, "  +%d XP\n", reply.XPEarned)
	}
}

func (r *runner) grammarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grammar [text]...",
		Short: "Check the grammar of a sentence",
		Long:  "Check the grammar of the given text. Without arguments the text is read from input until an empty line.",
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			text := strings.Join(args, " ")
			if text == "" {
				var err error
				if text, err = GetMultiline(inputOf(cmd), "Enter the text to check", out); err != nil {
					return err
				}
			}
			if text == "" {
				return errors.New("nothing to check")
			}

			res, err := r.app.tutor.CheckGrammar(ctx, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Score %d\n", res.Score)
			if res.Corrected != "" && res.Corrected != res.Text {
				fmt.Fprintf(out, "Suggested: %s\n", res.Corrected)
			}
			for _, c := range res.Corrections {
				fmt.Fprintf(out, "  * %s -> %s\n", c.Original, c.Corrected)
			}
			return nil
		}),
	}
}

// talkCommand runs a realtime tutoring session. Typed lines go to the
// model and streamed text comes back.
func (r *runner) talkCommand() *cobra.Command {
	var opts conversation.StartOptions
	cmd := &cobra.Command{
		Use:   "talk",
		Short: "Start a realtime conversation session",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&opts.Topic, "topic", "t", "", "conversation topic")
	cmd.Flags().StringVar(&opts.Voice, "voice", "", "voice of the tutor")
	cmd.Flags().StringVar(&opts.Instructions, "instructions", "", "extra instructions for the tutor")
	cmd.RunE = r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		out := &syncWriter{w: cmd.OutOrStdout()}
		conv := r.app.conversation

		if err := conv.StartSession(ctx, opts); err != nil {
			if errors.Is(err, conversation.ErrCircuitOpen) {
				return fmt.Errorf("realtime sessions are paused after repeated failures, try again later: %w", err)
			}
			return err
		}

		sessCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			conv.Monitor(sessCtx, r.app.cfg.StatePollInterval)
		}()
		go func() {
			defer wg.Done()
			printEvents(sessCtx, conv.Events(), out)
		}()

		fmt.Fprintf(out, "Connected. Type %s to end the session.\n", quitCommand)
		err := readLines(inputOf(cmd), out, "", func(line string) error {
			if err := conv.SendText(ctx, line); err != nil {
				if errors.Is(err, conversation.ErrNoSession) {
					return err
				}
				fmt.Fprintf(out, "error: %v\n", err)
			}
			return nil
		})

		cancel()
		wg.Wait()
		if stopErr := conv.StopSession(ctx); stopErr != nil && err == nil {
			err = stopErr
		}
		fmt.Fprintln(out, "Session ended.")
		return err
	})
	return cmd
}

func printEvents(ctx context.Context, events <-chan realtime.ServerEvent, w io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch {
			case ev.Delta != "" && strings.HasSuffix(ev.Type, "text.delta"):
				fmt.Fprint(w, ev.Delta)
			case ev.Type == "response.done":
				fmt.Fprintln(w)
			case ev.Type == "error":
				fmt.Fprintf(w, "\nerror from realtime API: %s\n", ev.Raw)
			}
		}
	}
}

// readLines feeds non-empty input lines to fn until EOF or quitCommand.
func readLines(in *bufio.Reader, out io.Writer, prompt string, fn func(string) error) error {
	for {
		if prompt != "" {
			fmt.Fprint(out, prompt)
		}
		line, err := readLine(in)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if line == quitCommand {
			return nil
		}
		if err := fn(line); err != nil {
			return err
		}
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
