package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (r *runner) gamesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List practice games",
		Args:  cobra.NoArgs,
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			games := r.app.games.Games(ctx)
			out := cmd.OutOrStdout()
			if len(games) == 0 {
				fmt.Fprintln(out, "No games available.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tDIFFICULTY\tXP")
			for _, g := range games {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", g.ID, g.Title, g.Type, orDash(g.Difficulty), g.XPReward)
			}
			return tw.Flush()
		}),
	}
}

func (r *runner) playCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play <game-id>",
		Short: "Play a game session",
		Args:  cobra.ExactArgs(1),
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			session, err := r.app.games.Start(ctx, args[0])
			if err != nil {
				return err
			}

			in := inputOf(cmd)
			out := cmd.OutOrStdout()
			answers := make([]models.GameAnswer, 0, len(session.Questions))

			for i, q := range session.Questions {
				prompt := fmt.Sprintf("%d/%d. %s", i+1, len(session.Questions), q.Prompt)
				for j, opt := range q.Options {
					prompt += fmt.Sprintf("\n  %d) %s", j+1, opt)
				}
				ans, err := getSimpleText(in, prompt, out)
				if err != nil {
					return err
				}
				answers = append(answers, models.GameAnswer{QuestionID: q.ID, Answer: pickOption(q.Options, ans)})
			}

			res, err := r.app.games.Submit(ctx, session.ID, answers)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Score %d: %d/%d correct, +%d XP\n", res.Score, res.Correct, res.Total, res.XPEarned)
			return nil
		}),
	}
}

// pickOption maps a 1-based option number to its text. Anything else is
// returned unchanged as a free-text answer.
func pickOption(options []string, ans string) string {
	n, err := strconv.Atoi(ans)
	if err != nil || n < 1 || n > len(options) {
		return ans
	}
	return options[n-1]
}
