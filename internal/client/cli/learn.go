package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/services"
)

func (r *runner) achievementsCommand() *cobra.Command {
	var available, unviewed bool
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&available, "available", false, "list every achievement you can earn")
	cmd.Flags().BoolVar(&unviewed, "unviewed", false, "list unlocked achievements you have not seen")
	cmd.MarkFlagsMutuallyExclusive("available", "unviewed")
	cmd.RunE = r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		var list []models.Achievement
		switch {
		case available:
			list = r.app.achievements.GetAvailableAchievements(ctx)
		case unviewed:
			list = r.app.achievements.GetUnviewedAchievements(ctx)
		default:
			list = r.app.achievements.GetUserAchievements(ctx)
		}
		printAchievements(cmd.OutOrStdout(), list)
		return nil
	})

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view <id>...",
			Short: "Mark achievements as viewed",
			Args:  cobra.MinimumNArgs(1),
			RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				if err := r.app.achievements.MarkViewed(ctx, args); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %d achievement(s) as viewed.\n", len(args))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "check",
			Short: "Evaluate new unlocks and send notifications",
			Args:  cobra.NoArgs,
			RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
				unlocked, err := r.app.achievements.Check(ctx)
				if err != nil {
					return err
				}
				sent, err := r.app.achievements.CheckAndNotify(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d new unlock(s), %d notification(s) sent.\n", len(unlocked), sent)
				return nil
			}),
		},
	)
	return cmd
}

func printAchievements(w io.Writer, list []models.Achievement) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No achievements yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tXP\tSTATUS")
	for _, a := range list {
		status := fmt.Sprintf("%.0f%%", a.Progress*100)
		if a.Unlocked {
			status = "unlocked"
			if !a.Viewed {
				status = "new!"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.ID, a.Title, a.XPReward, status)
	}
	_ = tw.Flush()
}

func (r *runner) levelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List curriculum levels",
		Args:  cobra.NoArgs,
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			levels := r.app.curriculum.Levels(ctx)
			out := cmd.OutOrStdout()
			if len(levels) == 0 {
				fmt.Fprintln(out, "No levels available.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tTITLE\tLESSONS\t")
			for _, l := range levels {
				lock := ""
				if l.Locked {
					lock = "locked"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.Code, l.Title, l.LessonCount, lock)
			}
			return tw.Flush()
		}),
	}
}

func (r *runner) lessonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons <level-id>",
		Short: "List the lessons of a level",
		Args:  cobra.ExactArgs(1),
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			lessons := r.app.curriculum.Lessons(ctx, args[0])
			out := cmd.OutOrStdout()
			if len(lessons) == 0 {
				fmt.Fprintln(out, "No lessons available.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tXP\t")
			for _, l := range lessons {
				mark := ""
				switch {
				case l.Completed:
					mark = "done"
				case l.Locked:
					mark = "locked"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.Title, l.Type, l.XPReward, mark)
			}
			return tw.Flush()
		}),
	}
}

func (r *runner) completeCommand() *cobra.Command {
	var result models.LessonResult
	cmd := &cobra.Command{
		Use:   "complete <lesson-id>",
		Short: "Report a finished lesson",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&result.Score, "score", 100, "score from 0 to 100")
	cmd.Flags().IntVar(&result.DurationSeconds, "duration", 0, "time spent in seconds")
	cmd.Flags().IntVar(&result.Mistakes, "mistakes", 0, "number of mistakes")
	cmd.RunE = r.authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if result.Score < 0 || result.Score > 100 {
			return fmt.Errorf("score %d out of range 0..100", result.Score)
		}
		done, err := r.app.curriculum.CompleteLesson(ctx, args[0], result)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Lesson complete! +%d XP\n", done.XPEarned)
		if done.LevelUp {
			fmt.Fprintf(out, "Level up! You reached level %d.\n", done.NewLevel)
		}
		for _, a := range done.UnlockedAchievements {
			fmt.Fprintf(out, "Unlocked: %s\n", a.Title)
		}
		return nil
	})
	return cmd
}

func (r *runner) progressCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "progress",
		Aliases: []string{"dashboard"},
		Short:   "Show your progress, streak and XP",
		Args:    cobra.NoArgs,
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			d := r.app.progress.Dashboard(ctx, r.app.achievements)
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		}),
	}
}

func printDashboard(w io.Writer, d services.Dashboard) {
	fmt.Fprintf(w, "Level %d  %d XP (%d today, %d to next level)\n", d.XP.Level, d.XP.TotalXP, d.XP.TodayXP, d.XP.XPToNextLevel)
	fmt.Fprintf(w, "Streak %d day(s), longest %d\n", d.Streak.Current, d.Streak.Longest)
	fmt.Fprintf(w, "Lessons %d/%d (%.0f%%)", d.Progress.CompletedLessons, d.Progress.TotalLessons, d.Progress.Percent)
	if d.Progress.CurrentLevel != "" {
		fmt.Fprintf(w, " at %s", d.Progress.CurrentLevel)
	}
	fmt.Fprintln(w)

	unlocked := 0
	for _, a := range d.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	fmt.Fprintf(w, "Achievements %d unlocked\n", unlocked)
}
