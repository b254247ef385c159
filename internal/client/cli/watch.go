package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/lingua/internal/client/realtime"
)

// Server-pushed events the watcher reacts to.
const (
	EventTutorMessage        = "message"
	EventAchievementUnlocked = "achievement_unlocked"
	EventXPUpdated           = "xp_updated"
)

func (r *runner) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Listen for live tutor messages and achievement unlocks",
		Args:  cobra.NoArgs,
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			out := &syncWriter{w: cmd.OutOrStdout()}
			s := r.app.socket
			unlocks := make(chan struct{}, 1)

			defer s.Off(realtime.NamespaceTutor, EventTutorMessage)
			defer s.Off(realtime.NamespaceRealtime, EventXPUpdated)
			defer s.Off(realtime.NamespaceRealtime, EventAchievementUnlocked)

			s.On(realtime.NamespaceTutor, EventTutorMessage, func(p json.RawMessage) {
				fmt.Fprintf(out, "tutor> %s\n", gjson.GetBytes(p, "content").String())
			})
			s.On(realtime.NamespaceRealtime, EventXPUpdated, func(p json.RawMessage) {
				fmt.Fprintf(out, "XP: %d\n", gjson.GetBytes(p, "totalXp").Int())
			})
			s.On(realtime.NamespaceRealtime, EventAchievementUnlocked, func(json.RawMessage) {
				select {
				case unlocks <- struct{}{}:
				default:
				}
			})

			if err := s.Connect(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Watching. Press Ctrl+C to stop.")

			r.notifyUnlocks(ctx, out)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-unlocks:
					r.notifyUnlocks(ctx, out)
				}
			}
		}),
	}
}

// notifyUnlocks runs off the socket goroutine so handlers never block on I/O.
func (r *runner) notifyUnlocks(ctx context.Context, out *syncWriter) {
	n, err := r.app.achievements.CheckAndNotify(ctx)
	if err != nil {
		r.app.logger.Warn(ctx, "achievement notification failed", "error", err)
		return
	}
	if n > 0 {
		fmt.Fprintf(out, "%d new achievement(s)!\n", n)
	}
}
