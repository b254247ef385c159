package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lingua/internal/common"
)

type handler func(ctx context.Context, cmd *cobra.Command, args []string) error

// run adapts h to cobra.
func (r *runner) run(h handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return h(cmd.Context(), cmd, args)
	}
}

// authed only invokes h when a session is stored. An expired access token is
// refreshed before h runs.
func (r *runner) authed(h handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ok, err := r.app.auth.EnsureSession(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: run 'lingua login' first", common.ErrNotLoggedIn)
		}
		return h(ctx, cmd, args)
	}
}
