package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCommand shows or clears the local response cache.
func (r *runner) cacheCommand() *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "List or clear locally cached responses",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove every cached response")
	cmd.RunE = r.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		if clearAll {
			if err := r.app.cache.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Cache cleared.")
			return nil
		}

		keys, err := r.app.cache.Keys(ctx)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(out, "Cache is empty.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}
		return nil
	})
	return cmd
}
