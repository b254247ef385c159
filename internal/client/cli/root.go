package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lingua/internal/client/config"
)

// AppFactory builds the App once configuration is resolved.
type AppFactory func(ctx context.Context, cfg *config.Config) (*App, error)

// DefaultFactory is NewApp logging to stderr.
func DefaultFactory(ctx context.Context, cfg *config.Config) (*App, error) {
	return NewApp(ctx, cfg, nil)
}

// runner carries the App from the root's pre-run hook into subcommands.
type runner struct {
	build AppFactory
	app   *App
}

// NewRootCommand assembles the lingua command tree.
func NewRootCommand(build AppFactory) *cobra.Command {
	root, _ := newRoot(build)
	return root
}

func newRoot(build AppFactory) (*cobra.Command, *runner) {
	r := &runner{build: build}
	return r.tree(), r
}

// tree builds a fresh command tree bound to r. The shell builds one per line
// so flag values never leak between commands.
func (r *runner) tree() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "lingua",
		Short:         "Terminal client for the Lingua language-learning service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to JSON config file")
	overrides := config.BindFlags(root.PersistentFlags())

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if r.app != nil {
			return nil
		}
		cfg, err := config.Load(configPath, overrides)
		if err != nil {
			return err
		}
		app, err := r.build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		r.app = app
		app.ServeMetrics(cmd.Context())
		return nil
	}

	root.AddCommand(
		r.loginCommand(),
		r.registerCommand(),
		r.logoutCommand(),
		r.refreshCommand(),
		r.profileCommand(),
		r.achievementsCommand(),
		r.levelsCommand(),
		r.lessonsCommand(),
		r.completeCommand(),
		r.progressCommand(),
		r.gamesCommand(),
		r.playCommand(),
		r.plansCommand(),
		r.subscriptionCommand(),
		r.transactionsCommand(),
		r.subscribeCommand(),
		r.tutorCommand(),
		r.grammarCommand(),
		r.talkCommand(),
		r.watchCommand(),
		r.cacheCommand(),
		r.shellCommand(),
	)
	return root
}

// Execute runs the command tree and closes the App afterwards.
func Execute(ctx context.Context, build AppFactory, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root, r := newRoot(build)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer func() {
		if r.app != nil {
			_ = r.app.Close()
		}
	}()
	return root.ExecuteContext(ctx)
}
