package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/common"
)

// Prompt functions used by the auth and billing commands.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (r *runner) loginCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.RunE = r.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		in := inputOf(cmd)
		out := cmd.OutOrStdout()

		if email == "" {
			var err error
			if email, err = getSimpleText(in, "Enter email", out); err != nil {
				return err
			}
		}
		password, err := getPassword(in, out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)

		user, err := r.app.auth.Login(ctx, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Welcome back, %s!\n", displayName(user))
		return nil
	})
	return cmd
}

func (r *runner) registerCommand() *cobra.Command {
	var req models.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "display name")
	cmd.Flags().StringVar(&req.NativeLanguage, "native", "", "native language code")
	cmd.Flags().StringVar(&req.TargetLanguage, "target", "", "language to learn")
	cmd.RunE = r.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		in := inputOf(cmd)
		out := cmd.OutOrStdout()

		var err error
		if req.Name == "" {
			if req.Name, err = getSimpleText(in, "Enter your name", out); err != nil {
				return err
			}
		}
		if req.Email == "" {
			if req.Email, err = getSimpleText(in, "Enter email", out); err != nil {
				return err
			}
		}
		password, err := getPassword(in, out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)
		req.Password = string(password)

		user, err := r.app.auth.Register(ctx, req)
		req.Password = ""
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Account created. Welcome, %s!\n", displayName(user))
		return nil
	})
	return cmd
}

func (r *runner) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget local data",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if err := r.app.auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		}),
	}
}

func (r *runner) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the stored session tokens",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if err := r.app.auth.Refresh(ctx); err != nil {
				if errors.Is(err, common.ErrNotLoggedIn) {
					return fmt.Errorf("%w: run 'lingua login' first", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session refreshed.")
			return nil
		}),
	}
}

func (r *runner) profileCommand() *cobra.Command {
	var name, native, target string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&name, "set-name", "", "change display name")
	cmd.Flags().StringVar(&native, "set-native", "", "change native language")
	cmd.Flags().StringVar(&target, "set-target", "", "change target language")
	cmd.RunE = r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		var upd models.ProfileUpdate
		if cmd.Flags().Changed("set-name") {
			upd.Name = &name
		}
		if cmd.Flags().Changed("set-native") {
			upd.NativeLanguage = &native
		}
		if cmd.Flags().Changed("set-target") {
			upd.TargetLanguage = &target
		}

		var (
			user *models.User
			err  error
		)
		if upd.Name != nil || upd.NativeLanguage != nil || upd.TargetLanguage != nil {
			user, err = r.app.auth.UpdateProfile(ctx, upd)
		} else {
			user, err = r.app.auth.Profile(ctx)
		}
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New("profile unavailable")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", displayName(user), user.Email)
		if user.NativeLanguage != "" || user.TargetLanguage != "" {
			fmt.Fprintf(out, "Learning %s (native %s)\n", orDash(user.TargetLanguage), orDash(user.NativeLanguage))
		}
		fmt.Fprintf(out, "Level %d, %d XP", user.Level, user.TotalXP)
		if user.IsPremium {
			fmt.Fprint(out, ", premium")
		}
		fmt.Fprintln(out)
		return nil
	})
	return cmd
}

func displayName(u *models.User) string {
	switch {
	case u == nil:
		return "learner"
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	}
	return "learner"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
