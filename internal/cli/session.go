package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/gamenetauth/auth"
)

// EnvPassword is read when --password is not given.
const EnvPassword = "GAMENET_PASSWORD"

func newLoginCommand(o *options) *cobra.Command {
	var (
		email      string
		password   string
		rememberMe bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: "Sign in with email and password. The password is taken from --password, " +
			"then $" + EnvPassword + ", then the first line of stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if password == "" {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}

			return o.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.ctrl.Login(ctx, email, password, rememberMe); err != nil {
					return err
				}
				st := a.ctrl.State()
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s), session %s\n",
					st.User.Email, st.UserType, st.Persistence)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVarP(&rememberMe, "remember", "r", false, "keep the session after this process exits")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				a.restore(ctx)
				wasSignedIn := a.ctrl.State().Authenticated()
				if err := a.ctrl.Logout(ctx); err != nil {
					return err
				}
				if wasSignedIn {
					fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				}
				return nil
			})
		},
	}
}

func newRefreshCommand(o *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored token if it is close to expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				a.restore(ctx)
				if !a.ctrl.State().Authenticated() {
					return auth.ErrNotAuthenticated
				}

				before := a.ctrl.State().Token
				var err error
				if force {
					err = a.ctrl.RefreshToken(ctx)
				} else {
					err = a.ctrl.CheckToken(ctx)
				}
				if err != nil {
					return err
				}

				st := a.ctrl.State()
				if st.Token == before {
					fmt.Fprintf(cmd.OutOrStdout(), "token still valid until %s\n", formatTime(st.ExpiresAt))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "token refreshed, valid until %s\n", formatTime(st.ExpiresAt))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "refresh even when the token is not close to expiry")
	return cmd
}
