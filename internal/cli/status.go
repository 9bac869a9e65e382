package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/gamenetauth/permission"
)

// statusView is the JSON form of `status --json`.
type statusView struct {
	Authenticated bool                `json:"authenticated"`
	Email         string              `json:"email,omitempty"`
	UserID        string              `json:"user_id,omitempty"`
	UserType      string              `json:"user_type,omitempty"`
	Persistence   string              `json:"persistence,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
	Permissions   map[string][]string `json:"permissions,omitempty"`
	Navigation    []string            `json:"navigation,omitempty"`
	LoginBlocked  bool                `json:"login_blocked"`
	FailedLogins  int                 `json:"failed_logins"`
	RetryAfter    string              `json:"retry_after,omitempty"`
}

func newStatusCommand(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session, its grants and the login lockout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				a.restore(ctx)
				view := buildStatus(ctx, a)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(view)
				}
				return printStatus(cmd.OutOrStdout(), view)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func buildStatus(ctx context.Context, a *app) statusView {
	st := a.ctrl.State()
	lock := a.ctrl.Lockout(ctx)

	view := statusView{
		Authenticated: st.Authenticated(),
		LoginBlocked:  lock.Blocked,
		FailedLogins:  lock.Attempts,
	}
	if lock.Blocked {
		view.RetryAfter = lock.Remaining.Round(time.Second).String()
	}
	if !st.Authenticated() {
		return view
	}

	view.Email = st.User.Email
	view.UserID = string(st.User.ID)
	view.UserType = string(st.UserType)
	view.Persistence = st.Persistence.String()
	if !st.ExpiresAt.IsZero() {
		exp := st.ExpiresAt
		view.ExpiresAt = &exp
	}
	view.Permissions = st.Permissions.GroupByResource()
	for _, item := range permission.FilterNav(st.Permissions, permission.DashboardNav) {
		view.Navigation = append(view.Navigation, item.Path)
	}
	return view
}

func printStatus(w io.Writer, v statusView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if v.Authenticated {
		fmt.Fprintf(tw, "session\tsigned in\n")
		fmt.Fprintf(tw, "user\t%s (id %s)\n", v.Email, v.UserID)
		fmt.Fprintf(tw, "role\t%s\n", v.UserType)
		fmt.Fprintf(tw, "storage\t%s\n", v.Persistence)
		if v.ExpiresAt != nil {
			fmt.Fprintf(tw, "expires\t%s\n", formatTime(*v.ExpiresAt))
		}
		for _, res := range sortedKeys(v.Permissions) {
			fmt.Fprintf(tw, "grant\t%s: %s\n", res, strings.Join(v.Permissions[res], ", "))
		}
		if len(v.Navigation) > 0 {
			fmt.Fprintf(tw, "pages\t%s\n", strings.Join(v.Navigation, " "))
		}
	} else {
		fmt.Fprintf(tw, "session\tsigned out\n")
	}
	if v.LoginBlocked {
		fmt.Fprintf(tw, "login\tblocked, retry in %s\n", v.RetryAfter)
	} else {
		fmt.Fprintf(tw, "login\t%d recent failed attempts\n", v.FailedLogins)
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}

func newCanCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "can <resource:action | resource action>",
		Short: "Check whether the stored session grants a permission",
		Example: "  gamenetctl can users:create\n" +
			"  gamenetctl can gamenets delete",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p permission.Permission
			var err error
			if len(args) == 2 {
				p, err = permission.Parse(permission.New(args[0], args[1]))
			} else {
				p, err = permission.Parse(args[0])
			}
			if err != nil {
				return err
			}

			return o.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				a.restore(ctx)
				if a.ctrl.CanAccess(p.Resource, p.Action) {
					fmt.Fprintf(cmd.OutOrStdout(), "yes: %s\n", p)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "no: %s\n", p)
				return fmt.Errorf("%w: %s", ErrDenied, p)
			})
		},
	}
}
