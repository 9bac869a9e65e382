package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/gamenetauth/config"
	"github.com/jonwraymond/gamenetauth/health"
)

// ErrUnhealthy is returned by doctor when any check fails.
var ErrUnhealthy = errors.New("one or more checks failed")

func newDoctorCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check storage, API reachability, the stored token and the lockout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				agg := health.NewAggregator()
				for _, tier := range a.store.Tiers() {
					c := health.NewTierChecker(tier)
					agg.Register(c.Name(), c)
				}
				agg.Register("api", health.NewAPIChecker(a.client))
				agg.Register("token", health.NewTokenChecker(a.store, a.tokens))
				agg.Register("lockout", health.NewLockoutChecker(a.limiter))

				report := agg.Run(ctx)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, e := range report.Entries {
					line := e.Result.Message
					if e.Result.Error != nil {
						line += ": " + e.Result.Error.Error()
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Result.Status, line)
				}
				fmt.Fprintf(tw, "overall\t%s\t\n", report.Status)
				if err := tw.Flush(); err != nil {
					return err
				}

				if report.Status == health.StatusUnhealthy {
					return ErrUnhealthy
				}
				return nil
			})
		},
	}
}

func newConfigCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Validate and print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return cmd
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
