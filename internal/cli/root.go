// Package cli implements the gamenetctl commands.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/gamenetauth/config"
)

// ErrDenied is returned by `can` when the permission is not granted, so the
// process exits non-zero.
var ErrDenied = errors.New("permission denied")

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	envFiles   []string
	now        func() time.Time
}

// Option customizes the root command, mostly for tests.
type Option func(*options)

// WithClock overrides the time source handed to the session controller.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewRootCommand returns the gamenetctl command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	root := &cobra.Command{
		Use:           "gamenetctl",
		Short:         "Sign in to the gamenet dashboard and inspect the session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringSliceVar(&o.envFiles, "env-file", nil, "dotenv files to load before the config (default .env)")

	root.AddCommand(
		newLoginCommand(o),
		newLogoutCommand(o),
		newStatusCommand(o),
		newRefreshCommand(o),
		newCanCommand(o),
		newDoctorCommand(o),
		newConfigCommand(o),
	)
	return root
}

// loadConfig reads dotenv files and the config file.
func (o *options) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(o.envFiles...); err != nil {
		return config.Config{}, err
	}
	return config.Load(o.configPath)
}

// withApp runs fn with a fully wired app and closes it afterwards.
func (o *options) withApp(ctx context.Context, fn func(context.Context, *app) error) (err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, o.now)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err = errors.Join(err, a.Close(shutdownCtx))
	}()
	return fn(ctx, a)
}
