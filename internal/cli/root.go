package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-field-mesh/internal/app"
	"github.com/mr1hm/go-field-mesh/internal/config"
	"github.com/mr1hm/go-field-mesh/internal/logging"
	"github.com/mr1hm/go-field-mesh/internal/models"
)

type runner struct {
	jsonOutput bool
	loadConfig func() (*config.Config, error)
	cfg        *config.Config
}

// NewRootCmd builds the fieldctl command tree. It reads the same environment
// as the server and works on the device store directly.
func NewRootCmd() *cobra.Command {
	return newRootCmd(config.Load)
}

func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	r := &runner{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:   "fieldctl",
		Short: "Field Mesh - offline field survey toolkit",
		Long: `fieldctl records disaster, agriculture and aid surveys on this device
and shows the HQ dashboard views: statistics, the rescue queue and exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}
			r.cfg = cfg
			slog.SetDefault(slog.New(logging.NewHandler(cmd.ErrOrStderr(), "warn", "text")))
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&r.jsonOutput, "json", false, "output in JSON format")

	root.AddCommand(
		r.loginCmd(),
		r.logoutCmd(),
		r.submitCmd(),
		r.statsCmd(),
		r.priorityCmd(),
		r.exportCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// withApp opens the device store for the duration of fn.
func (r *runner) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, r.cfg)
	if err != nil {
		return err
	}
	a.Start(ctx)
	defer a.Close()
	return fn(a)
}

// requireRole fails unless the device is logged in with role.
func requireRole(a *app.App, role models.Role) error {
	state := a.Session.State()
	if !state.IsAuthenticated {
		return fmt.Errorf("not logged in: run fieldctl login --pin <code>")
	}
	if state.UserRole != role {
		return fmt.Errorf("this command needs the %s role, logged in as %s", role, state.UserRole)
	}
	return nil
}

// outputJSON prints v as indented JSON.
func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
