package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-field-mesh/internal/app"
	"github.com/mr1hm/go-field-mesh/internal/auth"
)

func (r *runner) loginCmd() *cobra.Command {
	var pin, name, officerRole string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log this device in with an access PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(a *app.App) error {
				var info *auth.OfficerInfo
				if name != "" {
					info = &auth.OfficerInfo{Name: name, Role: officerRole}
				}

				role, err := a.Session.Login(cmd.Context(), pin, info)
				if errors.Is(err, auth.ErrInvalidPIN) {
					return fmt.Errorf("access denied: invalid PIN")
				}
				if err != nil {
					return err
				}

				officer, _ := a.Session.Officer()
				token, err := a.Tokens.Issue(role, officer)
				if err != nil {
					return err
				}

				if r.jsonOutput {
					return outputJSON(cmd, map[string]any{"role": role, "token": token, "officer": officer})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", role)
				if officer.Name != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  Officer: %s (%s)\n", officer.Name, officer.DeviceID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  Token: %s\n", token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pin, "pin", "", "access PIN")
	cmd.Flags().StringVar(&name, "name", "", "officer name to register on first login")
	cmd.Flags().StringVar(&officerRole, "officer-role", "", "officer job title")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}

func (r *runner) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the device role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(a *app.App) error {
				a.Session.Logout(cmd.Context())
				if r.jsonOutput {
					return outputJSON(cmd, a.Session.State())
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}
