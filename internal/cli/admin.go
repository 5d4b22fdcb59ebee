package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quanty/quanty-backend/pkg/enums"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

func newAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Master admin tools",
	}
	cmd.AddCommand(newSetRoleCommand(opts))
	return cmd
}

func newSetRoleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <profile-id> <user|admin>",
		Short: "Grant or revoke content admin rights",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			role, err := enums.ParseProfileRole(args[1])
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "role must be user or admin")
			}
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				snap, err := app.Snapshot(ctx)
				if err != nil {
					return err
				}
				if err := requireMasterAdmin(snap); err != nil {
					return err
				}
				profile, err := app.Client().SetRole(ctx, id, role.String())
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(profile, func(w io.Writer) {
					fmt.Fprintf(w, "Profile %s is now %s\n", profile.ID, role)
				})
			})
		},
	}
}
