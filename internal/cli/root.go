// Package cli is the quanty command line: browse the interview directory,
// manage the session and administer content.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quanty/quanty-backend/internal/identity"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/logger"
)

// RootOptions holds global flags and the shared runtime inputs.
type RootOptions struct {
	Format string
	Config *config.ClientConfig
	Logger *logger.Logger
}

// NewRootCommand builds the quanty command tree.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quanty",
		Short:         "Quanty - expert interviews in quant and ML",
		Long:          "Browse recorded expert interviews, manage your session and curate the directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")

	cmd.AddCommand(newSignupCommand(opts))
	cmd.AddCommand(newSigninCommand(opts))
	cmd.AddCommand(newSignoutCommand(opts))
	cmd.AddCommand(newGuestCommand(opts))
	cmd.AddCommand(newExitGuestCommand(opts))
	cmd.AddCommand(newWhoamiCommand(opts))
	cmd.AddCommand(newInterviewsCommand(opts))
	cmd.AddCommand(newCategoriesCommand(opts))
	cmd.AddCommand(newExpertsCommand(opts))
	cmd.AddCommand(newQuestionsCommand(opts))
	cmd.AddCommand(newAdminCommand(opts))
	return cmd
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// withApp opens the runtime for one command and closes it afterwards.
func withApp(opts *RootOptions, cmd *cobra.Command, run func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := OpenApp(ctx, opts.Config, opts.Logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			opts.Logger.Error(ctx, "close local state", cerr)
		}
	}()
	return run(ctx, app)
}

// requireBrowsing gates directory pages on a user or guest.
func requireBrowsing(snap identity.Snapshot) error {
	if snap.IsAuthenticated() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in with `quanty signin` or browse as a guest with `quanty guest`")
}

func requireContentAdmin(snap identity.Snapshot) error {
	if _, ok := snap.User(); !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in with `quanty signin` first")
	}
	if !snap.CanManageContent() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return nil
}

func requireMasterAdmin(snap identity.Snapshot) error {
	if _, ok := snap.User(); !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in with `quanty signin` first")
	}
	if !snap.IsMasterAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "master admin access required")
	}
	return nil
}
