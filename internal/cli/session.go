package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quanty/quanty-backend/internal/identity"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

// Whoami is the rendered identity snapshot.
type Whoami struct {
	State            string `json:"state"`
	DisplayName      string `json:"display_name"`
	UserID           string `json:"user_id,omitempty"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role"`
	IsGuest          bool   `json:"is_guest"`
	IsAuthenticated  bool   `json:"is_authenticated"`
	IsAdmin          bool   `json:"is_admin"`
	IsMasterAdmin    bool   `json:"is_master_admin"`
	CanManageContent bool   `json:"can_manage_content"`
}

func whoamiOf(snap identity.Snapshot) Whoami {
	view := Whoami{
		State:            stateName(snap.State),
		DisplayName:      snap.DisplayName(),
		Role:             snap.Role(),
		IsGuest:          snap.IsGuest(),
		IsAuthenticated:  snap.IsAuthenticated(),
		IsAdmin:          snap.IsAdmin(),
		IsMasterAdmin:    snap.IsMasterAdmin(),
		CanManageContent: snap.CanManageContent(),
	}
	if user, ok := snap.User(); ok {
		view.UserID = user.ID
		view.Email = user.Email
	}
	return view
}

func stateName(state identity.State) string {
	switch state.(type) {
	case identity.Authenticated:
		return "authenticated"
	case identity.Guest:
		return "guest"
	case identity.Anonymous:
		return "anonymous"
	default:
		return "loading"
	}
}

func printWhoami(view Whoami) func(io.Writer) {
	return func(w io.Writer) {
		switch view.State {
		case "authenticated":
			fmt.Fprintf(w, "Signed in as %s <%s> (%s)\n", view.DisplayName, view.Email, view.Role)
			if view.CanManageContent {
				fmt.Fprintln(w, "You can create, edit and delete interviews.")
			}
		case "guest":
			fmt.Fprintln(w, "Browsing as a guest. Run `quanty signin` to sign in.")
		default:
			fmt.Fprintln(w, "Not signed in. Run `quanty signin` or `quanty guest`.")
		}
	}
}

func renderIdentity(ctx context.Context, opts *RootOptions, cmd *cobra.Command, app *App) error {
	snap, err := app.Snapshot(ctx)
	if err != nil {
		return err
	}
	view := whoamiOf(snap)
	return formatter(opts, cmd).Success(view, printWhoami(view))
}

type credentials struct {
	email    string
	password string
	name     string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "account email")
	cmd.Flags().StringVar(&c.password, "password", "", "account password (read from stdin when omitted)")
}

func (c *credentials) resolve(cmd *cobra.Command) error {
	c.email = strings.TrimSpace(c.email)
	if c.email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "--email is required")
	}
	if c.password != "" {
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	c.password = strings.TrimRight(line, "\r\n")
	if c.password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	return nil
}

func newSignupCommand(opts *RootOptions) *cobra.Command {
	creds := &credentials{}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.resolve(cmd); err != nil {
				return err
			}
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if _, err := app.Client().SignUp(ctx, creds.email, creds.password, strings.TrimSpace(creds.name)); err != nil {
					return err
				}
				return renderIdentity(ctx, opts, cmd, app)
			})
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVar(&creds.name, "name", "", "full name")
	return cmd
}

func newSigninCommand(opts *RootOptions) *cobra.Command {
	creds := &credentials{}
	var google bool
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password or with Google",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !google {
				if err := creds.resolve(cmd); err != nil {
					return err
				}
			}
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				var err error
				if google {
					_, err = app.Client().SignInWithGoogle(ctx, func(authURL string) error {
						_, werr := fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in your browser to continue:\n  %s\n", authURL)
						return werr
					})
				} else {
					_, err = app.Client().SignInWithPassword(ctx, creds.email, creds.password)
				}
				if err != nil {
					return err
				}
				return renderIdentity(ctx, opts, cmd, app)
			})
		},
	}
	creds.bind(cmd)
	cmd.Flags().BoolVar(&google, "google", false, "sign in with Google in the browser")
	return cmd
}

func newSignoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out everywhere and clear local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if _, err := app.Snapshot(ctx); err != nil {
					return err
				}
				if err := app.Controller().SignOut(ctx); err != nil {
					return err
				}
				return renderIdentity(ctx, opts, cmd, app)
			})
		},
	}
}

func newGuestCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Browse as a guest without an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if _, err := app.Snapshot(ctx); err != nil {
					return err
				}
				if err := app.Controller().ContinueAsGuest(ctx); err != nil {
					if errors.Is(err, identity.ErrAlreadySignedIn) {
						return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "already signed in; run `quanty signout` first")
					}
					return err
				}
				return renderIdentity(ctx, opts, cmd, app)
			})
		},
	}
}

func newExitGuestCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exit-guest",
		Short: "Leave guest mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if _, err := app.Snapshot(ctx); err != nil {
					return err
				}
				if err := app.Controller().ExitGuestMode(ctx); err != nil {
					return err
				}
				return renderIdentity(ctx, opts, cmd, app)
			})
		},
	}
}

func newWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				return renderIdentity(ctx, opts, cmd, app)
			})
		},
	}
}
