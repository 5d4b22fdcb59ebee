package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quanty/quanty-backend/internal/authclient"
	"github.com/quanty/quanty-backend/internal/interviews"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/quanty/quanty-backend/pkg/types"
)

func newInterviewsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interviews",
		Aliases: []string{"iv"},
		Short:   "Browse and manage expert interviews",
	}
	cmd.AddCommand(newInterviewsListCommand(opts))
	cmd.AddCommand(newInterviewShowCommand(opts))
	cmd.AddCommand(newInterviewCreateCommand(opts))
	cmd.AddCommand(newInterviewEditCommand(opts))
	cmd.AddCommand(newInterviewDeleteCommand(opts))
	return cmd
}

func newInterviewsListCommand(opts *RootOptions) *cobra.Command {
	params := authclient.ListParams{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List interviews, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := browsing(ctx, app); err != nil {
					return err
				}
				page, err := app.Client().ListInterviews(ctx, params)
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(page, func(w io.Writer) {
					if len(page.Items) == 0 {
						fmt.Fprintln(w, "No interviews found.")
						return
					}
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tTITLE\tEXPERT\tCATEGORY\tDURATION")
					for _, item := range page.Items {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Title, item.Expert, item.Category.Label(), item.Duration)
					}
					_ = tw.Flush()
					if page.NextCursor != "" {
						fmt.Fprintf(w, "\nMore: --cursor %s\n", page.NextCursor)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&params.Category, "category", "", "category id or \"all\"")
	cmd.Flags().StringVarP(&params.Query, "query", "q", "", "search titles, experts and companies")
	cmd.Flags().StringVar(&params.Expert, "expert", "", "only interviews with this expert")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&params.Cursor, "cursor", "", "continue from a previous page")
	return cmd
}

func newInterviewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one interview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := browsing(ctx, app); err != nil {
					return err
				}
				interview, err := app.Client().GetInterview(ctx, id)
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(interview, printInterview(interview))
			})
		},
	}
}

// interviewFields binds the editable interview attributes as flags.
type interviewFields struct {
	title       string
	expert      string
	role        string
	company     string
	category    string
	duration    string
	description string
	videoURL    string
	imageURL    string
}

func (f *interviewFields) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "interview title")
	cmd.Flags().StringVar(&f.expert, "expert", "", "expert name")
	cmd.Flags().StringVar(&f.role, "role", "", "expert role")
	cmd.Flags().StringVar(&f.company, "company", "", "expert company")
	cmd.Flags().StringVar(&f.category, "category", "", "category id")
	cmd.Flags().StringVar(&f.duration, "duration", "", "duration, e.g. 45 min")
	cmd.Flags().StringVar(&f.description, "description", "", "summary")
	cmd.Flags().StringVar(&f.videoURL, "video-url", "", "video link (empty clears on edit)")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "thumbnail link (empty clears on edit)")
}

func (f *interviewFields) createRequest() interviews.CreateInterviewRequest {
	req := interviews.CreateInterviewRequest{
		Title:       f.title,
		Expert:      f.expert,
		Role:        f.role,
		Company:     f.company,
		Category:    f.category,
		Duration:    f.duration,
		Description: f.description,
	}
	if f.videoURL != "" {
		req.VideoURL = &f.videoURL
	}
	if f.imageURL != "" {
		req.ImageURL = &f.imageURL
	}
	return req
}

// updateRequest includes only the flags the user set.
func (f *interviewFields) updateRequest(cmd *cobra.Command) (interviews.UpdateInterviewRequest, bool) {
	req := interviews.UpdateInterviewRequest{}
	changed := false
	strFields := []struct {
		flag  string
		value string
		dst   **string
	}{
		{"title", f.title, &req.Title},
		{"expert", f.expert, &req.Expert},
		{"role", f.role, &req.Role},
		{"company", f.company, &req.Company},
		{"category", f.category, &req.Category},
		{"duration", f.duration, &req.Duration},
		{"description", f.description, &req.Description},
	}
	for _, field := range strFields {
		if cmd.Flags().Changed(field.flag) {
			value := field.value
			*field.dst = &value
			changed = true
		}
	}
	for flag, value := range map[string]string{"video-url": f.videoURL, "image-url": f.imageURL} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		changed = true
		nullable := types.Null[string]()
		if strings.TrimSpace(value) != "" {
			nullable = types.Set(value)
		}
		if flag == "video-url" {
			req.VideoURL = nullable
		} else {
			req.ImageURL = nullable
		}
	}
	return req, changed
}

func newInterviewCreateCommand(opts *RootOptions) *cobra.Command {
	fields := &interviewFields{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an interview (admins only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := contentAdmin(ctx, app); err != nil {
					return err
				}
				interview, err := app.Client().CreateInterview(ctx, fields.createRequest())
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(interview, printInterview(interview))
			})
		},
	}
	fields.bind(cmd)
	for _, flag := range []string{"title", "expert", "role", "company", "category", "duration", "description"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func newInterviewEditCommand(opts *RootOptions) *cobra.Command {
	fields := &interviewFields{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an interview (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, changed := fields.updateRequest(cmd)
			if !changed {
				return pkgerrors.New(pkgerrors.CodeValidation, "nothing to change; pass at least one field flag")
			}
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := contentAdmin(ctx, app); err != nil {
					return err
				}
				interview, err := app.Client().UpdateInterview(ctx, id, req)
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(interview, printInterview(interview))
			})
		},
	}
	fields.bind(cmd)
	return cmd
}

func newInterviewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an interview (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := contentAdmin(ctx, app); err != nil {
					return err
				}
				if err := app.Client().DeleteInterview(ctx, id); err != nil {
					return err
				}
				return formatter(opts, cmd).Success(map[string]string{"deleted": id.String()}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted interview %s\n", id)
				})
			})
		},
	}
}

func printInterview(iv *interviews.InterviewDTO) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", iv.Title)
		fmt.Fprintf(w, "  %s, %s at %s\n", iv.Expert, iv.Role, iv.Company)
		fmt.Fprintf(w, "  %s · %s · %d likes\n", iv.Category.Label(), iv.Duration, iv.Likes)
		if iv.VideoURL != nil {
			fmt.Fprintf(w, "  Video: %s\n", *iv.VideoURL)
		}
		fmt.Fprintf(w, "\n%s\n\nID: %s\n", iv.Description, iv.ID)
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}

func browsing(ctx context.Context, app *App) error {
	snap, err := app.Snapshot(ctx)
	if err != nil {
		return err
	}
	return requireBrowsing(snap)
}

func contentAdmin(ctx context.Context, app *App) error {
	snap, err := app.Snapshot(ctx)
	if err != nil {
		return err
	}
	return requireContentAdmin(snap)
}
