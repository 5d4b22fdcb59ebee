package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quanty/quanty-backend/pkg/enums"
)

func newCategoriesCommand(opts *RootOptions) *cobra.Command {
	var difficulty string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List interview categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := browsing(ctx, app); err != nil {
					return err
				}
				categories, err := app.Client().Categories(ctx, difficulty)
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(categories, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tLEVEL\tINTERVIEWS\tEXPERTS")
					for _, c := range categories {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", c.ID, c.Name, c.Difficulty, c.InterviewCount, c.ExpertCount)
					}
					_ = tw.Flush()
				})
			})
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", "all", "beginner, intermediate, advanced or all")
	return cmd
}

func newExpertsCommand(opts *RootOptions) *cobra.Command {
	var expertise string
	cmd := &cobra.Command{
		Use:   "experts",
		Short: "List featured experts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := browsing(ctx, app); err != nil {
					return err
				}
				experts, err := app.Client().Experts(ctx, expertise)
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(experts, func(w io.Writer) {
					if len(experts) == 0 {
						fmt.Fprintln(w, "No experts found.")
						return
					}
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tTITLE\tCOMPANY\tEXPERTISE\tINTERVIEWS")
					for _, e := range experts {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.Name, e.Title, e.Company, expertiseLabels(e.Expertise), e.InterviewsCount)
					}
					_ = tw.Flush()
				})
			})
		},
	}
	cmd.Flags().StringVar(&expertise, "expertise", "", "category id to filter by")
	return cmd
}

func newQuestionsCommand(opts *RootOptions) *cobra.Command {
	var category, difficulty string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List practice interview questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, app *App) error {
				if err := browsing(ctx, app); err != nil {
					return err
				}
				list, err := app.Client().Questions(ctx, category, difficulty)
				if err != nil {
					return err
				}
				return formatter(opts, cmd).Success(list, func(w io.Writer) {
					if len(list) == 0 {
						fmt.Fprintln(w, "No questions match these filters.")
						return
					}
					for _, q := range list {
						fmt.Fprintf(w, "#%d [%s | %s | %d min]\n  %s\n  topics: %s\n", q.ID, q.Category, q.Difficulty, q.EstimatedMinutes, q.Question, strings.Join(q.Topics, ", "))
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "all", "question category, for example \"Deep Learning\"")
	cmd.Flags().StringVar(&difficulty, "difficulty", "all", "beginner, intermediate, advanced or all")
	return cmd
}

func expertiseLabels(categories []enums.Category) string {
	labels := make([]string, 0, len(categories))
	for _, c := range categories {
		labels = append(labels, c.Label())
	}
	return strings.Join(labels, ", ")
}
