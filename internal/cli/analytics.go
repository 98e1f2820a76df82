package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ogurasousui/employee-directory/internal/core/directory"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/spf13/cobra"
)

type analyticsOptions struct {
	department string
	asOf       string
	months     int
}

// dataset は全件と、それを部署で絞り込んだ集計対象を返します。
func (a *app) dataset(ctx context.Context, department string) (all, scoped []employee.Employee, err error) {
	session, err := a.session(directory.DefaultPageSize)
	if err != nil {
		return nil, nil, err
	}
	if err := session.Refresh(ctx); err != nil {
		return nil, nil, err
	}
	all = session.Snapshot().Records
	return all, directory.Filter(all, "", department), nil
}

func (a *app) newStatsCmd() *cobra.Command {
	var opts analyticsOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show summary cards and the department distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf, err := a.asOf(opts.asOf)
			if err != nil {
				return err
			}
			all, records, err := a.dataset(cmd.Context(), opts.department)
			if err != nil {
				return err
			}

			// 部署数のカードは部署セレクタと同じく全件から数えます。
			summary := directory.Aggregate(records, asOf)
			summary.Departments = len(directory.DepartmentDistribution(all))

			out := cmd.OutOrStdout()
			if err := RenderSummary(out, summary, directory.RecentHires(records, asOf)); err != nil {
				return err
			}
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
			return RenderDistribution(out, directory.DepartmentDistribution(records))
		},
	}

	cmd.Flags().StringVarP(&opts.department, "department", "d", directory.AllDepartments, "restrict to one department")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "evaluate as of this date, YYYY-MM-DD (default now)")
	return cmd
}

func (a *app) newTrendCmd() *cobra.Command {
	var opts analyticsOptions

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show hires per month for the most recent months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.months <= 0 {
				return fmt.Errorf("--months must be positive, got %d", opts.months)
			}
			asOf, err := a.asOf(opts.asOf)
			if err != nil {
				return err
			}
			_, records, err := a.dataset(cmd.Context(), opts.department)
			if err != nil {
				return err
			}
			return RenderTrend(cmd.OutOrStdout(), directory.HiringTrend(records, asOf, opts.months))
		},
	}

	cmd.Flags().StringVarP(&opts.department, "department", "d", directory.AllDepartments, "restrict to one department")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "evaluate as of this date, YYYY-MM-DD (default now)")
	cmd.Flags().IntVarP(&opts.months, "months", "m", directory.DefaultTrendMonths, "number of months, including the current one")
	return cmd
}
