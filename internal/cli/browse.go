package cli

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/employee-directory/internal/core/directory"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/spf13/cobra"
)

type listOptions struct {
	search     string
	department string
	page       int
	pageSize   int
}

func (a *app) newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of employees, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.pageSize <= 0 {
				return errors.New("--page-size must be positive")
			}
			session, err := a.session(opts.pageSize)
			if err != nil {
				return err
			}
			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}

			view := session.View()
			view.SetSearch(opts.search)
			view.SetDepartment(opts.department)
			if opts.page != 1 && !view.Pager().GoTo(opts.page) {
				return fmt.Errorf("page %d is out of range (1..%d)", opts.page, view.Pager().TotalPages())
			}
			return RenderPage(cmd.OutOrStdout(), view.Page())
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "match name, email or job title (case-insensitive)")
	cmd.Flags().StringVarP(&opts.department, "department", "d", directory.AllDepartments, "exact department, or \""+directory.AllDepartments+"\"")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page number (1-based)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", directory.DefaultPageSize, "entries per page")
	return cmd
}

func (a *app) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session(directory.DefaultPageSize)
			if err != nil {
				return err
			}
			found, err := session.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					return notFoundError{id: args[0]}
				}
				return err
			}
			return RenderEmployee(cmd.OutOrStdout(), found)
		},
	}
}

func (a *app) newDepartmentsCmd() *cobra.Command {
	var suggested bool

	cmd := &cobra.Command{
		Use:   "departments",
		Short: "List the values accepted by --department",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if suggested {
				return RenderDepartments(cmd.OutOrStdout(), employee.SuggestedDepartments)
			}
			session, err := a.session(directory.DefaultPageSize)
			if err != nil {
				return err
			}
			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}
			return RenderDepartments(cmd.OutOrStdout(), session.View().DepartmentOptions())
		},
	}

	cmd.Flags().BoolVar(&suggested, "suggested", false, "print the suggested department list instead")
	return cmd
}
