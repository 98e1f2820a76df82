package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/employee-directory/internal/adapters/http/dto"
	"github.com/ogurasousui/employee-directory/internal/core/directory"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type recordFlags struct {
	name       string
	email      string
	phone      string
	jobTitle   string
	department string
	hireDate   string
	salary     float64
	projects   []string
}

func (f *recordFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "full name")
	flags.StringVar(&f.email, "email", "", "email address")
	flags.StringVar(&f.phone, "phone", "", "phone number (at least 10 digits)")
	flags.StringVar(&f.jobTitle, "job-title", "", "job title")
	flags.StringVar(&f.department, "department", "", "department (free text; see `departments --suggested`)")
	flags.StringVar(&f.hireDate, "hire-date", "", "hire date, YYYY-MM-DD or RFC 3339 (defaults to today on add)")
	flags.Float64Var(&f.salary, "salary", 0, "annual salary")
	flags.StringSliceVar(&f.projects, "project", nil, "project name (repeatable or comma separated)")
}

func (f *recordFlags) parseHireDate() (*time.Time, error) {
	if strings.TrimSpace(f.hireDate) == "" {
		return nil, nil
	}
	t, err := dto.ParseHireDate(f.hireDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *app) newAddCmd() *cobra.Command {
	var f recordFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hired, err := f.parseHireDate()
			if err != nil {
				return err
			}
			in := employee.CreateEmployeeInput{
				Name:       f.name,
				Email:      f.email,
				Phone:      f.phone,
				JobTitle:   f.jobTitle,
				Department: f.department,
				HireDate:   hired,
				Projects:   f.projects,
			}
			if cmd.Flags().Changed("salary") {
				salary := f.salary
				in.Salary = &salary
			}

			session, err := a.session(directory.DefaultPageSize)
			if err != nil {
				return err
			}
			created, err := session.Create(cmd.Context(), in)
			if _, err := warnStaleList(cmd, err); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Created employee %s\n", created.ID); err != nil {
				return err
			}
			return RenderEmployee(cmd.OutOrStdout(), created)
		},
	}

	f.bind(cmd.Flags())
	for _, name := range []string{"name", "email", "phone", "job-title"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) newUpdateCmd() *cobra.Command {
	var (
		f             recordFlags
		clearProjects bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change selected fields of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.updateInput(cmd.Flags(), args[0], clearProjects)
			if err != nil {
				return err
			}

			session, err := a.session(directory.DefaultPageSize)
			if err != nil {
				return err
			}
			updated, err := session.Update(cmd.Context(), in)
			if _, err := warnStaleList(cmd, err); err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					return notFoundError{id: args[0]}
				}
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Updated employee %s\n", updated.ID); err != nil {
				return err
			}
			return RenderEmployee(cmd.OutOrStdout(), updated)
		},
	}

	f.bind(cmd.Flags())
	cmd.Flags().BoolVar(&clearProjects, "clear-projects", false, "remove all projects")
	cmd.MarkFlagsMutuallyExclusive("project", "clear-projects")
	return cmd
}

// updateInput は指定されたフラグだけを更新対象にします。
func (f *recordFlags) updateInput(flags *pflag.FlagSet, id string, clearProjects bool) (employee.UpdateEmployeeInput, error) {
	in := employee.UpdateEmployeeInput{ID: id}
	changed := 0
	text := map[string]struct {
		value string
		dst   **string
	}{
		"name":       {f.name, &in.Name},
		"email":      {f.email, &in.Email},
		"phone":      {f.phone, &in.Phone},
		"job-title":  {f.jobTitle, &in.JobTitle},
		"department": {f.department, &in.Department},
	}
	for name, field := range text {
		if flags.Changed(name) {
			v := field.value
			*field.dst = &v
			changed++
		}
	}
	if flags.Changed("hire-date") {
		hired, err := f.parseHireDate()
		if err != nil {
			return in, err
		}
		in.HireDate = hired
		changed++
	}
	if flags.Changed("salary") {
		salary := f.salary
		in.Salary = &salary
		changed++
	}
	switch {
	case clearProjects:
		in.Projects, in.ProjectsSet = []string{}, true
		changed++
	case flags.Changed("project"):
		in.Projects, in.ProjectsSet = f.projects, true
		changed++
	}

	if changed == 0 {
		return in, errors.New("nothing to update: pass at least one field flag")
	}
	return in, nil
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session(directory.DefaultPageSize)
			if err != nil {
				return err
			}
			stale, err := warnStaleList(cmd, session.Delete(cmd.Context(), args[0]))
			if err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					return notFoundError{id: args[0]}
				}
				return err
			}
			if stale {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted employee %s\n", args[0])
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted employee %s (%d remaining)\n", args[0], len(session.Snapshot().Records))
			return err
		},
	}
}

// warnStaleList は書き込み後の取り直しだけが失敗した場合に警告を出し、書き込みを成功として扱います。
// それ以外のエラーはそのまま返します。
func warnStaleList(cmd *cobra.Command, err error) (bool, error) {
	if err == nil || !errors.Is(err, directory.ErrRefreshAfterWrite) {
		return false, err
	}
	_, werr := fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	return true, werr
}
