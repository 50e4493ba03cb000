package main

import (
	"fmt"
	"strings"

	"github.com/ogurasousui/orgchart/internal/adapters/view"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/spf13/cobra"
)

func newListCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show employees as an indented table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := current()
			table := view.NewAdminTable(s.svc, s.bus)
			defer table.Unmount()
			if err := table.Mount(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}

func newChartCmd(current func() *session) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the organization chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := current()
			chart := view.NewInfographic(s.svc, s.bus)
			chart.ShowIDs(showIDs)
			defer chart.Unmount()
			// 読み込み失敗はチャート側のエラー表示で伝えます。
			_ = chart.Mount(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), chart.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Print employee ids next to each card")
	return cmd
}

func newAddCmd(current func() *session) *cobra.Command {
	var in orgchart.AddEmployeeInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee at the top level or under --parent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := current().svc.AddEmployee(cmd.Context(), in)
			if err != nil {
				return err
			}
			if m.Employee == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "parent %s not found, nothing added\n", in.ParentID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", m.Employee.ID, orgchart.DisplayName(*m.Employee))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ID, "id", "", "Employee id (generated when empty)")
	cmd.Flags().StringVar(&in.ParentID, "parent", "", "Parent employee id")
	cmd.Flags().StringVar(&in.Name, "name", "", "Name")
	cmd.Flags().StringVar(&in.Role, "role", "", "Role")
	cmd.Flags().StringVar(&in.Image, "image", "", "Image URL")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEditCmd(current func() *session) *cobra.Command {
	var name, role, image string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Update name, role or image of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := orgchart.EmployeePatch{ID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("role") {
				patch.Role = &role
			}
			if flags.Changed("image") {
				patch.Image = &image
			}

			m, err := current().svc.UpdateEmployee(cmd.Context(), patch)
			if err != nil {
				return err
			}
			if m.Employee == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "employee %s not found\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", m.Employee.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&role, "role", "", "New role")
	cmd.Flags().StringVar(&image, "image", "", "New image URL")
	return cmd
}

func newRmCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"bulk-rm"},
		Short:   "Remove employees together with their subordinates",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := current().svc

			var (
				m   *orgchart.Mutation
				err error
			)
			if len(args) == 1 {
				m, err = svc.DeleteEmployee(cmd.Context(), args[0])
			} else {
				m, err = svc.DeleteEmployees(cmd.Context(), args)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d employee(s): %s\n", m.Removed, strings.Join(args, ", "))
			return nil
		},
	}
}
