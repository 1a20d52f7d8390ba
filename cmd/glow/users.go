package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"glow/internal/auth"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every account with its role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			users, err := store.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			data := pterm.TableData{{"Email", "Name", "Role", "Last login"}}
			for _, u := range users {
				data = append(data, []string{u.Email, u.Name, roleColor(u.Role), lastLogin(u.LastLogin)})
			}
			pterm.Println()
			if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
				return err
			}
			pterm.Info.Printf("%d accounts\n", len(users))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "role <email> <admin|editor|user>",
		Short: "Change the role of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := auth.ParseRole(args[1])
			if err != nil {
				return err
			}
			store := openStore()
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			u, err := store.FindUserByEmail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if _, err := store.SetUserRole(ctx, u.UID, role); err != nil {
				return err
			}
			pterm.Success.Printf("%s: %s -> %s\n", u.Email, u.Role, role)
			return nil
		},
	})
	return cmd
}

func roleColor(r auth.Role) string {
	switch r {
	case auth.RoleAdmin:
		return color.New(color.FgHiRed, color.Bold).Sprint(r.Badge())
	case auth.RoleEditor:
		return color.New(color.FgHiMagenta).Sprint(r.Badge())
	}
	return color.New(color.FgWhite).Sprint(r.Badge())
}

func lastLogin(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
