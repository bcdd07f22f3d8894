package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newAdminCommand(ctx *commandContext) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureServices(cmd.Context()); err != nil {
				return err
			}
			// The backend enforces the role; this check just fails fast.
			principal, ok := ctx.session.Principal()
			if !ok {
				return errors.New("login required")
			}
			if !principal.IsAdmin() {
				return errors.New("admin role required")
			}
			return nil
		},
	}

	adminCmd.AddCommand(newAdminUsersCommand(ctx))
	adminCmd.AddCommand(newAdminDeleteUserCommand(ctx))
	adminCmd.AddCommand(newAdminLogsCommand(ctx))
	adminCmd.AddCommand(newAdminAnalyticsCommand(ctx))

	return adminCmd
}

func newAdminUsersCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := ctx.gateway.AdminUsers(cmd.Context())
			if err != nil {
				return userError(err)
			}
			if asJSON {
				return writeJSON(cmd, users)
			}

			rows := make([][]string, 0, len(users))
			for _, user := range users {
				created := ""
				if !user.CreatedAt.IsZero() {
					created = user.CreatedAt.Format("2006-01-02")
				}
				rows = append(rows, []string{user.ID, user.Name, user.Email, user.Role, created})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Email", "Role", "Created"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newAdminDeleteUserCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete-user <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("pass --yes to confirm deleting the account")
			}
			if err := ctx.gateway.AdminDeleteUser(cmd.Context(), args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion")
	return cmd
}

func newAdminLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var action string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := ctx.gateway.AdminLogs(cmd.Context(), limit, action)
			if err != nil {
				return userError(err)
			}
			if asJSON {
				return writeJSON(cmd, logs)
			}

			rows := make([][]string, 0, len(logs))
			for _, entry := range logs {
				details := ""
				if len(entry.Details) > 0 {
					details = truncate(fmt.Sprint(entry.Details), 60)
				}
				rows = append(rows, []string{
					entry.Timestamp.Format(time.RFC3339),
					entry.Action,
					entry.UserID,
					details,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Time", "Action", "User", "Details"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newAdminAnalyticsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show aggregate usage metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics, err := ctx.gateway.AdminAnalytics(cmd.Context())
			if err != nil {
				return userError(err)
			}
			if asJSON {
				return writeJSON(cmd, analytics)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Users: %d\n", analytics.TotalUsers)
			fmt.Fprintf(out, "Transcriptions: %d\n", analytics.TotalTranscriptions)
			fmt.Fprintf(out, "Logins: %d\n", analytics.TotalLogins)

			if len(analytics.TopUsers) > 0 {
				rows := make([][]string, 0, len(analytics.TopUsers))
				for _, user := range analytics.TopUsers {
					rows = append(rows, []string{user.UserID, strconv.FormatInt(user.Count, 10)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"User", "Transcriptions"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
