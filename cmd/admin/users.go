package main

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

type userRow struct {
	ID               int64      `json:"id"`
	TelegramID       int64      `json:"telegram_id"`
	TelegramUsername string     `json:"telegram_username"`
	IsActive         bool       `json:"is_active"`
	ExpiresAt        *time.Time `json:"expires_at"`
	Balance          int64      `json:"balance"`
}

func newUsersCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage bot users",
	}
	cmd.AddCommand(
		newUsersListCmd(client),
		newUsersUpdateCmd(client),
	)
	return cmd
}

func newUsersListCmd(client *apiClient) *cobra.Command {
	var limit, offset int64
	var username string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			q.Set("limit", fmt.Sprint(limit))
			q.Set("offset", fmt.Sprint(offset))
			if username != "" {
				q.Set("username", username)
			}

			var resp struct {
				Users []userRow `json:"users"`
				Total int64     `json:"total"`
			}
			if err := client.do(cmd.Context(), http.MethodGet, "/api/users?"+q.Encode(), nil, &resp); err != nil {
				return err
			}

			for _, u := range resp.Users {
				expires := "-"
				if u.ExpiresAt != nil {
					expires = u.ExpiresAt.Format("2006-01-02")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t@%s\tactive=%v\texpires=%s\tbalance=%d\n",
					u.ID, u.TelegramID, u.TelegramUsername, u.IsActive, expires, u.Balance)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", resp.Total)
			return nil
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 50, "page size")
	cmd.Flags().Int64Var(&offset, "offset", 0, "page offset")
	cmd.Flags().StringVar(&username, "username", "", "filter by username substring")
	return cmd
}

func newUsersUpdateCmd(client *apiClient) *cobra.Command {
	var active bool
	var expires string
	var balance int64

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Patch a user's subscription state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]any{}
			if cmd.Flags().Changed("active") {
				patch["is_active"] = active
			}
			if cmd.Flags().Changed("expires") {
				t, err := time.Parse("2006-01-02", expires)
				if err != nil {
					return fmt.Errorf("parse --expires: %w", err)
				}
				patch["expires_at"] = t
			}
			if cmd.Flags().Changed("balance") {
				patch["balance"] = balance
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update, pass --active, --expires or --balance")
			}

			var updated userRow
			if err := client.do(cmd.Context(), http.MethodPatch, "/api/users/"+args[0], patch, &updated); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "updated user %d: active=%v balance=%d\n",
				updated.ID, updated.IsActive, updated.Balance)
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "set is_active")
	cmd.Flags().StringVar(&expires, "expires", "", "set expiry date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&balance, "balance", 0, "set balance")
	return cmd
}
