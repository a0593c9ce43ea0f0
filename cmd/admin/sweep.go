package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newSweepCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Deactivate users with expired subscriptions now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Deactivated int `json:"deactivated"`
				Expired     int `json:"expired"`
			}
			if err := client.do(cmd.Context(), http.MethodPost, "/api/sweep", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated %d of %d expired users\n", resp.Deactivated, resp.Expired)
			return nil
		},
	}
}
