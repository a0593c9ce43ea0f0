package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

type serverRow struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	VpnURL   string `json:"vpn_url"`
	Country  string `json:"country"`
	Protocol string `json:"protocol"`
}

func newServersCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage VPN servers",
	}
	cmd.AddCommand(
		newServersListCmd(client),
		newServersAddCmd(client),
		newServersRemoveCmd(client),
	)
	return cmd
}

func newServersListCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List VPN servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Servers []serverRow `json:"servers"`
			}
			if err := client.do(cmd.Context(), http.MethodGet, "/api/vpn-servers", nil, &resp); err != nil {
				return err
			}
			for _, s := range resp.Servers {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n",
					s.ID, s.Title, s.Country, s.Protocol, s.VpnURL)
			}
			return nil
		},
	}
}

func newServersAddCmd(client *apiClient) *cobra.Command {
	var title, vpnURL, token, country, protocol string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a VPN server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var created serverRow
			body := map[string]string{
				"title":        title,
				"vpn_url":      vpnURL,
				"bearer_token": token,
				"country":      country,
				"protocol":     protocol,
			}
			if err := client.do(cmd.Context(), http.MethodPost, "/api/vpn-servers", body, &created); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created server %d: %s\n", created.ID, created.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "server display name")
	cmd.Flags().StringVar(&vpnURL, "url", "", "server API base URL")
	cmd.Flags().StringVar(&token, "token", "", "server API bearer token")
	cmd.Flags().StringVar(&country, "country", "", "ISO country code")
	cmd.Flags().StringVar(&protocol, "protocol", "vless", "vpn protocol")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("url")
	return cmd
}

func newServersRemoveCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <server-id>",
		Short: "Delete a VPN server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.do(cmd.Context(), http.MethodDelete, "/api/vpn-servers/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed server %s\n", args[0])
			return nil
		},
	}
}
