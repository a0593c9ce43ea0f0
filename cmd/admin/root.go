package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the operator CLI. It is a thin client over the bot's admin
// API; nothing here touches the database directly.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("VPNBOT")
	v.AutomaticEnv()
	v.SetDefault("api_url", "http://localhost:8080")

	rootCmd := &cobra.Command{
		Use:           "vpnadmin",
		Short:         "Operator CLI for the VPN subscription bot",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String("api-url", v.GetString("api_url"), "admin API base URL")
	rootCmd.PersistentFlags().String("api-token", v.GetString("api_token"), "admin API bearer token")
	v.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	v.BindPFlag("api_token", rootCmd.PersistentFlags().Lookup("api-token"))

	client := newAPIClient(v)

	rootCmd.AddCommand(
		newUsersCmd(client),
		newServersCmd(client),
		newSweepCmd(client),
	)

	return rootCmd
}
