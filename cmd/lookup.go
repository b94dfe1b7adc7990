package main

import (
	"github.com/spf13/cobra"
)

var lookupIP string

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Geolocate a visitor IP and resolve its leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("lookup"); err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := env.Pipeline.Process(ctx, lookupIP)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), lead)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupIP, "ip", "", "visitor IP address")
	_ = lookupCmd.MarkFlagRequired("ip")
	rootCmd.AddCommand(lookupCmd)
}
