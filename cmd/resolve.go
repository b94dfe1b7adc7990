package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/visitor-leads/internal/leads"
)

var (
	resolveOrg string
	resolveIP  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve an organization and IP to a company and contacts",
	Long:  "Runs lead resolution without geolocation or history. The same --org and --ip always print the same result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		r, err := loadRoster(cmd.Context())
		if err != nil {
			return err
		}

		result := leads.NewResolver(r).Resolve(resolveOrg, resolveIP)
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveOrg, "org", "", "organization name as reported by geolocation")
	resolveCmd.Flags().StringVar(&resolveIP, "ip", "", "visitor IP address (seed material)")
	rootCmd.AddCommand(resolveCmd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
