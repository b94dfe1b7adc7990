package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/visitor-leads/internal/roster"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Inspect the reference roster",
	Long:  "Commands for validating and listing the companies, aliases, and contact pools used for lead resolution.",
}

// -- roster validate --

var rosterValidateSource string

var rosterValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate a roster source",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if rosterValidateSource != "" {
			cfg.Roster.Source = rosterValidateSource
		}
		r, err := loadRoster(cmd.Context())
		if err != nil {
			return err
		}
		contacts := 0
		for _, c := range r.Companies {
			contacts += len(c.Contacts)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "roster ok: %d companies, %d policies, %d contacts\n",
			len(r.Companies), len(r.Policies), contacts)
		return err
	},
}

// -- roster show --

var rosterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List roster companies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := loadRoster(cmd.Context())
		if err != nil {
			return err
		}
		return formatRoster(cmd.OutOrStdout(), r)
	},
}

func init() {
	rosterValidateCmd.Flags().StringVar(&rosterValidateSource, "source", "", "roster source to validate (default from config)")
	rosterCmd.AddCommand(rosterValidateCmd, rosterShowCmd)
	rootCmd.AddCommand(rosterCmd)
}

func formatRoster(w io.Writer, r *roster.Roster) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tCATEGORY\tINDUSTRY\tCONTACTS\tALIASES")
	for _, c := range r.Companies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			c.Key, c.Category, r.Policy(c.Category).Industry, len(c.Contacts), strings.Join(c.Aliases, ", "))
	}
	return tw.Flush()
}
