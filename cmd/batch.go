package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visitor-leads/internal/export"
	"github.com/sells-group/visitor-leads/internal/fetcher"
	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/pipeline"
	"github.com/sells-group/visitor-leads/pkg/notion"
	"github.com/sells-group/visitor-leads/pkg/salesforce"
)

// Output formats and push targets accepted by batch.
var (
	batchFormats = []string{"json", "csv", "xlsx", "geojson"}
	pushTargets  = []string{"salesforce", "notion"}
)

var (
	batchCSV         string
	batchOffline     bool
	batchLimit       int
	batchConcurrency int
	batchOutput      string
	batchFormat      string
	batchPush        []string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a CSV of visitor IPs",
	Long: "Reads visitors from a CSV with an ip_address column, resolves each one, and writes the leads. " +
		"With --offline the visitor_type or organization column is used instead of geolocation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateBatchFlags(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, !batchOffline)
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := readVisitorCSV(ctx, batchCSV, batchLimit)
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentVisitors
		}

		res, err := env.Pipeline.Batch(ctx, rows, pipeline.BatchOptions{
			Concurrency: concurrency,
			Offline:     batchOffline,
		})
		if err != nil {
			return err
		}

		if err := writeBatchOutput(cmd.OutOrStdout(), res); err != nil {
			return err
		}

		return pushLeads(ctx, res.Leads)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "visitor CSV path or URL")
	batchCmd.Flags().BoolVar(&batchOffline, "offline", false, "skip geolocation and use the CSV organization column")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of visitors to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "visitors processed in parallel (default from config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output file (default stdout)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "output format: json, csv, xlsx, geojson")
	batchCmd.Flags().StringSliceVar(&batchPush, "push", nil, "push contacts to: salesforce, notion")
	_ = batchCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(batchCmd)
}

func validateBatchFlags() error {
	if !slices.Contains(batchFormats, batchFormat) {
		return eris.Errorf("batch: unknown format %q (want one of %s)", batchFormat, strings.Join(batchFormats, ", "))
	}
	if batchFormat == "xlsx" && batchOutput == "" {
		return eris.New("batch: --format xlsx requires --output")
	}

	mode := "batch"
	if batchOffline {
		mode = "resolve"
	}
	if err := cfg.Validate(mode); err != nil {
		return err
	}
	for _, target := range batchPush {
		if !slices.Contains(pushTargets, target) {
			return eris.Errorf("batch: unknown push target %q", target)
		}
		if err := cfg.Validate(target); err != nil {
			return err
		}
	}
	return nil
}

func readVisitorCSV(ctx context.Context, source string, limit int) ([]pipeline.VisitorRow, error) {
	dl := fetcher.New(fetcher.Options{
		UserAgent:     userAgent,
		Timeout:       seconds(cfg.Roster.TimeoutSecs),
		RatePerSecond: cfg.Roster.RatePerSecond,
		MaxRetries:    cfg.Roster.MaxRetries,
	})
	body, err := dl.Download(ctx, source)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", source)
	}
	defer body.Close() //nolint:errcheck

	return pipeline.ReadVisitors(ctx, body, limit)
}

// writeBatchOutput writes res in batchFormat to batchOutput, or to stdout.
func writeBatchOutput(stdout io.Writer, res *pipeline.BatchResult) error {
	w := stdout
	if batchOutput != "" {
		f, err := os.Create(batchOutput)
		if err != nil {
			return eris.Wrapf(err, "batch: create %s", batchOutput)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	var err error
	switch batchFormat {
	case "csv":
		err = export.WriteContactsCSV(w, res.Leads, export.ContactFilter{})
	case "xlsx":
		err = export.WriteXLSX(w, res.Leads, export.ContactFilter{})
	case "geojson":
		err = export.WriteGeoJSON(w, res.Leads)
	default:
		err = printJSON(w, res)
	}
	if err != nil {
		return err
	}

	if batchOutput != "" {
		zap.L().Info("batch output written",
			zap.String("path", batchOutput),
			zap.String("format", batchFormat),
			zap.Int("leads", len(res.Leads)),
		)
	}
	return nil
}

func pushLeads(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	for _, target := range batchPush {
		switch target {
		case "salesforce":
			sf, err := salesforce.Connect(salesforce.JWTConfig{
				LoginURL: cfg.Salesforce.LoginURL,
				Username: cfg.Salesforce.Username,
				ClientID: cfg.Salesforce.ClientID,
				KeyPath:  cfg.Salesforce.KeyPath,
			}, salesforce.WithRateLimit(cfg.Salesforce.RatePerSecond))
			if err != nil {
				return err
			}
			res, err := salesforce.PushLeads(ctx, sf, leads, salesforce.PushOptions{
				LeadSource:   cfg.Salesforce.LeadSource,
				SkipExisting: true,
			})
			if err != nil {
				return eris.Wrap(err, "batch: push salesforce")
			}
			if res.Failed > 0 {
				zap.L().Warn("salesforce push had failures", zap.Int("failed", res.Failed), zap.Strings("errors", res.Errors))
			}
		case "notion":
			nc := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RatePerSecond))
			if _, err := notion.ExportContacts(ctx, nc, cfg.Notion.LeadDB, leads, notion.ExportOptions{SkipExisting: true}); err != nil {
				return eris.Wrap(err, "batch: push notion")
			}
		}
	}
	return nil
}
