package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"asset-reconciler/core/config"
	"asset-reconciler/core/database"
	"asset-reconciler/core/logger"
	"asset-reconciler/core/reconcile"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/sheet"
	"asset-reconciler/core/storage"
	"asset-reconciler/feature/compare"
	"asset-reconciler/feature/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Flags for the compare command
	platformPath   string
	referencePath  string
	rulesPath      string
	platformSheet  string
	referenceSheet string
	platformSkip   int
	referenceSkip  int
	headerRows     int
	reportPath     string
	jsonPath       string
	remoteCompare  bool
	saveRemote     bool
	stagingCompare bool
	compareTimeout time.Duration
)

// compareCmd compares a platform table with an ERP table.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a platform table with an ERP table",
	Long: `Compare a platform asset table with an ERP table under a rule book.

Reports keys missing from the ERP table, keys only found in the ERP table and
field differences of matched keys. Inputs are xlsx or csv files; rule books are
xlsx workbooks or yaml documents.

Examples:
  # Local files, write the workbook report
  compare --platform 平台.xlsx --reference erp.xlsx --rules 比对规则.xlsx --out 结果.xlsx

  # ERP export with a three-line title and a two-row header
  compare --platform p.xlsx --reference erp.xlsx --rules r.xlsx --reference-skip 3 --header-rows 2

  # Objects in the configured bucket, saving the report next to them
  compare --remote --platform inputs/p.xlsx --reference inputs/erp.csv --save`,
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&platformPath, "platform", "", "Platform table (path, or object name with --remote)")
	f.StringVar(&referencePath, "reference", "", "ERP table (path, or object name with --remote)")
	f.StringVar(&rulesPath, "rules", "", "Rule book (defaults to compare.rules_object with --remote)")
	f.StringVar(&platformSheet, "platform-sheet", "", "Platform worksheet (default: first sheet)")
	f.StringVar(&referenceSheet, "reference-sheet", "", "ERP worksheet (default: first sheet)")
	f.IntVar(&platformSkip, "platform-skip", -1, "Rows to skip before the platform header (default: config)")
	f.IntVar(&referenceSkip, "reference-skip", -1, "Rows to skip before the ERP header (default: config)")
	f.IntVar(&headerRows, "header-rows", 0, "Header rows, 1 or 2 (default: config)")
	f.StringVar(&reportPath, "out", "", "Write the xlsx report to this path")
	f.StringVar(&jsonPath, "json", "", "Write the JSON report to this path ('-' for stdout)")
	f.BoolVar(&remoteCompare, "remote", false, "Read inputs and rules from the storage bucket")
	f.BoolVar(&saveRemote, "save", false, "With --remote, upload the xlsx report to the bucket")
	f.BoolVar(&stagingCompare, "staging", false, "Stage rows in the configured database during the run")
	f.DurationVar(&compareTimeout, "timeout", 10*time.Minute, "Abort loading after this duration")
	_ = compareCmd.MarkFlagRequired("platform")
	_ = compareCmd.MarkFlagRequired("reference")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), compareTimeout)
	defer cancel()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCompareFlags(&cfg.Compare)

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	var out *compare.Outcome
	if remoteCompare {
		out, err = compareRemote(ctx, cfg, l)
	} else {
		out, err = compareLocal(ctx, cfg, l)
	}
	if err != nil {
		return err
	}

	printCompareReport(l, out.Result)
	return writeReports(out, cfg.Compare.Report, l)
}

func applyCompareFlags(c *compare.Config) {
	if platformSkip >= 0 {
		c.PlatformSkipRows = platformSkip
	}
	if referenceSkip >= 0 {
		c.ReferenceSkipRows = referenceSkip
	}
	if headerRows > 0 {
		c.HeaderRows = headerRows
	}
	if platformSheet != "" {
		c.PlatformSheet = platformSheet
	}
	if referenceSheet != "" {
		c.ReferenceSheet = referenceSheet
	}
	if stagingCompare {
		c.Staging = true
	}
}

func compareRemote(ctx context.Context, cfg *config.Config, l *zap.Logger) (*compare.Outcome, error) {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	svc := compare.NewService(client, cfg.Storage.Bucket, l, stagingDB(cfg, l), cfg.Compare)
	return svc.Compare(ctx, compare.Request{
		Platform:   platformPath,
		Reference:  referencePath,
		Rules:      rulesPath,
		SaveReport: saveRemote,
	})
}

func compareLocal(ctx context.Context, cfg *config.Config, l *zap.Logger) (*compare.Outcome, error) {
	if rulesPath == "" {
		return nil, fmt.Errorf("--rules is required for local files")
	}
	book, err := rules.Load(rulesPath, cfg.Compare.Sheets())
	if err != nil {
		return nil, err
	}
	for _, w := range book.Warnings {
		l.Warn("Rule book warning", zap.String("warning", w))
	}

	svc := compare.NewService(nil, "", l, stagingDB(cfg, l), cfg.Compare)
	platform := sheet.FileSource{Path: platformPath, Options: cfg.Compare.PlatformOptions("")}
	reference := sheet.FileSource{Path: referencePath, Options: cfg.Compare.ReferenceOptions("")}
	return svc.Run(ctx, book, platform, reference, false)
}

// stagingDB connects the staging database when staging is enabled. Failures fall back
// to in-memory rows.
func stagingDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	if !cfg.Compare.Staging {
		return nil
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		l.Warn("Optional staging database connection failed", zap.Error(err))
		return nil
	}
	return db
}

func writeReports(out *compare.Outcome, opts report.Options, l *zap.Logger) error {
	if reportPath != "" {
		if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(reportPath)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := report.WriteWorkbook(f, out.Result, out.Rules, opts); err != nil {
			f.Close()
			return fmt.Errorf("failed to write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		l.Info("Report written", zap.String("path", reportPath))
	}

	if jsonPath == "-" {
		return report.WriteJSON(os.Stdout, out.Result)
	}
	if jsonPath != "" {
		f, err := os.Create(jsonPath)
		if err != nil {
			return fmt.Errorf("failed to create json report: %w", err)
		}
		defer f.Close()
		if err := report.WriteJSON(f, out.Result); err != nil {
			return fmt.Errorf("failed to write json report: %w", err)
		}
		l.Info("JSON report written", zap.String("path", jsonPath))
	}
	if out.ReportObject != "" {
		l.Info("Report uploaded", zap.String("object", out.ReportObject))
	}
	return nil
}

// printCompareReport logs the summary and a sample of differences.
func printCompareReport(l *zap.Logger, res *reconcile.Result) {
	s := res.Summary
	l.Info("Comparison report",
		zap.Int("platform_rows", s.PlatformRows),
		zap.Int("reference_rows", s.ReferenceRows),
		zap.Int("missing_in_erp", s.MissingCount),
		zap.Int("extra_in_erp", s.ExtraCount),
		zap.Int("common", s.CommonCount),
		zap.Int("differing", s.DifferingCount),
		zap.Int("equal", s.EqualCount),
		zap.String("diff_ratio", fmt.Sprintf("%.2f%%", s.DiffRatio*100)),
	)
	if len(res.SkippedFields) > 0 {
		l.Warn("Fields skipped", zap.Strings("fields", res.SkippedFields))
	}

	maxShow := 5
	if len(res.Diffs) < maxShow {
		maxShow = len(res.Diffs)
	}
	for _, d := range res.Diffs[:maxShow] {
		for _, f := range d.Fields {
			l.Info("Sample difference",
				zap.String("key", d.Key),
				zap.String("field", f.Field),
				zap.String("platform", f.PlatformValue),
				zap.String("erp", f.ReferenceValue),
			)
		}
	}
	if len(res.Diffs) > maxShow {
		l.Info("Additional differences not shown", zap.Int("count", len(res.Diffs)-maxShow))
	}
}
