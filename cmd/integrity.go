package cmd

import (
	"context"
	"fmt"
	"os"

	"asset-reconciler/core/config"
	"asset-reconciler/core/logger"
	"asset-reconciler/core/storage"
	"asset-reconciler/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool
var ruleObjectFlag string

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check that the reconciliation workspace is usable",
	Long:  `Checks the bucket folders, the configured rule book and the staging table.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix folder structure",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// ruleBookCmd represents the integrity rules command
var ruleBookCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate the rule book stored in the bucket",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// stagingCmd represents the integrity staging command
var stagingCmd = &cobra.Command{
	Use:   "staging",
	Short: "Check the staging table schema",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, ruleBookCmd, stagingCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	ruleBookCmd.Flags().StringVar(&ruleObjectFlag, "object", "", "Rule book object (defaults to compare.rules_object)")
}

func runIntegrityChecks(ctx context.Context, runStructure, runRules, runStaging bool) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Fatal("Failed to create storage client", zap.Error(err))
	}

	var db *gorm.DB
	if runStaging {
		db = stagingDB(cfg, logg)
	}

	svc := integrity.NewService(store, cfg.Storage.Bucket, logg, db, cfg.Compare)

	if runStructure {
		logg.Info("Checking folder structure...", zap.Strings("folders", svc.Folders()))
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			logg.Fatal("Structure check failed", zap.Error(err))
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))

			if fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					logg.Fatal("Failed to fix structure", zap.Error(err))
				}
				logg.Info("Structure fixed successfully.")
			} else {
				logg.Info("Run 'integrity structure --fix' to create missing folders.")
			}
		}
	}

	if runRules {
		logg.Info("Checking rule book...")
		report, err := svc.CheckRuleBook(ctx, ruleObjectFlag)
		if err != nil {
			logg.Fatal("Rule book check failed", zap.Error(err))
		}

		switch report.Status {
		case "ok":
			logg.Info("Rule book is valid.",
				zap.String("object", report.Object),
				zap.Int("rules", report.Rules),
				zap.Strings("key_fields", report.KeyFields))
		case "warning":
			logg.Warn("Rule book loaded with warnings", zap.String("object", report.Object))
			for _, w := range report.Warnings {
				logg.Warn("Rule book warning", zap.String("warning", w))
			}
		default:
			for _, e := range report.Errors {
				logg.Error("Rule book error", zap.String("object", report.Object), zap.String("error", e))
			}
		}
	}

	if runStaging {
		logg.Info("Checking staging schema...")
		report, err := svc.CheckStaging()
		if err != nil {
			logg.Error("Staging schema check failed", zap.Error(err))
			return
		}

		switch report.Status {
		case "ok":
			logg.Info("Staging schema matches expected definition.", zap.String("table", report.Table))
		case "disabled":
			logg.Info("Staging is disabled; set compare.staging to enable it.")
		case "missing":
			logg.Info("Staging table does not exist yet; it is created on the first staged run.", zap.String("table", report.Table))
		default:
			if len(report.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", report.Table), zap.Strings("columns", report.MissingColumns))
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}
}
