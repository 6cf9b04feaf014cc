package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-reconciliation-service/cmd/reconciler/config"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/parsers"
	"bank-reconciliation-service/internal/reconciler"
	"bank-reconciliation-service/internal/reporter"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// reconcileOptions holds the resolved flags of one reconcile run
type reconcileOptions struct {
	BankFile       string
	LedgerFile     string
	BankSheet      string
	AccountType    models.AccountType
	FuzzyThreshold int
	OutputFormat   reporter.OutputFormat
	OutputDir      string
	OutputFile     string
	SummaryFile    string
}

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a bank statement with a SAP ledger export",
	Long: `Reconcile reads every sheet of the bank statement workbook (or only
--bank-sheet), finds each sheet's header row and debit column, and matches the
debit amounts against the ledger's amount column by exact value.

The ledger amount column depends on --account-type:
  BRS Account  ->  "Amount in LC"
  G/L Account  ->  "Amount in Local Currency"

Bank and ledger files may be .xlsx, .xls or .csv.

Examples:
  # Write BRS_Match_Status.xlsx to the current directory
  reconciler reconcile --bank-file statement.xlsx --ledger-file sap.xlsx

  # Only the April sheet, G/L export, report into ./out
  reconciler reconcile --bank-file statement.xlsx --bank-sheet April \
    --ledger-file gl.xlsx --account-type "G/L Account" --output-dir out

  # Print the summary and first rows instead of writing a workbook
  reconciler reconcile --bank-file statement.xls --ledger-file sap.csv --output-format console

  # JSON export plus a YAML run manifest
  reconciler reconcile --bank-file statement.xlsx --ledger-file sap.xlsx \
    --output-format json --output-file run.json --summary-file run.yaml`,

	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Input flags
	reconcileCmd.Flags().StringP("bank-file", "b", "", "bank statement workbook (.xlsx, .xls, .csv)")
	reconcileCmd.Flags().StringP("ledger-file", "l", "", "SAP ledger export (.xlsx, .xls, .csv)")
	reconcileCmd.Flags().String("bank-sheet", "", "only read this bank sheet (default: all sheets)")
	reconcileCmd.Flags().StringP("account-type", "t", string(models.AccountTypeBRS), `ledger account type: "BRS Account" or "G/L Account"`)

	// Matching flags
	reconcileCmd.Flags().Int(config.KeyFuzzyThreshold, 60, "similarity threshold 50-100, reported only (matching is exact)")

	// Output flags
	reconcileCmd.Flags().StringP("output-format", "f", string(reporter.FormatXLSX), "output format: xlsx, console, json, csv")
	reconcileCmd.Flags().String("output-dir", "", "directory for the report (default: current directory)")
	reconcileCmd.Flags().StringP("output-file", "o", "", "report file (default: {PREFIX}_Match_Status.xlsx for xlsx, stdout otherwise)")
	reconcileCmd.Flags().String("summary-file", "", "write a YAML run manifest to this path")

	viper.BindPFlags(reconcileCmd.Flags())
}

// loadReconcileOptions reads flags through viper so config files and
// RECONCILER_* variables can supply them
func loadReconcileOptions(v *viper.Viper) (*reconcileOptions, error) {
	accountType, err := models.ParseAccountType(v.GetString("account-type"))
	if err != nil {
		return nil, err
	}

	format := reporter.OutputFormat(v.GetString("output-format"))
	if !format.IsValid() {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "output-format", format, nil).
			WithSuggestion("Valid formats: xlsx, console, json, csv")
	}

	return &reconcileOptions{
		BankFile:       v.GetString("bank-file"),
		LedgerFile:     v.GetString("ledger-file"),
		BankSheet:      v.GetString("bank-sheet"),
		AccountType:    accountType,
		FuzzyThreshold: v.GetInt(config.KeyFuzzyThreshold),
		OutputFormat:   format,
		OutputDir:      v.GetString("output-dir"),
		OutputFile:     v.GetString("output-file"),
		SummaryFile:    v.GetString("summary-file"),
	}, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.GetGlobalLogger().WithComponent("cli")
	stderr := cmd.ErrOrStderr()

	opts, err := loadReconcileOptions(viper.GetViper())
	if err != nil {
		return err
	}

	// An empty path yields a nil source; the service reports it as missing
	bankFile, err := parsers.OpenSourceFile(opts.BankFile)
	if err != nil {
		return err
	}
	ledgerFile, err := parsers.OpenSourceFile(opts.LedgerFile)
	if err != nil {
		return err
	}

	serviceConfig, err := config.CreateReconcilerConfig(viper.GetViper())
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, config.KeyFuzzyThreshold, opts.FuzzyThreshold, err)
	}

	fileName := ""
	if opts.OutputFile != "" {
		fileName = filepath.Base(opts.OutputFile)
	}
	reportConfig, err := config.CreateReportConfig(string(opts.OutputFormat), fileName)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output-format", opts.OutputFormat, err)
	}

	service, err := reconciler.NewReconciliationService(serviceConfig, nil, nil)
	if err != nil {
		return err
	}

	if viper.GetBool(config.KeyVerbose) {
		service.AddProgressCallback(func(progress *reconciler.ReconciliationProgress) {
			fmt.Fprintf(stderr, "[%d/%d] %s (%.0f%%)\n",
				progress.CompletedSteps, progress.TotalSteps,
				progress.CurrentStep, progress.PercentComplete)
		})
	}

	result, err := service.ProcessReconciliation(ctx, &reconciler.ReconciliationRequest{
		BankFile:    bankFile,
		LedgerFile:  ledgerFile,
		BankSheet:   opts.BankSheet,
		AccountType: opts.AccountType,
	})
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, log)
	if err != nil {
		return err
	}

	outputPath := config.ResolveOutputPath(opts.OutputFormat, opts.OutputDir, opts.OutputFile, opts.AccountType)
	if outputPath == "" {
		if err := generator.GenerateReportSafely(result, cmd.OutOrStdout()); err != nil {
			return err
		}
	} else {
		written, err := generator.WriteReportFile(result, outputPath)
		if err != nil {
			return err
		}
		if written != outputPath {
			fmt.Fprintf(stderr, "Warning: could not write %s, report saved to %s\n", outputPath, written)
		}
		outputPath = written
	}

	report := reporter.Assemble(result, reportConfig)

	if opts.SummaryFile != "" {
		if err := writeManifest(opts.SummaryFile, reporter.NewManifest(report, outputPath)); err != nil {
			return err
		}
	}

	fmt.Fprintf(stderr, "\nReconciliation complete (%s, run %s)\n", report.AccountType, report.RunID)
	generator.WriteSummary(report, stderr)
	if outputPath != "" {
		fmt.Fprintf(stderr, "Report: %s\n", outputPath)
	}

	return nil
}

func writeManifest(path string, manifest *reporter.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer file.Close()

	if err := reporter.WriteManifest(manifest, file); err != nil {
		return errors.ReconciliationError(errors.CodeReportFailed, "summary_file", err)
	}
	return nil
}
