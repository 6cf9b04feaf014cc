package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"bank-reconciliation-service/internal/api"
	"bank-reconciliation-service/internal/matcher"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/reconciler"
	"bank-reconciliation-service/internal/reporter"
	"bank-reconciliation-service/pkg/logger"
)

// Configuration keys read from flags, the config file or RECONCILER_* variables
const (
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyLogFile         = "log-file"
	KeyVerbose         = "verbose"
	KeyFuzzyThreshold  = "fuzzy-threshold"
	KeyHeaderLabels    = "bank.header_labels"
	KeyHeaderScanWidth = "bank.header_scan_width"
	KeyDebitAliases    = "bank.debit_aliases"
	KeyLedgerAmount    = "ledger.amount_column"
	KeyServerAddr      = "server.addr"
	KeyAllowOrigins    = "server.allow_origins"
	KeyMaxUploadBytes  = "server.max_upload_bytes"
)

// CreateReconcilerConfig builds the service configuration from defaults and
// any values present in v
func CreateReconcilerConfig(v *viper.Viper) (*reconciler.Config, error) {
	config := reconciler.DefaultConfig()

	if v.IsSet(KeyHeaderLabels) {
		labels := v.GetStringSlice(KeyHeaderLabels)
		for i, label := range labels {
			labels[i] = strings.ToLower(strings.TrimSpace(label))
		}
		config.Bank.HeaderLabels = labels
	}
	if v.IsSet(KeyHeaderScanWidth) {
		config.Bank.HeaderScanWidth = v.GetInt(KeyHeaderScanWidth)
	}
	if v.IsSet(KeyDebitAliases) {
		config.Bank.DebitAliases = v.GetStringSlice(KeyDebitAliases)
	}
	if v.IsSet(KeyLedgerAmount) {
		config.Ledger.AmountColumn = v.GetString(KeyLedgerAmount)
	}

	config.Matching = CreateMatchingConfig(v.GetInt(KeyFuzzyThreshold))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reconciliation config: %w", err)
	}
	return config, nil
}

// CreateMatchingConfig creates a matching configuration. A zero threshold
// keeps the default.
func CreateMatchingConfig(fuzzyThreshold int) *matcher.MatchingConfig {
	config := matcher.DefaultMatchingConfig()
	if fuzzyThreshold != 0 {
		config.FuzzyThreshold = fuzzyThreshold
	}
	return config
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format, fileName string) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(strings.ToLower(format))
	config.FileName = fileName

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateServerConfig creates the HTTP server configuration
func CreateServerConfig(v *viper.Viper) *api.Config {
	config := api.DefaultConfig()
	if v.IsSet(KeyServerAddr) {
		config.Addr = v.GetString(KeyServerAddr)
	}
	if v.IsSet(KeyAllowOrigins) {
		config.AllowOrigins = v.GetStringSlice(KeyAllowOrigins)
	}
	if v.IsSet(KeyMaxUploadBytes) {
		config.MaxUploadBytes = v.GetInt64(KeyMaxUploadBytes)
	}
	return config
}

// CreateLoggerConfig creates the logger configuration. --verbose forces debug level.
func CreateLoggerConfig(v *viper.Viper) *logger.Config {
	level := v.GetString(KeyLogLevel)
	if v.GetBool(KeyVerbose) {
		level = string(logger.DebugLevel)
	}
	return logger.ConfigFromSettings(level, v.GetString(KeyLogFormat), v.GetString(KeyLogFile))
}

// ResolveOutputPath decides where the report goes. An explicit file wins.
// xlsx output defaults to {PREFIX}_Match_Status.xlsx in outputDir; text
// formats default to stdout, signalled by an empty path.
func ResolveOutputPath(format reporter.OutputFormat, outputDir, outputFile string, accountType models.AccountType) string {
	if outputFile != "" {
		if outputDir != "" && !filepath.IsAbs(outputFile) && filepath.Dir(outputFile) == "." {
			return filepath.Join(outputDir, outputFile)
		}
		return outputFile
	}
	if !format.Binary() {
		return ""
	}
	if outputDir == "" {
		outputDir = "."
	}
	return filepath.Join(outputDir, accountType.ReportFileName())
}
