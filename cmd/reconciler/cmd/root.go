package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-reconciliation-service/cmd/reconciler/config"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

var (
	cfgFile   string
	envFile   string
	verbose   bool
	logLevel  string
	logFormat string
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Bank statement and SAP ledger reconciliation tool",
	Long: `Reconciler matches the debit amounts of a bank statement workbook against
a SAP ledger export and labels every ledger record as MATCHED, MULTIPLE_MATCHES
or NOT_FOUND_IN_BANK. Bank amounts the ledger never mentions are listed as
NOT_FOUND_IN_LEDGER.

Examples:
  reconciler reconcile --bank-file statement.xlsx --ledger-file sap.xlsx
  reconciler reconcile --bank-file statement.xls --ledger-file gl.xlsx --account-type "G/L Account"
  reconciler reconcile --bank-file statement.xlsx --ledger-file sap.xlsx --output-format console
  reconciler serve --addr :8080
  reconciler version`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading RECONCILER_* variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")

	// Bind flags to viper
	viper.BindPFlag(config.KeyVerbose, rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
}

// configErr is reported by setupLogging so a bad config file fails the command
// with a categorized error instead of exiting inside cobra's initializer
var configErr error

// initConfig reads in the dotenv file, config file and ENV variables.
func initConfig() {
	configErr = nil

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			configErr = errors.ConfigurationError(errors.CodeInvalidConfig, "env-file", envFile, err)
			return
		}
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			configErr = errors.ConfigurationError(errors.CodeInvalidConfig, "config", cfgFile, err).
				WithSuggestion("Check the config file path and YAML/JSON/TOML syntax")
			return
		}
	}

	// Read environment variables that match, e.g. RECONCILER_BANK_FILE
	viper.SetEnvPrefix("RECONCILER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// setupLogging installs the global logger once configuration is known
func setupLogging(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}

	logConfig := config.CreateLoggerConfig(viper.GetViper())
	log, err := logger.NewLogger(logConfig)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "logging", logConfig.Level, err)
	}
	logger.SetGlobalLogger(log)

	if used := viper.ConfigFileUsed(); used != "" {
		log.WithField("config_file", used).Debug("Using config file")
	}
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
