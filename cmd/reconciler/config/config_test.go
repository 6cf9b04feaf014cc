package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"bank-reconciliation-service/internal/matcher"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/reporter"
	"bank-reconciliation-service/pkg/logger"
)

func TestCreateReconcilerConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config, err := CreateReconcilerConfig(viper.New())
		if err != nil {
			t.Fatalf("failed to create config: %v", err)
		}
		if config.Matching.FuzzyThreshold != matcher.DefaultFuzzyThreshold {
			t.Errorf("expected default threshold, got %d", config.Matching.FuzzyThreshold)
		}
		if config.Bank.DebitColumn != "Withdrawals" {
			t.Errorf("expected Withdrawals debit column, got %s", config.Bank.DebitColumn)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		v := viper.New()
		v.Set(KeyFuzzyThreshold, 85)
		v.Set(KeyHeaderLabels, []string{"Value Date", "date"})
		v.Set(KeyHeaderScanWidth, 6)
		v.Set(KeyLedgerAmount, "Amount in Doc. Curr.")

		config, err := CreateReconcilerConfig(v)
		if err != nil {
			t.Fatalf("failed to create config: %v", err)
		}
		if config.Matching.FuzzyThreshold != 85 {
			t.Errorf("expected threshold 85, got %d", config.Matching.FuzzyThreshold)
		}
		if !config.Bank.IsHeaderLabel("value date") {
			t.Errorf("expected labels to be lower-cased, got %v", config.Bank.HeaderLabels)
		}
		if config.Bank.HeaderScanWidth != 6 {
			t.Errorf("expected scan width 6, got %d", config.Bank.HeaderScanWidth)
		}
		if config.Ledger.AmountColumn != "Amount in Doc. Curr." {
			t.Errorf("expected ledger override, got %s", config.Ledger.AmountColumn)
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		for _, threshold := range []int{49, 101} {
			v := viper.New()
			v.Set(KeyFuzzyThreshold, threshold)
			if _, err := CreateReconcilerConfig(v); err == nil {
				t.Errorf("expected error for threshold %d", threshold)
			}
		}
	})
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format    string
		want      reporter.OutputFormat
		wantError bool
	}{
		{"xlsx", reporter.FormatXLSX, false},
		{"CONSOLE", reporter.FormatConsole, false},
		{"json", reporter.FormatJSON, false},
		{"csv", reporter.FormatCSV, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config, err := CreateReportConfig(tt.format, "")
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if config.Format != tt.want {
				t.Errorf("expected format %s, got %s", tt.want, config.Format)
			}
		})
	}
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name        string
		format      reporter.OutputFormat
		dir, file   string
		accountType models.AccountType
		want        string
	}{
		{"xlsx default", reporter.FormatXLSX, "", "", models.AccountTypeBRS, filepath.Join(".", "BRS_Match_Status.xlsx")},
		{"xlsx in dir", reporter.FormatXLSX, "out", "", models.AccountTypeGL, filepath.Join("out", "GL_Match_Status.xlsx")},
		{"explicit file", reporter.FormatXLSX, "", "april.xlsx", models.AccountTypeBRS, "april.xlsx"},
		{"file joined to dir", reporter.FormatCSV, "out", "april.csv", models.AccountTypeBRS, filepath.Join("out", "april.csv")},
		{"file with own dir", reporter.FormatCSV, "out", filepath.Join("reports", "april.csv"), models.AccountTypeBRS, filepath.Join("reports", "april.csv")},
		{"console to stdout", reporter.FormatConsole, "out", "", models.AccountTypeBRS, ""},
		{"json to stdout", reporter.FormatJSON, "", "", models.AccountTypeGL, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOutputPath(tt.format, tt.dir, tt.file, tt.accountType)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCreateServerConfig(t *testing.T) {
	v := viper.New()
	v.Set(KeyServerAddr, ":9090")
	v.Set(KeyMaxUploadBytes, 1024)

	config := CreateServerConfig(v)
	if config.Addr != ":9090" || config.MaxUploadBytes != 1024 {
		t.Errorf("unexpected server config %+v", config)
	}
	if len(config.AllowOrigins) == 0 {
		t.Error("expected default origins to be kept")
	}
}

func TestCreateLoggerConfig(t *testing.T) {
	v := viper.New()
	v.Set(KeyLogLevel, "warn")
	v.Set(KeyLogFormat, "json")

	config := CreateLoggerConfig(v)
	if config.Level != logger.WarnLevel || config.Format != logger.JSONFormat {
		t.Errorf("unexpected logger config %+v", config)
	}

	v.Set(KeyVerbose, true)
	if CreateLoggerConfig(v).Level != logger.DebugLevel {
		t.Error("expected verbose to force debug level")
	}
}
