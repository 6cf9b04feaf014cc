package reporter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bank-reconciliation-service/internal/reconciler"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with input validation, categorized
// errors and an output fallback for reports written to disk
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("Use one of the output formats: xlsx, console, json, csv")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely validates its inputs and writes the report, returning
// categorized errors
func (srg *SafeReportGenerator) GenerateReportSafely(result *reconciler.ReconciliationResult, writer io.Writer) error {
	srg.logger.WithFields(logger.Fields{
		"format": srg.config.Format,
		"output": getWriterDescription(writer),
	}).Debug("Starting report generation")

	if err := srg.validateInputs(result, writer); err != nil {
		srg.logger.WithError(err).Error("Report generation failed: input validation")
		return err
	}

	if err := srg.GenerateReport(result, writer); err != nil {
		wrapped := srg.wrapGenerationError(err)
		srg.logger.WithError(wrapped).Error("Report generation failed")
		return wrapped
	}

	srg.logger.WithField("records", len(result.Match.Records)).Info("Report generated")
	return nil
}

// WriteReportFile renders the report in memory and writes it to path,
// creating parent directories. If the destination cannot be written the
// report is saved to a backup path in the temp directory instead; the path
// actually written is returned.
func (srg *SafeReportGenerator) WriteReportFile(result *reconciler.ReconciliationResult, path string) (string, error) {
	var buf bytes.Buffer
	if err := srg.GenerateReportSafely(result, &buf); err != nil {
		return "", err
	}

	err := writeFile(path, buf.Bytes())
	if err == nil {
		return path, nil
	}
	if !srg.isFileError(err) {
		return "", srg.wrapFileError(path, err)
	}

	backupPath := srg.generateBackupPath(path)
	srg.logger.WithError(err).WithFields(logger.Fields{
		"original_file": path,
		"backup_file":   backupPath,
	}).Warn("Could not write report, using backup location")

	if backupErr := writeFile(backupPath, buf.Bytes()); backupErr != nil {
		return "", errors.ReconciliationError(
			errors.CodeReportFailed,
			"report_output",
			fmt.Errorf("primary=%v, backup=%v", err, backupErr),
		).WithContext("path", path)
	}

	return backupPath, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// validateInputs validates the inputs for report generation
func (srg *SafeReportGenerator) validateInputs(result *reconciler.ReconciliationResult, writer io.Writer) error {
	if result == nil || result.Match == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"result",
			nil,
			nil,
		).WithSuggestion("Provide a completed reconciliation result")
	}

	if writer == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"writer",
			nil,
			nil,
		).WithSuggestion("Provide a valid output writer")
	}

	return nil
}

// isFileError checks if the error is file-related
func (srg *SafeReportGenerator) isFileError(err error) bool {
	return os.IsPermission(err) ||
		os.IsNotExist(err) ||
		os.IsExist(err) ||
		isSpaceError(err)
}

// generateBackupPath creates a backup file path in the temp directory
func (srg *SafeReportGenerator) generateBackupPath(originalPath string) string {
	base := filepath.Base(originalPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	return filepath.Join(os.TempDir(), fmt.Sprintf("%s_backup%s", name, ext))
}

// wrapGenerationError wraps generation errors with context
func (srg *SafeReportGenerator) wrapGenerationError(err error) error {
	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		return reconcilerErr
	}

	return errors.ReconciliationError(
		errors.CodeReportFailed,
		"report_generation",
		err,
	).WithContext("format", string(srg.config.Format))
}

func (srg *SafeReportGenerator) wrapFileError(path string, err error) error {
	return errors.FileError(errors.CodeFilePermission, path, err).
		WithSuggestion("Check that the output directory is writable")
}

// Utility functions

func getWriterDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	case *bytes.Buffer:
		return "buffer"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}

func isSpaceError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
