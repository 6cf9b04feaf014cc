package reporter

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"bank-reconciliation-service/internal/reconciler"
)

// Manifest is the YAML run summary written next to a report
type Manifest struct {
	RunID          string                  `yaml:"run_id"`
	GeneratedAt    time.Time               `yaml:"generated_at"`
	AccountType    string                  `yaml:"account_type"`
	Report         string                  `yaml:"report,omitempty"`
	AmountColumn   string                  `yaml:"amount_column"`
	FuzzyThreshold int                     `yaml:"fuzzy_threshold"`
	Duration       string                  `yaml:"duration"`
	Counts         map[string]int          `yaml:"counts"`
	Total          int                     `yaml:"total"`
	Sources        []reconciler.SourceInfo `yaml:"sources"`
}

// NewManifest builds the manifest of a report. reportPath is where the
// report itself was written, if anywhere.
func NewManifest(report *Report, reportPath string) *Manifest {
	manifest := &Manifest{
		RunID:          report.RunID,
		GeneratedAt:    report.GeneratedAt,
		AccountType:    string(report.AccountType),
		Report:         reportPath,
		AmountColumn:   report.AmountColumn,
		FuzzyThreshold: report.FuzzyThreshold,
		Duration:       report.Duration.String(),
		Counts:         make(map[string]int, len(report.Counts)),
		Total:          report.Total,
		Sources:        report.Sources,
	}
	for _, c := range report.Counts {
		manifest.Counts[string(c.Status)] = c.Count
	}
	return manifest
}

// WriteManifest encodes the manifest as YAML
func WriteManifest(manifest *Manifest, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(manifest); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return encoder.Close()
}

// ReadManifest decodes a manifest written by WriteManifest
func ReadManifest(reader io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.NewDecoder(reader).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &manifest, nil
}
