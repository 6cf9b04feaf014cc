package parsers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
)

// Format is a spreadsheet container format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// SourceFile is an uploaded or on-disk spreadsheet held in memory
type SourceFile struct {
	Name string
	Path string
	Data []byte
}

// NewSourceFile wraps in-memory content, e.g. an HTTP upload
func NewSourceFile(name string, data []byte) *SourceFile {
	return &SourceFile{Name: name, Data: data}
}

// OpenSourceFile reads a file from disk. An empty path means no file was provided.
func OpenSourceFile(path string) (*SourceFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	return &SourceFile{Name: filepath.Base(path), Path: path, Data: data}, nil
}

// IsMissing reports whether the handle carries no file at all
func (s *SourceFile) IsMissing() bool {
	return s == nil || (len(s.Data) == 0 && s.Name == "" && s.Path == "")
}

// DisplayName is the name used in logs and error messages
func (s *SourceFile) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Path != "" {
		return s.Path
	}
	return s.Name
}

// DetectFormat picks the container format from the file extension, falling
// back to the leading magic bytes.
func (s *SourceFile) DetectFormat() (Format, error) {
	switch strings.ToLower(filepath.Ext(s.Name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	}

	switch {
	case bytes.HasPrefix(s.Data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(s.Data, ole2Magic):
		return FormatXLS, nil
	case utf8.Valid(s.Data):
		return FormatCSV, nil
	}

	return "", errors.FileError(errors.CodeUnsupportedFormat, s.DisplayName(), nil)
}

// Workbook gives sheet-level access to a decoded spreadsheet
type Workbook interface {
	// SheetNames returns sheet names in file order
	SheetNames() []string
	// Sheet returns the grid of the named sheet
	Sheet(name string) (*models.Sheet, error)
}

// OpenWorkbook decodes a source file into a Workbook
func OpenWorkbook(source *SourceFile) (Workbook, error) {
	format, err := source.DetectFormat()
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return openXLSX(source)
	case FormatXLS:
		return openXLS(source)
	default:
		return openCSV(source, DefaultParseConfig())
	}
}

func sheetNotFound(source *SourceFile, name string, available []string) error {
	return errors.FileError(errors.CodeSheetNotFound, source.DisplayName(), nil).
		WithContext("sheet", name).
		WithContext("available_sheets", strings.Join(available, ", "))
}
