package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/parsers"
	"bank-reconciliation-service/internal/reconciler"
	"bank-reconciliation-service/internal/reporter"
	"bank-reconciliation-service/pkg/errors"
)

const (
	runIDHeader     = "X-Run-ID"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// reconcile accepts bank_file, ledger_file, bank_sheet, account_type and format
func (s *Server) reconcile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	format := reporter.OutputFormat(strings.ToLower(c.DefaultPostForm("format", string(reporter.FormatXLSX))))
	if format != reporter.FormatXLSX && format != reporter.FormatJSON {
		s.fail(c, errors.ValidationError(errors.CodeInvalidFormat, "format", string(format), nil).
			WithSuggestion("Use format xlsx or json"))
		return
	}

	accountType := models.AccountTypeBRS
	if raw := c.PostForm("account_type"); raw != "" {
		parsed, err := models.ParseAccountType(raw)
		if err != nil {
			s.fail(c, err)
			return
		}
		accountType = parsed
	}

	bankFile, err := uploadedFile(c, "bank_file")
	if err != nil {
		s.fail(c, err)
		return
	}
	ledgerFile, err := uploadedFile(c, "ledger_file")
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.reconciler.ProcessReconciliation(c.Request.Context(), &reconciler.ReconciliationRequest{
		BankFile:    bankFile,
		LedgerFile:  ledgerFile,
		BankSheet:   c.PostForm("bank_sheet"),
		AccountType: accountType,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header(runIDHeader, result.RunID.String())

	if format == reporter.FormatJSON {
		c.JSON(http.StatusOK, reporter.Assemble(result, nil))
		return
	}

	generator, err := reporter.NewSafeReportGenerator(reporter.DefaultReportConfig(), s.logger)
	if err != nil {
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := generator.GenerateReportSafely(result, &buf); err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.AccountType.ReportFileName()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// uploadedFile reads a multipart file field. An absent field yields a nil
// source so the service reports which file is missing.
func uploadedFile(c *gin.Context, field string) (*parsers.SourceFile, error) {
	header, err := c.FormFile(field)
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidFormat, field, nil, err).
			WithSuggestion("Send the files as multipart/form-data")
	}

	data, err := readUpload(header)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, header.Filename, err)
	}
	return parsers.NewSourceFile(header.Filename, data), nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	rerr, ok := errors.AsReconcilerError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch rerr.Code {
	case errors.CodeNoFileProvided:
		return http.StatusBadRequest
	case errors.CodeSheetNotFound, errors.CodeUnsupportedFormat, errors.CodeFileCorrupted:
		return http.StatusUnprocessableEntity
	}

	switch rerr.Category {
	case errors.CategoryParse:
		return http.StatusUnprocessableEntity
	case errors.CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	response := ErrorResponse{Code: string(errors.CodeUnexpectedError), Message: err.Error()}
	if rerr, ok := errors.AsReconcilerError(err); ok {
		response.Code = string(rerr.Code)
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Reconciliation request failed")
	}
	c.AbortWithStatusJSON(status, response)
}
