package cmd

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-reconciliation-service/cmd/reconciler/config"
	"bank-reconciliation-service/internal/api"
	"bank-reconciliation-service/internal/reconciler"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reconciliation HTTP API",
	Long: `Serve starts an HTTP server that accepts a bank statement and a ledger
export as a multipart upload and returns the classified ledger.

Endpoints:
  GET  /api/health
  POST /api/reconcile  fields: bank_file, ledger_file, bank_sheet, account_type, format (xlsx|json)

Examples:
  reconciler serve
  reconciler serve --addr :9090
  RECONCILER_SERVER_ADDR=:9090 reconciler serve`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", api.DefaultConfig().Addr, "listen address")
	viper.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	serviceConfig, err := config.CreateReconcilerConfig(viper.GetViper())
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "reconciliation", nil, err)
	}

	service, err := reconciler.NewReconciliationService(serviceConfig, nil, nil)
	if err != nil {
		return err
	}

	serverConfig := config.CreateServerConfig(viper.GetViper())
	if err := serverConfig.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "server", serverConfig.Addr, err)
	}

	if !viper.GetBool(config.KeyVerbose) {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(service, serverConfig, logger.GetGlobalLogger())
	if err := server.Run(ctx); err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "serve", err)
	}
	return nil
}
