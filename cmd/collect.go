package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veloops/stationd/app"
	"github.com/veloops/stationd/config"
	"github.com/veloops/stationd/infra/logger"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a single poll cycle and exit",
	RunE:  collectOnce,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func collectOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("collect").Errorf("service close: %v", err)
		}
	}()

	svc.CollectOnce(ctx)
	return nil
}
