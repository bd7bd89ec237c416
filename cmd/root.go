package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvcompare/app"
	"github.com/kilianp07/pvcompare/config"
	"github.com/kilianp07/pvcompare/infra/logger"
)

var (
	cfgPath string
	hold    bool
)

var rootCmd = &cobra.Command{
	Use:   "pvcompare",
	Short: "Compare PV technologies on a district and size their capacity ceilings",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVar(&hold, "hold", false, "keep serving metrics after the run until interrupted")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the setup table of the configured site",
	RunE:  run,
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func newService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- svc.ServeMetrics(serveCtx) }()

	rep, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if err := printReport(cmd.OutOrStdout(), rep); err != nil {
		return err
	}
	if hold {
		<-ctx.Done()
	}
	cancel()
	return <-served
}
