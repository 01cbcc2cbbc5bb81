package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/groundsched/app"
	"github.com/kilianp07/groundsched/infra/metrics"
	"github.com/kilianp07/groundsched/internal/api"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scheduling HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveListen != "" {
			cfg.Server.Listen = serveListen
		}
		return withService(cfg, func(ctx context.Context, svc *app.Service) error {
			srv := api.New(cfg.Server, svc, svc.Status, metrics.Handler(), svc.Logger())
			return srv.Start(ctx)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default server.listen)")
	rootCmd.AddCommand(serveCmd)
}
