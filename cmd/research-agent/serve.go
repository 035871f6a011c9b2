// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-agent/internal/api"
	"github.com/pdiddy/research-agent/internal/export"
	"github.com/pdiddy/research-agent/internal/jobs"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/internal/notify"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the research job API",
	Long: `Serve starts the HTTP API. Submitted queries run asynchronously; finished
reports are exported as documents and announced to the configured webhook.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper(), loadedSecrets)

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	store, err := jobs.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening job store: %w", err)
	}
	defer store.Close()

	exporter := export.NewFileExporter(cfg.Export)
	webhook := notify.NewWebhook(cfg.Webhook)

	runner := jobs.NewRunner(jobs.RunnerDeps{
		Store:         store,
		Pipeline:      pipe,
		Exporter:      exporter,
		Notifier:      webhook,
		MaxConcurrent: cfg.Jobs.MaxConcurrent,
		Log:           log.With(logging.String("component", "jobs")),
	})
	defer runner.Close()

	srv := api.NewServer(api.Options{
		Store:        store,
		Runner:       runner,
		Version:      version,
		Log:          log.With(logging.String("component", "api")),
		DocumentsDir: cfg.Export.Dir,
		Services: api.Services{
			DocumentExport: exporter.Configured(),
			Webhook:        webhook.Configured(),
			LLM:            cfg.LLM.APIKey != "",
		},
	})

	log.Info("starting research-agent",
		logging.String("version", version),
		logging.String("store", string(cfg.Store.Driver)),
		logging.String("search", string(cfg.Search.Backend)),
		logging.String("llm", string(cfg.LLM.Provider)),
	)
	return srv.Start(ctx, cfg.Server.Addr)
}
