package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joeaphiboon/BiteSizedLearning/internal/config"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/logger"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lesson generator over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		log, err := logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if e.llm.APIKey() == "" && e.llm.Provider != llm.ProviderMock {
			log.Info("no server API key configured; visitors must provide their own", "provider", e.llm.Provider)
		}

		srv, err := web.New(cfg, web.Deps{
			Sessions:  session.NewManager(cfg.SessionTTL, e.llm.Provider, e.llm.APIKey()),
			Providers: llm.NewFactory(e.llm, e.events, log),
			Lessons:   e.lessons,
			Events:    e.events,
			Log:       log,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides BITESIZED_ADDR)")
}
