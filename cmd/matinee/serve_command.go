package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"matinee/internal/api"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog read API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			service, err := ctx.libraryService()
			if err != nil {
				return err
			}

			bind := bindFlag
			if bind == "" {
				bind = cfg.APIBind
			}
			server := api.New(bind, service, store, logger)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-runCtx.Done():
				return server.Close()
			}
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (defaults to paths.api_bind)")
	return cmd
}
