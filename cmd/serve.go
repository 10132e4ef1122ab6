package cmd

import (
	"fmt"

	"github.com/killallgit/menudata/pkg/devserver"
	"github.com/killallgit/menudata/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the local development backend",
		Long: `Serve /api/chat and /api/feedback from a built-in menu corpus so the
chat client can be used without the hosted Menudata service.`,
		RunE: runServe,
	}

	serve.Flags().String("addr", "127.0.0.1:8000", "address to listen on")
	viper.BindPFlag("devserver.addr", serve.Flags().Lookup("addr"))

	return serve
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	srv, err := devserver.NewFromConfig(cmd.Context(), cfg.DevServer)
	if err != nil {
		return fmt.Errorf("failed to start development backend: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Menudata development backend on http://%s/api (llm: %s, embedder: %s)\n",
		cfg.DevServer.Addr, cfg.DevServer.LLM.Provider, cfg.DevServer.Embedder.Provider)
	return srv.ListenAndServe(cmd.Context())
}
