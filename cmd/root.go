package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/config"
	"github.com/killallgit/menudata/pkg/headless"
	"github.com/killallgit/menudata/pkg/logger"
	"github.com/killallgit/menudata/pkg/tui"
	chatview "github.com/killallgit/menudata/pkg/tui/chat"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "menudata",
		Short:        "Chat with the Menudata Expert",
		Long:         `Ask the Menudata Expert about restaurants, dishes and menus from your terminal.`,
		SilenceUsage: true,
		RunE:         runChat,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .menudata/settings.yaml)")

	root.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))

	root.PersistentFlags().String("api-url", "", "base URL of the chat API (default http://127.0.0.1:8000/api)")
	viper.BindPFlag("api.base_url", root.PersistentFlags().Lookup("api-url"))

	root.Flags().StringP("prompt", "p", "", "execute a prompt directly without entering TUI")
	viper.BindPFlag("prompt", root.Flags().Lookup("prompt"))

	root.Flags().BoolP("headless", "H", false, "run without TUI (uses --prompt)")
	viper.BindPFlag("headless", root.Flags().Lookup("headless"))

	root.Flags().Bool("continue", false, "append to the previous chat transcript instead of starting fresh")
	viper.BindPFlag("logging.preserve", root.Flags().Lookup("continue"))

	root.AddCommand(newServeCmd())
	return root
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := logger.InitHistoryFile(config.ResolvePath(cfg.Logging.HistoryFile), cfg.Logging.Preserve); err != nil {
		return fmt.Errorf("failed to open chat history: %w", err)
	}

	client := chat.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	store := chat.NewStore(client, chat.WithRequestTimeout(cfg.API.Timeout))
	defer store.Close()

	if viper.GetBool("headless") {
		prompt := viper.GetString("prompt")
		if prompt == "" {
			prompt = "hello"
		}
		return headless.RunHeadless(cmd.Context(), store, prompt, cmd.OutOrStdout())
	}

	return tui.StartApp(cmd.Context(), store, chatview.OptionsFromConfig(cfg))
}

// setup loads the configuration and starts the file logger
func setup() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(); err != nil {
		return nil, err
	}
	logger.Debug("using config file %q, api %s", config.GetConfigFileUsed(), cfg.API.BaseURL)
	return cfg, nil
}

// loadDotEnv reads .env from the working directory when present
func loadDotEnv() error {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func Execute() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
