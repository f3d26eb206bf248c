package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-sessions/internal"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/pkg"
)

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "tictactoe-sessions",
		Short:        "Shared tic-tac-toe sessions over websocket and HTTP polling",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yml (default ./config.yml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the REST and WebSocket servers",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				conf := initConfig(configPath)
				return app.RunApp(initLogger(conf), conf)
			},
		},
		newBotCommand(&configPath),
	)

	return root
}

func newBotCommand(configPath *string) *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "bot <session-code>",
		Short: "Take the guest seat of a session and play it with the minimax bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			conf := initConfig(*configPath)
			if playerID == "" {
				playerID = pkg.GeneratePlayerID()
			}
			return app.RunBot(initLogger(conf), conf, args[0], playerID)
		},
	}

	cmd.Flags().StringVar(&playerID, "player-id", "", "player id to join with (random when empty)")

	return cmd
}

// initialize config.
func initConfig(path string) *config.Config {
	if path != "" {
		return config.MustLoad(path)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, "./config.yml"))
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
