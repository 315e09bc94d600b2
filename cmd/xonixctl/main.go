package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xonix-directory/internal/config"
	"github.com/xonix-directory/internal/service"
)

// app carries the session shared by every subcommand
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	dir        *service.Directory
}

func main() {
	// .env is optional; config.yaml may reference its variables
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "xonixctl",
		Short:         "Operate the Xonix player directory",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if err := a.dir.FlushMetrics(); err != nil {
				a.logger.Warn("failed to write metrics textfile", "error", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "Path to configuration file")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newPasswdCmd(a),
		newFindCmd(a),
		newShowCmd(a),
		newFriendCmd(a),
		newPlayCmd(a),
		newThemesCmd(a),
		newLeaderboardCmd(a),
		newMatchCmd(a),
		newSavesCmd(a),
		newIndexCmd(a),
		newReconcileCmd(a),
		newSeedCmd(a),
	)
	return root
}

// open loads configuration, sets up logging and opens the directory
func (a *app) open(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	loadErr := err
	if err != nil {
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	a.logger = newLogger(&cfg.Log, logOut)
	slog.SetDefault(a.logger)

	if loadErr != nil {
		a.logger.Warn("failed to load config file, using defaults", "error", loadErr)
	}

	dir, err := service.NewDirectory(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("opening directory: %w", err)
	}
	a.dir = dir
	return nil
}

func newLogger(cfg *config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
