package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/bootstrap"
	"unitalent/talent-center/internal/config"
	"unitalent/talent-center/internal/logger"
)

const app = "talentctl"

var (
	debugOutput bool
	jsonOutput  bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "talentctl scores, seeds and reindexes student talent profiles",
		SilenceUsage: true,
	}
)

// Execute executes the root command. Ctrl-C cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugOutput, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "json format for logging")
}

// env is the configuration and logger every command starts from.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func newEnv() (*env, error) {
	cfg := config.Load()

	log, err := logger.New(jsonOutput || cfg.Log.JSON, debugOutput || cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return &env{cfg: cfg, log: log}, nil
}

// withContainer runs fn against a fully wired container and closes it after.
func withContainer(ctx context.Context, fn func(*env, *bootstrap.Container) error) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	c, err := bootstrap.New(ctx, e.cfg, e.log, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(e, c)
}
