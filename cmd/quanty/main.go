package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quanty/quanty-backend/internal/cli"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	cfg, err := config.LoadClient(home)
	if err != nil {
		_, _ = os.Stderr.WriteString("quanty: " + err.Error() + "\n")
		os.Exit(2)
	}

	logg := logger.New(logger.Options{
		ServiceName: "quanty-cli",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Output:      os.Stderr,
		Format:      "console",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &cli.RootOptions{Config: cfg, Logger: logg}
	root := cli.NewRootCommand(opts)
	if err := root.ExecuteContext(ctx); err != nil {
		out := &cli.OutputFormatter{Format: opts.Format, Writer: os.Stderr}
		if opts.Format == cli.FormatJSON {
			out.Writer = os.Stdout
		}
		_ = out.Failure(err)
		stop()
		os.Exit(1)
	}
}
