package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/duynhne/client-service/config"
	"github.com/duynhne/client-service/internal/cli"
	database "github.com/duynhne/client-service/internal/core"
	"github.com/duynhne/client-service/internal/core/repository/psql"
	logicv1 "github.com/duynhne/client-service/internal/logic/v1"
	"github.com/duynhne/client-service/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := cli.NewRootCommand(openDirectory).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

// openDirectory connects a single pgx connection and builds the same
// service the HTTP server uses.
func openDirectory(ctx context.Context, opts *cli.RootOptions) (cli.Directory, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if opts.Verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		l, err := middleware.NewLogger(cfg.Logging)
		if err != nil {
			return nil, nil, err
		}
		logger = l
	}

	conn, err := database.ConnectSingle(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	repo := psql.NewClientRepository(conn, psql.Options{UniquePhones: cfg.Directory.UniquePhones})
	release := func() {
		_ = logger.Sync()
		_ = conn.Close(context.Background())
	}
	return logicv1.NewClientService(repo, logger), release, nil
}
