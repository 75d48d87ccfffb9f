package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mysqladapter "github.com/TheOgre365/equip-track/internal/adapters/db/mysql"
	sqliteadapter "github.com/TheOgre365/equip-track/internal/adapters/db/sqlite"
	httpadapter "github.com/TheOgre365/equip-track/internal/adapters/http"
	"github.com/TheOgre365/equip-track/internal/adapters/postgrest"
	rpcadapter "github.com/TheOgre365/equip-track/internal/adapters/rpcjson"
	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/config"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/urfave/cli/v3"
)

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run HTTP and JSON-RPC servers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "rpc-socket", Usage: "JSON-RPC unix socket path"},
			&cli.StringFlag{Name: "driver", Usage: "store driver: sqlite, mysql or postgrest"},
			&cli.StringFlag{Name: "db-path", Usage: "SQLite database path"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("addr") {
				cfg.HTTPAddr = c.String("addr")
			}
			if c.IsSet("rpc-socket") {
				cfg.RPCSocket = c.String("rpc-socket")
			}
			if c.IsSet("driver") {
				cfg.Store.Driver = c.String("driver")
			}
			if c.IsSet("db-path") {
				cfg.Store.Path = c.String("db-path")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(ctx, cfg)
		},
	}
}

// openStore connects the configured repository. The returned close func is
// never nil.
func openStore(ctx context.Context, cfg *config.Config) (domain.InventoryRepository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		repo, err := sqliteadapter.Connect(ctx, cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		return repo, repo.Close, nil
	case config.DriverMySQL:
		repo, err := mysqladapter.Connect(ctx, mysqladapter.Config{
			User:     cfg.Store.MySQL.User,
			Password: cfg.Store.MySQL.Password,
			Host:     cfg.Store.MySQL.Host,
			Database: cfg.Store.MySQL.Database,
			Debug:    cfg.Store.MySQL.Debug,
		})
		if err != nil {
			return nil, noop, err
		}
		return repo, repo.Close, nil
	case config.DriverPostgREST:
		client, err := postgrest.NewClient(postgrest.Config{
			URL:        cfg.Store.PostgREST.URL,
			APIKey:     cfg.Store.PostgREST.APIKey,
			Timeout:    cfg.Store.PostgREST.Timeout,
			EmployeeFK: cfg.Store.PostgREST.EmployeeFK,
		})
		if err != nil {
			return nil, noop, err
		}
		return postgrest.NewRepository(client), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	application.SetLogger(logger)

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close store", slog.Any("err", err))
		}
	}()

	service := application.NewInventoryService(repo, application.WithLifecycleHistory(cfg.History.RecordLifecycle))
	workspaces := application.NewWorkspaces(service,
		application.WithIdleTTL(cfg.Workspaces.IdleTTL),
		application.WithMaxWorkspaces(cfg.Workspaces.Max),
	)

	router := httpadapter.NewRouter(service, workspaces, logger)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	rpcSrv, err := rpcadapter.Start(cfg.RPCSocket, service, logger)
	if err != nil {
		return err
	}

	defer func() {
		_ = rpcSrv.Close()
	}()
	logger.Info("json-rpc listening", slog.String("socket", cfg.RPCSocket))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr), slog.String("store", cfg.Store.Driver))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
