package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/stationmaster/internal/bridge"
	"github.com/zulandar/stationmaster/internal/bridge/telegram"
	"github.com/zulandar/stationmaster/internal/config"
	"github.com/zulandar/stationmaster/internal/dashboard"
	"github.com/zulandar/stationmaster/internal/db"
	"github.com/zulandar/stationmaster/internal/directory"
	"github.com/zulandar/stationmaster/internal/menu"
	"github.com/zulandar/stationmaster/internal/session"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the support bridge daemon",
		Long:  "Connects to Telegram, loads the session log, and routes client conversations to managers until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "stationmaster.yaml", "path to config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := session.Open(cfg.Paths.Sessions)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}

	gormDB, err := db.Connect(cfg.Directory.Host, cfg.Directory.Port, cfg.Directory.User, cfg.Directory.Password, cfg.Directory.Database)
	if err != nil {
		return fmt.Errorf("connect to directory: %w", err)
	}

	gateway, err := directory.NewSQLGateway(directory.SQLGatewayOpts{
		DB:             gormDB,
		DefaultManager: cfg.Managers.Default,
		Timeout:        time.Duration(cfg.Directory.TimeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}

	adapter, err := telegram.New(telegram.AdapterOpts{Token: cfg.Telegram.Token})
	if err != nil {
		return err
	}

	registry := bridge.NewRegistry()
	daemon, err := bridge.NewDaemon(bridge.DaemonOpts{
		Config:   cfg,
		Store:    store,
		Catalog:  menu.New(),
		Gateway:  gateway,
		Registry: registry,
		Adapter:  adapter,
		Out:      cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.Dashboard.Enabled {
		go func() {
			err := dashboard.Start(ctx, dashboard.StartOpts{
				Store:    store,
				Registry: registry,
				Port:     cfg.Dashboard.Port,
				Out:      cmd.OutOrStdout(),
			})
			if err != nil {
				log.Printf("dashboard: %v", err)
			}
		}()
	}

	return daemon.Run(ctx)
}
