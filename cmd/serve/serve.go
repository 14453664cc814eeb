// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"context"
	"os"
	"time"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/stratastor/cumulus/config"
	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/autosync"
	"github.com/stratastor/cumulus/pkg/lifecycle"
	"github.com/stratastor/cumulus/pkg/server"
	"github.com/stratastor/logger"
)

var detached bool

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock provider server",
		Run:   runServe,
	}

	cmd.Flags().BoolVarP(&detached, "detach", "d", false, "Run as a daemon")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) {
	lcfg := config.NewLoggerConfig(config.GetConfig())
	log, err := logger.NewTag(lcfg, "serve")
	if err != nil {
		panic(err)
	}

	cc := config.GetConfig()
	pidFile := constants.CumulusPIDFilePath
	// Check for existing instance before proceeding
	if err := lifecycle.EnsureSingleInstance(pidFile); err != nil {
		log.Error("Failed to start: %v", err)
		os.Exit(1)
	}

	if detached {
		ctx := &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			LogFileName: cc.Logs.Path,
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        []string{"cumulus", "serve"},
		}

		d, err := ctx.Reborn()
		if err != nil {
			log.Error("Failed to start daemon: %v", err)
			os.Exit(1)
		}

		if d != nil {
			log.Info("Cumulus is running as a daemon")
			return
		}
		defer ctx.Release()
	}

	startServer()
}

func startServer() {
	lcfg := config.NewLoggerConfig(config.GetConfig())
	log, err := logger.NewTag(lcfg, "serve")
	if err != nil {
		panic(err)
	}
	cfg := config.GetConfig()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lifecycle.RegisterContextCanceller(cancel)

	lifecycle.RegisterShutdownHook(func() {
		log.Info("Shutting down server...")
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Error during server shutdown: %v", err)
		}
	})

	// Start handling lifecycle signals (e.g., SIGTERM, SIGHUP)
	go lifecycle.HandleSignals(ctx)

	if cfg.Sync.Enabled {
		startAutosync(log)
	}

	log.Info("Starting Cumulus server on port %d...", cfg.Server.Port)
	if err := server.Start(ctx, cfg.Server.Port); err != nil {
		log.Error("Failed to start server: %v", err)
	}
}

// startAutosync brings up the metadata sync manager alongside the
// server so registered policies run while it is up.
func startAutosync(log logger.Logger) {
	cfg := config.GetConfig()
	timeout, err := time.ParseDuration(cfg.Provider.RequestTimeout)
	if err != nil {
		timeout = 0
	}

	scope, err := compute.NewScope(compute.ScopeConfig{
		Endpoint:      cfg.Provider.Endpoint,
		Project:       cfg.Provider.Project,
		Zone:          cfg.Provider.Zone,
		Token:         cfg.Provider.Token,
		PollInterval:  time.Duration(cfg.Provider.PollIntervalMs) * time.Millisecond,
		Timeout:       timeout,
		AllowInsecure: cfg.Provider.AllowInsecure,
	})
	if err != nil {
		log.Error("Failed to create sync scope", "error", err)
		return
	}

	manager, err := autosync.GetManager(scope, config.GetStateDir())
	if err != nil {
		log.Error("Failed to create sync manager", "error", err)
		return
	}

	if err := manager.Start(); err != nil {
		log.Error("Failed to start sync manager", "error", err)
		return
	}

	lifecycle.RegisterShutdownHook(func() {
		if err := manager.Stop(); err != nil {
			log.Error("Error stopping sync manager", "error", err)
		}
	})
}
