// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"context"
	"os"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/strata-csi/config"
	"github.com/stratastor/strata-csi/pkg/array"
	"github.com/stratastor/strata-csi/pkg/lifecycle"
	"github.com/stratastor/strata-csi/pkg/server"
)

var (
	detached   bool
	configPath string
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the CSI controller",
		Run:   runServe,
	}

	cmd.Flags().BoolVarP(&detached, "detach", "d", false, "Run as a daemon")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) {
	rc := config.LoadConfig(configPath)
	log, err := logger.NewTag(config.NewLoggerConfig(rc), "serve")
	if err != nil {
		panic(err)
	}

	if err := config.EnsureDirectories(); err != nil {
		log.Error("Failed to create config directory", "err", err)
		os.Exit(1)
	}

	pidFile := config.GetPIDFilePath()
	if detached || rc.Server.Daemonize {
		dctx := &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			LogFileName: rc.Logs.Path,
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        append([]string{os.Args[0], "serve"}, configArgs()...),
		}

		d, err := dctx.Reborn()
		if err != nil {
			log.Error("Failed to start daemon", "err", err)
			os.Exit(1)
		}
		if d != nil {
			log.Info("strata-csi is running as a daemon", "pid", d.Pid)
			return
		}
		defer dctx.Release()
	} else if err := lifecycle.EnsureSingleInstance(pidFile); err != nil {
		log.Error("Failed to start", "err", err)
		os.Exit(1)
	}

	if err := startServer(rc, log); err != nil {
		lifecycle.Shutdown()
		os.Exit(1)
	}
}

func configArgs() []string {
	if configPath == "" {
		return nil
	}
	return []string{"--config", configPath}
}

func startServer(cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lifecycle.RegisterContextCanceller(cancel)

	// Vendor mediators register their factories here.
	registry := array.NewRegistry()

	srv, err := server.New(cfg, registry, log)
	if err != nil {
		log.Error("Invalid server configuration", "err", err)
		return err
	}

	lifecycle.RegisterShutdownHook(func() {
		log.Info("Shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during server shutdown", "err", err)
		}
	})
	lifecycle.RegisterReloadHook(func() {
		log.Info("Reload requested, restart the driver to apply configuration changes")
	})

	go lifecycle.HandleSignals(ctx)

	log.Info("Starting strata-csi", "endpoint", cfg.Server.Endpoint, "http_port", cfg.Server.HTTPPort)
	if err := srv.Start(ctx); err != nil {
		log.Error("Server stopped with error", "err", err)
		return err
	}
	return nil
}
