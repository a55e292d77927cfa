// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package server runs the CSI gRPC endpoint and a small gin side server that
// exposes health and Prometheus metrics.
//
// The side server is an http.Server with a gin.Engine as handler, so both
// servers shut down through the lifecycle hooks registered by serve.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"
	"github.com/stratastor/strata-csi/config"
	"github.com/stratastor/strata-csi/internal/constants"
	"github.com/stratastor/strata-csi/pkg/array"
	"github.com/stratastor/strata-csi/pkg/controller"
	"github.com/stratastor/strata-csi/pkg/errors"
	"google.golang.org/grpc"
)

type Server struct {
	cfg      *config.Config
	registry *array.Registry
	log      logger.Logger

	grpcServer *grpc.Server
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New wires the identity and controller services onto a gRPC server. Array
// mediators must be registered on registry before Start.
func New(cfg *config.Config, registry *array.Registry, l logger.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, registry: registry, log: l}

	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor(l)))
	csi.RegisterIdentityServer(s.grpcServer,
		controller.NewIdentityServer(cfg.Driver.Name, constants.Version, l))
	csi.RegisterControllerServer(s.grpcServer,
		controller.NewControllerServer(registry, l, controller.Options{SystemID: cfg.Driver.SystemID}))

	if cfg.Server.HTTPPort > 0 {
		s.httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler: s.engine(),
		}
	}
	return s, nil
}

func (s *Server) engine() *gin.Engine {
	switch s.cfg.Environment {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(s.log))
	registerRoutes(engine, s.cfg.Driver.Name, s.registry)
	return engine
}

// Start serves until ctx is cancelled or either server fails.
func (s *Server) Start(ctx context.Context) error {
	lis, err := listen(s.cfg.Server.Endpoint)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	if len(s.registry.Types()) == 0 {
		s.log.Warn("No array mediators registered, volume operations will fail")
	}

	errChan := make(chan error, 2)

	go func() {
		s.log.Info("Serving CSI endpoint", "endpoint", s.cfg.Server.Endpoint, "address", lis.Addr().String())
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- errors.Wrap(err, errors.ServerStart)
		}
	}()

	if s.httpServer != nil {
		go func() {
			s.log.Info("Serving health and metrics", "addr", s.httpServer.Addr)
			if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- errors.Wrap(err, errors.ServerStart).WithMetadata("addr", s.httpServer.Addr)
			}
		}()
	}

	select {
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops both servers, letting in-flight RPCs finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.grpcServer.GracefulStop()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, errors.ServerShutdown)
	}
	return nil
}

// Addr returns the bound gRPC address once serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
