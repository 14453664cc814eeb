/*
 * Copyright 2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server implements the mock StrataCloud provider: an
// in-memory compute API with asynchronous operations. It backs the
// client test suites and `cumulus serve` for local development.
//
// We use gin's Engine behind an http.Server rather than gin.Run() so
// shutdown integrates with the lifecycle package: http.Server gives us
// Shutdown(), timeouts, and startup error control, while gin keeps the
// routing and middleware.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/cumulus/config"
	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stratastor/logger"
)

// Config for an in-process mock provider.
type Config struct {
	Environment   string
	OperationTick time.Duration
	Log           logger.Config
}

// Server is an in-process mock provider instance.
type Server struct {
	engine *gin.Engine
	store  *Store
}

func New(cfg Config) (*Server, error) {
	l, err := logger.NewTag(cfg.Log, "server")
	if err != nil {
		return nil, errors.Wrap(err, errors.LoggerError)
	}

	// Switch to debug mode for non-production environments
	switch cfg.Environment {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(l))

	engine.GET(constants.EndpointHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	store := NewStore(cfg.OperationTick)
	registerComputeRoutes(engine, store)

	return &Server{engine: engine, store: store}, nil
}

// Handler exposes the provider API for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store exposes the backing store so tests can inject operation
// outcomes.
func (s *Server) Store() *Store {
	return s.store
}

var srv *http.Server

// Start runs the mock provider on the given port until the context is
// cancelled or Shutdown is called.
func Start(ctx context.Context, port int) error {
	cfg := config.GetConfig()

	s, err := New(Config{
		Environment:   cfg.Environment,
		OperationTick: time.Duration(cfg.Server.OperationTickMs) * time.Millisecond,
		Log:           config.NewLoggerConfig(cfg),
	})
	if err != nil {
		return err
	}

	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "server")
	if err != nil {
		return errors.Wrap(err, errors.LoggerError)
	}

	srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("Mock provider listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.Wrap(err, errors.ServerBind)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the running server gracefully.
func Shutdown(ctx context.Context) error {
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ServerShutdown)
	}
	return nil
}
