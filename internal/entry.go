// Package internal provides the application entry points behind each command.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/agenda-search/internal/action"
	"github.com/starford/agenda-search/internal/agenda"
	"github.com/starford/agenda-search/internal/alfred"
	"github.com/starford/agenda-search/internal/api"
	"github.com/starford/agenda-search/internal/mcpserver"
	"github.com/starford/agenda-search/internal/models"
	"github.com/starford/agenda-search/internal/results"
	"github.com/starford/agenda-search/internal/searchservice"
)

// RunSearch answers one launcher query and writes Script Filter feedback.
// On failure a single diagnostic item is written and the error returned.
func RunSearch(ctx context.Context, req searchservice.Request, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := app.logger()

	entries, err := app.search(ctx, logger, req)
	if err != nil {
		logger.Error("search failed", slog.String("error", err.Error()))
		if rerr := alfred.RenderError(app.out, err); rerr != nil {
			logger.Error("render failed", slog.String("error", rerr.Error()))
		}
		return err
	}
	return alfred.Render(app.out, entries)
}

func (a *application) search(ctx context.Context, logger *slog.Logger, req searchservice.Request) ([]models.Entry, error) {
	svc, closeFn, err := a.service(ctx, logger)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return svc.Search(ctx, req)
}

// RunAction decodes an action identifier and writes the URL that performs it.
func RunAction(_ context.Context, arg string, opts ...Option) error {
	app := newApplication(opts)
	a, err := action.Parse(arg)
	if err != nil {
		return err
	}
	if app.config != nil {
		app.logger().Debug("resolved action",
			slog.String("kind", a.Kind.String()),
			slog.String("id", a.ID))
	}
	_, err = fmt.Fprintln(app.out, a.URL())
	return err
}

// RunMCP serves the search tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := app.logger()

	svc, closeFn, err := app.service(ctx, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc).ServeStdio()
}

// RunServe exposes the search service over HTTP until ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func RunServe(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("db_path", cfg.Agenda.ResolvedPath()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, closeFn, err := app.service(ctx, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func (a *application) logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
}

// service opens the store and wires the search pipeline. The returned
// function closes the store.
func (a *application) service(ctx context.Context, logger *slog.Logger) (*searchservice.Service, func(), error) {
	cfg := a.config

	loc, err := cfg.Search.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone: %w", err)
	}

	db, err := agenda.Open(ctx, cfg.Agenda.ResolvedPath(),
		agenda.WithTimeout(cfg.Agenda.QueryTimeout),
		agenda.WithLimit(cfg.Agenda.Limit))
	if err != nil {
		return nil, nil, err
	}

	assembler := results.NewAssembler(loc, cfg.Search.Workers, logger)
	svc := searchservice.NewService(db, assembler, logger)
	return svc, func() {
		if err := db.Close(); err != nil {
			logger.Warn("close store", slog.String("error", err.Error()))
		}
	}, nil
}
