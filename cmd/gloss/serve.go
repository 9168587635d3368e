// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/davetashner/gloss/internal/httpapi"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// Serve command flags.
var (
	serveAddr        string
	serveAllowOrigin string
)

// serveCmd exposes the action envelope over HTTP for the browser extension.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the action API over HTTP",
	Long: `Serve the action API the browser extension talks to.

  POST /v1/action   one action envelope in, one response envelope out
  GET  /healthz     liveness and version

The server listens on 127.0.0.1:8787 by default; see serve.addr and
serve.allow_origin in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = a.cfg.ServeAddr()
		}
		var opts []httpapi.Option
		if origin := firstNonEmpty(serveAllowOrigin, a.cfg.Serve.AllowOrigin); origin != "" {
			opts = append(opts, httpapi.WithAllowedOrigin(origin))
		}
		httpapi.Version = Version
		return listenAndServe(cmd.Context(), cmd.ErrOrStderr(), "api", addr, httpapi.NewServer(a.orch, opts...))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default 127.0.0.1:8787)")
	serveCmd.Flags().StringVar(&serveAllowOrigin, "allow-origin", "", "browser origin allowed to call the API, e.g. chrome-extension://<id> (default none)")
}

// listenAndServe runs h on addr until ctx is cancelled or the process gets
// SIGINT or SIGTERM, then shuts down gracefully.
func listenAndServe(ctx context.Context, w io.Writer, name, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return exitError(ExitInvalidArgs, "listen on %s: %v", addr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	_, _ = fmt.Fprintf(w, "gloss %s listening on http://%s\n", name, ln.Addr())
	slog.Info("server started", "server", name, "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("server stopped", "server", name)
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
