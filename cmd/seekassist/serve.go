package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/seekassist/internal/api"
	"github.com/matiasleandrokruk/seekassist/internal/api/handlers"
	"github.com/matiasleandrokruk/seekassist/internal/domain/editor"
	"github.com/matiasleandrokruk/seekassist/internal/mcp"
	"github.com/matiasleandrokruk/seekassist/internal/server"
	"github.com/matiasleandrokruk/seekassist/internal/version"
	"github.com/matiasleandrokruk/seekassist/pkg/auth"
)

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr  string
		watch string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor panel API over HTTP",
		Long: `Serve the editor panel API. Every /api/v1 route needs a bearer token
issued with "seekassist token <client>"; JWT_SECRET must be set.

With --watch, the file is followed on disk and its changes are streamed to
/api/v1/events. Fixes only reach it through a /fix request naming its path
with apply set.`,
		Args: checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.RequireSecret(); err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return withApp(ctx, opts, func(a *app) error {
				if addr != "" {
					a.cfg.Addr = addr
				}
				if watch != "" {
					doc, err := editor.Open(watch, a.bus)
					if err != nil {
						return err
					}
					go func() {
						if err := editor.Watch(ctx, doc, a.logger); err != nil {
							a.logger.Warn("editor watch stopped", "path", doc.CurrentFilePath(), "error", err)
						}
					}()
				}
				return serve(ctx, a)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default SEEKASSIST_ADDR or 127.0.0.1:8765)")
	cmd.Flags().StringVar(&watch, "watch", "", "file to follow and stream changes of")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	router := api.NewRouter(api.Deps{
		Assistant: a.orch,
		Keys:      a.keys,
		History:   a.history,
		Bus:       a.bus,
		Settings:  handlers.SettingsInfo{Provider: a.cfg.Provider, Model: a.cfg.Model},
		Logger:    a.logger,
	})

	scfg := server.DefaultConfig()
	scfg.Addr = a.cfg.Addr
	srv := server.NewServer(a.db, router, scfg, a.logger)

	a.notify.Notify(LevelFlash, fmt.Sprintf("%s listening on http://%s", version.Name, scfg.Addr))
	if !a.keys.Valid() {
		a.notify.Warn(`no API key configured; run "seekassist key set" or PUT /api/v1/settings/api-key`)
	}
	return srv.Run(ctx)
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the assistant as MCP tools over stdio",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			// stdout carries the protocol; notices and logs go to stderr.
			mcpOpts := *opts
			mcpOpts.out = opts.errOut
			return withApp(ctx, &mcpOpts, func(a *app) error {
				return mcp.NewServer(a.orch, mcp.Options{Bus: a.bus, Logger: a.logger}).Run(ctx)
			})
		},
	}
}
