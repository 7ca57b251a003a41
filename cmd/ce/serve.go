package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/api"
	"github.com/collaboreats/collaboreats/internal/config"
	"github.com/collaboreats/collaboreats/internal/debug"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "views",
	Short:   "Serve the recipe API over HTTP",
	Long: `Serve recipes, forks, comments and version trees as JSON.

  GET  /recipes                      root recipes (?owner=, ?since=, ?limit=, ?sort=)
  POST /recipes                      create a root recipe
  GET  /recipes/user/:ownerId        every version an owner created
  GET  /recipes/:id                  version, its tree's flat list, and the built tree
  POST /recipes/:id/versions         fork a version
  GET  /recipes/:id/recent           newest version in the tree
  GET  /recipes/:id/mostForked       version with the most direct forks
  GET  /recipes/:id/comments         comments on a version
  POST /recipes/:id/comments         add a comment
  GET  /healthz

Stops cleanly on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("addr") {
			serveAddr = config.GetString("serve.addr")
		}

		level := slog.LevelInfo
		if debug.Enabled() {
			level = slog.LevelDebug
		}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		if jsonOutput {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		}
		logger := slog.New(handler)

		srv := api.New(svc, api.Config{
			Addr:         serveAddr,
			ReadTimeout:  config.GetDuration("serve.read-timeout"),
			FetchTimeout: config.GetDuration("serve.fetch-timeout"),
			Version:      Version,
			Logger:       logger,
		})
		return srv.ListenAndServe(rootCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
