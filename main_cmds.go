package main

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytcomments/internal/commentserver"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/comments"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as an MCP server (HTTP on MCP_PORT, or stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mcpPort := env.Str("MCP_PORT", "8892")

			store, err := comments.OpenStore(engine.Cfg.StateDir)
			if err != nil {
				return err
			}
			defer store.Close()

			deps := commentserver.Deps{Store: store, Opener: comments.SystemOpener{}}
			if engine.Cfg.DatabaseURL != "" {
				mirror, err := comments.ConnectPGMirror(ctx, engine.Cfg.DatabaseURL)
				if err != nil {
					slog.Warn("postgres mirror disabled", slog.Any("error", err))
				} else {
					defer mirror.Close()
					deps.Mirror = mirror
				}
			}

			slog.Info("starting go_ytcomments", slog.String("port", mcpPort))

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "go_ytcomments",
				Version: version,
			}, nil)
			n := commentserver.RegisterTools(server, deps)
			slog.Info("tools registered", slog.Int("count", n))

			return mcpserver.Run(server, mcpserver.Config{
				Name:         "go_ytcomments",
				Version:      version,
				Port:         mcpPort,
				WriteTimeout: 600 * time.Second,
				Metrics:      engine.FormatMetrics,
			})
		},
	}
}

func newKeyCmd() *cobra.Command {
	key := &cobra.Command{
		Use:   "key",
		Short: "Show or save the YouTube Data API key",
	}
	key.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the saved API key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := comments.OpenStore(engine.Cfg.StateDir)
				if err != nil {
					return err
				}
				defer store.Close()

				k, ok, err := store.GetAPIKey(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no API key saved; run: go_ytcomments key set KEY")
				}
				fmt.Fprintln(cmd.OutOrStdout(), k)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY",
			Short: "Save an API key for later runs",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := comments.OpenStore(engine.Cfg.StateDir)
				if err != nil {
					return err
				}
				defer store.Close()

				if err := store.SetAPIKey(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
				return nil
			},
		},
	)
	return key
}

func newHistoryCmd() *cobra.Command {
	var (
		videoID string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := comments.OpenStore(engine.Cfg.StateDir)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListExports(cmd.Context(), videoID, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tVIDEO\tROWS\tREPLIES\tPATH")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", e.CreatedAt, e.VideoID, e.Rows, e.Replies, e.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&videoID, "video", "", "Only exports of this video ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max entries")
	return cmd
}
