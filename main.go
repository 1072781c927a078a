// go_ytcomments exports every comment and reply of a YouTube video to CSV.
//
// Runs as a one-shot CLI (go_ytcomments VIDEO) or, with `serve`, as an MCP
// server exposing export_comments, get_api_key, set_api_key, open_path and
// list_exports.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/comments"
	"github.com/anatolykoptev/go_ytcomments/internal/toolutil"
)

var version = "dev"

var (
	flagAPIKey  string
	flagOut     string
	flagOpen    bool
	flagPGURL   string
	flagVerbose bool
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "go_ytcomments VIDEO",
		Short: "Export all comments and replies of a YouTube video to CSV",
		Long: `Export every top-level comment and reply of a YouTube video to a CSV file.

VIDEO is a video ID or a watch, youtu.be or shorts URL. The API key comes from
--api-key, then YOUTUBE_API_KEY (environment or .env), then the key saved with
"go_ytcomments key set".`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(flagVerbose, cmd.Name() == "serve")
			initEngine()
		},
		RunE: runExport,
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	root.Flags().StringVar(&flagAPIKey, "api-key", "", "YouTube Data API key (or set YOUTUBE_API_KEY)")
	root.Flags().StringVarP(&flagOut, "out", "o", "", "Output CSV path (default: <videoId>.csv)")
	root.Flags().BoolVar(&flagOpen, "open", false, "Open the CSV with the system handler when done")
	root.Flags().StringVar(&flagPGURL, "pg-url", "", "Also copy rows into Postgres (or set DATABASE_URL)")

	root.AddCommand(newServeCmd(), newKeyCmd(), newHistoryCmd())
	return root
}

func setupLogging(verbose, server bool) {
	level := slog.LevelWarn
	if server {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func initEngine() {
	retry := engine.DefaultRetryConfig
	retry.MaxRetries = env.Int("HTTP_MAX_RETRIES", retry.MaxRetries)

	engine.Init(engine.Config{
		YouTubeAPIBase:    env.Str("YOUTUBE_API_BASE", engine.DefaultYouTubeAPIBase),
		YouTubeAPIKey:     env.Str("YOUTUBE_API_KEY", ""),
		PageSize:          env.Int("PAGE_SIZE", engine.MaxPageSize),
		RequestTimeout:    env.Duration("REQUEST_TIMEOUT", 30*time.Second),
		RequestsPerSecond: env.Float("REQUESTS_PER_SECOND", 0),
		Retry:             retry,
		StateDir:          env.Str("GO_YTCOMMENTS_HOME", comments.DefaultStateDir()),
		DatabaseURL:       env.Str("DATABASE_URL", ""),
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := comments.OpenStore(engine.Cfg.StateDir)
	if err != nil {
		// The key store is a fallback; a flag or env key still works without it.
		slog.Warn("key store unavailable", slog.Any("error", err))
	} else {
		defer store.Close()
	}

	var keys toolutil.KeyGetter
	if store != nil {
		keys = store
	}
	key, source, err := toolutil.ResolveAPIKey(ctx, flagAPIKey, keys)
	if err != nil {
		return err
	}
	slog.Debug("api key resolved", slog.String("source", source))

	in := comments.ExportInput{APIKey: key, Video: args[0], Out: flagOut}

	pgURL := flagPGURL
	if pgURL == "" {
		pgURL = engine.Cfg.DatabaseURL
	}
	if pgURL != "" {
		mirror, err := comments.ConnectPGMirror(ctx, pgURL)
		if err != nil {
			slog.Warn("postgres mirror disabled", slog.Any("error", err))
		} else {
			defer mirror.Close()
			in.Mirror = mirror
		}
	}

	res, err := comments.Export(ctx, in)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.RecordExport(ctx, res); err != nil {
			slog.Warn("export history not recorded", slog.Any("error", err))
		}
	}
	slog.Debug("metrics", slog.String("counters", engine.FormatMetrics()))

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", res.Rows, res.Path)

	if flagOpen {
		if err := (comments.SystemOpener{}).Open(res.AbsPath); err != nil {
			return err
		}
	}
	return nil
}
