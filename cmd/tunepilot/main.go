// Package main provides the TunePilot CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tunepilot/internal/core"
	httpserver "tunepilot/internal/http"
	"tunepilot/internal/i18n"
	"tunepilot/internal/spotify"
	"tunepilot/internal/store"
	"tunepilot/pkg/fuzzy"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunepilot",
	Short: "TunePilot - voice-friendly Spotify track resolution and queue expansion",
	Long: `TunePilot resolves free-text music requests ("here with me by d4vd") to
Spotify tracks with fuzzy matching, starts playback, and keeps the queue
going with tracks from related artists.`,
}

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Resolve a free-text query, play the best match and expand the queue",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the current playback",
	RunE:  runPause,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next track",
	RunE:  runNext,
}

var playlistCmd = &cobra.Command{
	Use:   "playlist [name]",
	Short: "Fuzzy-match one of your playlists by name and play it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlaylist,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control server",
	RunE:  runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("spotify-redirect-url", "http://localhost:8888/callback", "Spotify OAuth redirect URL")
	rootCmd.PersistentFlags().String("spotify-token-path", "", "Path to the saved OAuth token")
	rootCmd.PersistentFlags().String("spotify-market", "US", "Market for top-track lookups")
	rootCmd.PersistentFlags().Float64("artist-threshold", core.DefaultArtistThreshold, "Minimum artist similarity for artist-aware matches")
	rootCmd.PersistentFlags().Float64("confidence-threshold", core.DefaultConfidenceThreshold, "Combined score that accepts a match immediately")
	rootCmd.PersistentFlags().Int("search-page-size", core.DefaultSearchPageSize, "Search page size")
	rootCmd.PersistentFlags().Int("search-max-tracks", core.DefaultMaxSearchTracks, "Maximum candidates scanned per search strategy")
	rootCmd.PersistentFlags().Int("queue-max-results", core.DefaultQueueMaxResults, "Maximum tracks queued per expansion")
	rootCmd.PersistentFlags().Int("queue-fetch-concurrency", core.DefaultFetchConcurrency, "Parallel top-track fetches during expansion")
	rootCmd.PersistentFlags().Int("device-boot-wait-secs", 15, "How long to wait for a playback device to appear")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", core.DefaultServerPort, "HTTP server port")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	rootCmd.PersistentFlags().String("language", i18n.DefaultLanguage, fmt.Sprintf("Response language (%s)", supportedLangs))

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(playCmd, pauseCmd, nextCmd, playlistCmd, serveCmd)
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("TUNEPILOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureSpotify(cfg)
	configureResolver(cfg)
	configureQueue(cfg)
	configureServer(cfg)
	configureApp(cfg)

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.RedirectURL = viper.GetString("spotify-redirect-url")
	cfg.Spotify.TokenPath = viper.GetString("spotify-token-path")
	if cfg.Spotify.TokenPath == "" {
		cfg.Spotify.TokenPath = "./spotify_token.json"
	}
	if market := viper.GetString("spotify-market"); market != "" {
		cfg.Spotify.Market = market
	}
}

func configureResolver(cfg *core.Config) {
	if v := viper.GetFloat64("artist-threshold"); v > 0 {
		cfg.Resolver.ArtistThreshold = v
	}
	if v := viper.GetFloat64("confidence-threshold"); v > 0 {
		cfg.Resolver.ConfidenceThreshold = v
	}
	if v := viper.GetInt("search-page-size"); v > 0 {
		cfg.Resolver.PageSize = v
	}
	if v := viper.GetInt("search-max-tracks"); v > 0 {
		cfg.Resolver.MaxTracks = v
	}
}

func configureQueue(cfg *core.Config) {
	if v := viper.GetInt("queue-max-results"); v > 0 {
		cfg.Queue.MaxResults = v
	}
	if v := viper.GetInt("queue-fetch-concurrency"); v > 0 {
		cfg.Queue.FetchConcurrency = v
	}
}

func configureServer(cfg *core.Config) {
	if host := viper.GetString("server-host"); host != "" {
		cfg.Server.Host = host
	}
	if port := viper.GetInt("server-port"); port > 0 {
		cfg.Server.Port = port
	}
}

func configureApp(cfg *core.Config) {
	if lang := viper.GetString("language"); lang != "" {
		cfg.App.Language = lang
	}
	if v := viper.GetInt("device-boot-wait-secs"); v >= 0 {
		cfg.App.DeviceBootWait = time.Duration(v) * time.Second
	}
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func validateConfig() error {
	if config.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}

	if config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client secret is required")
	}

	return nil
}

func newEngine(ctx context.Context) (*core.Engine, error) {
	if err := validateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := spotifyClient.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	localizer := i18n.NewLocalizer(config.App.Language)

	newSeen := func() core.SeenSet {
		return store.NewSeenURIs(core.DefaultSeenSetCapacity, 0.001)
	}

	engine := core.NewEngine(
		spotifyClient,
		fuzzy.NewTokenSet(),
		newSeen,
		localizer,
		config,
		logger.Named("engine"),
	)

	return engine, nil
}

func runPlay(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := newEngine(ctx)
	if err != nil {
		return err
	}

	fmt.Println(engine.PlayQuery(ctx, strings.Join(args, " ")))

	// Queue expansion runs off the command path; let it finish before exit.
	engine.Wait()
	return nil
}

func runPause(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := newEngine(ctx)
	if err != nil {
		return err
	}

	fmt.Println(engine.Pause(ctx))
	return nil
}

func runNext(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := newEngine(ctx)
	if err != nil {
		return err
	}

	fmt.Println(engine.SkipNext(ctx))
	return nil
}

func runPlaylist(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := newEngine(ctx)
	if err != nil {
		return err
	}

	fmt.Println(engine.PlayPlaylist(ctx, strings.Join(args, " ")))
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := newEngine(ctx)
	if err != nil {
		return err
	}

	server := httpserver.NewServer(&config.Server, engine, logger.Named("http"))

	logger.Info("Starting TunePilot",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.String("language", config.App.Language))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("TunePilot stopped with error", zap.Error(err))
		return err
	}

	engine.Wait()
	logger.Info("TunePilot stopped gracefully")
	return nil
}
