package core

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"tunepilot/internal/i18n"
)

// Engine is the surface exposed to the calling agent/tool layer. Every
// operation returns a short natural-language status string meant for
// speech synthesis; resolution and playback failures are folded into
// those strings rather than raised.
type Engine struct {
	resolver *Resolver
	orch     *Orchestrator
	expander *Expander
	catalog  Catalog
	sim      Similarity
	loc      *i18n.Localizer
	cfg      *Config
	logger   *zap.Logger

	expansions sync.WaitGroup
}

func NewEngine(catalog Catalog, sim Similarity, newSeen func() SeenSet,
	loc *i18n.Localizer, cfg *Config, logger *zap.Logger) *Engine {
	return &Engine{
		resolver: NewResolver(catalog, sim, cfg.Resolver, logger.Named("resolver")),
		orch:     NewOrchestrator(catalog, cfg.App, logger.Named("orchestrator")),
		expander: NewExpander(catalog, cfg.Queue, newSeen, logger.Named("expander")),
		catalog:  catalog,
		sim:      sim,
		loc:      loc,
		cfg:      cfg,
		logger:   logger,
	}
}

// PlayQuery resolves a free-text request to a track, plays it and kicks
// off queue expansion seeded by the track's primary credited artist.
func (e *Engine) PlayQuery(ctx context.Context, query string) string {
	result, err := e.resolver.Resolve(ctx, query)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return e.loc.T("error.no_match", query)
		}
		e.logger.Error("resolution failed", zap.String("query", query), zap.Error(err))
		return e.loc.T("error.generic")
	}

	target := PlaybackTarget{
		TrackURI:      result.Track.URI,
		SeedArtistURI: result.Track.PrimaryArtist().URI,
	}

	if _, err := e.play(ctx, target); err != nil {
		if errors.Is(err, ErrNoActiveDevice) {
			return e.loc.T("error.no_device")
		}
		e.logger.Error("playback failed", zap.String("trackURI", target.TrackURI), zap.Error(err))
		return e.loc.T("error.play_failed")
	}

	e.expandAsync(target.TrackURI, target.SeedArtistURI)

	return e.loc.T("status.now_playing", result.Track.Title, result.Track.ArtistNames())
}

// Pause pauses the current playback.
func (e *Engine) Pause(ctx context.Context) string {
	if err := e.orch.Pause(ctx); err != nil {
		e.logger.Warn("pause failed", zap.Error(err))
		return e.loc.T("error.pause_failed")
	}
	return e.loc.T("status.paused")
}

// SkipNext skips to the next track in the queue.
func (e *Engine) SkipNext(ctx context.Context) string {
	if err := e.orch.SkipNext(ctx); err != nil {
		e.logger.Warn("skip failed", zap.Error(err))
		return e.loc.T("error.skip_failed")
	}
	return e.loc.T("status.skipped")
}

// PlayPlaylist fuzzy-matches one of the user's playlists by name only and
// plays the best match as a playback context.
func (e *Engine) PlayPlaylist(ctx context.Context, name string) string {
	playlists, err := e.catalog.ListUserPlaylists(ctx)
	if err != nil {
		e.logger.Error("playlist listing failed", zap.Error(err))
		return e.loc.T("error.generic")
	}

	var best Playlist
	bestScore := 0.0
	for _, playlist := range playlists {
		if score := e.sim.Score(name, playlist.Name); score > bestScore {
			best = playlist
			bestScore = score
		}
	}
	if best.URI == "" {
		return e.loc.T("error.playlist_not_found")
	}

	if _, err := e.orch.PlayContext(ctx, best.URI); err != nil {
		if errors.Is(err, ErrNoActiveDevice) {
			return e.loc.T("error.no_device")
		}
		e.logger.Error("playlist playback failed", zap.String("playlist", best.Name), zap.Error(err))
		return e.loc.T("error.playlist_failed")
	}

	return e.loc.T("status.playlist_playing", best.Name)
}

// play issues the playback command, allowing one bounded retry after a
// device boot-wait when no device was reachable on the first attempt.
func (e *Engine) play(ctx context.Context, target PlaybackTarget) (PlaybackOutcome, error) {
	outcome, err := e.orch.Play(ctx, target)
	if errors.Is(err, ErrNoActiveDevice) && e.cfg.App.DeviceBootWait > 0 {
		e.logger.Info("no device yet, waiting for playback client",
			zap.Duration("budget", e.cfg.App.DeviceBootWait))
		if _, waitErr := e.orch.WaitForDevice(ctx); waitErr == nil {
			return e.orch.Play(ctx, target)
		}
	}
	return outcome, err
}

// expandAsync runs queue expansion off the caller's path so the status
// string returns as soon as playback starts. Each expansion gets its own
// bounded context; Wait blocks until in-flight expansions drain.
func (e *Engine) expandAsync(trackURI, artistURI string) {
	e.expansions.Add(1)
	go func() {
		defer e.expansions.Done()

		ctx := context.Background()
		if e.cfg.Queue.ExpandTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.cfg.Queue.ExpandTimeout)
			defer cancel()
		}

		e.expander.Expand(ctx, trackURI, artistURI)
	}()
}

// Wait blocks until all in-flight queue expansions have finished.
func (e *Engine) Wait() {
	e.expansions.Wait()
}
