// Package spotify provides the Spotify Web API catalog and playback
// client behind the core.Catalog interface.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"tunepilot/internal/core"
)

const (
	// FilePermission is the permission for token files
	FilePermission = 0600
	// DefaultMarket is the country code for market-scoped lookups
	DefaultMarket = "US"
	// PlaylistPageSize is the page size for user playlist listing
	PlaylistPageSize = 50
)

type Client struct {
	config  *core.SpotifyConfig
	logger  *zap.Logger
	client  *spotify.Client
	auth    *spotifyauth.Authenticator
	limiter *rate.Limiter
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserReadCurrentlyPlaying,
			spotifyauth.ScopePlaylistReadPrivate,
		),
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)

	ratePerSec := config.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 10
	}

	return &Client{
		config:  config,
		logger:  logger,
		auth:    auth,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

func (c *Client) Authenticate(ctx context.Context) error {
	token, err := c.loadToken()
	if err != nil {
		c.logger.Info("No saved token found, starting OAuth flow")
		return c.startOAuthFlow(ctx)
	}

	client := spotify.New(c.auth.Client(ctx, token))
	c.client = client

	user, err := client.CurrentUser(ctx)
	if err != nil {
		c.logger.Warn("Saved token invalid, starting OAuth flow", zap.Error(err))
		return c.startOAuthFlow(ctx)
	}

	c.logger.Info("Authenticated successfully", zap.String("user", user.DisplayName))
	return nil
}

// SearchTracksPage issues one page of free-text track search.
func (c *Client) SearchTracksPage(ctx context.Context, text string, limit, offset int) ([]core.Track, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	results, err := c.client.Search(ctx, text, spotify.SearchTypeTrack,
		spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if results.Tracks == nil {
		return nil, nil
	}

	tracks := make([]core.Track, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(&results.Tracks.Tracks[i]))
	}
	return tracks, nil
}

func (c *Client) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	track, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	converted := convertFullTrack(track)
	return &converted, nil
}

func (c *Client) GetRelatedArtists(ctx context.Context, artistID string) ([]core.Artist, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	related, err := c.client.GetRelatedArtists(ctx, spotify.ID(artistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get related artists: %w", err)
	}

	artists := make([]core.Artist, 0, len(related))
	for i := range related {
		artists = append(artists, core.Artist{
			ID:   string(related[i].ID),
			Name: related[i].Name,
			URI:  string(related[i].URI),
		})
	}
	return artists, nil
}

func (c *Client) GetArtistTopTracks(ctx context.Context, artistID string) ([]core.Track, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	topTracks, err := c.client.GetArtistsTopTracks(ctx, spotify.ID(artistID), c.market())
	if err != nil {
		return nil, fmt.Errorf("failed to get top tracks: %w", err)
	}

	tracks := make([]core.Track, 0, len(topTracks))
	for i := range topTracks {
		tracks = append(tracks, convertFullTrack(&topTracks[i]))
	}
	return tracks, nil
}

// ListDevices fetches the device list fresh; device state is never
// cached.
func (c *Client) ListDevices(ctx context.Context) ([]core.Device, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	devices, err := c.client.PlayerDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player devices: %w", err)
	}

	converted := make([]core.Device, 0, len(devices))
	for _, device := range devices {
		converted = append(converted, core.Device{
			ID:     device.ID.String(),
			Name:   device.Name,
			Active: device.Active,
		})
	}
	return converted, nil
}

func (c *Client) StartPlayback(ctx context.Context, deviceID, trackURI string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	id := spotify.ID(deviceID)
	err := c.client.PlayOpt(ctx, &spotify.PlayOptions{
		DeviceID: &id,
		URIs:     []spotify.URI{spotify.URI(trackURI)},
	})
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	c.logger.Info("Playback started",
		zap.String("trackURI", trackURI),
		zap.String("deviceID", deviceID))
	return nil
}

func (c *Client) StartContextPlayback(ctx context.Context, deviceID, contextURI string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	id := spotify.ID(deviceID)
	uri := spotify.URI(contextURI)
	err := c.client.PlayOpt(ctx, &spotify.PlayOptions{
		DeviceID:        &id,
		PlaybackContext: &uri,
	})
	if err != nil {
		return fmt.Errorf("failed to start context playback: %w", err)
	}

	c.logger.Info("Context playback started",
		zap.String("contextURI", contextURI),
		zap.String("deviceID", deviceID))
	return nil
}

func (c *Client) QueueTrack(ctx context.Context, deviceID, trackURI string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	id := spotify.ID(deviceID)
	err := c.client.QueueSongOpt(ctx, spotify.ID(core.CatalogID(trackURI)),
		&spotify.PlayOptions{DeviceID: &id})
	if err != nil {
		return fmt.Errorf("failed to queue track: %w", err)
	}

	c.logger.Debug("Track queued", zap.String("trackURI", trackURI))
	return nil
}

func (c *Client) PausePlayback(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	if err := c.client.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

func (c *Client) SkipNext(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	if err := c.client.Next(ctx); err != nil {
		return fmt.Errorf("failed to skip track: %w", err)
	}
	return nil
}

func (c *Client) ListUserPlaylists(ctx context.Context) ([]core.Playlist, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	page, err := c.client.CurrentUsersPlaylists(ctx, spotify.Limit(PlaylistPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	playlists := make([]core.Playlist, 0, len(page.Playlists))
	for i := range page.Playlists {
		playlists = append(playlists, core.Playlist{
			ID:   string(page.Playlists[i].ID),
			Name: page.Playlists[i].Name,
			URI:  string(page.Playlists[i].URI),
		})
	}
	return playlists, nil
}

// wait applies client-side rate limiting ahead of every remote call; the
// catalog enforces its own limits and rejects bursts.
func (c *Client) wait(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) market() string {
	if c.config.Market != "" {
		return c.config.Market
	}
	return DefaultMarket
}

func convertFullTrack(track *spotify.FullTrack) core.Track {
	artists := make([]core.Artist, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, core.Artist{
			ID:   string(artist.ID),
			Name: artist.Name,
			URI:  string(artist.URI),
		})
	}

	return core.Track{
		ID:          string(track.ID),
		Title:       track.Name,
		Artists:     artists,
		URI:         string(track.URI),
		ExternalURL: track.ExternalURLs["spotify"],
	}
}

func (c *Client) startOAuthFlow(ctx context.Context) error {
	state := "tunepilot-auth-state"
	authURL := c.auth.AuthURL(state)

	fmt.Printf("Please visit the following URL to authorize the application:\n%s\n", authURL)
	fmt.Print("Enter the authorization code: ")

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	token, err := c.auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if saveErr := c.saveToken(token); saveErr != nil {
		c.logger.Warn("Failed to save token", zap.Error(saveErr))
	}

	client := spotify.New(c.auth.Client(ctx, token))
	c.client = client

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	c.logger.Info("OAuth flow completed successfully", zap.String("user", user.DisplayName))
	return nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	file, err := os.Open(c.config.TokenPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}

	return tokenData.Token, nil
}

func (c *Client) saveToken(token *oauth2.Token) error {
	tokenData := TokenData{Token: token}

	data, err := json.MarshalIndent(tokenData, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.config.TokenPath, data, FilePermission)
}
