package core

import (
	"time"
)

const (
	// DefaultArtistThreshold is the similarity floor below which an
	// artist-hinted candidate is rejected outright.
	DefaultArtistThreshold = 40.0
	// DefaultConfidenceThreshold is the combined score a strategy result
	// must reach to be trusted without running the fallback.
	DefaultConfidenceThreshold = 94.0
	// DefaultSearchPageSize is the catalog search page size.
	DefaultSearchPageSize = 50
	// DefaultMaxSearchTracks caps candidates scanned per strategy.
	DefaultMaxSearchTracks = 100
	// DefaultQueueMaxResults is the recommendation queue size built after
	// a resolved play.
	DefaultQueueMaxResults = 20
	// MaxQueueResults is the hard cap on one expansion.
	MaxQueueResults = 30
	// DefaultFetchConcurrency bounds parallel top-track lookups.
	DefaultFetchConcurrency = 4
	// DefaultSeenSetCapacity sizes the dedup set backing one expansion.
	DefaultSeenSetCapacity = 4096
	// DefaultServerPort is the HTTP control surface port.
	DefaultServerPort = 8080
)

type Config struct {
	Spotify  SpotifyConfig
	Resolver ResolverConfig
	Queue    QueueConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenPath    string
	Market       string
	RatePerSec   float64
}

type ResolverConfig struct {
	ArtistThreshold     float64
	ConfidenceThreshold float64
	PageSize            int
	MaxTracks           int
	CatalogTimeout      time.Duration
}

type QueueConfig struct {
	MaxResults       int
	FetchConcurrency int
	ExpandTimeout    time.Duration
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language           string
	DeviceBootWait     time.Duration
	DevicePollInterval time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL: "http://localhost:8080/callback",
			TokenPath:   "./spotify_token.json",
			Market:      "US",
			RatePerSec:  10,
		},
		Resolver: ResolverConfig{
			ArtistThreshold:     DefaultArtistThreshold,
			ConfidenceThreshold: DefaultConfidenceThreshold,
			PageSize:            DefaultSearchPageSize,
			MaxTracks:           DefaultMaxSearchTracks,
			CatalogTimeout:      10 * time.Second,
		},
		Queue: QueueConfig{
			MaxResults:       DefaultQueueMaxResults,
			FetchConcurrency: DefaultFetchConcurrency,
			ExpandTimeout:    60 * time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:           "en",
			DeviceBootWait:     15 * time.Second,
			DevicePollInterval: 2 * time.Second,
		},
	}
}
