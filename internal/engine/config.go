package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIBase    string        // Data API v3 root; overridden in tests
	YouTubeAPIKey     string        // default key when the caller passes none
	PageSize          int           // maxResults per page, capped at 100 by the API
	RequestTimeout    time.Duration // per page request
	RequestsPerSecond float64       // 0 = unpaced
	Retry             RetryConfig
	HTTPClient        *http.Client
	StateDir          string // SQLite key store + export history live here
	DatabaseURL       string // optional Postgres mirror; empty = disabled
}

// DefaultYouTubeAPIBase is the public Data API v3 root.
const DefaultYouTubeAPIBase = "https://www.googleapis.com/youtube/v3"

// MaxPageSize is the largest maxResults the comment endpoints accept.
const MaxPageSize = 100

var cfg = Config{
	YouTubeAPIBase: DefaultYouTubeAPIBase,
	PageSize:       MaxPageSize,
	RequestTimeout: 30 * time.Second,
	Retry:          DefaultRetryConfig,
	HTTPClient:     http.DefaultClient,
}

// Cfg exposes the engine configuration for sub-packages (sources, comments).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-valued fields fall back to the package defaults.
func Init(c Config) {
	if c.YouTubeAPIBase == "" {
		c.YouTubeAPIBase = DefaultYouTubeAPIBase
	}
	if c.PageSize <= 0 || c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = NewHTTPClient(c.RequestsPerSecond)
	}
	cfg = c
	Cfg = &cfg
}
