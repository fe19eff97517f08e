package types

import "time"

// CatalogConfig holds settings for talking to the upstream topics catalog.
type CatalogConfig struct {
	// BaseURL is the catalog API root (no trailing slash).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// UserAgent is the User-Agent header sent with every catalog request.
	// The catalog rejects non-browser agents.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Referer is the Referer header sent with every catalog request.
	Referer string `json:"referer" yaml:"referer"`

	// SearchTimeout bounds one search request (default 30s).
	SearchTimeout time.Duration `json:"search_timeout" yaml:"search_timeout"`

	// DownloadTimeout bounds one document download (default 60s).
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout"`

	// ConnectTimeout bounds connection establishment (default 5s).
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`

	// Retries is the number of additional attempts after a failed search
	// request (default 1). Downloads are never retried automatically.
	Retries int `json:"retries" yaml:"retries"`

	// RateLimit caps download requests per second against the catalog host
	// (default 4).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Concurrency is the number of parallel downloads in a batch (default 3).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// SearchConfig holds settings for the result fetcher and its cache.
type SearchConfig struct {
	// PageSize is the default number of records per page (default 10).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxPageSize is the upper bound a caller-supplied page size is clamped
	// to (default 100).
	MaxPageSize int `json:"max_page_size" yaml:"max_page_size"`

	// Staleness is how long a cached result page stays fresh (default 5m).
	// After expiry the stale page is served while a background refresh runs.
	Staleness time.Duration `json:"staleness" yaml:"staleness"`
}

// RetrievalConfig holds settings for document retrieval and delivery.
type RetrievalConfig struct {
	// DownloadsDir is where the directory sink writes delivered artifacts.
	DownloadsDir string `json:"downloads_dir" yaml:"downloads_dir"`

	// InspectPDF controls whether downloaded payloads are validated and page
	// counts recorded (default true).
	InspectPDF bool `json:"inspect_pdf" yaml:"inspect_pdf"`
}

// HistoryConfig holds settings for the local history ledger.
type HistoryConfig struct {
	// Path is the sqlite database file. Empty disables history.
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds settings for the HTTP gateway.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins lists CORS origins the gateway accepts (default ["*"]).
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// Config groups all settings. Every value is externally configurable; none
// are hardcoded in core logic.
type Config struct {
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	History   HistoryConfig   `json:"history" yaml:"history"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
