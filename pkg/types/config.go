package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmedtools/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EntrezConfig holds settings for the E-utilities retrieval path.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline"`

	// BatchSize is the number of records fetched per EFetch request
	// (default 1000).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// FetchDelay is the fixed pause between consecutive EFetch requests,
	// applied after every batch except the last (default 3s). This is a
	// fixed-rate throttle, not adaptive backoff.
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`
}

// EDirectConfig holds settings for the local EDirect tool path.
type EDirectConfig struct {
	// InstallDir is the directory containing the EDirect executables
	// (esearch, efetch, xtract, ...).
	InstallDir string `json:"install_dir" yaml:"install_dir"`
}

// StoreConfig holds settings for the result store.
type StoreConfig struct {
	// DBPath is the path of the SQLite database file.
	DBPath string `json:"db_path" yaml:"db_path"`
}
