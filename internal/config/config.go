// Package config provides client configuration and the persisted
// credentials store for phrase-batch.
package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultBaseURL is the Phrase TMS (Memsource) API root.
const DefaultBaseURL = "https://cloud.memsource.com/web"

// Config holds runtime settings for the client. Values come from the
// environment with defaults matching the behavior users already rely on.
type Config struct {
	// BaseURL is the API root without the /api2/v1 suffix.
	BaseURL string `env:"PHRASE_BASE_URL" env-default:"https://cloud.memsource.com/web"`

	// PageSize is the page size requested from paginated list endpoints.
	PageSize int `env:"PHRASE_PAGE_SIZE" env-default:"50"`

	// DownloadWorkers bounds concurrent bilingual export downloads.
	DownloadWorkers int `env:"PHRASE_DOWNLOAD_WORKERS" env-default:"10"`

	// StatusWorkers bounds concurrent setStatus calls within one chunk.
	StatusWorkers int `env:"PHRASE_STATUS_WORKERS" env-default:"50"`

	// StatusBatchSize is the chunk size for bulk status updates. Chunks run
	// sequentially so in-flight request count stays bounded for large job sets.
	StatusBatchSize int `env:"PHRASE_STATUS_BATCH_SIZE" env-default:"50"`

	// StatusRetries is the retry budget for a single setStatus call.
	StatusRetries int `env:"PHRASE_STATUS_RETRIES" env-default:"3"`

	// RequestsPerSecond paces all API calls client-side. Zero disables pacing.
	RequestsPerSecond float64 `env:"PHRASE_REQUESTS_PER_SECOND" env-default:"8"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
