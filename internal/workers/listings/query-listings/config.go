// internal/workers/listings/query-listings/config.go
package querylistings

import (
	"time"

	"listing-service/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	PageSize int
}

// LoadConfig reads the worker's timeout and the default page size.
func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:  config.GetDuration(wc.Timeout),
		PageSize: cfg.Listings.PageSize,
	}
}
