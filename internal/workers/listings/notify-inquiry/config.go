// internal/workers/listings/notify-inquiry/config.go
package notifyinquiry

import (
	"time"

	"listing-service/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
