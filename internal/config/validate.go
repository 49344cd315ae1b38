package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a command needs. Mode is one of "serve",
// "store", "batch" or "calc". Projection settings are checked in every mode;
// match weights are validated by the scorer package.
func (c *Config) Validate(mode string) error {
	var errs []string

	errs = append(errs, validateProjection(c.Projection)...)

	switch mode {
	case "calc":
	case "store":
		errs = append(errs, validateStore(c.Store)...)
	case "batch":
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 64 {
			errs = append(errs, "batch.max_concurrent must be between 1 and 64")
		}
	case "serve":
		errs = append(errs, validateStore(c.Store)...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimitRPS <= 0 {
			errs = append(errs, "server.rate_limit_rps must be > 0")
		}
		if c.Server.RateLimitBurst < 1 {
			errs = append(errs, "server.rate_limit_burst must be >= 1")
		}
		if c.Server.RequestTimeoutSecs < 1 {
			errs = append(errs, "server.request_timeout_secs must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStore(s StoreConfig) []string {
	var errs []string
	switch s.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", s.Driver))
	}
	if s.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	if s.ConnectRetries < 0 {
		errs = append(errs, "store.connect_retries must be >= 0")
	}
	return errs
}

func validateProjection(p ProjectionConfig) []string {
	var errs []string
	for _, name := range Approaches {
		a, _ := p.Approach(name)
		if a.HoursPerClient < 0 {
			errs = append(errs, fmt.Sprintf("projection.%s.hours_per_client must be >= 0", name))
		}
		if a.Fee < 0 {
			errs = append(errs, fmt.Sprintf("projection.%s.fee must be >= 0", name))
		}
	}
	if p.DefaultApproach != "diy" && p.DefaultApproach != "advisory" {
		errs = append(errs, "projection.default_approach must be diy or advisory")
	}
	return errs
}
