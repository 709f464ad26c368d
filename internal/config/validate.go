package config

import (
	"errors"
	"fmt"

	"github.com/mgpai22/subko/internal/pipeline"
	"github.com/mgpai22/subko/internal/translate"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	provider := translate.Provider(c.Provider)
	if !translate.IsProvider(provider) {
		errs = append(errs, fmt.Errorf("provider %q is not supported", c.Provider))
	}
	if c.Translation.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("translation.batch_size must be positive, got %d", c.Translation.BatchSize))
	}
	if c.Translation.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("translation.concurrency must be positive, got %d", c.Translation.Concurrency))
	}
	if c.Translation.Retries < 0 {
		errs = append(errs, fmt.Errorf("translation.retries cannot be negative, got %d", c.Translation.Retries))
	}
	if _, err := pipeline.ParseAlign(c.Translation.Align); err != nil {
		errs = append(errs, fmt.Errorf("translation.align: %w", err))
	}
	if c.RequestTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds cannot be negative, got %d", c.RequestTimeoutSeconds))
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		errs = append(errs, errors.New("cache.path is required when cache is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
