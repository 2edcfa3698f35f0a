package config

import (
	"fmt"
	"net/url"

	"github.com/heartmarshall/mclang/internal/classifier"
	"github.com/heartmarshall/mclang/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Paths.FullDir == "" || c.Paths.ValidDir == "" {
		return fmt.Errorf("paths.full_dir and paths.valid_dir must be set")
	}

	if err := c.Fetch.validate(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if err := c.Filter.validate(); err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	if c.Database.BatchSize <= 0 {
		return fmt.Errorf("database.batch_size must be > 0 (got %d)", c.Database.BatchSize)
	}

	return nil
}

func (f *FetchConfig) validate() error {
	for name, raw := range map[string]string{"manifest_url": f.ManifestURL, "resources_url": f.ResourcesURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL (got %q)", name, raw)
		}
	}
	switch f.Channel {
	case "release", "snapshot":
	default:
		return fmt.Errorf("channel must be release or snapshot (got %q)", f.Channel)
	}
	if f.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", f.MaxAttempts)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", f.Timeout)
	}
	if f.RetryMin <= 0 || f.RetryMax < f.RetryMin {
		return fmt.Errorf("retry_min must be > 0 and <= retry_max (got %s, %s)", f.RetryMin, f.RetryMax)
	}
	if f.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", f.Workers)
	}
	return nil
}

func (f *FilterConfig) validate() error {
	if _, err := classifier.ByName(f.RuleSet); err != nil {
		return fmt.Errorf("ruleset: %w", err)
	}
	if f.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", f.Workers)
	}

	locales, err := ResolveLocales(f.LocalesRaw, f.ExtendedLocales)
	if err != nil {
		return fmt.Errorf("locales: %w", err)
	}
	f.Locales = locales

	return nil
}

// ResolveLocales parses a comma-separated locale list (e.g. "en_us,zh_cn").
// An empty list selects the default locales, extended when requested.
func ResolveLocales(raw string, extended bool) ([]domain.Locale, error) {
	locales, err := domain.ParseLocaleList(raw)
	if err != nil {
		return nil, err
	}
	if len(locales) == 0 {
		return domain.DefaultLocales(extended), nil
	}
	return locales, nil
}
