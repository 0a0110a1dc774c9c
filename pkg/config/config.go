package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, fills report defaults and
// loads the timestamp location.
func Validate(cfg *Config) error {
	if err := validateTimestampFormat(&cfg.TimestampFormat); err != nil {
		return fmt.Errorf("timestamp_format: %w", err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.FileTimeout < 0 {
		return errors.New("file_timeout: must not be negative")
	}

	switch cfg.OnMalformedTimestamp {
	case "":
		cfg.OnMalformedTimestamp = MalformedSkipLine
	case MalformedSkipLine, MalformedSkipFile:
	default:
		return fmt.Errorf("on_malformed_timestamp: invalid value %q (must be skip_line or skip_file)", cfg.OnMalformedTimestamp)
	}

	if len(cfg.Reports) == 0 {
		return errors.New("reports: at least one report is required")
	}

	seen := make(map[string]bool, len(cfg.Reports))
	for i := range cfg.Reports {
		r := &cfg.Reports[i]
		if err := validateReport(r); err != nil {
			return fmt.Errorf("reports[%d] (%s): %w", i, r.Name, err)
		}
		if seen[r.Name] {
			return fmt.Errorf("reports[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
		if len(r.LogSources) == 0 && len(cfg.LogSources) == 0 {
			return fmt.Errorf("reports[%d] (%s): log_sources: at least one log source is required", i, r.Name)
		}
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// SourcesFor returns the log sources a report reads, falling back to the
// top-level list.
func (c *Config) SourcesFor(r *ReportConfig) []string {
	if len(r.LogSources) > 0 {
		return r.LogSources
	}
	return c.LogSources
}

func validateTimestampFormat(tf *TimestampConfig) error {
	if tf.Layout == "" {
		return errors.New("layout is required")
	}

	switch tf.Location {
	case "", "UTC":
		tf.location = time.UTC
	default:
		loc, err := time.LoadLocation(tf.Location)
		if err != nil {
			return fmt.Errorf("invalid location: %w", err)
		}
		tf.location = loc
	}

	return nil
}

func validateReport(r *ReportConfig) error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Threshold < 0 || r.PositionalThreshold < 0 || r.Interval < 0 {
		return errors.New("threshold, positional_threshold and interval must not be negative")
	}

	switch r.ReportTypeEnum() {
	case ReportTypeLifecycle:
		applyLifecycleDefaults(r)
	case ReportTypeDetail:
		applyDetailDefaults(r)
	case ReportTypeRequest:
		applyRequestDefaults(r)
	default:
		return fmt.Errorf("invalid type %q (must be lifecycle, detail, or request)", r.Type)
	}

	if r.Interval > 0 && r.Interval < time.Millisecond {
		return fmt.Errorf("interval %v is below one millisecond", r.Interval)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	trigger, err := ParseWebhookTrigger(string(wh.Trigger))
	if err != nil {
		return err
	}
	wh.Trigger = trigger

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	switch {
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
		return os.Getenv(s[2 : len(s)-1])
	case strings.HasPrefix(s, "$") && len(s) > 1:
		return os.Getenv(s[1:])
	default:
		return s
	}
}
