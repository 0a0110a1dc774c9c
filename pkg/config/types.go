// Package config provides configuration loading and validation for translog.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// LogSources are files, directories or globs used by every report that
	// does not define its own.
	LogSources []string `yaml:"log_sources"`

	// Exclude lists file base names that are never analyzed, such as
	// reports previously written next to the logs.
	Exclude []string `yaml:"exclude,omitempty"`

	TimestampFormat TimestampConfig `yaml:"timestamp_format"`

	// Workers bounds how many files are parsed concurrently.
	Workers int `yaml:"workers,omitempty"`

	// FileTimeout bounds the time spent parsing a single file.
	FileTimeout time.Duration `yaml:"file_timeout,omitempty"`

	// OnMalformedTimestamp selects skip_line (default) or skip_file.
	OnMalformedTimestamp MalformedPolicy `yaml:"on_malformed_timestamp,omitempty"`

	Reports  []ReportConfig  `yaml:"reports"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// TimestampConfig defines how log timestamps are parsed.
type TimestampConfig struct {
	// Layout is the Go time layout of the text before the level marker.
	// See https://pkg.go.dev/time#pkg-constants for format.
	Layout string `yaml:"layout"`

	// Location is an IANA zone name or "Local"; empty means UTC.
	Location string `yaml:"location,omitempty"`

	location *time.Location
}

// CompiledLocation returns the loaded time zone (populated during validation).
func (t *TimestampConfig) CompiledLocation() *time.Location {
	return t.location
}

// MalformedPolicy decides what a malformed timestamp does to the rest of a file.
type MalformedPolicy string

const (
	MalformedSkipLine MalformedPolicy = "skip_line"
	MalformedSkipFile MalformedPolicy = "skip_file"
)

// ReportType represents the kind of analysis a report performs.
type ReportType string

const (
	ReportTypeLifecycle ReportType = "lifecycle"
	ReportTypeDetail    ReportType = "detail"
	ReportTypeRequest   ReportType = "request"
)

// ReportConfig defines a single report. Marker fields left empty are filled
// with the defaults for the report type during validation.
type ReportConfig struct {
	// Common fields
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"` // lifecycle, detail, request
	Description string   `yaml:"description,omitempty"`
	LogSources  []string `yaml:"log_sources,omitempty"`
	FilePrefix  string   `yaml:"file_prefix,omitempty"`
	LevelMarker string   `yaml:"level_marker,omitempty"`

	// Lifecycle report fields
	Component      string `yaml:"component,omitempty"`
	Phrase         string `yaml:"phrase,omitempty"`
	Separator      string `yaml:"separator,omitempty"`
	StartedStatus  string `yaml:"started_status,omitempty"`
	CheckMarker    string `yaml:"check_marker,omitempty"`
	CheckCompleted string `yaml:"check_completed,omitempty"`
	BusyEntityMin  int    `yaml:"busy_entity_min,omitempty"`

	// PositionalThreshold applies to the consecutive-entry pairing of the
	// lifecycle report.
	PositionalThreshold time.Duration `yaml:"positional_threshold,omitempty"`

	// Detail report fields
	HeaderSuffix   string `yaml:"header_suffix,omitempty"`
	DetailMarker   string `yaml:"detail_marker,omitempty"`
	DocumentMarker string `yaml:"document_marker,omitempty"`
	UnitSuffix     string `yaml:"unit_suffix,omitempty"`
	TookMarker     string `yaml:"took_marker,omitempty"`

	// Request report fields
	RequestMarker   string `yaml:"request_marker,omitempty"`
	ResourceRequest string `yaml:"resource_request,omitempty"`
	ResourceMarker  string `yaml:"resource_marker,omitempty"`

	// Threshold flags transitions that ran longer (lifecycle, detail).
	Threshold time.Duration `yaml:"threshold,omitempty"`

	// Interval is the bucket width for counts over time (lifecycle, request).
	Interval time.Duration `yaml:"interval,omitempty"`

	// Limit caps long-running lists in the report. Zero takes the report
	// type default and a negative value lists everything.
	Limit int `yaml:"limit,omitempty"`
}

// ReportTypeEnum returns the report type as a ReportType enum.
func (r *ReportConfig) ReportTypeEnum() ReportType {
	return ReportType(r.Type)
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when findings are reported (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// ParseWebhookTrigger validates a trigger name. The empty string selects
// on_issues.
func ParseWebhookTrigger(s string) (WebhookTrigger, error) {
	switch t := WebhookTrigger(s); t {
	case "":
		return WebhookTriggerOnIssues, nil
	case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
		return t, nil
	default:
		return "", fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", s)
	}
}

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_issues" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Retries is the number of extra attempts after a failed delivery.
	Retries int `yaml:"retries,omitempty"`
}
