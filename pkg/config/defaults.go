package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultTimestampLayout = "2006-01-02 15:04:05,000"
	DefaultWorkers         = 4
	DefaultFileTimeout     = 5 * time.Minute
	DefaultWebhookTimeout  = 10 * time.Second
	DefaultInterval        = 5 * time.Minute
)

// Lifecycle report defaults, matching the workflow engine's server log.
const (
	DefaultLifecyclePrefix     = "server"
	DefaultLifecycleLevel      = " INFO"
	DefaultComponent           = "[c.o.s.s.d.LifeCycleServiceImpl]"
	DefaultPhrase              = "Переход "
	DefaultSeparator           = " для документа "
	DefaultStartedStatus       = "запущен."
	DefaultCheckMarker         = "Операция checkDocument"
	DefaultCheckCompleted      = "завершена"
	DefaultLifecycleThreshold  = 6 * time.Second
	DefaultPositionalThreshold = 6 * time.Second
	DefaultBusyEntityMin       = 10
)

// Detail report defaults, matching the performance log.
const (
	DefaultDetailPrefix    = "dlcperf"
	DefaultDetailLevel     = " DEBUG"
	DefaultHeaderSuffix    = ": "
	DefaultDetailMarker    = "Детали перехода "
	DefaultDocumentMarker  = "документа "
	DefaultUnitSuffix      = "ms"
	DefaultTookMarker      = " took "
	DefaultDetailThreshold = 15 * time.Second
	DefaultDetailLimit     = 100
)

// Request report defaults, matching the authorization service log.
const (
	DefaultRequestPrefix   = "poib"
	DefaultRequestLevel    = " DEBUG"
	DefaultRequestMarker   = "Сформирован запрос на "
	DefaultResourceRequest = "getAllowedResources"
	DefaultResourceMarker  = "SobiResourceActionPair"
)

// Environment variable names.
const (
	EnvTimestampLayout = "TRANSLOG_TIMESTAMP_LAYOUT"
	EnvLocation        = "TRANSLOG_LOCATION"
	EnvWorkers         = "TRANSLOG_WORKERS"
)

// DefaultExclude names the files earlier tooling wrote next to the logs.
var defaultExclude = []string{
	"serverLogDetails.log",
	"poibLogDetails.log",
	"detailLog.csv",
	"detailLog.xlsx",
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogSources: []string{},
		Exclude:    append([]string(nil), defaultExclude...),
		TimestampFormat: TimestampConfig{
			Layout: DefaultTimestampLayout,
		},
		Workers:              DefaultWorkers,
		FileTimeout:          DefaultFileTimeout,
		OnMalformedTimestamp: MalformedSkipLine,
		Reports:              []ReportConfig{},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if layout := os.Getenv(EnvTimestampLayout); layout != "" {
		c.TimestampFormat.Layout = layout
	}
	if loc := os.Getenv(EnvLocation); loc != "" {
		c.TimestampFormat.Location = loc
	}
	if workers := os.Getenv(EnvWorkers); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			c.Workers = n
		}
	}
}

// setDefault assigns def to *field when it is empty.
func setDefault(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func setDefaultDuration(field *time.Duration, def time.Duration) {
	if *field <= 0 {
		*field = def
	}
}

func applyLifecycleDefaults(r *ReportConfig) {
	setDefault(&r.FilePrefix, DefaultLifecyclePrefix)
	setDefault(&r.LevelMarker, DefaultLifecycleLevel)
	setDefault(&r.Component, DefaultComponent)
	setDefault(&r.Phrase, DefaultPhrase)
	setDefault(&r.Separator, DefaultSeparator)
	setDefault(&r.StartedStatus, DefaultStartedStatus)
	setDefault(&r.CheckMarker, DefaultCheckMarker)
	setDefault(&r.CheckCompleted, DefaultCheckCompleted)
	setDefaultDuration(&r.Threshold, DefaultLifecycleThreshold)
	setDefaultDuration(&r.PositionalThreshold, DefaultPositionalThreshold)
	setDefaultDuration(&r.Interval, DefaultInterval)
	if r.BusyEntityMin <= 0 {
		r.BusyEntityMin = DefaultBusyEntityMin
	}
}

func applyDetailDefaults(r *ReportConfig) {
	setDefault(&r.FilePrefix, DefaultDetailPrefix)
	setDefault(&r.LevelMarker, DefaultDetailLevel)
	setDefault(&r.HeaderSuffix, DefaultHeaderSuffix)
	setDefault(&r.DetailMarker, DefaultDetailMarker)
	setDefault(&r.DocumentMarker, DefaultDocumentMarker)
	setDefault(&r.UnitSuffix, DefaultUnitSuffix)
	setDefault(&r.TookMarker, DefaultTookMarker)
	setDefaultDuration(&r.Threshold, DefaultDetailThreshold)
	if r.Limit == 0 {
		r.Limit = DefaultDetailLimit
	}
}

func applyRequestDefaults(r *ReportConfig) {
	setDefault(&r.FilePrefix, DefaultRequestPrefix)
	setDefault(&r.LevelMarker, DefaultRequestLevel)
	setDefault(&r.RequestMarker, DefaultRequestMarker)
	setDefault(&r.ResourceRequest, DefaultResourceRequest)
	setDefault(&r.ResourceMarker, DefaultResourceMarker)
	setDefaultDuration(&r.Interval, DefaultInterval)
}
