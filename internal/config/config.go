// Package config loads allowsync settings from an optional HCL file plus
// ALLOWSYNC_* environment overrides.
//
// Example:
//
//	region      = "us-west-2"
//	tag_key     = "t_whitelist"
//	concurrency = 1
//	log_level   = "info"
//	log_json    = false
//
//	endpoint "okta" {
//	  url = "https://s3.amazonaws.com/okta-ip-ranges/ip_ranges.json"
//	}
package config

import (
	"grimm.is/allowsync/internal/site"
)

// Defaults.
const (
	DefaultRegion      = "us-west-2"
	DefaultTagKey      = "t_whitelist"
	DefaultConcurrency = 1
	DefaultLogLevel    = "info"
	// DefaultTriggerLimit is webhook runs per site per minute.
	DefaultTriggerLimit = 6
)

// Config is the process configuration. It is read once at startup.
type Config struct {
	// Region scopes every EC2 call.
	Region string `hcl:"region,optional"`
	// TagKey is the security group tag matched against the site name.
	TagKey string `hcl:"tag_key,optional"`
	// Concurrency bounds per-group revoke/authorize calls. 1 is sequential.
	Concurrency int    `hcl:"concurrency,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	LogJSON     bool   `hcl:"log_json,optional"`
	// TriggerLimit caps webhook runs per site per minute.
	TriggerLimit int `hcl:"trigger_limit,optional"`

	// Endpoints replace the pinned provider URLs, e.g. for a mirror.
	Endpoints []Endpoint `hcl:"endpoint,block"`
}

// Endpoint overrides the allowlist URL for one site.
type Endpoint struct {
	Site string `hcl:"site,label"`
	URL  string `hcl:"url"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.TagKey == "" {
		c.TagKey = DefaultTagKey
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.TriggerLimit == 0 {
		c.TriggerLimit = DefaultTriggerLimit
	}
}

// EndpointOverrides returns the endpoint blocks keyed by site.
func (c *Config) EndpointOverrides() map[site.Site]string {
	if len(c.Endpoints) == 0 {
		return nil
	}
	out := make(map[site.Site]string, len(c.Endpoints))
	for _, e := range c.Endpoints {
		out[site.Site(e.Site)] = e.URL
	}
	return out
}
