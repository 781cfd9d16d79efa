package config

import (
	"fmt"
	"net/url"
	"strings"

	"grimm.is/allowsync/internal/logging"
	"grimm.is/allowsync/internal/site"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate validates the entire configuration.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(c.Region) == "" {
		errs = append(errs, ValidationError{Field: "region", Message: "must not be empty"})
	}
	if strings.TrimSpace(c.TagKey) == "" {
		errs = append(errs, ValidationError{Field: "tag_key", Message: "must not be empty"})
	}
	if c.Concurrency < 1 {
		errs = append(errs, ValidationError{Field: "concurrency", Message: fmt.Sprintf("must be at least 1, got %d", c.Concurrency)})
	}
	if c.TriggerLimit < 1 {
		errs = append(errs, ValidationError{Field: "trigger_limit", Message: fmt.Sprintf("must be at least 1, got %d", c.TriggerLimit)})
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "log_level", Message: err.Error()})
	}

	errs = append(errs, c.validateEndpoints()...)
	return errs
}

func (c *Config) validateEndpoints() ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool)

	for i, e := range c.Endpoints {
		field := fmt.Sprintf("endpoint[%d]", i)
		if !site.Site(e.Site).Valid() {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("unknown site %q", e.Site)})
			continue
		}
		if seen[e.Site] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate endpoint for %q", e.Site)})
		}
		seen[e.Site] = true

		u, err := url.Parse(e.URL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			errs = append(errs, ValidationError{Field: field + ".url", Message: fmt.Sprintf("invalid url %q", e.URL)})
		}
	}
	return errs
}
