package config

import (
	"fmt"
	"strings"

	"github.com/grovetools/ausec/errors"
	"github.com/moby/patternmatcher"
)

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Server.Host, " /") {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("server.host is not a host name: %q", c.Server.Host)).
			WithDetail("field", "server.host")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("server.port out of range: %d", c.Server.Port)).
			WithDetail("field", "server.port")
	}

	if d, err := c.Server.TimeoutDuration(); err != nil || d <= 0 {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("server.timeout must be a positive duration: %q", c.Server.Timeout)).
			WithDetail("field", "server.timeout")
	}
	if d, err := c.Watch.IntervalDuration(); err != nil || d <= 0 {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("watch.interval must be a positive duration: %q", c.Watch.Interval)).
			WithDetail("field", "watch.interval")
	}

	if c.Listing.MaxDepth < 1 {
		return errors.New(errors.ErrCodeConfigValidation, "listing.max_depth must be at least 1").
			WithDetail("field", "listing.max_depth")
	}
	if len(c.Listing.Exclude) > 0 {
		if _, err := patternmatcher.New(c.Listing.Exclude); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid listing.exclude pattern").
				WithDetail("field", "listing.exclude")
		}
	}

	if strings.Contains(c.Election, "/") {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("election must be a single path segment: %q", c.Election)).
			WithDetail("field", "election")
	}

	return nil
}
