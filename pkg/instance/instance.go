package instance

import (
	"os"

	"github.com/xfinds/xfinds-backend/pkg/env"
)

// GetID returns the process instance identifier or a default value.
func GetID(fallback string) string {
	if id := env.Get("XFINDS_INSTANCE_ID", ""); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallback
}
