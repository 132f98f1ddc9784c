package instance

import (
	"os"

	"github.com/angelmondragon/discountsync/pkg/env"
)

const defaultID = "local"

// GetID identifies this process in logs. DISCOUNTSYNC_INSTANCE_ID wins, then
// DYNO, then the hostname.
func GetID() string {
	if id := env.Get("DISCOUNTSYNC_INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
