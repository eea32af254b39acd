package instance

import "os"

// ID names the running process in logs. The platform dyno name wins, then the hostname.
func ID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
