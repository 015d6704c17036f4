package instance

import "os"

// ID identifies this process in logs: DYNO on Heroku, then HOSTNAME, then "local".
func ID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
