package instance

import "github.com/grocerease/grocerease-backend/pkg/env"

// ID names this process in logs. DYNO wins over HOSTNAME.
func ID() string {
	return env.FirstOf("local", "DYNO", "HOSTNAME")
}
