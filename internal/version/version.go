package version

import "runtime"

const (
	AppName        = "Muster"
	AppDescription = "Weekly event schedule, daily RSVP cards and reminders for Discord communities"
)

// Set via -ldflags at build time.
var (
	BuildDate string
	GoVersion = runtime.Version()
)
