package config

import (
	"time"
)

// SessionConfig bounds the consultation lifecycle. MaxDuration is the point
// at which the watchdog force-ends a session that was never ended by either
// party, so an astrologer can't stay busy forever.
type SessionConfig struct {
	MaxDuration      time.Duration `yaml:"max_duration"`
	WatchdogInterval time.Duration `yaml:"watchdog_interval"`
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		MaxDuration:      getEnvAsDuration("SESSION_MAX_DURATION", 2*time.Hour),
		WatchdogInterval: getEnvAsDuration("SESSION_WATCHDOG_INTERVAL", time.Minute),
	}
}
