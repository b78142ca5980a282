package config

import (
	"fmt"
	"log/slog"
)

// ParseLevel maps log_level ("debug", "info", "warn", "error", or an
// offset such as "debug+2") to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, s)
	}
	return lvl, nil
}
