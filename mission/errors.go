package mission

import "errors"

// ErrMissionNotFound is returned when an explicit mission filter matches
// nothing in the configured registry.
var ErrMissionNotFound = errors.New("mission: not found in registry")

// ErrNoRegistry is returned by sync operations when no registry is
// configured.
var ErrNoRegistry = errors.New("mission: no registry configured")
