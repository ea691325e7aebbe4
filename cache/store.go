// Package cache persists classified mission content as JSON documents: one
// file per mission, one per track, plus a consolidated all-missions view.
// Two mission.Store implementations live here. DirStore is the mutable
// on-disk directory used by the sync path; Snapshot serves a pre-built
// read-only copy (any fs.FS) for deployments without write access.
package cache

import (
	"errors"
	"strings"
)

// ErrReadOnly is returned by every write operation on a Snapshot.
var ErrReadOnly = errors.New("cache: store is read-only")

const (
	trackPrefix = "track-"
	allFile     = "all-missions.json"
)

func missionFile(missionID string) string {
	return missionID + ".json"
}

func trackFile(trackID string) string {
	return trackPrefix + trackID + ".json"
}

// missionIDFromFile inverts missionFile. It returns "" for filenames that
// are not individual mission records (track aggregates, the all view,
// leftover temp files).
func missionIDFromFile(name string) string {
	if name == allFile || strings.HasPrefix(name, trackPrefix) {
		return ""
	}
	id, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return ""
	}
	return id
}
