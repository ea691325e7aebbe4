package mission

import (
	"context"
	"strings"
	"time"
)

// Record is the persisted unit for one mission: created by a sync,
// overwritten wholesale on each resync (no partial update), read many times
// between syncs.
type Record struct {
	MissionID    string    `json:"missionId"`
	NotionPageID string    `json:"notionPageId"`
	Sections     Sections  `json:"sections"`
	SyncedAt     time.Time `json:"syncedAt"`
}

// Summary is one mission's listing entry inside a track record.
type Summary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Track         string   `json:"track"`
	Stage         string   `json:"stage"`
	EstimatedTime int      `json:"estimatedTime"`
	Order         int      `json:"order"`
	Tags          []string `json:"tags"`
}

// TrackRecord is the per-track aggregate: an ordered mission summary list,
// independently cached and independently synced from mission details.
type TrackRecord struct {
	TrackID  string    `json:"trackId"`
	Missions []Summary `json:"missions"`
	SyncedAt time.Time `json:"syncedAt"`
}

// Store is the mission record store. Implementations: a mutable on-disk
// JSON directory and a read-only deployment snapshot (package cache).
//
// Reads signal ordinary absence with ok=false and a nil error; errors are
// reserved for I/O and decode failures.
type Store interface {
	// ReadMission looks a record up by primary key (mission ID) first, then
	// by normalized source page ID across all stored records.
	ReadMission(ctx context.Context, id string) (*Record, bool, error)
	// WriteMission persists rec atomically, fully replacing any prior record
	// under the same mission ID.
	WriteMission(ctx context.Context, rec *Record) error
	// DeleteMission removes a record. Deleting an absent record is not an error.
	DeleteMission(ctx context.Context, missionID string) error
	// ListMissions returns the IDs of all stored mission records.
	ListMissions(ctx context.Context) ([]string, error)
	// ReadTrack returns the cached summary list for one track.
	ReadTrack(ctx context.Context, trackID string) (*TrackRecord, bool, error)
	// WriteTrack persists a track record atomically.
	WriteTrack(ctx context.Context, rec *TrackRecord) error
	// ReadAll returns the consolidated all-missions view, keyed by mission ID.
	ReadAll(ctx context.Context) (map[string]*Record, error)
	// RebuildAll re-materializes the consolidated view from the individual
	// records, wholesale, and reports how many records it collapsed.
	// Records that fail to read or parse are skipped, not fatal.
	RebuildAll(ctx context.Context) (int, error)
}

// NormalizePageID maps both Notion page ID forms, hyphenated and bare, to
// one lookup key, so "2edffd33-6b70-..." and "2edffd336b70..." compare equal.
func NormalizePageID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}
