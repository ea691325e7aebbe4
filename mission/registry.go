package mission

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Track is one configured curriculum track. DatabaseID may be empty: the
// track then has no summary data source and is skipped (with a warning)
// during track-cache rebuilds.
type Track struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	DatabaseID string `yaml:"notion_database_id"`
}

// Entry is one registered mission: the application-assigned mission ID
// paired with its source Notion page.
type Entry struct {
	MissionID    string `yaml:"id"`
	NotionPageID string `yaml:"notion_page_id"`
	Track        string `yaml:"track"`
	Order        int    `yaml:"order"`
}

// Registry is the configured set of tracks and (mission id, source page id)
// pairs that sync operates on.
type Registry struct {
	Tracks   []Track `yaml:"tracks"`
	Missions []Entry `yaml:"missions"`
}

// LoadRegistry reads a Registry from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mission: read registry %s: %w", path, err)
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("mission: parse registry %s: %w", path, err)
	}
	for i, e := range reg.Missions {
		if e.MissionID == "" || e.NotionPageID == "" {
			return nil, fmt.Errorf("mission: registry %s: mission %d is missing id or notion_page_id", path, i)
		}
	}
	return &reg, nil
}

// Find resolves id, a mission ID or a Notion page ID in either hyphenated
// or bare form, to a registry entry.
func (r *Registry) Find(id string) (Entry, bool) {
	normalized := NormalizePageID(id)
	for _, e := range r.Missions {
		if e.MissionID == id || NormalizePageID(e.NotionPageID) == normalized {
			return e, true
		}
	}
	return Entry{}, false
}

// TrackByID returns the configured track with the given ID.
func (r *Registry) TrackByID(id string) (Track, bool) {
	for _, t := range r.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}
