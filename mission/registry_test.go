package mission

import (
	"os"
	"path/filepath"
	"testing"
)

const registryYAML = `
tracks:
  - id: frontend
    name: 프론트엔드
    notion_database_id: db-123

missions:
  - id: git-basics
    notion_page_id: 2edffd33-6b70-80d8-9c6a-c761b6f718f2
    track: frontend
    order: 1
  - id: css-layout
    notion_page_id: 2edffd33-0000-80d8-9c6a-000000000000
    track: frontend
    order: 2
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "missions.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	// WHAT: The YAML registry parses into tracks and mission entries.
	reg, err := LoadRegistry(writeRegistry(t, registryYAML))
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Tracks) != 1 || reg.Tracks[0].DatabaseID != "db-123" {
		t.Errorf("tracks: %+v", reg.Tracks)
	}
	if len(reg.Missions) != 2 || reg.Missions[0].MissionID != "git-basics" {
		t.Errorf("missions: %+v", reg.Missions)
	}
}

func TestLoadRegistry_RejectsIncompleteEntry(t *testing.T) {
	// WHAT: An entry without an ID or page ID is a configuration error.
	_, err := LoadRegistry(writeRegistry(t, "missions:\n  - id: orphan\n"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistry_Find(t *testing.T) {
	// WHAT: Find resolves mission IDs and both page ID spellings.
	reg, err := LoadRegistry(writeRegistry(t, registryYAML))
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{
		"git-basics",
		"2edffd33-6b70-80d8-9c6a-c761b6f718f2",
		"2edffd336b7080d89c6ac761b6f718f2",
	} {
		entry, ok := reg.Find(id)
		if !ok || entry.MissionID != "git-basics" {
			t.Errorf("Find(%q) = %+v, %v", id, entry, ok)
		}
	}

	if _, ok := reg.Find("unknown"); ok {
		t.Error("Find(unknown) matched")
	}
}

func TestRegistry_TrackByID(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, registryYAML))
	if err != nil {
		t.Fatal(err)
	}
	if track, ok := reg.TrackByID("frontend"); !ok || track.Name != "프론트엔드" {
		t.Errorf("TrackByID: %+v, %v", track, ok)
	}
	if _, ok := reg.TrackByID("backend"); ok {
		t.Error("TrackByID(backend) matched")
	}
}
