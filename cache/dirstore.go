package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pblhub/missiond/mission"
)

// DirStore keeps one JSON file per record in a flat directory. Writes go
// through a .tmp sibling then rename, so readers never observe a partial
// document. Files are indented for eyeballing during content reviews.
type DirStore struct {
	dir    string
	logger *slog.Logger
}

// NewDirStore creates a DirStore rooted at dir. The directory is created on
// first write if it does not exist.
func NewDirStore(dir string, logger *slog.Logger) *DirStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirStore{dir: dir, logger: logger}
}

var _ mission.Store = (*DirStore)(nil)

// errBadID guards against record IDs that would escape the cache directory.
var errBadID = errors.New("cache: record id is not a valid filename")

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id != filepath.Base(id) {
		return fmt.Errorf("%w: %q", errBadID, id)
	}
	return nil
}

func (s *DirStore) ReadMission(ctx context.Context, id string) (*mission.Record, bool, error) {
	if err := checkID(id); err != nil {
		return nil, false, err
	}

	var rec mission.Record
	ok, err := s.readFile(missionFile(id), &rec)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return &rec, true, nil
	}

	// Secondary key: scan stored records for a matching source page ID.
	// The cache is small (tens of missions), a linear pass is fine.
	want := mission.NormalizePageID(id)
	if want == "" {
		return nil, false, nil
	}
	ids, err := s.ListMissions(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, mid := range ids {
		var cand mission.Record
		ok, err := s.readFile(missionFile(mid), &cand)
		if err != nil || !ok {
			continue
		}
		if mission.NormalizePageID(cand.NotionPageID) == want {
			return &cand, true, nil
		}
	}
	return nil, false, nil
}

func (s *DirStore) WriteMission(ctx context.Context, rec *mission.Record) error {
	if err := checkID(rec.MissionID); err != nil {
		return err
	}
	return s.writeFile(missionFile(rec.MissionID), rec)
}

func (s *DirStore) DeleteMission(ctx context.Context, missionID string) error {
	if err := checkID(missionID); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, missionFile(missionID)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: delete %s: %w", missionID, err)
	}
	return nil
}

func (s *DirStore) ListMissions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: list: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id := missionIDFromFile(e.Name()); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *DirStore) ReadTrack(ctx context.Context, trackID string) (*mission.TrackRecord, bool, error) {
	if err := checkID(trackID); err != nil {
		return nil, false, err
	}
	var rec mission.TrackRecord
	ok, err := s.readFile(trackFile(trackID), &rec)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &rec, true, nil
}

func (s *DirStore) WriteTrack(ctx context.Context, rec *mission.TrackRecord) error {
	if err := checkID(rec.TrackID); err != nil {
		return err
	}
	return s.writeFile(trackFile(rec.TrackID), rec)
}

func (s *DirStore) ReadAll(ctx context.Context) (map[string]*mission.Record, error) {
	all := map[string]*mission.Record{}
	ok, err := s.readFile(allFile, &all)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]*mission.Record{}, nil
	}
	return all, nil
}

// RebuildAll re-materializes all-missions.json from the individual record
// files. A record that fails to parse is logged and skipped so one corrupt
// file cannot block the consolidated view.
func (s *DirStore) RebuildAll(ctx context.Context) (int, error) {
	ids, err := s.ListMissions(ctx)
	if err != nil {
		return 0, err
	}

	all := make(map[string]*mission.Record, len(ids))
	for _, id := range ids {
		var rec mission.Record
		ok, err := s.readFile(missionFile(id), &rec)
		if err != nil {
			s.logger.Warn("skipping unreadable record", "mission_id", id, "error", err)
			continue
		}
		if !ok {
			continue
		}
		all[id] = &rec
	}

	if err := s.writeFile(allFile, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

// readFile decodes one JSON document into out. ok=false with a nil error
// means the file does not exist.
func (s *DirStore) readFile(name string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("cache: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", name, err)
	}
	return true, nil
}

// writeFile persists one JSON document atomically (write .tmp then rename).
func (s *DirStore) writeFile(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cache: mkdir %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("cache: write tmp: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: rename: %w", err)
	}
	return nil
}
