package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/pblhub/missiond/mission"
)

// Snapshot serves a pre-built cache directory read-only, from any fs.FS:
// os.DirFS over a baked deployment artifact, fstest.MapFS in tests. Every
// write operation returns ErrReadOnly.
type Snapshot struct {
	fsys fs.FS
}

// NewSnapshot wraps fsys. The filesystem root must be the cache directory
// itself, with records at the top level.
func NewSnapshot(fsys fs.FS) *Snapshot {
	return &Snapshot{fsys: fsys}
}

var _ mission.Store = (*Snapshot)(nil)

func (s *Snapshot) ReadMission(ctx context.Context, id string) (*mission.Record, bool, error) {
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

func (s *Snapshot) WriteMission(ctx context.Context, rec *mission.Record) error {
	return ErrReadOnly
}

func (s *Snapshot) DeleteMission(ctx context.Context, missionID string) error {
	return ErrReadOnly
}

func (s *Snapshot) ListMissions(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("cache: list snapshot: %w", err)
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

func (s *Snapshot) ReadTrack(ctx context.Context, trackID string) (*mission.TrackRecord, bool, error) {
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

func (s *Snapshot) WriteTrack(ctx context.Context, rec *mission.TrackRecord) error {
	return ErrReadOnly
}

func (s *Snapshot) ReadAll(ctx context.Context) (map[string]*mission.Record, error) {
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

func (s *Snapshot) RebuildAll(ctx context.Context) (int, error) {
	return 0, ErrReadOnly
}

func (s *Snapshot) readFile(name string, out any) (bool, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("cache: read snapshot %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("cache: decode snapshot %s: %w", name, err)
	}
	return true, nil
}
