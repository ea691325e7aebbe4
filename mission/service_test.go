package mission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pblhub/missiond/notionapi"
)

// fakeSource serves canned block trees and database rows, counting calls.
type fakeSource struct {
	trees      map[string][]notionapi.Block
	pages      map[string][]notionapi.Page
	fetchCalls int
	err        error
}

func (f *fakeSource) FetchBlockTree(_ context.Context, rootID string) ([]notionapi.Block, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	tree, ok := f.trees[rootID]
	if !ok {
		return nil, errors.New("page not found")
	}
	return tree, nil
}

func (f *fakeSource) QueryDatabase(_ context.Context, databaseID string) ([]notionapi.Page, error) {
	return f.pages[databaseID], nil
}

// memStore is a map-backed Store for service tests.
type memStore struct {
	missions map[string]*Record
	tracks   map[string]*TrackRecord
	all      map[string]*Record
	writeErr error
}

func newMemStore() *memStore {
	return &memStore{
		missions: map[string]*Record{},
		tracks:   map[string]*TrackRecord{},
	}
}

func (m *memStore) ReadMission(_ context.Context, id string) (*Record, bool, error) {
	if rec, ok := m.missions[id]; ok {
		return rec, true, nil
	}
	want := NormalizePageID(id)
	for _, rec := range m.missions {
		if NormalizePageID(rec.NotionPageID) == want {
			return rec, true, nil
		}
	}
	return nil, false, nil
}

func (m *memStore) WriteMission(_ context.Context, rec *Record) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.missions[rec.MissionID] = rec
	return nil
}

func (m *memStore) DeleteMission(_ context.Context, missionID string) error {
	delete(m.missions, missionID)
	return nil
}

func (m *memStore) ListMissions(_ context.Context) ([]string, error) {
	var ids []string
	for id := range m.missions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStore) ReadTrack(_ context.Context, trackID string) (*TrackRecord, bool, error) {
	rec, ok := m.tracks[trackID]
	return rec, ok, nil
}

func (m *memStore) WriteTrack(_ context.Context, rec *TrackRecord) error {
	m.tracks[rec.TrackID] = rec
	return nil
}

func (m *memStore) ReadAll(_ context.Context) (map[string]*Record, error) {
	return m.all, nil
}

func (m *memStore) RebuildAll(_ context.Context) (int, error) {
	m.all = make(map[string]*Record, len(m.missions))
	for id, rec := range m.missions {
		m.all[id] = rec
	}
	return len(m.all), nil
}

const testPageID = "2edffd33-6b70-80d8-9c6a-c761b6f718f2"

func introDoc() []notionapi.Block {
	return []notionapi.Block{
		h3("1. 미션 소개"),
		para("소개 본문"),
		h3("5. 기능 요구 사항"),
		bullet("로그인 구현"),
		bullet("[선택] 다크모드 지원"),
	}
}

func testRegistry() *Registry {
	return &Registry{
		Tracks: []Track{{ID: "frontend", Name: "프론트엔드", DatabaseID: "db-1"}},
		Missions: []Entry{
			{MissionID: "git-basics", NotionPageID: testPageID, Track: "frontend", Order: 1},
		},
	}
}

func TestFetchSections_ReadThrough(t *testing.T) {
	// WHAT: A cache miss fetches, classifies, and writes back; the second
	// call is served from the cache without touching the source.
	src := &fakeSource{trees: map[string][]notionapi.Block{testPageID: introDoc()}}
	store := newMemStore()
	svc := New(src, store)

	ctx := context.Background()
	sections, err := svc.FetchSections(ctx, testPageID, "git-basics")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(sections.Introduction) != 1 || len(sections.Guidelines) != 2 {
		t.Fatalf("sections: intro=%d guidelines=%d",
			len(sections.Introduction), len(sections.Guidelines))
	}
	if _, ok := store.missions["git-basics"]; !ok {
		t.Fatal("write-back missing")
	}

	if _, err := svc.FetchSections(ctx, testPageID, "git-basics"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if src.fetchCalls != 1 {
		t.Errorf("fetch calls: got %d, want 1", src.fetchCalls)
	}
}

func TestFetchSections_CacheHitByPageID(t *testing.T) {
	// WHAT: With no mission ID, a cached record is still found through the
	// page ID in either hyphenation.
	src := &fakeSource{trees: map[string][]notionapi.Block{testPageID: introDoc()}}
	store := newMemStore()
	svc := New(src, store, WithRegistry(testRegistry()))

	ctx := context.Background()
	if _, err := svc.FetchSections(ctx, testPageID, ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.missions["git-basics"]; !ok {
		t.Fatal("registry did not resolve the write-back key")
	}

	if _, err := svc.FetchSections(ctx, "2edffd336b7080d89c6ac761b6f718f2", ""); err != nil {
		t.Fatal(err)
	}
	if src.fetchCalls != 1 {
		t.Errorf("fetch calls: got %d, want 1", src.fetchCalls)
	}
}

func TestFetchSections_WriteBackFailureNonFatal(t *testing.T) {
	// WHAT: A failing cache write is logged, not returned; the classified
	// sections still come back.
	src := &fakeSource{trees: map[string][]notionapi.Block{testPageID: introDoc()}}
	store := newMemStore()
	store.writeErr = errors.New("disk full")
	svc := New(src, store)

	sections, err := svc.FetchSections(context.Background(), testPageID, "git-basics")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(sections.Introduction) != 1 {
		t.Errorf("sections lost: %+v", sections)
	}
}

func TestRequirements(t *testing.T) {
	// WHAT: Requirements resolves a mission ID through the registry and
	// extracts from the guidelines section.
	src := &fakeSource{trees: map[string][]notionapi.Block{testPageID: introDoc()}}
	svc := New(src, newMemStore(), WithRegistry(testRegistry()))

	reqs, err := svc.Requirements(context.Background(), "git-basics")
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 2 {
		t.Fatalf("requirements: got %d", len(reqs))
	}
	if reqs[0].Title != "로그인 구현" || !reqs[0].IsRequired {
		t.Errorf("req 0: got %+v", reqs[0])
	}
	if reqs[1].Title != "다크모드 지원" || reqs[1].IsRequired {
		t.Errorf("req 1: got %+v", reqs[1])
	}
}

func TestSyncAll_NoRegistry(t *testing.T) {
	// WHAT: Syncing without a registry is a configuration error.
	svc := New(&fakeSource{}, newMemStore())

	_, err := svc.SyncAll(context.Background(), "")
	if !errors.Is(err, ErrNoRegistry) {
		t.Fatalf("err: got %v", err)
	}
}

func TestSyncAll_UnknownFilter(t *testing.T) {
	// WHAT: A filter matching no registered mission fails up front.
	svc := New(&fakeSource{}, newMemStore(), WithRegistry(testRegistry()))

	_, err := svc.SyncAll(context.Background(), "no-such-mission")
	if !errors.Is(err, ErrMissionNotFound) {
		t.Fatalf("err: got %v", err)
	}
}

func TestSyncAll_TallyAndAggregates(t *testing.T) {
	// WHAT: A full sync writes each mission, rebuilds the track summaries
	// in order, and rebuilds the consolidated view.
	title := func(s string) notionapi.Property {
		return notionapi.Property{Title: []notionapi.RichText{{PlainText: s}}}
	}
	text := func(s string) notionapi.Property {
		return notionapi.Property{RichText: []notionapi.RichText{{PlainText: s}}}
	}
	num := func(f float64) notionapi.Property { return notionapi.Property{Number: &f} }

	reg := testRegistry()
	reg.Missions = append(reg.Missions, Entry{
		MissionID: "css-layout", NotionPageID: "2edffd33-0000-80d8-9c6a-000000000000",
		Track: "frontend", Order: 2,
	})
	src := &fakeSource{
		trees: map[string][]notionapi.Block{
			testPageID:                             introDoc(),
			"2edffd33-0000-80d8-9c6a-000000000000": introDoc(),
		},
		pages: map[string][]notionapi.Page{
			"db-1": {
				{ID: "p2", Properties: map[string]notionapi.Property{
					"콘텐츠 제작물": title("2주차 미션"), "주제": text("CSS 레이아웃"), "주차": num(2),
				}},
				{ID: "p1", Properties: map[string]notionapi.Property{
					"콘텐츠 제작물": title("1주차 미션"), "주제": text("Git 기초"), "주차": num(1),
				}},
			},
		},
	}
	store := newMemStore()
	svc := New(src, store, WithRegistry(reg))

	summary, err := svc.SyncAll(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 2 || summary.Failed != 0 {
		t.Fatalf("tally: %+v", summary)
	}
	if summary.ByTrack["frontend"] != 2 {
		t.Errorf("by track: %+v", summary.ByTrack)
	}

	track := store.tracks["frontend"]
	if track == nil || len(track.Missions) != 2 {
		t.Fatalf("track record: %+v", track)
	}
	if track.Missions[0].Title != "Git 기초" || track.Missions[1].Title != "CSS 레이아웃" {
		t.Errorf("track order: %q, %q", track.Missions[0].Title, track.Missions[1].Title)
	}
	if len(store.all) != 2 {
		t.Errorf("all view: got %d", len(store.all))
	}
}

func TestSyncAll_PerMissionFailureNonFatal(t *testing.T) {
	// WHAT: One mission failing to fetch is recorded in the tally and the
	// run continues.
	reg := testRegistry()
	reg.Missions = append(reg.Missions, Entry{
		MissionID: "broken", NotionPageID: "missing-page", Track: "frontend",
	})
	reg.Tracks = nil
	src := &fakeSource{trees: map[string][]notionapi.Block{testPageID: introDoc()}}
	svc := New(src, newMemStore(), WithRegistry(reg))

	summary, err := svc.SyncAll(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("tally: %+v", summary)
	}
	for _, res := range summary.Results {
		if res.MissionID == "broken" && res.Error == "" {
			t.Error("failure reason missing from tally")
		}
	}
}

func TestSyncAll_Idempotent(t *testing.T) {
	// WHAT: Running the same sync twice converges on identical records
	// apart from the timestamp.
	src := &fakeSource{trees: map[string][]notionapi.Block{testPageID: introDoc()}}
	store := newMemStore()
	fixed := time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)
	reg := testRegistry()
	reg.Tracks = nil
	svc := New(src, store, WithRegistry(reg), WithClock(func() time.Time { return fixed }))

	ctx := context.Background()
	if _, err := svc.SyncAll(ctx, ""); err != nil {
		t.Fatal(err)
	}
	first := store.missions["git-basics"]

	if _, err := svc.SyncAll(ctx, ""); err != nil {
		t.Fatal(err)
	}
	second := store.missions["git-basics"]

	if len(first.Sections.Guidelines) != len(second.Sections.Guidelines) {
		t.Errorf("resync changed content: %d vs %d",
			len(first.Sections.Guidelines), len(second.Sections.Guidelines))
	}
	if !first.SyncedAt.Equal(second.SyncedAt) {
		t.Errorf("fixed clock: %v vs %v", first.SyncedAt, second.SyncedAt)
	}
}
