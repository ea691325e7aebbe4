// Package mission classifies Notion mission documents into named sections,
// extracts checklist requirements, and orchestrates the read-through cache
// and sync flows around them.
package mission

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/pblhub/missiond/notionapi"
)

// Source abstracts the Notion client for testability.
type Source interface {
	FetchBlockTree(ctx context.Context, rootID string) ([]notionapi.Block, error)
	QueryDatabase(ctx context.Context, databaseID string) ([]notionapi.Page, error)
}

// Service is the mission content orchestrator: a read-through cache over
// fetch+classify, plus the sync and aggregate-rebuild flows.
type Service struct {
	source     Source
	store      Store
	registry   *Registry
	classifier *Classifier
	extractor  RequirementExtractor
	logger     *slog.Logger
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithRegistry sets the configured track/mission registry.
func WithRegistry(reg *Registry) Option { return func(s *Service) { s.registry = reg } }

// WithExtractor overrides the requirement extraction strategy.
// Default: ListItemExtractor.
func WithExtractor(ex RequirementExtractor) Option { return func(s *Service) { s.extractor = ex } }

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock overrides the sync timestamp source (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a mission Service over a source API and a record store.
func New(source Source, store Store, opts ...Option) *Service {
	s := &Service{
		source:     source,
		store:      store,
		classifier: NewClassifier(),
		extractor:  ListItemExtractor{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchSections returns the classified sections for one mission page.
//
// Read path: the cache is consulted first, by mission ID when given, then
// by the page ID (either hyphenation). Only on a miss does the service hit
// the source API, classify, and write the result back under the mission's
// key before returning, so the cache is self-populating without an explicit
// sync. Racing populates of the same key are last-writer-wins.
func (s *Service) FetchSections(ctx context.Context, pageID, missionID string) (*Sections, error) {
	for _, key := range []string{missionID, pageID} {
		if key == "" {
			continue
		}
		rec, ok, err := s.store.ReadMission(ctx, key)
		if err != nil {
			s.logger.Warn("cache read failed", "key", key, "error", err)
			continue
		}
		if ok {
			s.logger.Debug("sections from cache", "key", key)
			return &rec.Sections, nil
		}
	}

	s.logger.Info("sections from source", "page_id", pageID)
	blocks, err := s.source.FetchBlockTree(ctx, pageID)
	if err != nil {
		return nil, err
	}
	sections := s.classifier.Classify(blocks)

	// Write back under the mission's primary key so the next read hits the
	// cache. Without a resolvable mission ID the result is served uncached.
	id := missionID
	if id == "" && s.registry != nil {
		if entry, ok := s.registry.Find(pageID); ok {
			id = entry.MissionID
		}
	}
	if id != "" {
		rec := &Record{
			MissionID:    id,
			NotionPageID: pageID,
			Sections:     sections,
			SyncedAt:     s.now().UTC(),
		}
		if err := s.store.WriteMission(ctx, rec); err != nil {
			s.logger.Warn("cache write-back failed", "mission_id", id, "error", err)
		}
	}

	return &sections, nil
}

// Requirements resolves id (mission or page ID) and extracts checklist
// requirements from the guidelines section using the configured strategy.
func (s *Service) Requirements(ctx context.Context, id string) ([]Requirement, error) {
	pageID, missionID := id, ""
	if s.registry != nil {
		if entry, ok := s.registry.Find(id); ok {
			pageID, missionID = entry.NotionPageID, entry.MissionID
		}
	}
	sections, err := s.FetchSections(ctx, pageID, missionID)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(sections.Guidelines), nil
}

// ExtractRequirements runs the configured strategy over an already-loaded
// section block list.
func (s *Service) ExtractRequirements(blocks []notionapi.Block) []Requirement {
	return s.extractor.Extract(blocks)
}

// SyncResult is one mission's outcome inside a sync run.
type SyncResult struct {
	MissionID string    `json:"missionId"`
	Success   bool      `json:"success"`
	SyncedAt  time.Time `json:"syncedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SyncSummary is the aggregate outcome of one sync run.
type SyncSummary struct {
	Results   []SyncResult   `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	ByTrack   map[string]int `json:"byTrack,omitempty"`
}

// SyncMission re-fetches and re-classifies one registered mission and
// overwrites its cached record wholesale.
func (s *Service) SyncMission(ctx context.Context, entry Entry) (*Record, error) {
	start := s.now()
	blocks, err := s.source.FetchBlockTree(ctx, entry.NotionPageID)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		MissionID:    entry.MissionID,
		NotionPageID: entry.NotionPageID,
		Sections:     s.classifier.Classify(blocks),
		SyncedAt:     s.now().UTC(),
	}
	if err := s.store.WriteMission(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("mission synced",
		"mission_id", entry.MissionID,
		"blocks", len(blocks),
		"elapsed", s.now().Sub(start))
	return rec, nil
}

// SyncAll re-runs fetch+classify for the registered missions and rebuilds
// the track and all-missions aggregates. filter, when non-empty, restricts
// the run to one mission (by mission or page ID); a filter matching nothing
// returns ErrMissionNotFound.
//
// Individual mission failures are recorded in the tally, not fatal: the run
// continues and reports counts plus per-item reasons.
func (s *Service) SyncAll(ctx context.Context, filter string) (*SyncSummary, error) {
	if s.registry == nil {
		return nil, ErrNoRegistry
	}

	targets := s.registry.Missions
	if filter != "" {
		entry, ok := s.registry.Find(filter)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, filter)
		}
		targets = []Entry{entry}
	}

	summary := &SyncSummary{ByTrack: make(map[string]int)}
	for _, entry := range targets {
		rec, err := s.SyncMission(ctx, entry)
		if err != nil {
			s.logger.Error("mission sync failed", "mission_id", entry.MissionID, "error", err)
			summary.Results = append(summary.Results, SyncResult{
				MissionID: entry.MissionID,
				Error:     err.Error(),
			})
			summary.Failed++
			continue
		}
		summary.Results = append(summary.Results, SyncResult{
			MissionID: entry.MissionID,
			Success:   true,
			SyncedAt:  rec.SyncedAt,
		})
		summary.Succeeded++
		if entry.Track != "" {
			summary.ByTrack[entry.Track]++
		}
	}

	s.rebuildTracks(ctx)

	if n, err := s.store.RebuildAll(ctx); err != nil {
		s.logger.Warn("all-missions rebuild failed", "error", err)
	} else {
		s.logger.Info("all-missions rebuilt", "missions", n)
	}

	return summary, nil
}

// rebuildTracks re-queries each configured track database and overwrites
// the per-track summary caches. Tracks without a database ID are skipped
// with a warning; a failing track query skips that track, not the rebuild.
func (s *Service) rebuildTracks(ctx context.Context) {
	for _, track := range s.registry.Tracks {
		if track.DatabaseID == "" {
			s.logger.Warn("track has no database configured, skipping", "track", track.ID)
			continue
		}

		pages, err := s.source.QueryDatabase(ctx, track.DatabaseID)
		if err != nil {
			s.logger.Error("track query failed", "track", track.ID, "error", err)
			continue
		}

		summaries := make([]Summary, 0, len(pages))
		for _, page := range pages {
			summaries = append(summaries, pageToSummary(&page, track.ID))
		}
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Order < summaries[j].Order
		})

		rec := &TrackRecord{
			TrackID:  track.ID,
			Missions: summaries,
			SyncedAt: s.now().UTC(),
		}
		if err := s.store.WriteTrack(ctx, rec); err != nil {
			s.logger.Error("track cache write failed", "track", track.ID, "error", err)
			continue
		}
		s.logger.Info("track cache rebuilt", "track", track.ID, "missions", len(summaries))
	}
}

const defaultEstimatedTime = 120 // minutes

var weekNumber = regexp.MustCompile(`(\d+)`)

// pageToSummary maps a track database row onto a mission summary using the
// curriculum's column names. The week number comes from the numeric "주차"
// column when set, else it is parsed out of the "콘텐츠 제작물" title.
func pageToSummary(page *notionapi.Page, trackID string) Summary {
	weekTitle := page.Title("콘텐츠 제작물")
	topic := page.Text("주제")

	order := 0
	if n, ok := page.Number("주차"); ok {
		order = int(n)
	} else if m := weekNumber.FindString(weekTitle); m != "" {
		order, _ = strconv.Atoi(m)
	}

	title := topic
	if title == "" {
		title = weekTitle
	}

	return Summary{
		ID:            NormalizePageID(page.ID),
		Title:         title,
		Description:   page.Text("주요 학습 내용"),
		Track:         trackID,
		Stage:         page.Select("단계"),
		EstimatedTime: defaultEstimatedTime,
		Order:         order,
		Tags:          page.MultiSelect("핵심 기술 키워드"),
	}
}
