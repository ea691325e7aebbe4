// Command missionsync re-fetches the registered Notion mission pages,
// classifies them into sections, and rewrites the JSON cache. It is the
// batch counterpart of missiond's POST /api/sync.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pblhub/missiond/cache"
	"github.com/pblhub/missiond/mission"
	"github.com/pblhub/missiond/notionapi"
)

func main() {
	configPath := flag.String("config", "missions.yaml", "mission registry YAML")
	cacheDir := flag.String("cache-dir", "cache/missions", "cache output directory")
	missionID := flag.String("mission", "", "sync only this mission (mission ID or Notion page ID)")
	extractorName := flag.String("extractor", "list", "requirement extraction strategy (list, steps)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	apiKey := os.Getenv("NOTION_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missionsync: NOTION_API_KEY is required")
		os.Exit(2)
	}

	registry, err := mission.LoadRegistry(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "missionsync: %v\n", err)
		os.Exit(2)
	}

	client, err := notionapi.New(notionapi.Config{APIKey: apiKey})
	if err != nil {
		fmt.Fprintf(os.Stderr, "missionsync: %v\n", err)
		os.Exit(2)
	}

	extractor, err := mission.NewExtractor(*extractorName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "missionsync: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc := mission.New(client, cache.NewDirStore(*cacheDir, logger),
		mission.WithRegistry(registry),
		mission.WithExtractor(extractor),
		mission.WithLogger(logger),
	)

	summary, err := svc.SyncAll(ctx, *missionID)
	if err != nil {
		if errors.Is(err, mission.ErrMissionNotFound) {
			fmt.Fprintf(os.Stderr, "missionsync: no registered mission matches %q\n", *missionID)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "missionsync: %v\n", err)
		os.Exit(1)
	}

	for _, res := range summary.Results {
		if res.Success {
			fmt.Printf("  ok   %s\n", res.MissionID)
		} else {
			fmt.Printf("  FAIL %s: %s\n", res.MissionID, res.Error)
		}
	}
	fmt.Printf("synced %d mission(s), %d failed\n", summary.Succeeded, summary.Failed)
	for track, n := range summary.ByTrack {
		fmt.Printf("  track %s: %d\n", track, n)
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
