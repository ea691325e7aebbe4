package main

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/pblhub/missiond/cache"
	"github.com/pblhub/missiond/mission"
	"github.com/pblhub/missiond/notionapi"
	"github.com/pblhub/missiond/progress"
	"github.com/pblhub/missiond/safeurl"
)

const maxBodyBytes = 1 << 20

func main() {
	port := env("PORT", "8086")
	apiKey := os.Getenv("NOTION_API_KEY")
	registryPath := env("REGISTRY_PATH", "missions.yaml")
	cacheDir := env("CACHE_DIR", "cache/missions")
	snapshotDir := env("CACHE_SNAPSHOT_DIR", "")
	progressPath := env("PROGRESS_DB", "db/progress.db")
	syncSecret := os.Getenv("SYNC_SECRET")
	syncInterval := env("SYNC_INTERVAL", "")
	extractorName := env("REQUIREMENT_EXTRACTOR", "list")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	if apiKey == "" {
		slog.Error("NOTION_API_KEY is required")
		os.Exit(1)
	}
	if syncSecret != "" {
		if err := safeurl.ValidateSecret(syncSecret); err != nil {
			slog.Error("SYNC_SECRET too weak", "error", err)
			os.Exit(1)
		}
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := notionapi.New(notionapi.Config{APIKey: apiKey})
	if err != nil {
		slog.Error("notion client", "error", err)
		os.Exit(1)
	}

	// Record store: mutable directory by default, read-only snapshot when a
	// baked cache artifact is configured.
	var store mission.Store
	if snapshotDir != "" {
		store = cache.NewSnapshot(os.DirFS(snapshotDir))
		slog.Info("serving cache snapshot", "dir", snapshotDir)
	} else {
		store = cache.NewDirStore(cacheDir, logger)
	}

	extractor, err := mission.NewExtractor(extractorName)
	if err != nil {
		slog.Error("requirement extractor", "error", err)
		os.Exit(1)
	}

	opts := []mission.Option{
		mission.WithLogger(logger),
		mission.WithExtractor(extractor),
	}
	registry, err := mission.LoadRegistry(registryPath)
	switch {
	case err == nil:
		opts = append(opts, mission.WithRegistry(registry))
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("no mission registry, sync disabled", "path", registryPath)
	default:
		slog.Error("load registry", "error", err)
		os.Exit(1)
	}

	svc := mission.New(client, store, opts...)

	progressStore, err := progress.Open(progressPath)
	if err != nil {
		slog.Error("progress db", "error", err)
		os.Exit(1)
	}
	defer progressStore.Close()

	// Optional MCP stdio for agent clients.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "missiond",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("mcp stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// Optional periodic resync.
	if syncInterval != "" && registry != nil {
		d, err := time.ParseDuration(syncInterval)
		if err != nil {
			slog.Error("SYNC_INTERVAL", "error", err)
			os.Exit(1)
		}
		go mission.NewScheduler(svc, d, logger).Run(ctx)
	}

	// Router.
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Route("/api/missions", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			all, err := store.ReadAll(r.Context())
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, all)
		})

		r.Get("/{missionID}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "missionID")
			rec, ok, err := store.ReadMission(r.Context(), id)
			if err != nil {
				writeError(w, 500, err)
				return
			}
			if !ok {
				writeJSON(w, 404, map[string]string{"error": "mission not found"})
				return
			}
			writeJSON(w, 200, rec)
		})

		r.Get("/{missionID}/sections", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "missionID")
			pageID, missionID := id, ""
			if registry != nil {
				if entry, ok := registry.Find(id); ok {
					pageID, missionID = entry.NotionPageID, entry.MissionID
				}
			}
			sections, err := svc.FetchSections(r.Context(), pageID, missionID)
			if err != nil {
				writeError(w, 502, err)
				return
			}
			writeJSON(w, 200, sections)
		})

		r.Get("/{missionID}/requirements", func(w http.ResponseWriter, r *http.Request) {
			reqs, err := svc.Requirements(r.Context(), chi.URLParam(r, "missionID"))
			if err != nil {
				writeError(w, 502, err)
				return
			}
			writeJSON(w, 200, map[string]any{"requirements": reqs})
		})
	})

	r.Get("/api/tracks/{trackID}", func(w http.ResponseWriter, r *http.Request) {
		rec, ok, err := store.ReadTrack(r.Context(), chi.URLParam(r, "trackID"))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if !ok {
			writeJSON(w, 404, map[string]string{"error": "track not found"})
			return
		}
		writeJSON(w, 200, rec)
	})

	r.Post("/api/sync", func(w http.ResponseWriter, r *http.Request) {
		if syncSecret == "" {
			writeJSON(w, 500, map[string]string{"error": "sync secret not configured"})
			return
		}
		if !secretEqual(r.Header.Get("x-sync-secret"), syncSecret) {
			writeJSON(w, 401, map[string]string{"error": "unauthorized"})
			return
		}

		var req struct {
			MissionID string `json:"missionId"`
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, 400, err)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, 400, err)
				return
			}
		}

		summary, err := svc.SyncAll(r.Context(), req.MissionID)
		if err != nil {
			switch {
			case errors.Is(err, mission.ErrMissionNotFound):
				writeError(w, 404, err)
			case errors.Is(err, mission.ErrNoRegistry):
				writeError(w, 500, err)
			default:
				writeError(w, 502, err)
			}
			return
		}
		writeJSON(w, 200, summary)
	})

	r.Get("/api/media/fresh", func(w http.ResponseWriter, r *http.Request) {
		blockID := r.URL.Query().Get("block_id")
		if blockID == "" {
			writeJSON(w, 400, map[string]string{"error": "block_id is required"})
			return
		}
		url, err := client.FreshMediaURL(r.Context(), blockID)
		if err != nil {
			slog.Warn("fresh media url", "block_id", blockID, "error", err)
			writeJSON(w, 200, map[string]any{"url": nil})
			return
		}
		if url == "" {
			writeJSON(w, 200, map[string]any{"url": nil})
			return
		}
		writeJSON(w, 200, map[string]string{"url": url})
	})

	r.Route("/api/progress/{userID}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			counts, err := progressStore.Summary(r.Context(), chi.URLParam(r, "userID"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]any{"missions": counts})
		})

		r.Get("/{missionID}", func(w http.ResponseWriter, r *http.Request) {
			done, err := progressStore.Completed(r.Context(),
				chi.URLParam(r, "userID"), chi.URLParam(r, "missionID"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]any{"completed": done})
		})

		r.Delete("/{missionID}", func(w http.ResponseWriter, r *http.Request) {
			n, err := progressStore.Reset(r.Context(),
				chi.URLParam(r, "userID"), chi.URLParam(r, "missionID"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]any{"cleared": n})
		})

		r.Post("/{missionID}/{requirementID}", func(w http.ResponseWriter, r *http.Request) {
			err := progressStore.Check(r.Context(),
				chi.URLParam(r, "userID"), chi.URLParam(r, "missionID"), chi.URLParam(r, "requirementID"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]string{"status": "checked"})
		})

		r.Delete("/{missionID}/{requirementID}", func(w http.ResponseWriter, r *http.Request) {
			err := progressStore.Uncheck(r.Context(),
				chi.URLParam(r, "userID"), chi.URLParam(r, "missionID"), chi.URLParam(r, "requirementID"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]string{"status": "unchecked"})
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// secretEqual compares two secrets in constant time, through SHA-256 so the
// comparison length never depends on the inputs.
func secretEqual(got, want string) bool {
	g := sha256.Sum256([]byte(got))
	w := sha256.Sum256([]byte(want))
	return subtle.ConstantTimeCompare(g[:], w[:]) == 1
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
