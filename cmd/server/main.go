package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"cachecraft.gg/internal/persistence/archive"
	"cachecraft.gg/internal/persistence/journal"
	"cachecraft.gg/internal/persistence/kv"
	"cachecraft.gg/internal/persistence/snapshot"
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/session"
	"cachecraft.gg/internal/sim/tuning"
	"cachecraft.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh session)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: ./configs/tuning.yaml)")
		fresh      = flag.Bool("fresh", false, "ignore any existing save and start a new session")
		startLat   = flag.Float64("lat", 0, "starting latitude (0 with -lng 0 means use tuning fallback)")
		startLng   = flag.Float64("lng", 0, "starting longitude")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join("configs", "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	saves, err := kv.OpenSQLite(filepath.Join(*dataDir, "saves.db"), "session")
	if err != nil {
		logger.Fatalf("open save store: %v", err)
	}
	defer saves.Close()

	// Movement-source fallback: no fix at startup means the tuning origin.
	origin := geo.LatLng{Lat: *startLat, Lng: *startLng}
	if origin.Lat == 0 && origin.Lng == 0 {
		origin = geo.LatLng{Lat: tune.OriginFallbackLat, Lng: tune.OriginFallbackLng}
	}

	sess := openSession(saves, tune, origin, *seed, *fresh, logger)

	jl := journal.NewInteractionLogger(*dataDir)
	defer jl.Close()
	sess.SetJournal(jl)

	ctx, cancel := signalContext()
	defer cancel()

	// Autosave sink: the session exports snapshots, this goroutine encodes
	// and persists them.
	snapCh := make(chan session.SnapshotEnvelope, 2)
	sess.SetSnapshotSink(snapCh)
	go func() {
		wonArchived := false
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-snapCh:
				b, err := snapshot.Encode(env.Snap)
				if err != nil {
					logger.Printf("snapshot encode: %v", err)
					continue
				}
				if err := saves.Save(b); err != nil {
					logger.Printf("snapshot save: %v", err)
					continue
				}
				logger.Printf("saved tick=%d cells=%d bytes=%d", env.Tick, len(env.Snap.Cells), len(b))

				// Archive each victory once; a restart resets the flag.
				if !env.Snap.Player.Won {
					wonArchived = false
					continue
				}
				if wonArchived {
					continue
				}
				run, path, archived, err := archive.ArchiveVictory(*dataDir, env.Snap, b)
				if err != nil {
					logger.Printf("archive victory: %v", err)
					continue
				}
				if archived {
					wonArchived = true
					logger.Printf("archived victory run=%d path=%s", run, path)
				}
			}
		}
	}()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("session stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := sess.Metrics()

		fmt.Fprintf(rw, "# HELP cachecraft_session_tick Current session tick.\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_session_tick gauge\n")
		fmt.Fprintf(rw, "cachecraft_session_tick %d\n", m.Tick)

		fmt.Fprintf(rw, "# HELP cachecraft_decided_cells Cells decided (touched) so far.\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_decided_cells gauge\n")
		fmt.Fprintf(rw, "cachecraft_decided_cells %d\n", m.DecidedCells)

		fmt.Fprintf(rw, "# HELP cachecraft_visible_cells Cells currently in the render window.\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_visible_cells gauge\n")
		fmt.Fprintf(rw, "cachecraft_visible_cells %d\n", m.VisibleCells)

		fmt.Fprintf(rw, "# HELP cachecraft_score Player score.\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_score gauge\n")
		fmt.Fprintf(rw, "cachecraft_score %d\n", m.Score)

		fmt.Fprintf(rw, "# HELP cachecraft_held_token Player held token value (0 = empty hand).\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_held_token gauge\n")
		fmt.Fprintf(rw, "cachecraft_held_token %d\n", m.Held)

		fmt.Fprintf(rw, "# HELP cachecraft_clients Connected clients.\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_clients gauge\n")
		fmt.Fprintf(rw, "cachecraft_clients %d\n", m.Clients)

		fmt.Fprintf(rw, "# HELP cachecraft_inbox_depth Action channel backlog.\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_inbox_depth gauge\n")
		fmt.Fprintf(rw, "cachecraft_inbox_depth %d\n", m.InboxDepth)

		fmt.Fprintf(rw, "# HELP cachecraft_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE cachecraft_step_ms gauge\n")
		fmt.Fprintf(rw, "cachecraft_step_ms %.3f\n", m.StepMS)
	})

	// Local-only admin endpoints.
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			Tick    uint64          `json:"tick"`
			Metrics session.Metrics `json:"metrics"`
		}{
			Tick:    sess.CurrentTick(),
			Metrics: sess.Metrics(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/admin/v1/victories", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		runs, err := archive.ListVictories(*dataDir)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"victories": runs})
	})
	mux.HandleFunc("/admin/v1/save", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel2()
		tick, err := sess.RequestSave(ctx2)
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
	})

	mux.HandleFunc("/v1/ws", ws.NewServer(sess, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Final save on shutdown. The session goroutine owns all state, so wait
	// for Run to return before exporting directly.
	cancel()
	<-runDone
	b, err := snapshot.Encode(sess.ExportSnapshot())
	if err != nil {
		logger.Printf("final snapshot encode: %v", err)
		return
	}
	if err := saves.Save(b); err != nil {
		logger.Printf("final snapshot save: %v", err)
		return
	}
	logger.Printf("final save tick=%d", sess.CurrentTick())
}

// openSession resumes the saved session when possible; any load or decode
// failure falls back to a fresh session rather than failing startup.
func openSession(saves kv.Store, tune tuning.Tuning, origin geo.LatLng, seed int64, fresh bool, logger *log.Logger) *session.Session {
	if fresh {
		_ = saves.Clear()
	} else {
		b, ok, err := saves.Load()
		if err != nil {
			logger.Printf("load save: %v; starting fresh", err)
		} else if ok {
			snap, err := snapshot.Decode(b)
			if err != nil {
				logger.Printf("decode save: %v; starting fresh", err)
			} else {
				sess, err := session.Resume(session.FromTuning(tune, origin), snap)
				if err != nil {
					logger.Printf("resume save: %v; starting fresh", err)
				} else {
					logger.Printf("resumed tick=%d cells=%d score=%d", sess.CurrentTick(), sess.DecidedCells(), sess.Score())
					return sess
				}
			}
		}
	}

	cfg := session.FromTuning(tune, origin)
	cfg.Seed = seed
	sess := session.New(cfg)
	logger.Printf("fresh session seed=%d origin=(%.6f,%.6f)", seed, origin.Lat, origin.Lng)
	return sess
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
