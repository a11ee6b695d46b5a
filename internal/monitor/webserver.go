// Package monitor exposes the HTTP interface for observing a running
// exploration session: health, status, goal history, runtime tuning and
// a debug heatmap of the current grids.
package monitor

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/explorer/internal/config"
	"github.com/banshee-data/explorer/internal/explore"
	"github.com/banshee-data/explorer/internal/grid"
	"github.com/banshee-data/explorer/internal/httputil"
	"github.com/banshee-data/explorer/internal/nav"
	"github.com/banshee-data/explorer/internal/version"
)

// GoalHistory is the read side of goal persistence, implemented by the
// sqlite store. Nil disables the goals endpoint.
type GoalHistory interface {
	RecentGoals(limit int) ([]nav.GoalRecord, error)
}

// WebServer handles the HTTP interface for monitoring exploration.
type WebServer struct {
	address    string
	loop       *explore.Loop
	snapshots  *grid.SnapshotStore
	controller *nav.Controller
	goals      GoalHistory
	tuning     *config.TuningConfig
	server     *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address    string
	Loop       *explore.Loop
	Snapshots  *grid.SnapshotStore
	Controller *nav.Controller
	Goals      GoalHistory          // optional
	Tuning     *config.TuningConfig // optional; served by the params endpoint
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(cfg WebServerConfig) *WebServer {
	ws := &WebServer{
		address:    cfg.Address,
		loop:       cfg.Loop,
		snapshots:  cfg.Snapshots,
		controller: cfg.Controller,
		goals:      cfg.Goals,
		tuning:     cfg.Tuning,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Start begins serving in a goroutine and blocks until the context is
// canceled, then shuts the server down.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("starting monitor HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start monitor server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down monitor HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("monitor server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("monitor server force close error: %v", err)
		}
	}
	return nil
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/explore/status", ws.handleStatus)
	mux.HandleFunc("/api/explore/goals", ws.handleGoals)
	mux.HandleFunc("/api/explore/params", ws.handleParams)
	mux.HandleFunc("/debug/explore/map", ws.handleMapChart)
	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok", "version": version.Version})
}

// statusResponse is the JSON shape of /api/explore/status.
type statusResponse struct {
	Loop     explore.Stats      `json:"loop"`
	Coverage grid.CoverageStats `json:"coverage"`
	Goal     *nav.GoalRecord    `json:"goal,omitempty"`
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	mapGrid, costmap := ws.snapshots.Snapshot()
	resp := statusResponse{
		Loop:     ws.loop.Snapshot(),
		Coverage: grid.ComputeCoverage(mapGrid, costmap),
	}
	if rec, ok := ws.controller.Current(); ok {
		resp.Goal = &rec
	}
	httputil.WriteJSONOK(w, resp)
}

func (ws *WebServer) handleGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.goals == nil {
		httputil.ServiceUnavailable(w, "goal recording is disabled")
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	goals, err := ws.goals.RecentGoals(limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, goals)
}

// handleParams serves the effective tuning configuration and accepts
// runtime updates. Only the tick period takes effect immediately; other
// fields are validated and stored for the next session.
func (ws *WebServer) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if ws.tuning == nil {
			httputil.WriteJSONOK(w, config.EmptyTuningConfig())
			return
		}
		httputil.WriteJSONOK(w, ws.tuning)
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			httputil.BadRequest(w, "read body: "+err.Error())
			return
		}
		incoming := config.EmptyTuningConfig()
		if err := json.Unmarshal(body, incoming); err != nil {
			httputil.BadRequest(w, "parse params: "+err.Error())
			return
		}
		if err := incoming.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if incoming.TickPeriod != nil && *incoming.TickPeriod != "" {
			if err := ws.loop.SetTickPeriod(incoming.GetTickPeriod()); err != nil {
				httputil.BadRequest(w, err.Error())
				return
			}
		}
		if ws.tuning != nil {
			mergeTuning(ws.tuning, incoming)
		}
		httputil.WriteJSONOK(w, map[string]string{"status": "updated"})
	default:
		httputil.MethodNotAllowed(w)
	}
}

// mergeTuning copies set fields from src into dst.
func mergeTuning(dst, src *config.TuningConfig) {
	if src.TickPeriod != nil {
		dst.TickPeriod = src.TickPeriod
	}
	if src.GoalAcceptTimeout != nil {
		dst.GoalAcceptTimeout = src.GoalAcceptTimeout
	}
	if src.GoalResultTimeout != nil {
		dst.GoalResultTimeout = src.GoalResultTimeout
	}
	if src.ListenAddr != nil {
		dst.ListenAddr = src.ListenAddr
	}
	if src.DBPath != nil {
		dst.DBPath = src.DBPath
	}
	if src.PlotDir != nil {
		dst.PlotDir = src.PlotDir
	}
}
