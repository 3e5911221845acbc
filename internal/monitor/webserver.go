// Package monitor exposes the HTTP interface for reviewing workout
// sessions: JSON endpoints for session history, live feedback state,
// and rendered charts.
package monitor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/feedback"
	"github.com/formsense-data/form.report/internal/httputil"
	"github.com/formsense-data/form.report/internal/storage/sqlite"
	"github.com/formsense-data/form.report/internal/version"
)

// WebServer handles the HTTP interface for session history and live
// coaching state.
type WebServer struct {
	address  string
	db       *sqlite.DB
	feedback *feedback.Manager
	server   *http.Server
	logger   *log.Logger
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address  string
	DB       *sqlite.DB
	Feedback *feedback.Manager
	Logger   *log.Logger
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  config.Address,
		db:       config.DB,
		feedback: config.Feedback,
		logger:   config.Logger,
	}
	if ws.logger == nil {
		ws.logger = log.Default()
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

// Start begins the HTTP server in a goroutine and blocks until the
// context is cancelled, then shuts down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		ws.logger.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	ws.logger.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		ws.logger.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			ws.logger.Printf("HTTP server force close error: %v", err)
		}
	}

	ws.logger.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/exercises", ws.handleExercises)
	mux.HandleFunc("/api/sessions", ws.handleSessions)
	mux.HandleFunc("/api/session", ws.handleSession)
	mux.HandleFunc("/api/feedback", ws.handleFeedback)
	mux.HandleFunc("/charts/session", ws.handleSessionChart)

	if ws.db != nil {
		ws.db.AttachAdminRoutes(mux)
	}

	return mux
}

// handleHealth handles the health check endpoint.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":    "ok",
		"service":   "form-coach",
		"version":   version.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleExercises lists the supported exercises with their display
// metadata.
func (ws *WebServer) handleExercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	infos := make([]engine.ExerciseInfo, 0, len(engine.AllExerciseTypes))
	for _, t := range engine.AllExerciseTypes {
		info, err := engine.Info(t)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	httputil.WriteJSONOK(w, infos)
}

// handleSessions returns recent sessions, newest first.
// Query params:
//
//	limit (optional, default 50, max 500)
func (ws *WebServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured for session lookup")
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	records, err := ws.db.ListSessions(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list sessions: %v", err))
		return
	}
	httputil.WriteJSONOK(w, records)
}

// handleSession returns the full summary for one session.
// Query params:
//
//	id (required)
func (ws *WebServer) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "missing 'id' parameter")
		return
	}
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured for session lookup")
		return
	}
	summary, err := ws.db.GetSession(id)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("get session: %v", err))
		return
	}
	httputil.WriteJSONOK(w, summary)
}

// handleFeedback returns the live visual feedback snapshot: the issues
// detected on the most recent frame.
func (ws *WebServer) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.feedback == nil {
		httputil.NotFound(w, "no feedback manager configured")
		return
	}
	issues := ws.feedback.CurrentIssues()
	if issues == nil {
		issues = []engine.FormIssue{}
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"running": ws.feedback.IsRunning(),
		"queued":  ws.feedback.QueueLen(),
		"issues":  issues,
	})
}

// Close shuts down the web server.
func (ws *WebServer) Close() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}
