package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"relationship-coach/internal/service"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Router holds the HTTP multiplexer and dependencies
type Router struct {
	mux                 *http.ServeMux
	conversationHandler *ConversationHandler
	staticDir           string
	allowedOrigins      []string
}

// NewRouter creates a new router with all routes configured.
// An empty allowedOrigins list allows any origin.
func NewRouter(svc *service.Service, staticDir string, allowedOrigins []string) *Router {
	r := &Router{
		mux:                 http.NewServeMux(),
		conversationHandler: NewConversationHandler(svc),
		staticDir:           staticDir,
		allowedOrigins:      allowedOrigins,
	}
	r.setupRoutes()
	return r
}

// setupRoutes configures all HTTP routes
func (r *Router) setupRoutes() {
	// Health check
	r.mux.HandleFunc("GET /api/health", HealthHandler)

	// Conversation routes
	r.mux.HandleFunc("POST /api/conversations/start", r.conversationHandler.Start)
	r.mux.HandleFunc("GET /api/conversations/{id}", r.conversationHandler.Get)
	r.mux.HandleFunc("POST /api/conversations/{id}/messages", r.conversationHandler.SendMessage)

	// Static file serving (for frontend)
	if r.staticDir != "" {
		r.mux.HandleFunc("GET /", r.serveStatic)
	}
}

// serveStatic serves static files from the static directory
func (r *Router) serveStatic(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	filePath := filepath.Join(r.staticDir, path)

	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		// Serve index.html for SPA routing
		filePath = filepath.Join(r.staticDir, "index.html")
	}

	http.ServeFile(w, req, filePath)
}

// setCORSHeaders applies the configured origin allowlist.
func (r *Router) setCORSHeaders(w http.ResponseWriter, req *http.Request) {
	origin := req.Header.Get("Origin")
	if len(r.allowedOrigins) == 0 {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else if slices.Contains(r.allowedOrigins, origin) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()

	r.setCORSHeaders(w, req)

	if req.Method == "OPTIONS" {
		log.Printf("[HTTP] CORS preflight method=OPTIONS path=%s", req.URL.Path)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Skip logging for static files and health checks
	shouldLog := strings.HasPrefix(req.URL.Path, "/api/") && req.URL.Path != "/api/health"

	if shouldLog {
		log.Printf("[HTTP] Request started method=%s path=%s", req.Method, req.URL.Path)
	}

	// Wrap response writer to capture status code
	wrapped := newResponseWriter(w)
	r.mux.ServeHTTP(wrapped, req)

	if shouldLog {
		log.Printf("[HTTP] Request completed method=%s path=%s status=%d duration=%v",
			req.Method, req.URL.Path, wrapped.statusCode, time.Since(start))
	}
}
