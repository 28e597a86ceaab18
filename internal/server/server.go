// Package server serves a rendered flower clock and its summary over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/flowerclock/internal/analysis"
	"github.com/chrissnell/flowerclock/pkg/render"
)

const shutdownTimeout = 5 * time.Second

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<img src="/clock.svg" alt="{{.Title}}">
<table>
<tr><th>Group</th><th>N</th><th>Mean</th><th>R</th></tr>
{{range .Groups}}<tr><td style="color: {{.Color}}">{{.Name}}</td><td>{{len .Observations}}</td><td>{{.Label}}</td><td>{{printf "%.3f" .R}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// Server holds a pre-rendered chart. The report is never modified after
// New, so handlers share it without locking.
type Server struct {
	title  string
	report *analysis.Report
	svg    []byte
	router *mux.Router
	logger *zap.SugaredLogger
}

// New renders chart once and builds the router
func New(report *analysis.Report, chart render.Chart, logger *zap.SugaredLogger) (*Server, error) {
	var buf bytes.Buffer
	if err := render.Render(&buf, chart); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	s := &Server{
		title:  chart.Title,
		report: report,
		svg:    buf.Bytes(),
		logger: logger,
	}
	s.router = s.setupRouter()
	return s, nil
}

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/clock.svg", s.serveSVG).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/summary", s.serveSummary).Methods(http.MethodGet, http.MethodHead)

	return router
}

// Handler returns the HTTP handler with response compression applied
func (s *Server) Handler() http.Handler {
	return handlers.CompressHandler(s.router)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("serving flower clock on http://%s/", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down the HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"duration_ms", m.Duration.Milliseconds(),
			"size", m.Written,
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title  string
		Groups []analysis.GroupResult
	}{s.title, s.report.Groups}

	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Errorf("error rendering index: %v", err)
	}
}

func (s *Server) serveSVG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(s.svg); err != nil {
		s.logger.Debugf("error writing svg: %v", err)
	}
}

func (s *Server) serveSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.report); err != nil {
		s.logger.Errorf("error encoding summary: %v", err)
	}
}
