// Package webserver exposes the alert map pages and operational endpoints.
package webserver

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pinemarten/campus-alert-service/internal/domain"
	"github.com/pinemarten/campus-alert-service/internal/render"
)

// AlertService is the slice of the pipeline the web layer needs.
type AlertService interface {
	UrgentIncidents(windowHours int) ([]domain.DisplayIncident, error)
	IngestMessage(ctx context.Context, text string) ([]domain.IncidentRecord, error)
	CheckReadiness(ctx context.Context) error
}

// Server serves the map pages, live ingestion, and health/metrics routes.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	svc        AlertService
	logger     *slog.Logger

	urgentWindowHours int
	pastWindowHours   int
}

// NewServer builds the gin router and wraps it in an http.Server.
func NewServer(addr string, svc AlertService, urgentWindowHours, pastWindowHours int, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:            engine,
		svc:               svc,
		logger:            logger,
		urgentWindowHours: urgentWindowHours,
		pastWindowHours:   pastWindowHours,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.GET("/", s.handleHome)
	engine.GET("/past", s.handlePast)
	engine.GET("/demo", s.handleDemo)
	engine.POST("/update-map", s.handleUpdateMap)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleHome(c *gin.Context) {
	s.renderMapPage(c, "Urgent Alerts", s.urgentWindowHours, false)
}

func (s *Server) handlePast(c *gin.Context) {
	s.renderMapPage(c, "Past Alerts", s.pastWindowHours, false)
}

func (s *Server) handleDemo(c *gin.Context) {
	s.renderMapPage(c, "Alert Demo", 24, true)
}

// handleUpdateMap ingests a pasted alert message, then re-renders the demo
// page against the updated log.
func (s *Server) handleUpdateMap(c *gin.Context) {
	text := c.PostForm("text-input")
	if text == "" {
		c.String(http.StatusBadRequest, "text-input is required")
		return
	}
	if _, err := s.svc.IngestMessage(c.Request.Context(), text); err != nil {
		s.logger.Error("live ingest failed", "error", err)
		c.String(http.StatusUnprocessableEntity, "could not ingest alert: %v", err)
		return
	}
	s.renderMapPage(c, "Alert Demo", 24, true)
}

func (s *Server) renderMapPage(c *gin.Context, title string, windowHours int, showForm bool) {
	incidents, err := s.svc.UrgentIncidents(windowHours)
	if err != nil {
		s.logger.Error("loading incidents failed", "error", err)
		c.String(http.StatusInternalServerError, "could not load alerts")
		return
	}

	markers := render.BuildMarkers(incidents)
	mapHTML, meta, err := render.RenderMap(markers)
	if err != nil {
		s.logger.Error("rendering map failed", "error", err)
		c.String(http.StatusInternalServerError, "could not render map")
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(c.Writer, pageData{
		Title:       title,
		Map:         mapHTML,
		MarkerCount: len(meta),
		ShowForm:    showForm,
	})
	if err != nil {
		s.logger.Error("rendering page failed", "error", err)
	}
}

type pageData struct {
	Title       string
	Map         template.HTML
	MarkerCount int
	ShowForm    bool
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>
    body { margin: 0; font-family: 'Noto Sans', sans-serif; display: flex; }
    #alertcontainer { width: 30%; padding: 1em; overflow-y: auto; height: 100vh; }
    #mapcontainer { flex: 1; }
    #alertmap { height: 100vh; }
  </style>
</head>
<body>
  <div id="alertcontainer">
    <h1>{{.Title}}</h1>
    <p>{{.MarkerCount}} active incident(s). Click a marker for details.</p>
    {{if .ShowForm}}
    <form action="/update-map" method="POST">
      <textarea name="text-input" rows="8" cols="40" placeholder="Paste an alert message"></textarea><br>
      <button type="submit">Add alert</button>
    </form>
    {{end}}
  </div>
  <div id="mapcontainer">{{.Map}}</div>
</body>
</html>`))
