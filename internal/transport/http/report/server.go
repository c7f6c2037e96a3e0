// Package reporthttp serves the verification report: recent verdicts, the
// verdicts of one suite run, and a rendered pass/fail summary chart.
package reporthttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tradecheck/internal/logger"
	"tradecheck/internal/reconcile"
	"tradecheck/internal/runlog"

	"github.com/gin-gonic/gin"
)

// Server exposes the verdict store over HTTP.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig describes the report server dependencies.
type ServerConfig struct {
	Addr     string
	Verdicts *runlog.Store
}

// NewServer builds the report HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Verdicts == nil {
		return nil, errors.New("report http server requires a verdict store")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9981"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r := &reportRouter{verdicts: cfg.Verdicts}
	r.register(router.Group("/api/report"))
	router.GET("/report/summary", r.handleSummaryChart)

	return &Server{addr: cfg.Addr, router: router}, nil
}

type reportRouter struct {
	verdicts *runlog.Store
}

func (r *reportRouter) register(group *gin.RouterGroup) {
	group.GET("/verdicts", r.handleRecentVerdicts)
	group.GET("/runs/:id", r.handleRunDetail)
}

// verdictView is the wire shape of one verdict row.
type verdictView struct {
	ID       uint      `json:"id"`
	RunID    string    `json:"run_id"`
	Scenario string    `json:"scenario"`
	Attempt  int       `json:"attempt"`
	Passed   bool      `json:"passed"`
	Left     string    `json:"left_source"`
	Right    string    `json:"right_source"`
	At       time.Time `json:"created_at"`
}

func toView(m runlog.VerdictModel) verdictView {
	return verdictView{
		ID:       m.ID,
		RunID:    m.RunID,
		Scenario: m.Scenario,
		Attempt:  m.Attempt,
		Passed:   m.Passed,
		Left:     m.Left,
		Right:    m.Right,
		At:       m.CreatedAt,
	}
}

func (r *reportRouter) handleRecentVerdicts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	models, err := r.verdicts.ListRecent(c.Request.Context(), limit)
	if err != nil {
		logger.Errorf("[api] verdict list failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]verdictView, len(models))
	for i, m := range models {
		views[i] = toView(m)
	}
	c.JSON(http.StatusOK, gin.H{"verdicts": views, "count": len(views)})
}

func (r *reportRouter) handleRunDetail(c *gin.Context) {
	runID := strings.TrimSpace(c.Param("id"))
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run id is required"})
		return
	}
	models, err := r.verdicts.ByRun(c.Request.Context(), runID)
	if err != nil {
		logger.Errorf("[api] run detail failed ip=%s run=%s err=%v", c.ClientIP(), runID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(models) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	type verdictDetail struct {
		verdictView
		Result reconcile.Result `json:"result"`
	}
	details := make([]verdictDetail, 0, len(models))
	for _, m := range models {
		res, err := m.Decode()
		if err != nil {
			logger.Warnf("[api] run detail decode failed run=%s verdict=%d err=%v", runID, m.ID, err)
			continue
		}
		details = append(details, verdictDetail{verdictView: toView(m), Result: res})
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "verdicts": details})
}

func (r *reportRouter) handleSummaryChart(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if limit <= 0 {
		limit = 200
	}
	models, err := r.verdicts.ListRecent(c.Request.Context(), limit)
	if err != nil {
		logger.Errorf("[api] summary chart failed ip=%s err=%v", c.ClientIP(), err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	chart := buildSummaryChart(models)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(c.Writer); err != nil {
		logger.Errorf("[api] summary chart render failed err=%v", err)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			method, path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// Start runs the HTTP server until ctx is cancelled or it fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
