// Package server exposes the forecaster over HTTP and runs scheduled
// collections.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"

	"swellforecaster/collect"
	"swellforecaster/config"
)

// RunFunc executes a full collect-and-forecast cycle and returns the bundle id.
type RunFunc func(ctx context.Context) (string, error)

// Server wires the HTTP API and the collection scheduler.
type Server struct {
	cfg     *config.Config
	run     RunFunc
	running atomic.Bool
}

func New(cfg *config.Config, run RunFunc) *Server {
	return &Server{cfg: cfg, run: run}
}

// Start blocks serving HTTP. When CollectEveryHrs is set, a scheduler kicks
// off runs in the background at that cadence.
func (s *Server) Start() error {
	if hrs := s.cfg.Server.CollectEveryHrs; hrs > 0 {
		sched := gocron.NewScheduler(time.UTC)
		if _, err := sched.Every(hrs).Hours().Do(s.scheduledRun); err != nil {
			return err
		}
		sched.StartAsync()
		log.Printf("scheduled collection every %d hours", hrs)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/forecast/latest", s.handleLatestForecast)
	r.GET("/bundles/:id", s.handleBundle)
	r.POST("/collect", s.handleCollect)

	log.Printf("listening on %s", s.cfg.Server.Addr)
	return r.Run(s.cfg.Server.Addr)
}

func (s *Server) scheduledRun() {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("Warning: skipping scheduled run, previous run still in progress")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	bundleID, err := s.run(ctx)
	if err != nil {
		log.Printf("Warning: scheduled run failed: %v", err)
		return
	}
	log.Printf("scheduled run finished, bundle %s", bundleID)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": s.running.Load()})
}

// handleLatestForecast serves the newest rendered HTML forecast.
func (s *Server) handleLatestForecast(c *gin.Context) {
	entries, err := os.ReadDir(s.cfg.Forecast.OutputDir)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no forecasts available"})
		return
	}
	var htmls []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "forecast_") && strings.HasSuffix(e.Name(), ".html") {
			htmls = append(htmls, e.Name())
		}
	}
	if len(htmls) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no forecasts available"})
		return
	}
	sort.Strings(htmls)
	c.File(filepath.Join(s.cfg.Forecast.OutputDir, htmls[len(htmls)-1]))
}

// handleBundle returns the metadata for one bundle, or the latest when the id
// is "latest".
func (s *Server) handleBundle(c *gin.Context) {
	id := c.Param("id")
	if id == "latest" {
		id = ""
	}
	meta, dir, err := collect.LoadBundle(s.cfg.General.DataDir, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bundle_id": meta.RunID,
		"dir":       dir,
		"timestamp": meta.Timestamp,
		"artifacts": len(meta.Results),
	})
}

// handleCollect starts a run in the background and returns immediately.
func (s *Server) handleCollect(c *gin.Context) {
	if !s.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
		return
	}
	go func() {
		defer s.running.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := s.run(ctx); err != nil {
			log.Printf("Warning: triggered run failed: %v", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}
