package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedrelay/app/cfg"
	"feedrelay/app/history"
	"feedrelay/app/scheduler"
)

type Handler struct {
	scheduler *scheduler.Scheduler
	store     *history.Store
	startedAt time.Time
}

func NewHandler(s *scheduler.Scheduler, store *history.Store) *Handler {
	return &Handler{
		scheduler: s,
		store:     store,
		startedAt: time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   cfg.Get().Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"feeds":          h.scheduler.FeedCount(),
		"cadence_groups": h.scheduler.GroupCount(),
		"delivered":      h.store.Stats(),
		"uptime":         time.Since(h.startedAt).Round(time.Second).String(),
	})
}
