package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dropcomb/dropcomb/app/database"
	"github.com/dropcomb/dropcomb/app/source"
	"github.com/dropcomb/dropcomb/app/tasks"
)

func NewHandler(repo database.AirdropRepository, configCache *source.ConfigCache,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		repo:        repo,
		configCache: configCache,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   h.configCache.GetConfigCount(),
	}

	if stats, err := h.repo.GetStats(); err == nil {
		health["airdrops"] = stats.Total
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":         stats.Total,
		"approved":      stats.Approved,
		"rejected":      stats.Rejected,
		"expired":       stats.Expired,
		"notified":      stats.Notified,
		"average_score": stats.AverageScore,
		"sources": gin.H{
			"loaded":  h.configCache.GetConfigCount(),
			"enabled": len(h.configCache.GetEnabledConfigs()),
		},
	})
}

func (h *Handler) APIListAirdrops(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.repo.ListRecent(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_airdrops", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	airdrops := make([]airdropResponse, 0, len(records))
	for _, record := range records {
		airdrops = append(airdrops, toAirdropResponse(record))
	}

	c.JSON(http.StatusOK, gin.H{"airdrops": airdrops, "count": len(airdrops)})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))
	for _, sourceConfig := range configs {
		sources = append(sources, map[string]interface{}{
			"name":      sourceConfig.Name,
			"platform":  sourceConfig.Platform,
			"type":      sourceConfig.Type,
			"url":       sourceConfig.URL,
			"enabled":   sourceConfig.Settings.Enabled,
			"timeout":   (time.Duration(sourceConfig.Settings.Timeout) * time.Second).String(),
			"max_items": sourceConfig.Settings.MaxItems,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sources": sources, "count": len(sources)})
}

// APITriggerCrawl enqueues a crawl cycle outside the regular cadence.
func (h *Handler) APITriggerCrawl(c *gin.Context) {
	if err := h.scheduler.TriggerCrawl(); err != nil {
		slog.Error("Failed to enqueue manual crawl", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "crawl could not be scheduled"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "crawl scheduled"})
}
