package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/zot-comb/app/database"
	"github.com/lysyi3m/zot-comb/app/tasks"
)

func NewHandler(runs database.RunRepository, changes database.ChangeRepository,
	domains database.DomainRepository, stats *tasks.Stats, runID string) *Handler {
	return &Handler{
		runs:    runs,
		changes: changes,
		domains: domains,
		stats:   stats,
		runID:   runID,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"run_id":    h.runID,
	}

	if count, err := h.domains.Count(); err == nil {
		health["known_domains"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	counters := h.stats.Snapshot()

	stats := map[string]interface{}{
		"run_id":         h.runID,
		"processed":      counters.Processed,
		"substack_found": counters.SubstackFound,
		"linkedin_found": counters.LinkedInFound,
		"urls_cleaned":   counters.URLsCleaned,
		"updated":        counters.Updated,
		"errors":         counters.Errors,
	}

	if count, err := h.domains.Count(); err == nil {
		stats["known_domains"] = count
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetChanges(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	changes, err := h.changes.RecentChanges(limit)
	if err != nil {
		slog.Error("Database error", "operation", "recent_changes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, changeJSON(change))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"changes": entries,
		"total":   len(entries),
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.runs.GetRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	changes, err := h.changes.ChangesForRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "changes_for_run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, changeJSON(change))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"run": map[string]interface{}{
			"id":             run.ID,
			"mode":           run.Mode,
			"started_at":     run.StartedAt,
			"finished_at":    run.FinishedAt,
			"processed":      run.Processed,
			"substack_found": run.SubstackFound,
			"linkedin_found": run.LinkedInFound,
			"urls_cleaned":   run.URLsCleaned,
			"updated":        run.Updated,
			"errors":         run.Errors,
		},
		"changes": entries,
	})
}

func changeJSON(change database.Change) map[string]interface{} {
	return map[string]interface{}{
		"item_key":     change.ItemKey,
		"run_id":       change.RunID,
		"website_type": change.WebsiteType,
		"publication":  change.Publication,
		"title":        change.Title,
		"url":          change.URL,
		"item_type":    change.ItemType,
		"date":         change.Date,
		"authors":      change.Authors,
		"applied":      change.Applied,
		"created_at":   change.CreatedAt,
	}
}
