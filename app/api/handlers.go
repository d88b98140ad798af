package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openkeywords/keyword-comb/app/database"
	"github.com/openkeywords/keyword-comb/app/export"
	"github.com/openkeywords/keyword-comb/app/gap"
	"github.com/openkeywords/keyword-comb/app/tasks"
)

func NewHandler(configCache *gap.ConfigCache, targetRepo database.TargetRepository,
	analysisRepo database.AnalysisRepository, opportunityRepo database.OpportunityRepository,
	comparisonAPI gap.ComparisonAPI, metrics tasks.MetricsAPI,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		targetRepo:      targetRepo,
		analysisRepo:    analysisRepo,
		opportunityRepo: opportunityRepo,
		configCache:     configCache,
		comparisonAPI:   comparisonAPI,
		metrics:         metrics,
		scheduler:       scheduler,
	}
}

// loadLatestResult assembles a gap.Result from the most recent completed
// analysis of a target. Returns a nil result when no analysis exists yet.
func (h *Handler) loadLatestResult(name string, limit int) (*gap.Result, *database.Analysis, error) {
	analysis, err := h.analysisRepo.GetLatestAnalysis(name)
	if err != nil {
		return nil, nil, err
	}
	if analysis == nil {
		return nil, nil, nil
	}

	opportunities, err := h.opportunityRepo.GetOpportunities(analysis.ID, limit)
	if err != nil {
		return nil, nil, err
	}

	records := make([]gap.KeywordRecord, 0, len(opportunities))
	for _, opportunity := range opportunities {
		records = append(records, opportunity.KeywordRecord)
	}

	result := &gap.Result{
		Records: records,
		Stats: gap.SummaryStats{
			Total:           analysis.Total,
			IntentBreakdown: intentBreakdown(records),
			WithAeoFeatures: analysis.WithAeoFeatures,
			QuestionCount:   analysis.QuestionCount,
			AvgScore:        analysis.AvgScore,
			AvgVolume:       analysis.AvgVolume,
			AvgDifficulty:   analysis.AvgDifficulty,
		},
		FailedCompetitors: analysis.FailedCompetitors,
	}

	return result, analysis, nil
}

func intentBreakdown(records []gap.KeywordRecord) map[string]int {
	breakdown := make(map[string]int)
	for _, record := range records {
		breakdown[record.Intent]++
	}
	return breakdown
}

func parseLimit(c *gin.Context) int {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func (h *Handler) GetOpportunities(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	_, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Target configuration not found", "target", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Target configuration not found"})
		return
	}

	result, analysis, err := h.loadLatestResult(name, parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_opportunities", "target", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analysis available for target yet"})
		return
	}

	c.Header("X-Target-Name", name)
	c.Header("X-Analysis-Id", analysis.ID)
	if analysis.CompletedAt != nil {
		c.Header("X-Analysis-Completed", analysis.CompletedAt.Format(time.RFC3339))
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	result, _, err := h.loadLatestResult(name, parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "export_csv", "target", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analysis available for target yet"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\""+name+"-opportunities.csv\"")
	c.Status(http.StatusOK)

	if err := export.WriteCSV(c.Writer, result.Records); err != nil {
		slog.Error("CSV export error", "target", name, "error", err)
	}
}

func (h *Handler) ExportJSON(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	result, _, err := h.loadLatestResult(name, parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "export_json", "target", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analysis available for target yet"})
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\""+name+"-opportunities.json\"")
	c.Status(http.StatusOK)

	if err := export.WriteJSON(c.Writer, result); err != nil {
		slog.Error("JSON export error", "target", name, "error", err)
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if targetCount, err := h.targetRepo.GetTargetCount(); err == nil {
		health["targets"] = targetCount
	}

	if analysisCount, err := h.analysisRepo.GetAnalysisCount(); err == nil {
		health["analyses"] = analysisCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()
	health["metrics_provider"] = h.metrics.IsConfigured()

	c.JSON(http.StatusOK, health)
}

// GetStats aggregates the latest completed analysis of every configured
// target into service-wide opportunity statistics.
func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if targetCount, err := h.targetRepo.GetTargetCount(); err == nil {
		stats["targets"] = targetCount
	}
	if analysisCount, err := h.analysisRepo.GetAnalysisCount(); err == nil {
		stats["analyses"] = analysisCount
	}

	perTarget := make(map[string]interface{})
	totalOpportunities := 0

	for _, targetConfig := range h.configCache.GetConfigs() {
		analysis, err := h.analysisRepo.GetLatestAnalysis(targetConfig.Name)
		if err != nil {
			slog.Error("Database error", "operation", "get_stats", "target", targetConfig.Name, "error", err)
			continue
		}
		if analysis == nil {
			continue
		}

		totalOpportunities += analysis.Total

		entry := map[string]interface{}{
			"opportunities":      analysis.Total,
			"avg_aeo_score":      analysis.AvgScore,
			"avg_volume":         analysis.AvgVolume,
			"avg_difficulty":     analysis.AvgDifficulty,
			"with_aeo_features":  analysis.WithAeoFeatures,
			"question_keywords":  analysis.QuestionCount,
			"failed_competitors": len(analysis.FailedCompetitors),
		}
		if analysis.CompletedAt != nil {
			entry["completed_at"] = analysis.CompletedAt.Format(time.RFC3339)
		}

		perTarget[targetConfig.Name] = entry
	}

	stats["opportunities"] = totalOpportunities
	stats["per_target"] = perTarget

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListTargets(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	targets := make([]map[string]interface{}, 0, len(configs))

	for _, targetConfig := range configs {
		targetInfo := map[string]interface{}{
			"name":             targetConfig.Name,
			"domain":           targetConfig.Domain,
			"source":           targetConfig.Source,
			"enabled":          targetConfig.Settings.Enabled,
			"competitors":      len(targetConfig.Competitors),
			"refresh_interval": (time.Duration(targetConfig.Settings.RefreshInterval) * time.Second).String(),
		}

		if target, err := h.targetRepo.GetTarget(targetConfig.Name); err == nil && target != nil {
			targetInfo["last_analyzed_at"] = target.LastAnalyzedAt
			targetInfo["next_analysis_at"] = target.NextAnalysisAt
			targetInfo["updated_at"] = target.UpdatedAt
		}

		if analysis, err := h.analysisRepo.GetLatestAnalysis(targetConfig.Name); err == nil && analysis != nil {
			targetInfo["opportunity_count"] = analysis.Total
		}

		targets = append(targets, targetInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"targets": targets,
		"total":   len(targets),
	})
}

func (h *Handler) APIGetTargetDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing target name parameter"})
		return
	}

	targetConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Target configuration not found", "target", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Target configuration not found"})
		return
	}

	target, err := h.targetRepo.GetTarget(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_target", "target", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if target == nil {
		slog.Error("Target not found in database", "target", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Target not found in database"})
		return
	}

	details := map[string]interface{}{
		"name":             name,
		"domain":           targetConfig.Domain,
		"source":           targetConfig.Source,
		"language":         targetConfig.Language,
		"competitors":      targetConfig.Competitors,
		"enabled":          targetConfig.Settings.Enabled,
		"max_competitors":  targetConfig.Settings.MaxCompetitors,
		"max_keywords":     targetConfig.Settings.MaxKeywords,
		"enrich_metrics":   targetConfig.Settings.EnrichMetrics,
		"serp_enrichment":  targetConfig.Settings.SerpEnrichment,
		"refresh_interval": (time.Duration(targetConfig.Settings.RefreshInterval) * time.Second).String(),
		"timeout":          (time.Duration(targetConfig.Settings.Timeout) * time.Second).String(),
		"filters":          targetConfig.Filters,
	}

	details["database"] = map[string]interface{}{
		"id":               target.ID,
		"name":             target.Name,
		"last_analyzed_at": target.LastAnalyzedAt,
		"next_analysis_at": target.NextAnalysisAt,
		"created_at":       target.CreatedAt,
		"updated_at":       target.UpdatedAt,
	}

	if analysis, err := h.analysisRepo.GetLatestAnalysis(name); err == nil && analysis != nil {
		details["latest_analysis"] = map[string]interface{}{
			"id":                 analysis.ID,
			"started_at":         analysis.StartedAt,
			"completed_at":       analysis.CompletedAt,
			"total":              analysis.Total,
			"avg_aeo_score":      analysis.AvgScore,
			"failed_competitors": analysis.FailedCompetitors,
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIAnalyzeTarget(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing target name parameter"})
		return
	}

	_, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Target configuration not found", "target", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Target configuration not found"})
		return
	}

	targetConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "target", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncTargetConfigTask(name, targetConfig, h.targetRepo)
	err = h.scheduler.EnqueueTask(syncTask)
	if err != nil {
		slog.Error("Error enqueueing sync task", "target", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	analyzeTask := tasks.NewAnalyzeGapTask(name, targetConfig, h.comparisonAPI, h.metrics,
		h.targetRepo, h.analysisRepo, h.opportunityRepo)
	err = h.scheduler.EnqueueTask(analyzeTask)
	if err != nil {
		slog.Error("Error enqueueing analyze task", "target", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue analyze task",
			"details": err.Error(),
		})
		return
	}

	response := gin.H{
		"success": true,
		"message": "Configuration reloaded and analysis enqueued successfully",
		"target": gin.H{
			"name":   name,
			"domain": targetConfig.Domain,
			"source": targetConfig.Source,
		},
		"tasks": []gin.H{
			{
				"id":   syncTask.ID,
				"type": syncTask.Type,
			},
			{
				"id":   analyzeTask.ID,
				"type": analyzeTask.Type,
			},
		},
	}

	c.JSON(http.StatusOK, response)
}
