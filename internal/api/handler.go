package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rushnews/newsstream/internal/service"
	"github.com/rushnews/newsstream/internal/store"
	"github.com/rushnews/newsstream/pkg/models"
)

type Handler struct {
	svc    *service.Service
	apiKey string
}

func NewHandler(svc *service.Service, apiKey string) *Handler {
	return &Handler{svc: svc, apiKey: apiKey}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)

	r.POST("/sync", h.SyncStories)
	r.POST("/sync_trends", h.SyncTrends)
	r.POST("/purge_trends", h.PurgeTrends)

	r.GET("/stories", h.Stories)
	r.GET("/stories/:id", h.Story)
	r.GET("/trends", h.Trends)
	r.GET("/xtrends", h.XTrends)
	r.GET("/xtrending_topics", h.XTrendingTopics)
	r.GET("/trending_topics", h.TrendingTopics)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SyncPayload is the ingestion engine's story batch.
type SyncPayload struct {
	APIKey      string              `json:"api_key"`
	Stories     []models.Story      `json:"stories"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

// SyncStories: POST /sync
func (h *Handler) SyncStories(c *gin.Context) {
	var payload SyncPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if payload.APIKey != h.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	if err := h.svc.SyncStories(c.Request.Context(), payload.Stories, payload.Suggestions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"stories_received":     len(payload.Stories),
		"suggestions_received": len(payload.Suggestions),
	})
}

// SyncTrendsPayload is the ingestion engine's trend batch.
type SyncTrendsPayload struct {
	APIKey string         `json:"api_key"`
	Trends []models.Trend `json:"trends"`
}

// SyncTrends: POST /sync_trends
func (h *Handler) SyncTrends(c *gin.Context) {
	var payload SyncTrendsPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if payload.APIKey != h.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	if err := h.svc.SyncTrends(c.Request.Context(), payload.Trends); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"trends_received": len(payload.Trends),
	})
}

// purgeParams carries /purge_trends arguments. Query parameters are the
// primary form; a JSON body is accepted for older clients.
type purgeParams struct {
	APIKey     string `form:"api_key" json:"api_key"`
	KeepLatest *int   `form:"keep_latest" json:"keep_latest"`
	TrendType  string `form:"trend_type" json:"trend_type"`
}

// PurgeTrends: POST /purge_trends?api_key=&keep_latest=24&trend_type=x_news
func (h *Handler) PurgeTrends(c *gin.Context) {
	var params purgeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if params.APIKey == "" && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
			return
		}
	}
	if params.APIKey != h.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	keep := 24
	if params.KeepLatest != nil {
		keep = *params.KeepLatest
	}
	trendType := params.TrendType
	if trendType == "" {
		trendType = models.TrendTypeXNews
	}

	kept, deleted, err := h.svc.PurgeTrends(c.Request.Context(), trendType, keep)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"kept":    kept,
		"deleted": deleted,
	})
}

// Stories: GET /stories?topic=&is_breaking=&after=&limit=200
func (h *Handler) Stories(c *gin.Context) {
	f := store.StoryFilter{Topic: c.Query("topic")}

	if raw := c.Query("is_breaking"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_breaking parameter"})
			return
		}
		f.IsBreaking = &v
	}
	if raw := c.Query("after"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid after parameter, want RFC3339"})
			return
		}
		f.After = &ts
	}

	lim := parseLimit(c.DefaultQuery("limit", "200"), 200, 200)
	res, err := h.svc.Stories(c.Request.Context(), f, lim)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Story: GET /stories/:id
func (h *Handler) Story(c *gin.Context) {
	id := c.Param("id")
	res, err := h.svc.Story(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Trends: GET /trends?trend_type=&category=&region=&limit=200
func (h *Handler) Trends(c *gin.Context) {
	f := store.TrendFilter{
		TrendType: c.Query("trend_type"),
		Category:  c.Query("category"),
		Region:    c.Query("region"),
	}
	lim := parseLimit(c.DefaultQuery("limit", "200"), 200, 200)

	res, err := h.svc.Trends(c.Request.Context(), f, lim)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// XTrends: GET /xtrends?limit=200
func (h *Handler) XTrends(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "200"), 200, 200)
	res, err := h.svc.Trends(c.Request.Context(), store.TrendFilter{TrendType: models.TrendTypeXNews}, lim)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// XTrendingTopics: GET /xtrending_topics
func (h *Handler) XTrendingTopics(c *gin.Context) {
	res, err := h.svc.XTrendingTopics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// TrendingTopics: GET /trending_topics?limit_clusters=10&story_limit=200
func (h *Handler) TrendingTopics(c *gin.Context) {
	limitClusters := parseLimit(c.DefaultQuery("limit_clusters", "10"), 10, 20)
	storyLimit := parseLimit(c.DefaultQuery("story_limit", "200"), 200, 500)

	res, err := h.svc.TrendingTopics(c.Request.Context(), limitClusters, storyLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// parseLimit ensures a sane integer limit, with bounds
func parseLimit(s string, def, max int) int {
	l, err := strconv.Atoi(s)
	if err != nil || l <= 0 {
		return def
	}
	if l > max {
		return max
	}
	return l
}
