package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/config"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/fetcher"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/service"
)

const streamIdleTimeout = 2 * time.Second

// Handler wires HTTP routes to the fetch manager and history service.
type Handler struct {
	manager fetcher.Manager
	bus     *progress.Bus
	history service.HistoryService
	folders config.Folders
}

func NewHandler(manager fetcher.Manager, bus *progress.Bus, history service.HistoryService, folders config.Folders) *Handler {
	return &Handler{
		manager: manager,
		bus:     bus,
		history: history,
		folders: folders,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/download", h.submitDownload)
		api.POST("/cancel", h.cancelDownload)
		api.GET("/progress", h.streamProgress)
		api.GET("/history", h.listHistory)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type downloadRequest struct {
	URL            string `json:"url" binding:"required"`
	Folder         string `json:"folder" binding:"required"`
	Subfolder      string `json:"subfolder"`
	NewSubfolder   string `json:"new_subfolder"`
	CustomFilename string `json:"custom_filename"`
	Format         string `json:"format_type" binding:"required"`
	UseCache       bool   `json:"use_cache"`
	User           string `json:"user"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// submitDownload validates a batch submission synchronously and hands it to
// the background manager; the response returns before any work happens.
func (h *Handler) submitDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	urls := splitURLs(req.URL)
	if len(urls) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URLs submitted! ⚠️"})
		return
	}

	var invalid []string
	for _, u := range urls {
		if !IsValidSourceURL(u) {
			invalid = append(invalid, u)
		}
	}
	if len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid URLs found: %s", strings.Join(invalid, ", "))})
		return
	}

	if _, ok := h.folders.Path(req.Folder); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder selected! ⚠️"})
		return
	}

	format := domain.Format(req.Format)
	if !format.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid format selected! %q ⚠️", req.Format)})
		return
	}

	subfolder := req.Subfolder
	if subfolder == "New" {
		if req.NewSubfolder == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have not set a name for the new folder! ⚠️"})
			return
		}
		subfolder = req.NewSubfolder
	}

	hasPlaylist := false
	for _, u := range urls {
		if IsPlaylistURL(u) {
			hasPlaylist = true
			break
		}
	}
	if hasPlaylist && subfolder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Playlists require a subfolder! ⚠️"})
		return
	}
	if hasPlaylist && req.CustomFilename != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Playlists do not support custom filenames! ⚠️"})
		return
	}

	user := req.User
	if user == "" {
		user = "admin"
	}

	batch := domain.Batch{ID: uuid.NewString()}
	for _, u := range urls {
		batch.Jobs = append(batch.Jobs, domain.Job{
			SourceURL:      u,
			FolderKey:      req.Folder,
			Subfolder:      subfolder,
			CustomFilename: req.CustomFilename,
			Format:         format,
			User:           user,
			UseCache:       req.UseCache,
		})
	}

	if h.history != nil {
		record := &domain.BatchRecord{
			ID:        batch.ID,
			User:      user,
			FolderKey: req.Folder,
			URLCount:  len(urls),
		}
		if err := h.history.RecordBatch(c.Request.Context(), record); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	h.manager.Submit(batch)

	c.JSON(http.StatusAccepted, gin.H{
		"success":  true,
		"message":  "Download started...",
		"batch_id": batch.ID,
	})
}

func (h *Handler) cancelDownload(c *gin.Context) {
	h.manager.Cancel()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Download canceled (by User)"})
}

// streamProgress holds a long-lived SSE connection, forwarding bus events as
// they arrive. Heartbeat-marked events stay out of the client stream; idle
// periods produce an empty keep-alive so proxies do not drop the connection.
func (h *Handler) streamProgress(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		default:
		}

		ev, ok := h.bus.Next(streamIdleTimeout)
		if !ok {
			c.SSEvent("message", "")
			c.Writer.Flush()
			continue
		}
		if ev.Heartbeat {
			continue
		}
		c.SSEvent("message", ev.Rendered())
		c.Writer.Flush()
	}
}

type batchResponse struct {
	ID        string        `json:"id"`
	User      string        `json:"user"`
	FolderKey string        `json:"folder_key"`
	URLCount  int           `json:"url_count"`
	CreatedAt string        `json:"created_at"`
	Jobs      []jobResponse `json:"jobs"`
}

type jobResponse struct {
	ID          int64  `json:"id"`
	SourceURL   string `json:"source_url"`
	Format      string `json:"format"`
	Status      string `json:"status"`
	Moved       int    `json:"moved"`
	Missing     int    `json:"missing"`
	Unavailable int    `json:"unavailable"`
	ErrorText   string `json:"error_text,omitempty"`
}

func (h *Handler) listHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, []batchResponse{})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	batches, err := h.history.RecentBatches(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]batchResponse, len(batches))
	for i, batch := range batches {
		jobs, err := h.history.BatchJobs(c.Request.Context(), batch.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp[i] = batchToResponse(batch, jobs)
	}
	c.JSON(http.StatusOK, resp)
}

func batchToResponse(batch domain.BatchRecord, jobs []domain.JobRecord) batchResponse {
	resp := batchResponse{
		ID:        batch.ID,
		User:      batch.User,
		FolderKey: batch.FolderKey,
		URLCount:  batch.URLCount,
		CreatedAt: batch.CreatedAt.Format(time.RFC3339),
		Jobs:      make([]jobResponse, len(jobs)),
	}
	for i, job := range jobs {
		resp.Jobs[i] = jobResponse{
			ID:          job.ID,
			SourceURL:   job.SourceURL,
			Format:      string(job.Format),
			Status:      string(job.Status),
			Moved:       job.Moved,
			Missing:     job.Missing,
			Unavailable: job.Unavailable,
			ErrorText:   job.ErrorText,
		}
	}
	return resp
}

func splitURLs(raw string) []string {
	var urls []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}
