package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"rag-chatbot-platform/internal/config"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/middleware"
	"rag-chatbot-platform/models"
	"rag-chatbot-platform/services"
	"rag-chatbot-platform/utils"

	"github.com/gin-gonic/gin"
)

// SetupDocumentRoutes registers upload, ingest and file management
// endpoints.
func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, rag *services.RAGService) {
	router.POST("/upload", func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid multipart form", gin.H{"error": err.Error()})
			return
		}

		files := form.File["files"]
		if len(files) == 0 {
			utils.RespondWithBadRequest(c, "No files provided", nil)
			return
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			utils.RespondWithInternalError(c, "Failed to prepare data directory", gin.H{"error": err.Error()})
			return
		}

		uploaded := make([]string, 0, len(files))
		for _, file := range files {
			if file.Size > cfg.MaxFileSize {
				utils.RespondWithBadRequest(c, "File exceeds maximum allowed size", gin.H{
					"file":     file.Filename,
					"max_size": cfg.MaxFileSize,
				})
				return
			}

			// Strip any client-supplied path components
			filename := filepath.Base(file.Filename)
			if filename == "." || filename == ".." || filename == "" {
				utils.RespondWithBadRequest(c, "Invalid file name", gin.H{"file": file.Filename})
				return
			}

			if err := c.SaveUploadedFile(file, filepath.Join(cfg.DataDir, filename)); err != nil {
				utils.RespondWithInternalError(c, "Failed to save uploaded file", gin.H{
					"file":  filename,
					"error": err.Error(),
				})
				return
			}
			uploaded = append(uploaded, filename)
		}

		logger.Info("Files uploaded",
			"request_id", middleware.GetRequestID(c),
			"count", len(uploaded))

		c.JSON(http.StatusOK, models.UploadResponse{
			Message: fmt.Sprintf("Successfully uploaded %d files", len(uploaded)),
			Files:   uploaded,
		})
	})

	router.POST("/ingest", func(c *gin.Context) {
		// An empty body means "use the configured defaults"
		var req models.IngestRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		chunkSize := req.ChunkSize
		if chunkSize == 0 {
			chunkSize = cfg.ChunkSize
		}
		chunkOverlap := req.ChunkOverlap
		if chunkOverlap == 0 {
			chunkOverlap = cfg.ChunkOverlap
		}

		result, err := rag.Ingest(c.Request.Context(), chunkSize, chunkOverlap)
		if err != nil {
			respondPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": result})
	})

	router.GET("/files", func(c *gin.Context) {
		entries, err := os.ReadDir(cfg.DataDir)
		if err != nil {
			// Missing directory just means no uploads yet
			c.JSON(http.StatusOK, models.FileListResponse{Files: []string{}})
			return
		}

		files := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			files = append(files, entry.Name())
		}

		c.JSON(http.StatusOK, models.FileListResponse{Files: files})
	})

	router.DELETE("/files/:filename", func(c *gin.Context) {
		filename := c.Param("filename")

		// Security check: the target must stay inside the data directory
		if filename != filepath.Base(filename) || filename == "." || filename == ".." {
			utils.RespondWithBadRequest(c, "Invalid file path", nil)
			return
		}

		path := filepath.Join(cfg.DataDir, filename)
		if _, err := os.Stat(path); err != nil {
			utils.RespondWithNotFound(c, "File not found")
			return
		}

		if err := os.Remove(path); err != nil {
			utils.RespondWithInternalError(c, "Failed to delete file", gin.H{"error": err.Error()})
			return
		}

		logger.Info("File deleted",
			"request_id", middleware.GetRequestID(c),
			"file", filename)

		c.JSON(http.StatusOK, models.DeleteResponse{
			Message:        fmt.Sprintf("Successfully deleted %s", filename),
			Recommendation: "Please re-process documents to update the index",
		})
	})
}
