package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"science-chat/internal/service"
)

// UploadHandler recibe documentos del cliente.
type UploadHandler struct {
	logger   *zap.Logger
	fileServ *service.FileService
	maxBytes int64
}

func NewUploadHandler(logger *zap.Logger, fileServ *service.FileService, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		logger:   logger,
		fileServ: fileServ,
		maxBytes: maxBytes,
	}
}

// Upload maneja POST /upload/:userId con el campo multipart "file".
func (h *UploadHandler) Upload(c *gin.Context) {
	userID := c.Param("userId")
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	src, err := header.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading file"})
		return
	}
	defer src.Close()

	res, err := h.fileServ.Ingest(c.Request.Context(), userID, header.Filename, header.Header.Get("Content-Type"), src)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		case errors.Is(err, service.ErrFileExtraction):
			h.logger.Warn("extract uploaded file failed", zap.Error(err), zap.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading file"})
		default:
			h.logger.Error("upload failed", zap.Error(err), zap.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error uploading file"})
		}
		return
	}

	if res.Extracted {
		c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully", "content": res.Content})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully"})
}
