package pdfs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/server/respond"
	"docchat-backend/internal/shared/util"
)

const (
	defaultMaxUploadBytes = 50 << 20
	multipartOverhead     = 1 << 20
	isoMillis             = "2006-01-02T15:04:05.000Z"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches upload, chat and retrieval routes to the /api group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.POST("/chat", h.chat)
	rg.GET("/pdf/:pdfId", h.metadata)
	rg.GET("/pdf/:pdfId/content", h.content)
}

// RegisterFileRoutes serves raw uploaded files under /uploads.
func (h *Handler) RegisterFileRoutes(r gin.IRoutes) {
	r.GET("/uploads/:file", h.file)
	r.HEAD("/uploads/:file", h.file)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "file_too_large", tooLargeMessage(h.MaxUploadBytes), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No PDF file uploaded", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "file_too_large", tooLargeMessage(h.MaxUploadBytes), nil)
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !IsPDFContentType(contentType) {
		respond.Error(c, http.StatusBadRequest, "unsupported_type", "Only PDF files are allowed!", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No PDF file uploaded", nil)
		return
	}
	defer file.Close()

	rec, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, contentType, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotPDF):
			respond.Error(c, http.StatusBadRequest, "unsupported_type", "Only PDF files are allowed!", nil)
		default:
			logger().Error("pdf.upload_failed", zap.String("file_name", logFileName(fileHeader.Filename)), zap.Error(err))
			respond.Error(c, http.StatusInternalServerError, "upload_failed", "Failed to process PDF", nil)
		}
		return
	}
	c.Set("pdfId", rec.ID)

	respond.OK(c, gin.H{
		"success":  true,
		"pdfId":    rec.ID,
		"fileName": rec.FileName,
		"numPages": rec.NumPages,
		"message":  "PDF uploaded successfully",
	})
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", limit>>20)
}

type chatRequest struct {
	Message string `json:"message"`
	PdfID   string `json:"pdfId"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Message and PDF ID are required", nil)
		return
	}
	if req.PdfID != "" {
		c.Set("pdfId", req.PdfID)
	}

	res, err := h.Svc.Ask(c.Request.Context(), req.Message, req.PdfID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Message and PDF ID are required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "PDF not found", nil)
		case errors.Is(err, llm.ErrNotConfigured):
			respond.Error(c, http.StatusInternalServerError, "llm_not_configured", "OpenAI API key not configured. Please set OPENAI_API_KEY environment variable.", nil)
		case errors.Is(err, llm.ErrQuotaExceeded):
			respond.Error(c, http.StatusInternalServerError, "llm_quota_exceeded", "OpenAI API quota exceeded. Please check your account.", nil)
		case errors.Is(err, llm.ErrInvalidAPIKey):
			respond.Error(c, http.StatusInternalServerError, "llm_invalid_api_key", "Invalid OpenAI API key. Please check your configuration.", nil)
		case errors.Is(err, llm.ErrTimeout):
			respond.Error(c, http.StatusInternalServerError, "llm_timeout", "The language model did not respond in time. Please try again.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "chat_failed", "Failed to process chat request: "+err.Error(), nil)
		}
		return
	}

	respond.OK(c, gin.H{
		"success":        true,
		"response":       res.Response,
		"pageReferences": res.PageReferences,
		"timestamp":      formatTime(res.Timestamp),
	})
}

func (h *Handler) lookup(c *gin.Context) (Record, bool) {
	id := c.Param("pdfId")
	c.Set("pdfId", id)
	if _, err := util.CleanStorageKey(id); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "PDF not found", nil)
		return Record{}, false
	}
	rec, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "PDF not found", nil)
			return Record{}, false
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch PDF data", nil)
		return Record{}, false
	}
	return rec, true
}

func (h *Handler) metadata(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, gin.H{
		"success": true,
		"pdf": gin.H{
			"id":         rec.ID,
			"fileName":   rec.FileName,
			"numPages":   rec.NumPages,
			"uploadTime": formatTime(rec.UploadTime),
		},
	})
}

func (h *Handler) content(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, gin.H{
		"success":     true,
		"textContent": rec.TextContent,
		"numPages":    rec.NumPages,
	})
}

func (h *Handler) file(c *gin.Context) {
	name := c.Param("file")
	key, err := util.CleanStorageKey(name)
	if err != nil || strings.Contains(key, "/") {
		respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
		return
	}

	rc, err := h.Svc.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
			return
		}
		logger().Error("pdf.file_open_failed", zap.String("pdf_id", key), zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to read file", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "inline")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, HEAD")
	c.Header("Access-Control-Allow-Headers", "Range")
	c.Writer.Header().Del("Access-Control-Allow-Credentials")
	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, nil)
}
