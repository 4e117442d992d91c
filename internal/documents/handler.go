package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to a group that already requires auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createRequest struct {
	Title string `json:"title"`
}

type updateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Document title is required", nil)
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Title)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Document title is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Error creating document", nil)
		}
		return
	}

	respond.Created(c, doc)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Error fetching documents", nil)
		return
	}
	respond.OK(c, docs)
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), Patch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Document title cannot be empty", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Error updating document", nil)
		}
		return
	}

	respond.OK(c, doc)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Error deleting document", nil)
		}
		return
	}

	respond.OK(c, gin.H{"message": "Document deleted successfully"})
}
