package productlesson

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/middleware"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
	"github.com/mo-amir99/lms-progress-server/pkg/request"
	"github.com/mo-amir99/lms-progress-server/pkg/response"
)

// Handler processes product lesson HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a product lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns links belonging to products the caller has access to.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	filters := ListFilters{UserID: usr.ID, Ordering: c.Query("ordering")}

	if raw := c.Query("product"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "product filter must be a UUID", err)
			return
		}
		filters.ProductID = &id
	}

	if raw := c.Query("lesson"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "lesson filter must be a UUID", err)
			return
		}
		filters.LessonID = &id
	}

	params := pagination.Extract(c)
	links, total, err := List(h.db.WithContext(c.Request.Context()), filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list product lessons", err)
		return
	}

	response.Success(c, http.StatusOK, links, "", pagination.MetadataFrom(total, params))
}

// Create links a lesson into a product.
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		Product uuid.UUID `json:"product" binding:"required"`
		Lesson  uuid.UUID `json:"lesson" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid product lesson payload", err)
		return
	}

	link, err := Create(h.db.WithContext(c.Request.Context()), Input{ProductID: req.Product, LessonID: req.Lesson})
	if err != nil {
		h.respondError(c, err, "failed to create product lesson")
		return
	}

	response.Created(c, link, "")
}

// GetByID fetches a visible link.
func (h *Handler) GetByID(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	link, err := Get(h.db.WithContext(c.Request.Context()), usr.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to load product lesson")
		return
	}

	response.Success(c, http.StatusOK, link, "", nil)
}

// Update repoints a visible link.
func (h *Handler) Update(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid product lesson payload", err)
		return
	}

	input := UpdateInput{}
	for field, target := range map[string]**uuid.UUID{"product": &input.ProductID, "lesson": &input.LessonID} {
		value, ok := body[field]
		if !ok {
			if c.Request.Method == http.MethodPut {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, field+" is required", nil)
				return
			}
			continue
		}
		parsed, err := request.ReadUUID(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, field+" must be a UUID", err)
			return
		}
		*target = &parsed
	}

	link, err := Update(h.db.WithContext(c.Request.Context()), usr.ID, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update product lesson")
		return
	}

	response.Success(c, http.StatusOK, link, "", nil)
}

// Delete removes a visible link.
func (h *Handler) Delete(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), usr.ID, id); err != nil {
		h.respondError(c, err, "failed to delete product lesson")
		return
	}

	response.NoContent(c)
}

func (h *Handler) scope(c *gin.Context) (*middleware.User, uuid.UUID, bool) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("linkId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Product lesson not found.", err)
		return nil, uuid.Nil, false
	}

	return usr, id, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrLinkNotFound):
		status = http.StatusNotFound
		message = "Product lesson not found."
	case errors.Is(err, ErrProductMissing):
		status = http.StatusBadRequest
		message = "Product does not exist."
	case errors.Is(err, ErrLessonMissing):
		status = http.StatusBadRequest
		message = "Lesson does not exist."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
