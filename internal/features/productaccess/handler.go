package productaccess

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/middleware"
	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
	"github.com/mo-amir99/lms-progress-server/pkg/request"
	"github.com/mo-amir99/lms-progress-server/pkg/response"
)

// Handler processes product access HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a product access handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the caller's grants.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	filters := ListFilters{UserID: usr.ID, Ordering: c.Query("ordering")}

	// Filtering by another user can only ever match nothing.
	if raw := c.Query("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "user filter must be a UUID", err)
			return
		}
		if id != usr.ID {
			params := pagination.Extract(c)
			response.Success(c, http.StatusOK, []ProductAccess{}, "", pagination.MetadataFrom(0, params))
			return
		}
	}

	if raw := c.Query("product"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "product filter must be a UUID", err)
			return
		}
		filters.ProductID = &id
	}

	params := pagination.Extract(c)
	accesses, total, err := List(h.db.WithContext(c.Request.Context()), filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list product accesses", err)
		return
	}

	response.Success(c, http.StatusOK, accesses, "", pagination.MetadataFrom(total, params))
}

// Create grants access to a product. The user defaults to the caller.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req struct {
		Product uuid.UUID  `json:"product" binding:"required"`
		User    *uuid.UUID `json:"user"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid product access payload", err)
		return
	}

	input := Input{ProductID: req.Product, UserID: usr.ID}
	if req.User != nil {
		input.UserID = *req.User
	}

	access, err := Create(h.db.WithContext(c.Request.Context()), input)
	if err != nil {
		h.respondError(c, err, "failed to create product access")
		return
	}

	response.Created(c, access, "")
}

// GetByID fetches one of the caller's grants.
func (h *Handler) GetByID(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	access, err := Get(h.db.WithContext(c.Request.Context()), usr.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to load product access")
		return
	}

	response.Success(c, http.StatusOK, access, "", nil)
}

// Update repoints one of the caller's grants.
func (h *Handler) Update(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid product access payload", err)
		return
	}

	input := UpdateInput{}
	for _, field := range []string{"product", "user"} {
		value, present := body[field]
		if !present {
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

		if field == "product" {
			input.ProductID = &parsed
		} else {
			input.UserID = &parsed
		}
	}

	access, err := Update(h.db.WithContext(c.Request.Context()), usr.ID, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update product access")
		return
	}

	response.Success(c, http.StatusOK, access, "", nil)
}

// Delete revokes one of the caller's grants.
func (h *Handler) Delete(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), usr.ID, id); err != nil {
		h.respondError(c, err, "failed to delete product access")
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

	id, err := uuid.Parse(c.Param("accessId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Product access not found.", err)
		return nil, uuid.Nil, false
	}

	return usr, id, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := apperrors.As(err); ok {
		response.AppError(h.logger, c, appErr)
		return
	}

	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrAccessNotFound):
		status = http.StatusNotFound
		message = "Product access not found."
	case errors.Is(err, ErrProductMissing):
		status = http.StatusBadRequest
		message = "Product does not exist."
	case errors.Is(err, ErrUserMissing):
		status = http.StatusBadRequest
		message = "User does not exist."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
