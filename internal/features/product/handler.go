package product

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

// Handler processes product HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a product handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the caller's live products.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	params := pagination.Extract(c)
	products, total, err := List(h.db.WithContext(c.Request.Context()), ListFilters{
		OwnerID:  usr.ID,
		Search:   c.Query("search"),
		Name:     c.Query("name"),
		Ordering: c.Query("ordering"),
	}, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list products", err)
		return
	}

	response.Success(c, http.StatusOK, products, "", pagination.MetadataFrom(total, params))
}

// Create inserts a product owned by the caller.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid product payload", err)
		return
	}

	product, err := Create(h.db.WithContext(c.Request.Context()), usr.ID, req.Name)
	if err != nil {
		h.respondError(c, err, "failed to create product")
		return
	}

	response.Created(c, product, "")
}

// GetByID returns one of the caller's products.
func (h *Handler) GetByID(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	product, err := Get(h.db.WithContext(c.Request.Context()), usr.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to load product")
		return
	}

	response.Success(c, http.StatusOK, product, "", nil)
}

// Update renames one of the caller's products. PUT and PATCH share it.
func (h *Handler) Update(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid product payload", err)
		return
	}

	input := UpdateInput{}
	if value, ok := body["name"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "name must be a non-empty string", err)
			return
		}
		input.Name = &str
	} else if c.Request.Method == http.MethodPut {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "name is required", ErrNameRequired)
		return
	}

	product, err := Update(h.db.WithContext(c.Request.Context()), usr.ID, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update product")
		return
	}

	response.Success(c, http.StatusOK, product, "", nil)
}

// Delete soft deletes one of the caller's products.
func (h *Handler) Delete(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := SoftDelete(h.db.WithContext(c.Request.Context()), usr.ID, id); err != nil {
		h.respondError(c, err, "failed to delete product")
		return
	}

	h.logger.Info("product soft deleted", slog.String("product_id", id.String()), slog.String("owner_id", usr.ID.String()))
	response.NoContent(c)
}

func (h *Handler) scope(c *gin.Context) (*middleware.User, uuid.UUID, bool) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		// A malformed id cannot match any row.
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Product not found.", err)
		return nil, uuid.Nil, false
	}

	return usr, id, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrProductNotFound):
		status = http.StatusNotFound
		message = "Product not found."
	case errors.Is(err, ErrNameRequired):
		status = http.StatusBadRequest
		message = "Product name is required."
	case errors.Is(err, ErrNameTooLong):
		status = http.StatusBadRequest
		message = "Product name cannot exceed 255 characters."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
