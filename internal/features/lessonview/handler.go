package lessonview

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

// Handler processes lesson view HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a lesson view handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the caller's views.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	filters := ListFilters{UserID: usr.ID, Ordering: c.Query("ordering")}
	if raw := c.Query("lesson"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "lesson filter must be a UUID", err)
			return
		}
		filters.LessonID = &id
	}

	params := pagination.Extract(c)
	views, total, err := List(h.db.WithContext(c.Request.Context()), filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list lesson views", err)
		return
	}

	response.Success(c, http.StatusOK, views, "", pagination.MetadataFrom(total, params))
}

// Create records a view. The user defaults to the caller.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req struct {
		Lesson       uuid.UUID  `json:"lesson" binding:"required"`
		User         *uuid.UUID `json:"user"`
		ViewDuration *int       `json:"view_duration" binding:"required,min=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson view payload", err)
		return
	}

	input := Input{LessonID: req.Lesson, UserID: usr.ID, ViewDuration: *req.ViewDuration}
	if req.User != nil {
		input.UserID = *req.User
	}

	view, err := Create(h.db.WithContext(c.Request.Context()), input)
	if err != nil {
		h.respondError(c, err, "failed to record lesson view")
		return
	}

	response.Created(c, view, "")
}

// GetByID fetches one of the caller's views.
func (h *Handler) GetByID(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	view, err := Get(h.db.WithContext(c.Request.Context()), usr.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson view")
		return
	}

	response.Success(c, http.StatusOK, view, "", nil)
}

// Update changes one of the caller's views.
func (h *Handler) Update(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson view payload", err)
		return
	}

	full := c.Request.Method == http.MethodPut
	input := UpdateInput{}

	for _, field := range []string{"lesson", "user"} {
		value, present := body[field]
		if !present {
			if full {
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

		if field == "lesson" {
			input.LessonID = &parsed
		} else {
			input.UserID = &parsed
		}
	}

	if value, present := body["view_duration"]; present {
		duration, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "view_duration must be an integer", err)
			return
		}
		input.ViewDuration = &duration
	} else if full {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "view_duration is required", nil)
		return
	}

	view, err := Update(h.db.WithContext(c.Request.Context()), usr.ID, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update lesson view")
		return
	}

	response.Success(c, http.StatusOK, view, "", nil)
}

// Delete removes one of the caller's views.
func (h *Handler) Delete(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), usr.ID, id); err != nil {
		h.respondError(c, err, "failed to delete lesson view")
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

	id, err := uuid.Parse(c.Param("viewId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Lesson view not found.", err)
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
	case errors.Is(err, ErrViewNotFound):
		status = http.StatusNotFound
		message = "Lesson view not found."
	case errors.Is(err, ErrLessonMissing):
		status = http.StatusBadRequest
		message = "Lesson does not exist."
	case errors.Is(err, ErrUserMissing):
		status = http.StatusBadRequest
		message = "User does not exist."
	case errors.Is(err, ErrNegativeViewDuration):
		status = http.StatusBadRequest
		message = "View duration must not be negative."
	case errors.Is(err, ErrViewExceedsDuration):
		status = http.StatusBadRequest
		message = "View duration cannot exceed the lesson duration."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
