package lesson

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

// Handler processes lesson HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the lessons the caller has purchased access to.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	params := pagination.Extract(c)
	lessons, total, err := List(h.db.WithContext(c.Request.Context()), ListFilters{
		UserID:   usr.ID,
		Search:   c.Query("search"),
		Title:    c.Query("title"),
		Ordering: c.Query("ordering"),
	}, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list lessons", err)
		return
	}

	response.Success(c, http.StatusOK, lessons, "", pagination.MetadataFrom(total, params))
}

// Create inserts a new lesson.
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required,max=255"`
		VideoURL string `json:"video_url" binding:"required,url,max=200"`
		Duration *int   `json:"duration" binding:"required,min=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	lesson, err := Create(h.db.WithContext(c.Request.Context()), CreateInput{
		Title:    req.Title,
		VideoURL: req.VideoURL,
		Duration: *req.Duration,
	})
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	response.Created(c, lesson, "")
}

// GetByID fetches a single accessible lesson.
func (h *Handler) GetByID(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	lesson, err := GetForUser(h.db.WithContext(c.Request.Context()), usr.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	response.Success(c, http.StatusOK, lesson, "", nil)
}

// Update modifies an accessible lesson. PUT requires every field, PATCH any subset.
func (h *Handler) Update(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	if c.Request.Method == http.MethodPut {
		for _, field := range []string{"title", "video_url", "duration"} {
			if _, ok := body[field]; !ok {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, field+" is required", nil)
				return
			}
		}
	}

	input := UpdateInput{}

	if value, ok := body["title"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "title must be a non-empty string", err)
			return
		}
		input.Title = &str
	}

	if value, ok := body["video_url"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "video_url must be a string", err)
			return
		}
		input.VideoURL = &str
	}

	if value, ok := body["duration"]; ok {
		val, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "duration must be an integer", err)
			return
		}
		input.Duration = &val
	}

	lesson, err := Update(h.db.WithContext(c.Request.Context()), usr.ID, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	response.Success(c, http.StatusOK, lesson, "", nil)
}

// Delete removes an accessible lesson together with its links and views.
func (h *Handler) Delete(c *gin.Context) {
	usr, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), usr.ID, id); err != nil {
		h.respondError(c, err, "failed to delete lesson")
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

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Lesson not found.", err)
		return nil, uuid.Nil, false
	}

	return usr, id, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Lesson title is required."
	case errors.Is(err, ErrTitleTooLong):
		status = http.StatusBadRequest
		message = "Lesson title cannot exceed 255 characters."
	case errors.Is(err, ErrVideoURLInvalid):
		status = http.StatusBadRequest
		message = "Enter a valid video URL."
	case errors.Is(err, ErrDurationInvalid):
		status = http.StatusBadRequest
		message = "Lesson duration cannot be negative."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
