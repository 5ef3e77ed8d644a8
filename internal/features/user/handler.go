package user

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/middleware"
	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
	"github.com/mo-amir99/lms-progress-server/pkg/request"
	"github.com/mo-amir99/lms-progress-server/pkg/response"
)

// Handler processes user HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	current, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	usr, err := Get(h.db.WithContext(c.Request.Context()), current.ID)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// UpdateMe changes profile fields of the authenticated user.
func (h *Handler) UpdateMe(c *gin.Context) {
	current, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	input := UpdateInput{}

	for field, target := range map[string]**string{
		"email":      &input.Email,
		"first_name": &input.FirstName,
		"last_name":  &input.LastName,
	} {
		value, ok := body[field]
		if !ok {
			continue
		}
		str, isString := value.(string)
		if !isString {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, field+" must be a string", nil)
			return
		}
		*target = &str
	}

	if value, ok := body["password"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "password must be a string", err)
			return
		}
		input.Password = &str
	}

	usr, err := Update(h.db.WithContext(c.Request.Context()), current.ID, input)
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := apperrors.As(err); ok {
		response.AppError(h.logger, c, appErr)
		return
	}

	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	case errors.Is(err, ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Enter a valid email address."
	case errors.Is(err, ErrInvalidUsername):
		status = http.StatusBadRequest
		message = "Enter a valid username."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
