package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/internal/middleware"
	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
	"github.com/mo-amir99/lms-progress-server/pkg/config"
	"github.com/mo-amir99/lms-progress-server/pkg/response"
	"github.com/mo-amir99/lms-progress-server/pkg/validation"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *Handler {
	if err := validation.RegisterValidators(); err != nil {
		logger.Error("failed to register validators", slog.String("error", err.Error()))
	}
	return &Handler{db: db, logger: logger, cfg: cfg}
}

// Register creates a new account.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required,username"`
		Password  string `json:"password" binding:"required,min=8"`
		Email     string `json:"email" binding:"omitempty,email"`
		FirstName string `json:"first_name" binding:"max=150"`
		LastName  string `json:"last_name" binding:"max=150"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.Validation("invalid registration payload", err).WithFields(validation.FieldErrors(err))
		response.AppError(h.logger, c, appErr)
		return
	}

	authResp, err := Register(h.db.WithContext(c.Request.Context()), RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "registration failed")
		return
	}

	response.Created(c, authResp, "Registration successful")
}

// Login authenticates a user and returns JWT tokens.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	authResp, err := Login(h.db.WithContext(c.Request.Context()), LoginInput{
		Username: req.Username,
		Password: req.Password,
	}, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, authResp, "Login successful", nil)
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "refresh token is required", err)
		return
	}

	pair, err := RefreshAccessToken(h.db.WithContext(c.Request.Context()), req.Refresh, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "token refresh failed")
		return
	}

	response.Success(c, http.StatusOK, pair, "", nil)
}

// Logout clears the caller's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := Logout(h.db.WithContext(c.Request.Context()), usr.ID); err != nil {
		h.respondError(c, err, "logout failed")
		return
	}

	response.NoContent(c)
}

func (h *Handler) tokenConfig() TokenConfig {
	return TokenConfig{
		JWTSecret:          h.cfg.JWTSecret,
		JWTRefreshSecret:   h.cfg.JWTRefreshSecret,
		AccessTokenExpiry:  h.cfg.AccessTokenTTL,
		RefreshTokenExpiry: h.cfg.RefreshTokenTTL,
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := apperrors.As(err); ok {
		response.AppError(h.logger, c, appErr)
		return
	}

	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid username or password."
	case errors.Is(err, ErrInactiveAccount):
		status = http.StatusForbidden
		message = "Your account is inactive."
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "Invalid or expired token."
	case errors.Is(err, user.ErrInvalidUsername):
		status = http.StatusBadRequest
		message = "Enter a valid username."
	case errors.Is(err, user.ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	case errors.Is(err, user.ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Enter a valid email address."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
