package middleware

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/utils/jwt"
	"github.com/mo-amir99/lms-progress-server/pkg/response"
)

const userContextKey = "user"

// User represents the authenticated user in middleware context.
// Kept separate from the user feature model to avoid an import cycle.
type User struct {
	ID       uuid.UUID `gorm:"column:id;primaryKey"`
	Username string    `gorm:"column:username"`
	Active   bool      `gorm:"column:is_active"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// AuthMiddleware holds dependencies for authentication middleware
type AuthMiddleware struct {
	db        *gorm.DB
	jwtSecret string
	logger    *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(db *gorm.DB, jwtSecret string, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		db:        db,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// AuthenticateToken validates the bearer token and loads the user into context.
func (m *AuthMiddleware) AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.ensureAuthenticated(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireAuth returns the handler chain for routes that need a logged in user.
func (m *AuthMiddleware) RequireAuth() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.AuthenticateToken()}
}

// GetUserFromContext retrieves the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) (*User, bool) {
	userVal, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}

	if usr, ok := userVal.(*User); ok && usr != nil {
		return usr, true
	}

	return nil, false
}

// SetUser stores usr as the authenticated user. Used by tests and internal callers.
func SetUser(c *gin.Context, usr *User) {
	c.Set(userContextKey, usr)
	c.Set("userId", usr.ID)
}

func (m *AuthMiddleware) ensureAuthenticated(c *gin.Context) (*User, bool) {
	if usr, ok := GetUserFromContext(c); ok {
		return usr, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		m.reject(c, "No token provided", nil)
		return nil, false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		m.reject(c, "No token provided", nil)
		return nil, false
	}

	claims, err := jwt.VerifyToken(token, m.jwtSecret, jwt.KindAccess)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			m.reject(c, "Token expired", err)
		default:
			m.reject(c, "Invalid token", err)
		}
		return nil, false
	}

	var usr User
	if err := m.db.WithContext(c.Request.Context()).First(&usr, "id = ?", claims.UserID).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			m.reject(c, "User not found", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusInternalServerError, "Internal Server Error", err)
			c.Abort()
		}
		return nil, false
	}

	if !usr.Active {
		m.reject(c, "User account is inactive", nil)
		return nil, false
	}

	SetUser(c, &usr)
	return &usr, true
}

func (m *AuthMiddleware) reject(c *gin.Context, message string, err error) {
	response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, message, err)
	c.Abort()
}
