package statistics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/middleware"
	"github.com/mo-amir99/lms-progress-server/pkg/response"
)

// Handler serves product statistics.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a statistics handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns statistics for every product, or only the caller's with owned=true.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	filters := Filters{}
	if raw := c.Query("owned"); raw != "" {
		owned, err := strconv.ParseBool(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "owned must be a boolean", err)
			return
		}
		if owned {
			filters.OwnerID = &usr.ID
		}
	}

	rows, err := Compute(h.db.WithContext(c.Request.Context()), filters)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to compute statistics", err)
		return
	}

	response.SuccessNoCache(c, http.StatusOK, rows, "", nil)
}
