package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params represents limit/offset query parameters.
type Params struct {
	Limit  int
	Offset int
}

// Metadata is returned next to every paginated list.
type Metadata struct {
	Count   int64 `json:"count"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// Extract reads pagination parameters from the request query string.
func Extract(c *gin.Context) Params {
	limit := parseInt(c.Query("limit"), DefaultLimit)
	offset := parseInt(c.Query("offset"), 0)

	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// MetadataFrom builds response metadata given the total row count.
func MetadataFrom(total int64, params Params) Metadata {
	return Metadata{
		Count:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasNext: int64(params.Offset+params.Limit) < total,
		HasPrev: params.Offset > 0,
	}
}

// Ordering resolves an `ordering` query value such as "-name" against an
// allowlist of public field names mapped to SQL columns. Unknown fields fall
// back to def. The id column is appended as a tiebreaker.
func Ordering(value string, allowed map[string]string, def string) string {
	clause, ok := orderClause(value, allowed)
	if !ok {
		clause, _ = orderClause(def, allowed)
	}
	if clause == "" {
		return "id ASC"
	}
	return clause + ", id ASC"
}

func orderClause(value string, allowed map[string]string) (string, bool) {
	field := strings.TrimSpace(value)
	if field == "" {
		return "", false
	}

	direction := "ASC"
	if strings.HasPrefix(field, "-") {
		direction = "DESC"
		field = field[1:]
	}

	column, ok := allowed[field]
	if !ok {
		return "", false
	}

	return column + " " + direction, true
}

func parseInt(value string, fallback int) int {
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return parsed
}
