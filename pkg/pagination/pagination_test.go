package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestExtract(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Limit: DefaultLimit, Offset: 0}},
		{"explicit", "limit=5&offset=10", Params{Limit: 5, Offset: 10}},
		{"limit capped", "limit=1000", Params{Limit: MaxLimit}},
		{"garbage falls back", "limit=abc&offset=-3", Params{Limit: DefaultLimit}},
		{"zero limit", "limit=0", Params{Limit: DefaultLimit}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(contextWithQuery(tc.query)))
		})
	}
}

func TestMetadataFrom(t *testing.T) {
	meta := MetadataFrom(25, Params{Limit: 10, Offset: 10})
	assert.Equal(t, int64(25), meta.Count)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	last := MetadataFrom(25, Params{Limit: 10, Offset: 20})
	assert.False(t, last.HasNext)

	first := MetadataFrom(0, Params{Limit: 10})
	assert.False(t, first.HasNext)
	assert.False(t, first.HasPrev)
}

func TestOrdering(t *testing.T) {
	allowed := map[string]string{"name": "name", "created": "created_at"}

	assert.Equal(t, "name ASC, id ASC", Ordering("", allowed, "name"))
	assert.Equal(t, "created_at DESC, id ASC", Ordering("-created", allowed, "name"))
	assert.Equal(t, "name ASC, id ASC", Ordering("password", allowed, "name"))
	assert.Equal(t, "id ASC", Ordering("", allowed, ""))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%intro%", ContainsPattern("Intro"))
	assert.Equal(t, `%50\%%`, ContainsPattern("50%"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, ContainsPattern(`C:\dir`))
}
