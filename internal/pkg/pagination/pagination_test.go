package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryFor(rawQuery string) Query {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return FromContext(c)
}

func TestFromContextClampsInput(t *testing.T) {
	assert.Equal(t, Query{Page: 1, Size: 10}, queryFor(""))
	assert.Equal(t, Query{Page: 3, Size: 25}, queryFor("page=3&size=25"))
	assert.Equal(t, Query{Page: 1, Size: 10}, queryFor("page=-1&size=0"))
	assert.Equal(t, Query{Page: 1, Size: MaxSize}, queryFor("size=9999"))
	assert.Equal(t, Query{Page: 1, Size: 10}, queryFor("page=abc&size=xyz"))
}

func TestWindowSlicesAndCounts(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	page, meta := Window(items, Query{Page: 1, Size: 10})
	assert.Len(t, page, 10)
	assert.Equal(t, 0, page[0])
	assert.Equal(t, int64(23), meta.Total)
	assert.Equal(t, 3, meta.TotalPage)
	assert.True(t, meta.HasNextPage)

	page, meta = Window(items, Query{Page: 3, Size: 10})
	assert.Len(t, page, 3)
	assert.Equal(t, 20, page[0])
	assert.False(t, meta.HasNextPage)

	page, meta = Window(items, Query{Page: 9, Size: 10})
	assert.Empty(t, page)
	assert.Equal(t, int64(23), meta.Total)
}

func TestWindowEmptySet(t *testing.T) {
	page, meta := Window([]string{}, Query{Page: 1, Size: 10})
	assert.Empty(t, page)
	assert.Equal(t, int64(0), meta.Total)
	assert.Equal(t, 0, meta.TotalPage)
	assert.False(t, meta.HasNextPage)
}
