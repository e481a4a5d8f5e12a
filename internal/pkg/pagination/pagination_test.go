package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMeta(t *testing.T) {
	meta := GetMeta(&Params{Page: 2, Limit: 10}, 35)

	assert.Equal(t, 4, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	last := GetMeta(&Params{Page: 4, Limit: 10}, 35)
	assert.False(t, last.HasNext)

	empty := GetMeta(&Params{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}
