package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationQueryNormalize(t *testing.T) {
	q := PaginationQuery{}
	assert.Equal(t, 0, q.Normalize())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)

	q = PaginationQuery{Page: 3, Limit: 10}
	assert.Equal(t, 20, q.Normalize())
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(1, 10, 21)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(21), meta.TotalItems)

	assert.Equal(t, 0, NewPaginationMeta(1, 10, 0).TotalPages)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := "2026-10-24"
	got, err = ParseDate(&s)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC), *got)
	assert.Equal(t, "2026-10-24", *FormatDate(got))

	bad := "24/10/2026"
	_, err = ParseDate(&bad)
	assert.Error(t, err)
}
