package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 41)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 41, p.TotalCount)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)
}

func TestNewPaginationEmpty(t *testing.T) {
	p := NewPagination(1, 20, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}

func TestAvatarURLEscapesName(t *testing.T) {
	url := AvatarURL("Alice Doe")
	assert.Contains(t, url, "Alice+Doe")
	assert.Contains(t, url, "ui-avatars.com")
}
