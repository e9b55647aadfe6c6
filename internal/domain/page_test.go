package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_TotalPages(t *testing.T) {
	assert.Equal(t, 3, Page{Limit: 10, TotalCount: 25}.TotalPages())
	assert.Equal(t, 2, Page{Limit: 10, TotalCount: 20}.TotalPages())
	assert.Equal(t, 1, Page{Limit: 10, TotalCount: 0}.TotalPages())
	assert.Equal(t, 1, Page{Limit: 0, TotalCount: 5}.TotalPages())
}

func TestPage_Clamp(t *testing.T) {
	p := Page{Limit: 10, TotalCount: 25}

	assert.Equal(t, 3, p.Clamp(4))
	assert.Equal(t, 1, p.Clamp(0))
	assert.Equal(t, 2, p.Clamp(2))
}

func TestPage_Navigation(t *testing.T) {
	p := Page{Page: 1, Limit: 10, TotalCount: 25}
	assert.True(t, p.HasNext())
	assert.False(t, p.HasPrev())

	p.Page = 3
	assert.False(t, p.HasNext())
	assert.True(t, p.HasPrev())
}
