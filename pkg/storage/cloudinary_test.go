package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url      string
		publicID string
		resType  string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712/slides/deck.pdf", "slides/deck", "image"},
		{"https://res.cloudinary.com/demo/image/upload/slides/deck.pdf", "slides/deck", "image"},
		{"https://res.cloudinary.com/demo/raw/upload/v99/slides/talk.pptx", "slides/talk.pptx", "raw"},
		{"https://res.cloudinary.com/demo/image/upload/", "", ""},
		{"https://example.com/files/deck.pdf", "", ""},
	}

	for _, tt := range tests {
		publicID, resType := extractPublicID(tt.url)
		assert.Equal(t, tt.publicID, publicID, tt.url)
		assert.Equal(t, tt.resType, resType, tt.url)
	}
}

func TestResourceType(t *testing.T) {
	assert.Equal(t, "image", resourceType("deck.PDF"))
	assert.Equal(t, "raw", resourceType("deck.pptx"))
}
