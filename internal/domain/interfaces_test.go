package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{"valid", Document{Filename: "a.md", Content: "hello"}, nil},
		{"missing filename", Document{Content: "hello"}, ErrEmptyFilename},
		{"blank filename", Document{Filename: "  ", Content: "hello"}, ErrEmptyFilename},
		{"missing content", Document{Filename: "a.md"}, ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.doc.Validate(), tt.want)
		})
	}
}
