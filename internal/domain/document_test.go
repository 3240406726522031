package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDocument(t *testing.T) {
	now := time.Now()
	doc := NewDocument("d1", "user1", "db1", "Q3 Report", "q3-report.txt", "revenue up", now)

	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "user1", doc.OwnerID)
	assert.Equal(t, "db1", doc.DatabaseID)
	assert.Equal(t, "Q3 Report", doc.Title)
	assert.Equal(t, "q3-report.txt", doc.Filename)
	assert.Equal(t, "revenue up", doc.Content)
	assert.Equal(t, 0, doc.ChunkCount)
	assert.False(t, doc.Indexed)
	assert.Equal(t, now, doc.CreatedAt)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestValidateDocument(t *testing.T) {
	now := time.Now()

	valid := func() *Document {
		return NewDocument("d1", "user1", "db1", "Title", "file.txt", "content", now)
	}

	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr string
	}{
		{"Valid", func(d *Document) {}, ""},
		{"MissingID", func(d *Document) { d.ID = "" }, "document ID is required"},
		{"MissingOwnerID", func(d *Document) { d.OwnerID = "" }, "document OwnerID is required"},
		{"MissingDatabaseID", func(d *Document) { d.DatabaseID = "" }, "document DatabaseID is required"},
		{"MissingFilename", func(d *Document) { d.Filename = "" }, "document Filename is required"},
		{"MissingContent", func(d *Document) { d.Content = "" }, "document Content is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			err := ValidateDocument(doc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument_Nil(t *testing.T) {
	assert.EqualError(t, ValidateDocument(nil), "document cannot be nil")
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr string
	}{
		{"Valid", &Chunk{DocumentID: "d1", Ordinal: 0, Text: "hello"}, ""},
		{"Nil", nil, "chunk cannot be nil"},
		{"MissingDocumentID", &Chunk{Ordinal: 0, Text: "hello"}, "chunk DocumentID is required"},
		{"NegativeOrdinal", &Chunk{DocumentID: "d1", Ordinal: -1, Text: "hello"}, "chunk Ordinal must not be negative"},
		{"MissingText", &Chunk{DocumentID: "d1", Ordinal: 0}, "chunk Text is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
