package domain

import (
	"fmt"
	"time"
)

// Document represents an ingested user document and its extracted text.
// A document belongs to exactly one knowledge database at a time.
type Document struct {
	ID         string
	OwnerID    string
	DatabaseID string
	Title      string
	Filename   string
	Content    string
	ChunkCount int
	Indexed    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Chunk is a bounded slice of a document's extracted text, the unit of
// embedding and retrieval. Ordinals are contiguous 0..ChunkCount-1 for a
// fully indexed document.
type Chunk struct {
	DocumentID string
	Ordinal    int
	Text       string
	Embedding  []float32
	TokenCount int
	CreatedAt  time.Time
}

// DocumentStats summarizes an owner's knowledge base contents.
type DocumentStats struct {
	DocumentCount int
	ChunkCount    int
	IndexedCount  int
}

// NewDocument creates an unindexed Document. ChunkCount and Indexed are
// only ever advanced by a successful indexing pass.
func NewDocument(id, ownerID, databaseID, title, filename, content string, createdAt time.Time) *Document {
	return &Document{
		ID:         id,
		OwnerID:    ownerID,
		DatabaseID: databaseID,
		Title:      title,
		Filename:   filename,
		Content:    content,
		ChunkCount: 0,
		Indexed:    false,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

// ValidateDocument validates a Document instance.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.OwnerID == "" {
		return fmt.Errorf("document OwnerID is required")
	}

	if d.DatabaseID == "" {
		return fmt.Errorf("document DatabaseID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if d.Content == "" {
		return fmt.Errorf("document Content is required")
	}

	return nil
}

// ValidateChunk validates a Chunk instance.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.DocumentID == "" {
		return fmt.Errorf("chunk DocumentID is required")
	}

	if c.Ordinal < 0 {
		return fmt.Errorf("chunk Ordinal must not be negative")
	}

	if c.Text == "" {
		return fmt.Errorf("chunk Text is required")
	}

	return nil
}
