package domain

import (
	"fmt"
	"time"
)

// Citation links a retrieved chunk back to its source document for a given
// session. Citations are append-only: the retrieval service creates them and
// nothing mutates them afterwards.
type Citation struct {
	ID           string
	SessionID    string
	DocumentID   string
	ChunkOrdinal int
	Snippet      string
	Score        float32
	CreatedAt    time.Time
}

// ValidateCitation validates a Citation instance.
func ValidateCitation(c *Citation) error {
	if c == nil {
		return fmt.Errorf("citation cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("citation ID is required")
	}

	if c.SessionID == "" {
		return fmt.Errorf("citation SessionID is required")
	}

	if c.DocumentID == "" {
		return fmt.Errorf("citation DocumentID is required")
	}

	if c.ChunkOrdinal < 0 {
		return fmt.Errorf("citation ChunkOrdinal must not be negative")
	}

	return nil
}
