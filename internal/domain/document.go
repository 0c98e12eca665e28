package domain

import (
	"fmt"
	"time"
)

// Document is a unit of ingested source material. It is immutable once
// chunking has started.
type Document struct {
	SourceID   string
	Format     string
	Text       string
	IngestedAt time.Time
}

// NewDocument creates a new Document instance
func NewDocument(sourceID, format, text string, ingestedAt time.Time) *Document {
	return &Document{
		SourceID:   sourceID,
		Format:     format,
		Text:       text,
		IngestedAt: ingestedAt,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.SourceID == "" {
		return fmt.Errorf("document SourceID is required")
	}

	return nil
}
