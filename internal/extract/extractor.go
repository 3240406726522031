// Package extract routes raw file buffers to format-specific text
// extractors.
package extract

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// Format tags the closed set of supported extraction formats. Anything
// outside the set maps to FormatUnsupported; there is no fallthrough path.
type Format string

const (
	FormatText        Format = "text"
	FormatPDF         Format = "pdf"
	FormatDOCX        Format = "docx"
	FormatImage       Format = "image"
	FormatUnsupported Format = "unsupported"
)

// Extensions recognized per format, matched case-insensitively.
var formatByExtension = map[string]Format{
	".txt":  FormatText,
	".md":   FormatText,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".png":  FormatImage,
	".gif":  FormatImage,
}

// FormatForFilename resolves the extraction format for a filename.
func FormatForFilename(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if format, ok := formatByExtension[ext]; ok {
		return format
	}
	return FormatUnsupported
}

// Extractor converts a raw byte buffer to text for one format.
type Extractor interface {
	Extract(ctx context.Context, buffer []byte) (string, error)
}

// Result is the outcome of a successful extraction.
type Result struct {
	Filename string
	FileType string
	Text     string
	Size     int64
}

// Dispatcher routes buffers to the extractor registered for their format.
// It performs no persistence.
type Dispatcher struct {
	maxBytes   int64
	extractors map[Format]Extractor
}

// NewDispatcher creates a dispatcher over the given per-format extractors.
// Formats with a nil extractor are treated as unavailable rather than
// unsupported, so callers get an extraction error instead of a format error.
func NewDispatcher(maxBytes int64, extractors map[Format]Extractor) *Dispatcher {
	if maxBytes <= 0 {
		maxBytes = 50 * 1024 * 1024
	}
	return &Dispatcher{
		maxBytes:   maxBytes,
		extractors: extractors,
	}
}

// MaxBytes returns the configured size limit.
func (d *Dispatcher) MaxBytes() int64 {
	return d.maxBytes
}

// Extract dispatches filename+buffer to the matching extractor. The size
// gate runs before any parsing work.
func (d *Dispatcher) Extract(ctx context.Context, filename string, buffer []byte) (*Result, error) {
	if filename == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "filename is required")
	}

	if int64(len(buffer)) > d.maxBytes {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
			"file exceeds the maximum allowed size of "+byteLimitLabel(d.maxBytes),
			domain.ErrFileTooLarge)
	}

	if len(buffer) == 0 {
		return nil, domain.ErrEmptyFile
	}

	format := FormatForFilename(filename)
	if format == FormatUnsupported {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
		if ext == "" {
			ext = "none"
		}
		return nil, domain.NewDomainError(domain.ErrCodeUnsupportedFormat, "unsupported file format: "+ext)
	}

	extractor, ok := d.extractors[format]
	if !ok || extractor == nil {
		return nil, domain.NewDomainError(domain.ErrCodeExtraction,
			"no extractor available for format "+string(format))
	}

	text, err := extractor.Extract(ctx, buffer)
	if err != nil {
		return nil, err
	}

	return &Result{
		Filename: filename,
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		Text:     text,
		Size:     int64(len(buffer)),
	}, nil
}

func byteLimitLabel(limit int64) string {
	const mib = 1024 * 1024
	return strconv.FormatInt(limit/mib, 10) + " MiB"
}
