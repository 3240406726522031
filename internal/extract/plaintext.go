package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// PlainTextExtractor decodes txt/md buffers as UTF-8.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Extract(_ context.Context, buffer []byte) (string, error) {
	if !utf8.Valid(buffer) {
		return "", domain.NewDomainError(domain.ErrCodeExtraction, "file is not valid UTF-8 text")
	}

	// Strip a UTF-8 BOM if present.
	text := strings.TrimPrefix(string(buffer), "\uFEFF")
	return text, nil
}
