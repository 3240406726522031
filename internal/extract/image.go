package extract

import (
	"context"
	"errors"

	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/ocr"
)

// OCRRecognizer is the slice of the OCR engine the image extractor needs.
type OCRRecognizer interface {
	Recognize(ctx context.Context, buffer []byte, opts ocr.Options) (string, error)
}

// ImageExtractor runs image buffers through the OCR engine and maps engine
// failures onto the domain error taxonomy.
type ImageExtractor struct {
	engine    OCRRecognizer
	languages []string
}

func NewImageExtractor(engine OCRRecognizer, languages []string) *ImageExtractor {
	return &ImageExtractor{
		engine:    engine,
		languages: languages,
	}
}

func (e *ImageExtractor) Extract(ctx context.Context, buffer []byte) (string, error) {
	text, err := e.engine.Recognize(ctx, buffer, ocr.Options{Languages: e.languages})
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrNoTextFound):
			return "", domain.ErrOCRNoTextFound
		case errors.Is(err, ocr.ErrEngineUnavailable):
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeOCRUnavailable, "OCR backend is not available", err)
		default:
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeOCRFailed, "text recognition failed", err)
		}
	}
	return text, nil
}
