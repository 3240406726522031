package extract

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// PDFExtractor extracts text from PDF buffers through a Tika-compatible
// extraction server.
type PDFExtractor struct {
	serverURL  string
	httpClient *http.Client
}

func NewPDFExtractor(serverURL string) *PDFExtractor {
	return &PDFExtractor{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (e *PDFExtractor) Extract(ctx context.Context, buffer []byte) (string, error) {
	if e.serverURL == "" {
		return "", domain.NewDomainError(domain.ErrCodeExtraction, "PDF extraction backend not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.serverURL+"/tika", bytes.NewReader(buffer))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to build extraction request", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "PDF extraction backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", domain.NewDomainError(domain.ErrCodeExtraction,
			"PDF extraction failed with status "+resp.Status+": "+strings.TrimSpace(string(body)))
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to read extraction response", err)
	}

	return string(text), nil
}
