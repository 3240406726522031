package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// DOCXExtractor pulls raw text out of the word/document.xml entry of a
// DOCX archive.
type DOCXExtractor struct{}

func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

func (e *DOCXExtractor) Extract(_ context.Context, buffer []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(buffer), int64(len(buffer)))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "file is not a valid DOCX archive", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to open document.xml", err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to read document.xml", err)
		}

		return parseDocumentXML(content)
	}

	return "", domain.NewDomainError(domain.ErrCodeExtraction, "DOCX archive has no word/document.xml")
}

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to parse document.xml", err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
	}

	return result.String(), nil
}
