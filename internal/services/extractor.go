package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/resume-screener/internal/models"
)

type TextExtractor interface {
	Extract(doc models.ResumeDocument) (models.ExtractedText, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Extract implements TextExtractor. Errors wrap ErrUnsupportedFormat or
// ErrExtractionFailed; neither is worth retrying since the same bytes fail the
// same way.
func (e *textExtractor) Extract(doc models.ResumeDocument) (models.ExtractedText, error) {
	switch doc.MediaType {
	case models.MediaTypePDF:
		pages, err := extractPDFPages(doc.Data)
		if err != nil {
			return models.ExtractedText{}, fmt.Errorf("%w: pdf: %v", ErrExtractionFailed, err)
		}
		return buildExtractedText(pages), nil
	case models.MediaTypeDOCX:
		text, err := extractDOCXText(doc.Data)
		if err != nil {
			return models.ExtractedText{}, fmt.Errorf("%w: docx: %v", ErrExtractionFailed, err)
		}
		return buildExtractedText([]string{text}), nil
	default:
		return models.ExtractedText{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.MediaType)
	}
}

func extractPDFPages(data []byte) (pages []string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPage := r.NumPage()
	if totalPage == 0 {
		return nil, errors.New("document has no pages")
	}

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Keep going, one unreadable page should not lose the rest
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

func extractDOCXText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("no word/document.xml found in docx")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document body: %w", err)
	}
	defer rc.Close()

	var b strings.Builder
	inText := false
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}

// DetectMediaType resolves the media type of an upload from its declared
// content type, falling back to the file extension and then to the leading bytes.
// Unknown inputs are returned as declared so the extractor can reject them.
func DetectMediaType(filename, declared string, data []byte) models.MediaType {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}

	switch models.MediaType(declared) {
	case models.MediaTypePDF, models.MediaTypeDOCX:
		return models.MediaType(declared)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return models.MediaTypePDF
	case ".docx":
		return models.MediaTypeDOCX
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return models.MediaTypePDF
	}
	if declared == "" && len(data) > 0 {
		return models.MediaType(http.DetectContentType(data))
	}
	return models.MediaType(declared)
}
