package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

// TextExtractor turns a raw document into per-page text. It never fails:
// unreadable documents and pages come back empty.
type TextExtractor interface {
	ExtractPages(filename string, data []byte) []string
}

// DocumentKind is the container format of an uploaded document.
type DocumentKind string

const (
	KindPDF     DocumentKind = "pdf"
	KindDOCX    DocumentKind = "docx"
	KindText    DocumentKind = "txt"
	KindUnknown DocumentKind = ""
)

var (
	pdfMagic  = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04")
	docxTagRe = regexp.MustCompile(`<[^>]+>`)
	// closing paragraph and break tags become newlines before tags are dropped
	docxBreakRe = regexp.MustCompile(`</w:p>|<w:br/>`)
)

// DetectKind identifies a document by extension, falling back to content.
func DetectKind(filename string, data []byte) DocumentKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".txt", ".text", ".md":
		return KindText
	}

	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(data, zipMagic):
		return KindDOCX
	}
	return KindUnknown
}

type documentExtractor struct {
	logger *zap.Logger
}

func NewTextExtractor(logger *zap.Logger) TextExtractor {
	return &documentExtractor{logger: logger}
}

// ExtractPages implements TextExtractor.
func (e *documentExtractor) ExtractPages(filename string, data []byte) []string {
	if len(data) == 0 {
		e.logger.Warn("empty document", zap.String("filename", filename))
		return nil
	}

	var (
		pages []string
		err   error
	)

	switch DetectKind(filename, data) {
	case KindPDF:
		pages, err = e.extractPDF(filename, data)
	case KindDOCX:
		pages, err = extractDOCX(data)
	default:
		pages = []string{strings.ToValidUTF8(string(data), "�")}
	}

	if err != nil {
		e.logger.Warn("failed to read document, continuing with empty text",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil
	}

	return pages
}

func (e *documentExtractor) extractPDF(filename string, data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf decoder panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPage := r.NumPage()
	pages = make([]string, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		text, err := pageText(r, pageIndex)
		if err != nil {
			e.logger.Warn("failed to extract page",
				zap.String("filename", filename),
				zap.Int("page", pageIndex),
				zap.Error(err),
			)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// pageText returns "" for null pages and for pages the decoder chokes on.
func pageText(r *pdf.Reader, pageIndex int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page decoder panic: %v", rec)
		}
	}()

	page := r.Page(pageIndex)
	if page.V.IsNull() {
		return "", nil
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return text, nil
}

func extractDOCX(data []byte) ([]string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "<w:tab/>", " ")
	content = docxBreakRe.ReplaceAllString(content, "\n")
	content = docxTagRe.ReplaceAllString(content, "")

	return []string{unescapeXML(content)}, nil
}

var xmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

// JoinPages concatenates page texts in order.
func JoinPages(pages []string) string {
	return strings.Join(pages, "")
}
