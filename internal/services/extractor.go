package services

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// DefaultMaxUploadBytes is the largest resume accepted for extraction.
const DefaultMaxUploadBytes int64 = 4 * 1024 * 1024

type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
	MaxBytes() int64
}

// extractionStrategy turns raw bytes into text, or reports why it could not.
type extractionStrategy struct {
	name    string
	extract func(data []byte) (string, error)
}

var (
	pdfStrategy        = extractionStrategy{name: "pdf", extract: extractPDFText}
	docxStrategy       = extractionStrategy{name: "docx", extract: extractDocxText}
	plainStrategy      = extractionStrategy{name: "plain", extract: decodeText}
	bestEffortStrategy = extractionStrategy{name: "best-effort-text", extract: decodeBestEffort}
)

// strategiesByExt lists the strategies tried for each known suffix, in order.
var strategiesByExt = map[string][]extractionStrategy{
	".pdf":  {pdfStrategy},
	".docx": {docxStrategy},
	".txt":  {plainStrategy},
	".md":   {plainStrategy},
}

// fallbackStrategies is used for any suffix not listed above.
var fallbackStrategies = []extractionStrategy{pdfStrategy, bestEffortStrategy}

// binaryMediaPrefixes and archiveTypes name sniffed content that never
// carries resume text worth decoding.
var (
	binaryMediaPrefixes = []string{"image/", "audio/", "video/", "font/"}
	archiveTypes        = []string{
		"application/zip",
		"application/gzip",
		"application/x-7z-compressed",
		"application/x-rar-compressed",
		"application/x-tar",
		"application/x-bzip2",
		"application/x-xz",
		"application/zstd",
	}
)

type textExtractor struct {
	maxBytes int64
}

func NewTextExtractor(maxBytes int64) TextExtractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &textExtractor{maxBytes: maxBytes}
}

func (e *textExtractor) MaxBytes() int64 {
	return e.maxBytes
}

// ExtractText implements TextExtractor.
func (e *textExtractor) ExtractText(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", NewError(KindEmptyInput, "empty file", nil)
	}
	if int64(len(data)) > e.maxBytes {
		return "", NewError(KindPayloadTooLarge, fmt.Sprintf("file too large (max %s)", formatBytes(e.maxBytes)), nil)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	strategies, known := strategiesByExt[ext]
	if !known {
		strategies = fallbackStrategies
	}

	var errs []error
	for _, s := range strategies {
		text, err := s.extract(data)
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}

	if known {
		return "", NewError(KindUnsupportedFileType, fmt.Sprintf("could not extract text from %s file", ext), errors.Join(errs...))
	}
	return "", NewError(KindUnsupportedFileType, "unsupported file type", errors.Join(errs...))
}

func extractPDFText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPage := r.NumPage()
	pages := make([]string, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText)
	}

	return strings.Join(pages, "\n"), nil
}

var (
	docxBreakTag = regexp.MustCompile(`<w:(?:br|cr)\s*/>`)
	docxTabTag   = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]*>`)
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	body := doc.Editable().GetContent()
	if i := strings.Index(body, "<w:body"); i >= 0 {
		body = body[i:]
	}

	// Each </w:p> closes one paragraph.
	chunks := strings.Split(body, "</w:p>")
	paragraphs := make([]string, 0, len(chunks))
	for _, chunk := range chunks[:len(chunks)-1] {
		paragraphs = append(paragraphs, docxParagraphText(chunk))
	}

	return strings.Join(paragraphs, "\n"), nil
}

func docxParagraphText(xml string) string {
	xml = docxBreakTag.ReplaceAllString(xml, "\n")
	xml = docxTabTag.ReplaceAllString(xml, "\t")
	xml = xmlTag.ReplaceAllString(xml, "")
	return html.UnescapeString(xml)
}

// decodeText decodes data as UTF-8, dropping invalid sequences. It never fails.
func decodeText(data []byte) (string, error) {
	text := strings.ToValidUTF8(string(data), "")
	return strings.TrimPrefix(text, "\ufeff"), nil
}

// decodeBestEffort decodes any content except binary media and archives.
// Legacy formats such as .doc keep most of their text as plain bytes, so the
// decode is attempted even when the content is not sniffed as text. It fails
// only when nothing readable remains.
func decodeBestEffort(data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	if isBinaryMedia(mtype) {
		return "", fmt.Errorf("content detected as %s", mtype.String())
	}

	text, _ := decodeText(bytes.ReplaceAll(data, []byte{0}, []byte{' '}))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no readable text in %s content", mtype.String())
	}
	return text, nil
}

func isBinaryMedia(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, prefix := range binaryMediaPrefixes {
			if strings.HasPrefix(m.String(), prefix) {
				return true
			}
		}
		if slices.ContainsFunc(archiveTypes, m.Is) {
			return true
		}
	}
	return false
}

func formatBytes(n int64) string {
	if n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	return fmt.Sprintf("%d bytes", n)
}
