package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	lpdf "github.com/ledongthuc/pdf"
)

const pdfMIME = "application/pdf"

var (
	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("pdf: empty file")
	// ErrNotPDF is returned when the content is not sniffed as a PDF.
	ErrNotPDF = errors.New("pdf: not a PDF document")
	// ErrUnreadable is returned when the document cannot be parsed.
	ErrUnreadable = errors.New("pdf: unreadable document")
)

// Extractor turns an uploaded document into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// TextExtractor extracts text from PDF documents.
type TextExtractor struct{}

var _ Extractor = TextExtractor{}

func NewTextExtractor() TextExtractor {
	return TextExtractor{}
}

// IsPDF reports whether data is sniffed as a PDF document.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(pdfMIME)
}

// ExtractText returns the plain text of every page in data. Documents with
// no text layer yield an empty string and no error.
func (TextExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if !IsPDF(data) {
		return "", ErrNotPDF
	}

	// The parser panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return buf.String(), nil
}
