package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// MimePDF is the only media type the extractor accepts.
const MimePDF = "application/pdf"

var (
	// ErrUnsupportedType is returned for payloads that are not PDFs.
	ErrUnsupportedType = errors.New("unsupported mime type")
	// ErrEmptyDocument is returned for empty payloads.
	ErrEmptyDocument = errors.New("empty document")
	// ErrTimeout is returned when extraction does not finish in time.
	ErrTimeout = errors.New("extraction timed out")
)

// Result is the plain text and page count of a document.
type Result struct {
	Text     string
	NumPages int
}

// Extractor turns document bytes into text and a page count.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (Result, error)
}

// PDF extracts text with github.com/ledongthuc/pdf.
type PDF struct {
	Timeout time.Duration
}

// NewPDF constructs a PDF extractor with the given timeout. Zero disables the timeout.
func NewPDF(timeout time.Duration) *PDF {
	return &PDF{Timeout: timeout}
}

// Extract parses data in a separate goroutine so a slow or panicking parser cannot hang the request.
func (p *PDF) Extract(ctx context.Context, data []byte, mimeType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if normalizeMimeType(mimeType) != MimePDF {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	if len(data) == 0 {
		return Result{}, ErrEmptyDocument
	}

	if p != nil && p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("pdf parser panic: %v", rec)}
			}
		}()
		res, err := extractPDF(data)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, ErrTimeout
		}
		return Result{}, ctx.Err()
	}
}

func extractPDF(data []byte) (Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Result{}, fmt.Errorf("read pdf text: %w", err)
	}
	return Result{Text: buf.String(), NumPages: reader.NumPage()}, nil
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

var _ Extractor = (*PDF)(nil)
