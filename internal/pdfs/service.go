package pdfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"strings"
	"time"

	"go.uber.org/zap"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/shared/util"
)

const (
	defaultMaxTokens   = 500
	defaultTemperature = float32(0.7)
)

// ChatOptions are the decoding parameters for chat calls.
type ChatOptions struct {
	MaxTokens   int
	Temperature float32
}

// Service handles PDF ingestion, retrieval and chat.
type Service struct {
	Store     Store
	Files     object.ObjectStore
	Extractor extract.Extractor
	// LLM is nil when no provider credential is configured.
	LLM  llm.Client
	Chat ChatOptions

	Now   func() time.Time
	NewID func(now time.Time) string
}

// NewService constructs a Service with default chat options.
func NewService(store Store, files object.ObjectStore, extractor extract.Extractor, client llm.Client) *Service {
	return &Service{
		Store:     store,
		Files:     files,
		Extractor: extractor,
		LLM:       client,
		Chat: ChatOptions{
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		},
	}
}

func logger() *zap.Logger {
	return telemetry.Named("pdfs")
}

// logFileName strips path separators from a client-supplied name before it is logged.
func logFileName(name string) string {
	clean, err := util.SanitizeFileName(name)
	if err != nil {
		return "invalid"
	}
	return clean
}

// NewFileID returns file-<unixMillis>-<0..1e9>.pdf.
func NewFileID(now time.Time) string {
	return fmt.Sprintf("file-%d-%d.pdf", now.UnixMilli(), rand.Int64N(1_000_000_001))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID(now time.Time) string {
	if s.NewID != nil {
		return s.NewID(now)
	}
	return NewFileID(now)
}

// IsPDFContentType reports whether the declared media type is application/pdf.
func IsPDFContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, extract.MimePDF)
}

// Upload stores the raw bytes, extracts text and records the result.
func (s *Service) Upload(ctx context.Context, fileName, contentType string, r io.Reader) (Record, error) {
	if !IsPDFContentType(contentType) {
		metrics.IncUpload(metrics.ResultRejected)
		return Record{}, ErrNotPDF
	}

	data, err := io.ReadAll(r)
	if err != nil {
		metrics.IncUpload(metrics.ResultFailed)
		return Record{}, fmt.Errorf("read upload: %w", err)
	}

	now := s.now()
	id := s.newID(now)
	if _, err := s.Files.Put(ctx, id, extract.MimePDF, bytes.NewReader(data)); err != nil {
		metrics.IncUpload(metrics.ResultFailed)
		return Record{}, fmt.Errorf("store file: %w", err)
	}

	res, err := s.Extractor.Extract(ctx, data, extract.MimePDF)
	if err != nil {
		metrics.IncUpload(metrics.ResultFailed)
		if delErr := s.Files.Delete(ctx, id); delErr != nil && !errors.Is(delErr, object.ErrNotFound) {
			logger().Warn("pdf.cleanup_failed", zap.String("pdf_id", id), zap.Error(delErr))
		}
		return Record{}, fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	rec := Record{
		ID:          id,
		FileName:    fileName,
		TextContent: res.Text,
		NumPages:    res.NumPages,
		UploadTime:  now,
		FilePath:    "/uploads/" + id,
	}
	if err := s.Store.Set(ctx, id, rec); err != nil {
		metrics.IncUpload(metrics.ResultFailed)
		return Record{}, fmt.Errorf("save record: %w", err)
	}

	metrics.IncUpload(metrics.ResultSuccess)
	metrics.ObservePages(rec.NumPages)
	logger().Info("pdf.uploaded",
		zap.String("pdf_id", rec.ID),
		zap.String("file_name", logFileName(rec.FileName)),
		zap.Int("num_pages", rec.NumPages),
		zap.Int("bytes", len(data)),
	)
	return rec, nil
}

// Get returns the record for id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return Record{}, ErrNotFound
	}
	return s.Store.Get(ctx, id)
}

// Open returns the stored bytes for id.
func (s *Service) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	rc, err := s.Files.Open(ctx, id)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rc, nil
}

// Ask answers a question about a stored document with a single LLM call.
func (s *Service) Ask(ctx context.Context, message, pdfID string) (ChatResult, error) {
	if message == "" || pdfID == "" {
		metrics.IncChat(metrics.ResultRejected)
		return ChatResult{}, ErrInvalidInput
	}

	rec, err := s.Store.Get(ctx, pdfID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.IncChat(metrics.ResultNotFound)
		} else {
			metrics.IncChat(metrics.ResultFailed)
		}
		return ChatResult{}, err
	}

	if s.LLM == nil {
		metrics.IncChat(metrics.ResultFailed)
		return ChatResult{}, llm.ErrNotConfigured
	}

	model := s.LLM.Model()
	start := time.Now()
	out, err := s.LLM.Complete(ctx, llm.CompletionRequest{
		Messages:    BuildMessages(rec.TextContent, message),
		MaxTokens:   s.Chat.MaxTokens,
		Temperature: s.Chat.Temperature,
	})
	metrics.ObserveLLM(model, err, time.Since(start))
	if err != nil {
		metrics.IncChat(metrics.ResultFailed)
		return ChatResult{}, err
	}

	metrics.IncChat(metrics.ResultSuccess)
	return ChatResult{
		Response:       out.Text,
		PageReferences: ExtractPageReferences(out.Text),
		Timestamp:      s.now(),
	}, nil
}
