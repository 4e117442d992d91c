package pdfs

import "errors"

var (
	ErrNotFound      = errors.New("pdf not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotPDF        = errors.New("only pdf files are allowed")
	ErrExtractFailed = errors.New("failed to process pdf")
)
