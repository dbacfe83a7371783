package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrEmptyClaim          = errors.New("claim contains no documents")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrTooManyDocuments    = errors.New("claim exceeds maximum document count")
)

// NoReadableTextSentinel is returned as extracted text when every extraction
// strategy fails, so downstream stages always receive a non-empty string.
const NoReadableTextSentinel = "No readable text found. This PDF may be an image or corrupted."
