package common

import (
	"errors"
	"fmt"
)

// Application error types
var (
	ErrNoFilesProvided         = errors.New("no files provided")
	ErrInvalidCompressionLevel = errors.New("invalid compression level")
	ErrDocumentParse           = errors.New("document could not be parsed")
	ErrSerialization           = errors.New("document could not be serialized")
	ErrBatchSizeExceeded       = errors.New("batch size exceeded")
	ErrResultNotFound          = errors.New("result not found")
)

// DocumentParseError reports input bytes that are not a well-formed PDF.
// FileIndex is the position of the file inside its batch.
type DocumentParseError struct {
	FileName  string
	FileIndex int
	Err       error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parse %s (file %d): %v", e.FileName, e.FileIndex, e.Err)
}

func (e *DocumentParseError) Unwrap() []error {
	return []error{ErrDocumentParse, e.Err}
}

// NewDocumentParseError creates a new parse error
func NewDocumentParseError(fileName string, fileIndex int, err error) *DocumentParseError {
	return &DocumentParseError{
		FileName:  fileName,
		FileIndex: fileIndex,
		Err:       err,
	}
}

// SerializationError reports a failure to produce bytes from an in-memory
// document that parsed fine.
type SerializationError struct {
	FileName string
	Err      error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.FileName, e.Err)
}

func (e *SerializationError) Unwrap() []error {
	return []error{ErrSerialization, e.Err}
}

// NewSerializationError creates a new serialization error
func NewSerializationError(fileName string, err error) *SerializationError {
	return &SerializationError{
		FileName: fileName,
		Err:      err,
	}
}

// BatchSizeError is returned when a batch holds more files than allowed.
type BatchSizeError struct {
	Count int
	Max   int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("%v: %d files submitted, at most %d allowed", ErrBatchSizeExceeded, e.Count, e.Max)
}

func (e *BatchSizeError) Unwrap() error {
	return ErrBatchSizeExceeded
}

// CompressionError represents compression-specific errors
type CompressionError struct {
	Operation string
	FilePath  string
	Err       error
}

func (e *CompressionError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s failed for file %s: %v", e.Operation, e.FilePath, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *CompressionError) Unwrap() error {
	return e.Err
}

// NewCompressionError creates a new compression error
func NewCompressionError(operation, filePath string, err error) *CompressionError {
	return &CompressionError{
		Operation: operation,
		FilePath:  filePath,
		Err:       err,
	}
}

// PreferencesError represents preferences-related errors
type PreferencesError struct {
	Operation string
	Err       error
}

func (e *PreferencesError) Error() string {
	return fmt.Sprintf("preferences %s failed: %v", e.Operation, e.Err)
}

func (e *PreferencesError) Unwrap() error {
	return e.Err
}

// NewPreferencesError creates a new preferences error
func NewPreferencesError(operation string, err error) *PreferencesError {
	return &PreferencesError{
		Operation: operation,
		Err:       err,
	}
}
