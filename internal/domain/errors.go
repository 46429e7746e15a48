package domain

import "errors"

var (
	ErrEmptyFilename      = errors.New("document filename is empty")
	ErrEmptyContent       = errors.New("document content is empty")
	ErrEmptyQuery         = errors.New("search query is empty")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrLengthMismatch     = errors.New("chunks and vectors length mismatch")
)
