package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSource means a source file could not be opened or read.
	ErrMissingSource = errors.New("missing source")
	// ErrMalformedRecord means a listing row could not be parsed.
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError describes the offending cell of a malformed listing row.
// Row is 1-based and counts data rows only; 0 means the header or the
// source as a whole.
type RecordError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *RecordError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed record: row %d, column %q, value %q: %s", e.Row, e.Column, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedRecord) match any RecordError.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
