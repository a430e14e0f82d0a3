package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	Malformed Kind = "malformed"
)

// IngestError reports a file that could not be turned into a Dataset.
type IngestError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *IngestError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s csv: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s csv %s: %v", e.Kind, e.Path, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

var (
	ErrEmptyDataset    = errors.New("the uploaded file contains no rows")
	ErrMissingColumns  = errors.New("missing required columns")
	ErrNoPlatformCodes = errors.New("no citation code matches the #<digits>[DMA] pattern")
)

// ValidationError explains why a parsed Dataset was rejected.
type ValidationError struct {
	Reason  error
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%v: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() error { return e.Reason }
