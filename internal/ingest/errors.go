package ingest

import "fmt"

// ParseError reports a malformed or unsupported upload.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error"
	}
	if e.Filename != "" {
		return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("parse upload: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError reports an invalid manual-entry field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FetchError reports an unreachable or non-CSV remote source.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error"
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExtractionError reports a vision response that could not be turned into
// a row-set.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	if e == nil {
		return "extraction error"
	}
	return fmt.Sprintf("vision extraction: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
