// Package pdferrors defines the structured error type used across the
// extraction pipeline so that a single malformed page, image, or
// annotation can be recorded and skipped without failing the whole
// document.
package pdferrors

import (
	"fmt"
	"sync"
	"time"
)

// Kind categorizes a failure by where in the document it occurred.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidHeader
	KindCorruptedXRef
	KindMalformedObject
	KindInvalidStream
	KindMissingObject
	KindCircularReference
	KindInvalidFilter
	KindInvalidImage
	KindInvalidAnnotation
	KindInvalidMetadata
	KindUnsupportedFeature
	KindOCRUnavailable
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInvalidHeader:
		return "INVALID_HEADER"
	case KindCorruptedXRef:
		return "CORRUPTED_XREF"
	case KindMalformedObject:
		return "MALFORMED_OBJECT"
	case KindInvalidStream:
		return "INVALID_STREAM"
	case KindMissingObject:
		return "MISSING_OBJECT"
	case KindCircularReference:
		return "CIRCULAR_REFERENCE"
	case KindInvalidFilter:
		return "INVALID_FILTER"
	case KindInvalidImage:
		return "INVALID_IMAGE"
	case KindInvalidAnnotation:
		return "INVALID_ANNOTATION"
	case KindInvalidMetadata:
		return "INVALID_METADATA"
	case KindUnsupportedFeature:
		return "UNSUPPORTED_FEATURE"
	case KindOCRUnavailable:
		return "OCR_UNAVAILABLE"
	case KindTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Recoverable reports whether a document-level extraction can continue
// past an error of this kind (true) or must abort (false).
func (k Kind) Recoverable() bool {
	switch k {
	case KindInvalidHeader, KindCorruptedXRef:
		return false
	default:
		return true
	}
}

// Error is a single extraction failure, scoped to a page and/or object
// when known, carrying enough context to log or surface to a caller.
type Error struct {
	Kind       Kind
	Message    string
	PageNumber int
	ObjectID   string
	Timestamp  time.Time
}

func (e *Error) Error() string {
	switch {
	case e.PageNumber > 0 && e.ObjectID != "":
		return fmt.Sprintf("[%s] page %d, object %s: %s", e.Kind, e.PageNumber, e.ObjectID, e.Message)
	case e.PageNumber > 0:
		return fmt.Sprintf("[%s] page %d: %s", e.Kind, e.PageNumber, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

func (e *Error) Recoverable() bool { return e.Kind.Recoverable() }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Timestamp: time.Now()}
}

func (e *Error) WithPage(page int) *Error {
	e.PageNumber = page
	return e
}

func (e *Error) WithObject(objectID string) *Error {
	e.ObjectID = objectID
	return e
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Timestamp: time.Now()}
}

// Collector accumulates soft errors encountered while walking a document,
// keyed loosely by page, so a caller can report partial results alongside
// what went wrong rather than failing the whole extraction. A single
// Collector is routinely shared across the text/image/annotation branches
// the document assembler runs concurrently, so Add and Errors lock around
// the underlying slice.
type Collector struct {
	mu     sync.Mutex
	errors []*Error
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(err *Error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

func (c *Collector) Errors() []*Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Error, len(c.errors))
	copy(out, c.errors)
	return out
}

func (c *Collector) HasFatal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.errors {
		if !e.Recoverable() {
			return true
		}
	}
	return false
}
