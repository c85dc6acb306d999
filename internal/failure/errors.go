package failure

import (
	"errors"
	"strings"
)

// Kind classifies a failure. Kind implements error so it can be used as an
// errors.Is target.
type Kind string

const (
	KindTooLarge        Kind = "too_large"
	KindUnsupportedType Kind = "unsupported_type"

	KindTooSmall       Kind = "too_small"
	KindTooBig         Kind = "too_big"
	KindUnusual        Kind = "unusual"
	KindWebSizeWarning Kind = "web_size_warning"

	KindDecodeFailed       Kind = "decode_failed"
	KindEncodeFailed       Kind = "encode_failed"
	KindCancelled          Kind = "cancelled"
	KindContextUnavailable Kind = "context_unavailable"

	KindFetchFailed        Kind = "fetch_failed"
	KindArchiveWriteFailed Kind = "archive_write_failed"
)

// Category groups kinds by the component family that raises them.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryDimension  Category = "dimension"
	CategoryConversion Category = "conversion"
	CategoryExport     Category = "export"
	CategoryUnknown    Category = "unknown"
)

func (k Kind) Error() string { return string(k) }

// Category reports which family the kind belongs to.
func (k Kind) Category() Category {
	switch k {
	case KindTooLarge, KindUnsupportedType:
		return CategoryValidation
	case KindTooSmall, KindTooBig, KindUnusual, KindWebSizeWarning:
		return CategoryDimension
	case KindDecodeFailed, KindEncodeFailed, KindCancelled, KindContextUnavailable:
		return CategoryConversion
	case KindFetchFailed, KindArchiveWriteFailed:
		return CategoryExport
	default:
		return CategoryUnknown
	}
}

// Fatal reports whether the kind rejects the subject. Only the web-size
// warning is informational.
func (k Kind) Fatal() bool {
	return k != KindWebSizeWarning
}

// Error is a classified failure with operation context.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "validate" or "convert: encode".
	Op string
	// Key is the message key handed to the notification boundary.
	Key string
	Err error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	parts = append(parts, string(e.Kind))
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a Kind target against the error's kind.
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// New builds a classified failure with no underlying cause.
func New(kind Kind, op, key string) error {
	return &Error{Kind: kind, Op: strings.TrimSpace(op), Key: key}
}

// Wrap tags err with kind and operation context. A nil err still produces a
// failure so callers can report kinds that have no underlying cause.
func Wrap(kind Kind, op, key string, err error) error {
	if kind == "" {
		kind = KindContextUnavailable
	}
	return &Error{Kind: kind, Op: strings.TrimSpace(op), Key: key, Err: err}
}

// KindOf extracts the kind of the outermost classified failure in err.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	var kind Kind
	if errors.As(err, &kind) {
		return kind, true
	}
	return "", false
}

// MessageKey returns the message key carried by err, or fallback when none.
func MessageKey(err error, fallback string) string {
	var fe *Error
	if errors.As(err, &fe) && strings.TrimSpace(fe.Key) != "" {
		return fe.Key
	}
	return fallback
}
