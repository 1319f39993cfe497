package document

import "errors"

var (
	// ErrInvalidDocument indicates a source document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrMissingField indicates a required document field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownBulletinKind indicates a bulletin kind outside the known set.
	ErrUnknownBulletinKind = errors.New("unknown bulletin kind")
)
